package docs

import (
	"fmt"
	"strings"

	"github.com/mark3labs/saferpay2openapi/internal/spec"
)

// Row selectors, relative to one table row.
const (
	markerSelector      = "td:first-child span"
	nameSelector        = "td:first-child strong:first-child"
	linkSelector        = "td:first-child a"
	annotationSelector  = "td:nth-of-type(2) i"
	descriptionSelector = "td:nth-of-type(2) div"
)

const (
	possibleValuesPrefix = "Possible values: "
	examplePrefix        = "Example: "
)

// ExtractParams turns the rows of one documentation table into parameter
// records in row order. A row missing a required element fails the whole
// table with an ExtractionError naming the table and zero-based row index.
func ExtractParams(table string, rows []Node) ([]spec.ParamInfo, error) {
	params := make([]spec.ParamInfo, 0, len(rows))
	for i, row := range rows {
		p, err := extractRow(table, i, row)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func extractRow(table string, idx int, row Node) (spec.ParamInfo, error) {
	var p spec.ParamInfo

	marker, ok := firstText(row, markerSelector)
	if !ok {
		return p, spec.NewExtractionError(table, idx, "missing modality/type marker (%s)", markerSelector)
	}
	mandatory, typ, err := parseMarker(marker)
	if err != nil {
		return p, spec.NewExtractionError(table, idx, "%v", err)
	}

	if typ == "container" {
		link, ok := first(row, linkSelector)
		if !ok {
			return p, spec.NewExtractionError(table, idx, "container type without link (%s)", linkSelector)
		}
		href, _ := link.Attr("href")
		target := strings.TrimPrefix(strings.TrimSpace(href), "#")
		if target == "" {
			return p, spec.NewExtractionError(table, idx, "container link has no target")
		}
		typ = "#" + target
	}

	name, ok := firstText(row, nameSelector)
	if !ok || name == "" {
		return p, spec.NewExtractionError(table, idx, "missing field name (%s)", nameSelector)
	}
	desc, ok := firstText(row, descriptionSelector)
	if !ok {
		return p, spec.NewExtractionError(table, idx, "missing description (%s)", descriptionSelector)
	}

	p.Name = name
	p.Mandatory = mandatory
	p.Type = typ
	p.Description = desc
	if annotation, ok := first(row, annotationSelector); ok {
		p.Example, p.PossibleValues = parseAnnotation(annotation.Text())
	}
	return p, nil
}

// parseMarker splits "mandatory, string" style marker text into modality and
// raw type token.
func parseMarker(marker string) (bool, string, error) {
	parts := strings.Split(marker, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch parts[0] {
	case "mandatory", "recommended":
		if len(parts) < 2 || parts[1] == "" {
			return false, "", fmt.Errorf("marker %q has no type", marker)
		}
		return parts[0] == "mandatory", parts[1], nil
	case "":
		return false, "", fmt.Errorf("empty marker")
	default:
		return false, parts[0], nil
	}
}

// parseAnnotation reads the example and possible values from the italic
// annotation block. Unrecognized lines are ignored.
func parseAnnotation(text string) (*string, []string) {
	var example *string
	var values []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, possibleValuesPrefix):
			values = strings.Split(strings.TrimPrefix(line, possibleValuesPrefix), ", ")
		case strings.HasPrefix(line, examplePrefix):
			ex := strings.TrimPrefix(line, examplePrefix)
			example = &ex
		}
	}
	return example, values
}
