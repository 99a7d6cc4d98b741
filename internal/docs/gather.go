package docs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/saferpay2openapi/internal/spec"
)

// DefaultURL is the published Saferpay JSON API documentation page.
const DefaultURL = "https://raw.githubusercontent.com/saferpay/jsonapi/gh-pages/index.html"

// Layout holds every selector used to locate documentation fragments. Request
// and error-handling selectors are evaluated relative to their section.
type Layout struct {
	TypeTables string
	TypeRows   string

	// RequestSections matches the element whose direct div.row children hold
	// one request's info block, request table and response table.
	RequestSections    string
	RequestAnchor      string
	RequestURL         string
	RequestDescription string
	RequestRows        string
	ResponseRows       string
	// URIPrefix is removed from documented URLs; servers carry it instead.
	URIPrefix string

	ErrorSection      string
	ErrorCodeRows     string
	ErrorCodeCell     string
	ErrorMessageCell  string
	ErrorResponseRows string
}

// DefaultLayout matches the Saferpay documentation page.
func DefaultLayout() Layout {
	return Layout{
		TypeTables: "div#type-dict table",
		TypeRows:   "tr",

		RequestSections:    `*:haschild(div.row:haschild(*:haschild(div.info:contains("Request URL:"))))`,
		RequestAnchor:      "a",
		RequestURL:         "div.info p:nth-of-type(2)",
		RequestDescription: "div div p",
		RequestRows:        "div.row:nth-of-type(2) > div.col-md-6 > table tbody tr",
		ResponseRows:       "div.row:nth-of-type(3) > div.col-md-6 > table tbody tr",
		URIPrefix:          "/Payment/v1",

		ErrorSection:      "section#errorhandling",
		ErrorCodeRows:     "div.row:nth-of-type(1) table > tbody > tr",
		ErrorCodeCell:     "td:nth-of-type(1)",
		ErrorMessageCell:  "td:nth-of-type(2)",
		ErrorResponseRows: "div.row:nth-of-type(2) > div.col-md-6 > table > tbody > tr",
	}
}

const (
	typeDictTable      = "type-dict"
	requestsTable      = "requests"
	errorHandlingTable = "errorhandling"
)

// Gather extracts the type dictionary, the documented requests and the error
// handling section from a parsed documentation page.
func Gather(root Node, layout Layout) (*spec.Source, error) {
	types, err := gatherTypes(root, layout)
	if err != nil {
		return nil, err
	}
	requests, err := gatherRequests(root, layout)
	if err != nil {
		return nil, err
	}
	errs, err := gatherErrorHandling(root, layout)
	if err != nil {
		return nil, err
	}
	return &spec.Source{Types: types, Requests: requests, ErrorHandling: errs}, nil
}

func gatherTypes(root Node, layout Layout) ([]spec.TypeDefinition, error) {
	tables := root.Select(layout.TypeTables)
	types := make([]spec.TypeDefinition, 0, len(tables))
	for i, table := range tables {
		id, _ := table.Attr("id")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, spec.NewExtractionError(typeDictTable, i, "type table without id")
		}
		fields, err := ExtractParams(id, table.Select(layout.TypeRows))
		if err != nil {
			return nil, err
		}
		types = append(types, spec.NewTypeDefinition(id, fields))
	}
	return types, nil
}

func gatherRequests(root Node, layout Layout) ([]spec.RequestDefinition, error) {
	sections := root.Select(layout.RequestSections)
	if len(sections) == 0 {
		return nil, spec.NewExtractionError(requestsTable, -1, "no request sections match %q", layout.RequestSections)
	}
	requests := make([]spec.RequestDefinition, 0, len(sections))
	for i, section := range sections {
		rd, err := gatherRequest(i, section, layout)
		if err != nil {
			return nil, err
		}
		requests = append(requests, rd)
	}
	return requests, nil
}

func gatherRequest(idx int, section Node, layout Layout) (spec.RequestDefinition, error) {
	var rd spec.RequestDefinition

	anchor, ok := first(section, layout.RequestAnchor)
	if !ok {
		return rd, spec.NewExtractionError(requestsTable, idx, "request section without anchor")
	}
	id, _ := anchor.Attr("name")
	id = strings.TrimSpace(id)
	if id == "" {
		return rd, spec.NewExtractionError(requestsTable, idx, "request anchor without name")
	}

	urlLine, ok := firstText(section, layout.RequestURL)
	if !ok {
		return rd, spec.NewExtractionError(id, -1, "missing request URL line")
	}
	method, uri, err := parseRequestURL(urlLine)
	if err != nil {
		return rd, spec.NewExtractionError(id, -1, "%v", err)
	}
	desc, ok := firstText(section, layout.RequestDescription)
	if !ok {
		return rd, spec.NewExtractionError(id, -1, "missing request description")
	}

	reqFields, err := ExtractParams(id+" request", section.Select(layout.RequestRows))
	if err != nil {
		return rd, err
	}
	respFields, err := ExtractParams(id+" response", section.Select(layout.ResponseRows))
	if err != nil {
		return rd, err
	}

	rd.ID = id
	rd.ShortName = spec.ShortName(id)
	rd.Method = method
	rd.URI = strings.Replace(uri, layout.URIPrefix, "", 1)
	rd.Description = desc
	rd.RequestFields = reqFields
	rd.ResponseFields = respFields
	return rd, nil
}

// parseRequestURL splits "POST: /Payment/v1/PaymentPage/Initialize".
func parseRequestURL(line string) (string, string, error) {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "Request URL:"))
	parts := strings.SplitN(line, ": ", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("request URL line %q is not \"METHOD: /path\"", line)
	}
	method := strings.TrimSpace(parts[0])
	uri := strings.TrimSpace(parts[1])
	if method == "" || !strings.HasPrefix(uri, "/") {
		return "", "", fmt.Errorf("request URL line %q is not \"METHOD: /path\"", line)
	}
	return method, uri, nil
}

func gatherErrorHandling(root Node, layout Layout) (spec.ErrorHandlingInfo, error) {
	var info spec.ErrorHandlingInfo
	seen := make(map[int]bool)

	section, ok := first(root, layout.ErrorSection)
	if !ok {
		return info, spec.NewExtractionError(errorHandlingTable, -1, "missing error handling section %q", layout.ErrorSection)
	}
	for i, row := range section.Select(layout.ErrorCodeRows) {
		codeText, ok := firstText(row, layout.ErrorCodeCell)
		if !ok {
			return info, spec.NewExtractionError(errorHandlingTable+" codes", i, "missing status code cell")
		}
		code, err := strconv.Atoi(codeText)
		if err != nil {
			return info, spec.NewExtractionError(errorHandlingTable+" codes", i, "status code %q is not a number", codeText)
		}
		if seen[code] {
			return info, spec.NewExtractionError(errorHandlingTable+" codes", i, "status code %d listed twice", code)
		}
		seen[code] = true
		msg, ok := firstText(row, layout.ErrorMessageCell)
		if !ok {
			return info, spec.NewExtractionError(errorHandlingTable+" codes", i, "missing status message cell")
		}
		info.Codes = append(info.Codes, spec.StatusCode{Code: code, Message: msg})
	}

	fields, err := ExtractParams(errorHandlingTable+" response", section.Select(layout.ErrorResponseRows))
	if err != nil {
		return info, err
	}
	info.ResponseFields = fields
	return info, nil
}
