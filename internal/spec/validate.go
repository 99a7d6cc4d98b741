package spec

import (
    "context"
    "errors"
    "fmt"
    "regexp"
    "strings"

    "github.com/getkin/kin-openapi/openapi3"
)

// Validate loads serialized document bytes (YAML or JSON) with kin-openapi and
// runs its document validation. Example values are documentation prose and are
// not checked against their schemas.
func Validate(ctx context.Context, data []byte) error {
    loader := openapi3.NewLoader()
    doc, err := loader.LoadFromData(data)
    if err != nil {
        return mapValidateErr(err)
    }
    if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
        return mapValidateErr(err)
    }
    return nil
}

func mapValidateErr(err error) error {
    return &Error{
        Code:        ValidationError,
        Message:     fmt.Sprintf("validate: %v", err),
        Row:         -1,
        JSONPointer: extractJSONPointer(err),
        Cause:       err,
    }
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
    if err == nil {
        return ""
    }
    // Unwrap MultiError and take the first for brevity.
    var me openapi3.MultiError
    if errors.As(err, &me) && len(me) > 0 {
        return extractJSONPointer(me[0])
    }
    var se *openapi3.SchemaError
    if errors.As(err, &se) {
        if parts := se.JSONPointer(); len(parts) > 0 {
            return "#/" + strings.Join(parts, "/")
        }
    }
    if m := jsonPtrRe.FindString(err.Error()); m != "" {
        return m
    }
    return ""
}
