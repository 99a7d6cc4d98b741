package spec

import "fmt"

// ErrorCode categorizes generation errors for clearer handling and messaging.
type ErrorCode string

const (
    FetchError               ErrorCode = "FetchError"
    ExtractionError          ErrorCode = "ExtractionError"
    UnresolvedReferenceError ErrorCode = "UnresolvedReferenceError"
    NameCollisionError       ErrorCode = "NameCollisionError"
    ValidationError          ErrorCode = "ValidationError"
    EncodeError              ErrorCode = "EncodeError"
)

// Error is a structured error carrying enough context to locate the offending
// documentation fragment. Row is -1 when the error is not tied to a table row.
type Error struct {
    Code        ErrorCode
    Message     string
    Table       string // documentation table or definition id
    Row         int
    Name        string // short name, field name or $ref involved
    Location    string // file path or URL
    JSONPointer string // e.g. "#/components/schemas/Foo"
    Cause       error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Cause }

// NewExtractionError reports a row of table that is missing a structural element.
func NewExtractionError(table string, row int, format string, args ...any) *Error {
    msg := fmt.Sprintf(format, args...)
    if row >= 0 {
        msg = fmt.Sprintf("extract %s row %d: %s", table, row, msg)
    } else {
        msg = fmt.Sprintf("extract %s: %s", table, msg)
    }
    return &Error{
        Code:    ExtractionError,
        Message: msg,
        Table:   table,
        Row:     row,
    }
}

func newCollisionError(section, name, first, second string) *Error {
    return &Error{
        Code:    NameCollisionError,
        Message: fmt.Sprintf("%s %q: %q and %q normalize to the same name", section, name, first, second),
        Table:   second,
        Row:     -1,
        Name:    name,
    }
}

func newUnresolvedError(owner, field, target string) *Error {
    return &Error{
        Code:        UnresolvedReferenceError,
        Message:     fmt.Sprintf("schema %q field %q references unknown type %q", owner, field, target),
        Table:       owner,
        Row:         -1,
        Name:        target,
        JSONPointer: schemaRefPrefix + target,
    }
}
