package spec

// Extraction model shared by the documentation scraper and the compiler.

// ParamInfo is one row of a documentation table.
type ParamInfo struct {
    Name           string
    Mandatory      bool
    Type           string // raw token, e.g. "string", "#Common_Foo", "integer[]"
    Example        *string
    PossibleValues []string
    Description    string
}

// TypeDefinition is an entry of the documentation's type dictionary.
type TypeDefinition struct {
    ID        string
    ShortName string
    Fields    []ParamInfo
}

// NewTypeDefinition normalizes id and returns the definition.
func NewTypeDefinition(id string, fields []ParamInfo) TypeDefinition {
    return TypeDefinition{ID: id, ShortName: ShortName(id), Fields: fields}
}

// RequestDefinition is one documented API call.
type RequestDefinition struct {
    ID             string
    ShortName      string
    Method         string
    URI            string
    Description    string
    RequestFields  []ParamInfo
    ResponseFields []ParamInfo
}

// StatusCode is one row of the error code table.
type StatusCode struct {
    Code    int
    Message string
}

// ErrorHandlingInfo describes the generic error body and the status codes the
// API documents.
type ErrorHandlingInfo struct {
    ResponseFields []ParamInfo
    Codes          []StatusCode
}

// Source is everything extracted from one documentation page.
type Source struct {
    Types         []TypeDefinition
    Requests      []RequestDefinition
    ErrorHandling ErrorHandlingInfo
}
