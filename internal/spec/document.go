package spec

import (
    "fmt"
    "strings"

    "github.com/speakeasy-api/openapi/sequencedmap"
)

const (
    schemaRefPrefix      = "#/components/schemas/"
    requestBodyRefPrefix = "#/components/requestBodies/"
    responseRefPrefix    = "#/components/responses/"
)

// Document is the generated OpenAPI 3.0 document. Field order mirrors the
// serialized key order.
type Document struct {
    OpenAPI    string                               `yaml:"openapi" json:"openapi"`
    Info       Info                                 `yaml:"info" json:"info"`
    Servers    []Server                             `yaml:"servers,omitempty" json:"servers,omitempty"`
    Paths      *sequencedmap.Map[string, *PathItem] `yaml:"paths" json:"paths"`
    Security   []map[string][]string                `yaml:"security,omitempty" json:"security,omitempty"`
    Components Components                           `yaml:"components" json:"components"`
}

type Info struct {
    Title       string `yaml:"title" json:"title"`
    Description string `yaml:"description,omitempty" json:"description,omitempty"`
    Version     string `yaml:"version" json:"version"`
}

type Server struct {
    URL         string `yaml:"url" json:"url"`
    Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Components holds the reusable objects, each keyed by short name.
type Components struct {
    Schemas         *sequencedmap.Map[string, *Schema]         `yaml:"schemas" json:"schemas"`
    SecuritySchemes *sequencedmap.Map[string, *SecurityScheme] `yaml:"securitySchemes,omitempty" json:"securitySchemes,omitempty"`
    RequestBodies   *sequencedmap.Map[string, *RequestBody]    `yaml:"requestBodies" json:"requestBodies"`
    Responses       *sequencedmap.Map[string, *Response]       `yaml:"responses" json:"responses"`
}

type SecurityScheme struct {
    Type   string `yaml:"type" json:"type"`
    Scheme string `yaml:"scheme,omitempty" json:"scheme,omitempty"`
}

// PathItem maps a lower-cased HTTP method to its operation.
type PathItem = sequencedmap.Map[string, *Operation]

// Content maps a media type to its schema.
type Content = sequencedmap.Map[string, *MediaType]

type Operation struct {
    Description string                               `yaml:"description" json:"description"`
    Tags        []string                             `yaml:"tags,omitempty" json:"tags,omitempty"`
    RequestBody *RequestBody                         `yaml:"requestBody,omitempty" json:"requestBody,omitempty"`
    Responses   *sequencedmap.Map[string, *Response] `yaml:"responses" json:"responses"`
}

// RequestBody is either a $ref or an inline request body.
type RequestBody struct {
    Ref      string   `yaml:"$ref,omitempty" json:"$ref,omitempty"`
    Required bool     `yaml:"required,omitempty" json:"required,omitempty"`
    Content  *Content `yaml:"content,omitempty" json:"content,omitempty"`
}

// Response is either a $ref or an inline response. Description is a pointer
// because inline responses must carry it even when empty.
type Response struct {
    Ref         string   `yaml:"$ref,omitempty" json:"$ref,omitempty"`
    Description *string  `yaml:"description,omitempty" json:"description,omitempty"`
    Content     *Content `yaml:"content,omitempty" json:"content,omitempty"`
}

type MediaType struct {
    Schema *Schema `yaml:"schema" json:"schema"`
}

// Schema is the subset of the OpenAPI schema object the generator emits.
type Schema struct {
    Ref         string                             `yaml:"$ref,omitempty" json:"$ref,omitempty"`
    Type        string                             `yaml:"type,omitempty" json:"type,omitempty"`
    Format      string                             `yaml:"format,omitempty" json:"format,omitempty"`
    Title       string                             `yaml:"title,omitempty" json:"title,omitempty"`
    Description string                             `yaml:"description,omitempty" json:"description,omitempty"`
    Items       *Schema                            `yaml:"items,omitempty" json:"items,omitempty"`
    Properties  *sequencedmap.Map[string, *Schema] `yaml:"properties,omitempty" json:"properties,omitempty"`
    Required    []string                           `yaml:"required,omitempty" json:"required,omitempty"`
    Enum        []string                           `yaml:"enum,omitempty" json:"enum,omitempty"`
    Example     *string                            `yaml:"example,omitempty" json:"example,omitempty"`
}

func SchemaRef(name string) *Schema           { return &Schema{Ref: schemaRefPrefix + name} }
func RequestBodyRef(name string) *RequestBody { return &RequestBody{Ref: requestBodyRefPrefix + name} }
func ResponseRef(name string) *Response       { return &Response{Ref: responseRefPrefix + name} }

// jsonContent wraps schema as the single application/json media type.
func jsonContent(schema *Schema) *Content {
    return sequencedmap.New(sequencedmap.NewElem("application/json", &MediaType{Schema: schema}))
}

// NewDocument returns an empty document with every sub-map allocated.
func NewDocument() *Document {
    return &Document{
        OpenAPI: "3.0.0",
        Paths:   sequencedmap.New[string, *PathItem](),
        Components: Components{
            Schemas:         sequencedmap.New[string, *Schema](),
            SecuritySchemes: sequencedmap.New[string, *SecurityScheme](),
            RequestBodies:   sequencedmap.New[string, *RequestBody](),
            Responses:       sequencedmap.New[string, *Response](),
        },
    }
}

// RefUse is one $ref occurrence and the JSON pointer of the object holding it.
type RefUse struct {
    Pointer string
    Ref     string
}

// Refs lists every $ref written anywhere in the document, in document order.
func (d *Document) Refs() []RefUse {
    var out []RefUse
    var walkSchema func(ptr string, s *Schema)
    walkSchema = func(ptr string, s *Schema) {
        if s == nil {
            return
        }
        if s.Ref != "" {
            out = append(out, RefUse{Pointer: ptr, Ref: s.Ref})
        }
        walkSchema(ptr+"/items", s.Items)
        for name, p := range s.Properties.All() {
            walkSchema(ptr+"/properties/"+escapePointer(name), p)
        }
    }
    walkContent := func(ptr string, c *Content) {
        for mime, mt := range c.All() {
            walkSchema(ptr+"/content/"+escapePointer(mime)+"/schema", mt.Schema)
        }
    }
    walkResponse := func(ptr string, r *Response) {
        if r.Ref != "" {
            out = append(out, RefUse{Pointer: ptr, Ref: r.Ref})
        }
        walkContent(ptr, r.Content)
    }
    walkRequestBody := func(ptr string, rb *RequestBody) {
        if rb == nil {
            return
        }
        if rb.Ref != "" {
            out = append(out, RefUse{Pointer: ptr, Ref: rb.Ref})
        }
        walkContent(ptr, rb.Content)
    }

    for name, s := range d.Components.Schemas.All() {
        walkSchema("#/components/schemas/"+escapePointer(name), s)
    }
    for name, rb := range d.Components.RequestBodies.All() {
        walkRequestBody("#/components/requestBodies/"+escapePointer(name), rb)
    }
    for name, r := range d.Components.Responses.All() {
        walkResponse("#/components/responses/"+escapePointer(name), r)
    }
    for uri, item := range d.Paths.All() {
        for method, op := range item.All() {
            ptr := "#/paths/" + escapePointer(uri) + "/" + method
            walkRequestBody(ptr+"/requestBody", op.RequestBody)
            for code, r := range op.Responses.All() {
                walkResponse(ptr+"/responses/"+code, r)
            }
        }
    }
    return out
}

// CheckRefs verifies that every $ref resolves to a key of the matching
// components sub-map.
func (d *Document) CheckRefs() error {
    for _, use := range d.Refs() {
        var ok bool
        switch {
        case strings.HasPrefix(use.Ref, schemaRefPrefix):
            ok = d.Components.Schemas.Has(strings.TrimPrefix(use.Ref, schemaRefPrefix))
        case strings.HasPrefix(use.Ref, requestBodyRefPrefix):
            ok = d.Components.RequestBodies.Has(strings.TrimPrefix(use.Ref, requestBodyRefPrefix))
        case strings.HasPrefix(use.Ref, responseRefPrefix):
            ok = d.Components.Responses.Has(strings.TrimPrefix(use.Ref, responseRefPrefix))
        }
        if !ok {
            return &Error{
                Code:        UnresolvedReferenceError,
                Message:     fmt.Sprintf("dangling $ref %q at %s", use.Ref, use.Pointer),
                Row:         -1,
                Name:        use.Ref,
                JSONPointer: use.Pointer,
            }
        }
    }
    return nil
}

func escapePointer(token string) string {
    return strings.NewReplacer("~", "~0", "/", "~1").Replace(token)
}
