package spec

import (
    "fmt"
    "reflect"
    "strconv"
    "strings"

    "github.com/speakeasy-api/openapi/sequencedmap"
)

// ErrorResponseSchema is the schema name of the generic error body.
const ErrorResponseSchema = "ErrorResponse"

// CompileOption configures how the Document is assembled.
type CompileOption func(*compileConfig)

type compileConfig struct {
    info      Info
    servers   []Server
    fieldDocs bool
}

// DefaultInfo is the info block of the published Saferpay document.
func DefaultInfo() Info {
    return Info{Title: "Saferpay JSON API", Version: "1.10.0"}
}

// DefaultServers lists the Saferpay production and test environments.
func DefaultServers() []Server {
    return []Server{
        {URL: "https://www.saferpay.com/api/Payment/v1", Description: "Production System"},
        {URL: "https://test.saferpay.com/api/Payment/v1", Description: "Test System"},
    }
}

// WithInfo overrides the title and version. Empty values keep the default.
func WithInfo(title, version string) CompileOption {
    return func(c *compileConfig) {
        if t := strings.TrimSpace(title); t != "" {
            c.info.Title = t
        }
        if v := strings.TrimSpace(version); v != "" {
            c.info.Version = v
        }
    }
}

// WithServers replaces the server list.
func WithServers(servers ...Server) CompileOption {
    return func(c *compileConfig) {
        if len(servers) == 0 {
            return
        }
        c.servers = append([]Server(nil), servers...)
    }
}

// WithFieldDocs copies row descriptions onto properties, and examples and
// possible values onto string properties.
func WithFieldDocs(enabled bool) CompileOption {
    return func(c *compileConfig) { c.fieldDocs = enabled }
}

type compiler struct {
    cfg     compileConfig
    doc     *Document
    types   map[string]string // short name -> documentation id
    origins map[string]string // "section/name" -> definition that registered it
}

// Compile assembles the OpenAPI document from extracted documentation data.
// Any collision or dangling reference aborts with a *Error and no document.
func Compile(src *Source, opts ...CompileOption) (*Document, error) {
    if src == nil {
        return nil, fmt.Errorf("compile: nil source")
    }
    cfg := compileConfig{info: DefaultInfo(), servers: DefaultServers()}
    for _, opt := range opts {
        opt(&cfg)
    }

    c := &compiler{
        cfg:     cfg,
        doc:     NewDocument(),
        types:   make(map[string]string, len(src.Types)),
        origins: make(map[string]string),
    }
    c.doc.Info = cfg.info
    c.doc.Servers = cfg.servers
    c.doc.Security = []map[string][]string{{"BasicAuth": {}}}
    c.doc.Components.SecuritySchemes.Set("BasicAuth", &SecurityScheme{Type: "http", Scheme: "basic"})

    if err := c.indexTypes(src.Types); err != nil {
        return nil, err
    }
    for _, td := range src.Types {
        if err := c.addSchema(td.ShortName, td.ID, td.Fields); err != nil {
            return nil, err
        }
    }
    if err := c.addSchema(ErrorResponseSchema, "errorhandling", src.ErrorHandling.ResponseFields); err != nil {
        return nil, err
    }
    if err := c.checkRequestNames(src.Requests); err != nil {
        return nil, err
    }
    if err := checkStatusCodes(src.ErrorHandling.Codes); err != nil {
        return nil, err
    }
    for _, rd := range src.Requests {
        if err := c.addRequest(rd); err != nil {
            return nil, err
        }
    }
    for _, rd := range src.Requests {
        if err := c.addPath(rd, src.ErrorHandling.Codes); err != nil {
            return nil, err
        }
    }

    if err := c.doc.CheckRefs(); err != nil {
        return nil, err
    }
    return c.doc, nil
}

func (c *compiler) indexTypes(types []TypeDefinition) error {
    for _, td := range types {
        if td.ShortName == "" {
            return &Error{Code: NameCollisionError, Message: fmt.Sprintf("type %q normalizes to an empty name", td.ID), Table: td.ID, Row: -1}
        }
        if prev, ok := c.types[td.ShortName]; ok && prev != td.ID {
            return newCollisionError("type", td.ShortName, prev, td.ID)
        }
        c.types[td.ShortName] = td.ID
    }
    return nil
}

// checkRequestNames enforces one short name per definition across requests
// and types alike.
func (c *compiler) checkRequestNames(requests []RequestDefinition) error {
    seen := make(map[string]string, len(requests))
    for _, rd := range requests {
        if rd.ShortName == "" {
            return &Error{Code: NameCollisionError, Message: fmt.Sprintf("request %q normalizes to an empty name", rd.ID), Table: rd.ID, Row: -1}
        }
        if prev, ok := seen[rd.ShortName]; ok {
            return newCollisionError("request", rd.ShortName, prev, rd.ID)
        }
        if prev, ok := c.types[rd.ShortName]; ok && prev != rd.ID {
            return newCollisionError("request", rd.ShortName, prev, rd.ID)
        }
        seen[rd.ShortName] = rd.ID
    }
    return nil
}

func checkStatusCodes(codes []StatusCode) error {
    seen := make(map[int]bool, len(codes))
    for i, sc := range codes {
        if seen[sc.Code] {
            return NewExtractionError("errorhandling codes", i, "status code %d listed twice", sc.Code)
        }
        seen[sc.Code] = true
    }
    return nil
}

// objectSchema builds the object schema for fields, keeping row order.
func (c *compiler) objectSchema(title string, fields []ParamInfo) (*Schema, error) {
    s := &Schema{Type: "object", Title: title, Properties: sequencedmap.New[string, *Schema]()}
    for _, f := range fields {
        td := ResolveType(f.Type)
        if td.Kind == Ref {
            if _, ok := c.types[td.Name]; !ok {
                return nil, newUnresolvedError(title, f.Name, td.Name)
            }
        }
        if s.Properties.Has(f.Name) {
            return nil, &Error{
                Code:    NameCollisionError,
                Message: fmt.Sprintf("schema %q: duplicate property %q", title, f.Name),
                Table:   title,
                Row:     -1,
                Name:    f.Name,
            }
        }
        s.Properties.Set(f.Name, c.property(td, f))
        if f.Mandatory {
            s.Required = append(s.Required, f.Name)
        }
    }
    return s, nil
}

func (c *compiler) property(td TypeDescriptor, f ParamInfo) *Schema {
    p := td.Schema()
    if !c.cfg.fieldDocs || td.Kind == Ref {
        return p
    }
    p.Description = f.Description
    if td.isString() {
        p.Example = f.Example
        if td.Kind == Primitive && len(f.PossibleValues) > 0 {
            p.Enum = append([]string(nil), f.PossibleValues...)
        }
    }
    return p
}

func (c *compiler) addSchema(name, origin string, fields []ParamInfo) error {
    s, err := c.objectSchema(name, fields)
    if err != nil {
        return err
    }
    return register(c, c.doc.Components.Schemas, "schemas", name, origin, s)
}

func (c *compiler) addRequest(rd RequestDefinition) error {
    reqName := rd.ShortName + "Request"
    respName := rd.ShortName + "Response"
    if err := c.addSchema(reqName, rd.ID, rd.RequestFields); err != nil {
        return err
    }
    if err := c.addSchema(respName, rd.ID, rd.ResponseFields); err != nil {
        return err
    }

    body := &RequestBody{Required: true, Content: jsonContent(SchemaRef(reqName))}
    if err := register(c, c.doc.Components.RequestBodies, "requestBodies", rd.ShortName, rd.ID, body); err != nil {
        return err
    }
    empty := ""
    resp := &Response{Description: &empty, Content: jsonContent(SchemaRef(respName))}
    return register(c, c.doc.Components.Responses, "responses", rd.ShortName, rd.ID, resp)
}

func (c *compiler) addPath(rd RequestDefinition, codes []StatusCode) error {
    method := strings.ToLower(strings.TrimSpace(rd.Method))
    item, ok := c.doc.Paths.Get(rd.URI)
    if !ok {
        item = sequencedmap.New[string, *Operation]()
        c.doc.Paths.Set(rd.URI, item)
    }
    if item.Has(method) {
        return &Error{
            Code:    NameCollisionError,
            Message: fmt.Sprintf("path %s %s is documented twice (second: %q)", strings.ToUpper(method), rd.URI, rd.ID),
            Table:   rd.ID,
            Row:     -1,
            Name:    rd.URI,
        }
    }

    op := &Operation{
        Description: rd.Description,
        RequestBody: RequestBodyRef(rd.ShortName),
        Responses:   sequencedmap.New[string, *Response](),
    }
    if tag := pathTag(rd.URI); tag != "" {
        op.Tags = []string{tag}
    }
    op.Responses.Set("200", ResponseRef(rd.ShortName))
    for _, sc := range codes {
        if sc.Code == 200 {
            continue
        }
        msg := sc.Message
        content := jsonContent(SchemaRef(ErrorResponseSchema))
        content.Set("text/plain", &MediaType{Schema: &Schema{Type: "string"}})
        op.Responses.Set(strconv.Itoa(sc.Code), &Response{Description: &msg, Content: content})
    }
    item.Set(method, op)
    return nil
}

// pathTag returns the second "/"-delimited segment of uri, e.g. "PaymentPage"
// for "/PaymentPage/Initialize".
func pathTag(uri string) string {
    parts := strings.Split(uri, "/")
    if len(parts) < 2 {
        return ""
    }
    return parts[1]
}

// register adds value under name, accepting an identical re-registration and
// rejecting a different definition under a taken name. Keys are never set
// twice.
func register[V any](c *compiler, m *sequencedmap.Map[string, V], section, name, origin string, value V) error {
    key := section + "/" + name
    if existing, ok := m.Get(name); ok {
        if reflect.DeepEqual(existing, value) {
            return nil
        }
        return newCollisionError(section, name, c.origins[key], origin)
    }
    m.Set(name, value)
    c.origins[key] = origin
    return nil
}
