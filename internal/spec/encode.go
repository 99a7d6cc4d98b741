package spec

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "strings"

    "github.com/speakeasy-api/openapi/yml"
    "gopkg.in/yaml.v3"
)

// Format selects the serialization of the generated document.
type Format string

const (
    FormatYAML Format = "yaml"
    FormatJSON Format = "json"
)

// ParseFormat accepts yaml, yml and json (case-insensitive).
func ParseFormat(s string) (Format, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "yaml", "yml":
        return FormatYAML, nil
    case "json":
        return FormatJSON, nil
    default:
        return "", fmt.Errorf("unsupported format %q (allowed: yaml, json)", s)
    }
}

// Marshal renders doc with key order preserved.
func Marshal(doc *Document, format Format) ([]byte, error) {
    if doc == nil {
        return nil, &Error{Code: EncodeError, Message: "encode: nil document", Row: -1}
    }
    var buf bytes.Buffer
    switch format {
    case FormatYAML, "":
        node, err := documentNode(doc)
        if err != nil {
            return nil, &Error{Code: EncodeError, Message: fmt.Sprintf("encode yaml: %v", err), Row: -1, Cause: err}
        }
        enc := yaml.NewEncoder(&buf)
        enc.SetIndent(2)
        if err := enc.Encode(node); err != nil {
            return nil, &Error{Code: EncodeError, Message: fmt.Sprintf("encode yaml: %v", err), Row: -1, Cause: err}
        }
        if err := enc.Close(); err != nil {
            return nil, &Error{Code: EncodeError, Message: fmt.Sprintf("encode yaml: %v", err), Row: -1, Cause: err}
        }
    case FormatJSON:
        enc := json.NewEncoder(&buf)
        enc.SetEscapeHTML(false)
        enc.SetIndent("", "  ")
        if err := enc.Encode(doc); err != nil {
            return nil, &Error{Code: EncodeError, Message: fmt.Sprintf("encode json: %v", err), Row: -1, Cause: err}
        }
    default:
        return nil, &Error{Code: EncodeError, Message: fmt.Sprintf("encode: unsupported format %q", format), Row: -1}
    }
    return buf.Bytes(), nil
}

// documentNode converts doc into a YAML node tree. The sequenced maps only
// know how to write JSON, so the tree is read back from that and restyled as
// block YAML; quoting is then chosen per scalar by the encoder.
func documentNode(doc *Document) (*yaml.Node, error) {
    data, err := json.Marshal(doc)
    if err != nil {
        return nil, err
    }
    var node yaml.Node
    if err := yaml.Unmarshal(data, &node); err != nil {
        return nil, err
    }
    err = yml.Walk(context.Background(), &node, func(_ context.Context, n, _, _ *yaml.Node) error {
        n.Style = 0
        return nil
    })
    if err != nil {
        return nil, err
    }
    return &node, nil
}
