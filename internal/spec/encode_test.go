package spec

import (
    "context"
    "encoding/json"
    "errors"
    "strings"
    "testing"

    "gopkg.in/yaml.v3"
)

func TestMarshal_YAMLPreservesOrder(t *testing.T) {
    t.Parallel()
    doc := mustCompile(t, sampleSource())
    out, err := Marshal(doc, FormatYAML)
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    text := string(out)

    // top-level keys in document order
    assertOrder(t, text, "openapi: 3.0.0", "\ninfo:", "\nservers:", "\npaths:", "\nsecurity:", "\ncomponents:")
    // properties follow row order, not alphabetical order
    section := text[strings.Index(text, "    PaymentPageInitializeRequest:"):]
    assertOrder(t, section, "RequestHeader:", "TerminalId:", "Amount:", "Notification:")
    // components in original order
    assertOrder(t, text, "\ncomponents:", "\n  schemas:", "\n  securitySchemes:", "\n  requestBodies:", "\n  responses:")

    for _, want := range []string{
        "- BasicAuth: []",
        "$ref: '#/components/requestBodies/PaymentPageInitialize'",
        "\"200\":",
        "description: \"\"",
        "format: double",
    } {
        if !strings.Contains(text, want) {
            t.Errorf("yaml output missing %q\n%s", want, text)
        }
    }

    var round map[string]any
    if err := yaml.Unmarshal(out, &round); err != nil {
        t.Fatalf("output must be valid yaml: %v", err)
    }
}

func TestMarshal_YAMLScalarQuoting(t *testing.T) {
    t.Parallel()
    src := &Source{Types: []TypeDefinition{NewTypeDefinition("Common_Terminal", []ParamInfo{
        {Name: "TerminalId", Type: "string", Example: strPtr("17795278"), Description: "Saferpay terminal id"},
        {Name: "Note", Type: "string", Description: "First line\nsecond line <b>bold</b>"},
        {Name: "Flag", Type: "string", Example: strPtr("true")},
    })}}
    out, err := Marshal(mustCompile(t, src, WithFieldDocs(true)), FormatYAML)
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    text := string(out)
    for _, want := range []string{
        `example: "17795278"`,
        `example: "true"`,
        "description: Saferpay terminal id",
        "description: |-",
        "<b>bold</b>",
    } {
        if !strings.Contains(text, want) {
            t.Errorf("yaml output missing %q\n%s", want, text)
        }
    }

    var round struct {
        Components struct {
            Schemas map[string]struct {
                Properties map[string]struct {
                    Example any `yaml:"example"`
                } `yaml:"properties"`
            } `yaml:"schemas"`
        } `yaml:"components"`
    }
    if err := yaml.Unmarshal(out, &round); err != nil {
        t.Fatalf("unmarshal: %v", err)
    }
    if got := round.Components.Schemas["Terminal"].Properties["TerminalId"].Example; got != "17795278" {
        t.Fatalf("numeric-looking example must stay a string, got %#v", got)
    }
}

func TestMarshal_JSON(t *testing.T) {
    t.Parallel()
    doc := mustCompile(t, sampleSource())
    out, err := Marshal(doc, FormatJSON)
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    var parsed map[string]any
    if err := json.Unmarshal(out, &parsed); err != nil {
        t.Fatalf("output must be valid json: %v\n%s", err, out)
    }
    text := string(out)
    assertOrder(t, text, `"openapi"`, `"info"`, `"servers"`, `"paths"`, `"security"`, `"components"`)
    section := text[strings.Index(text, `"PaymentPageInitializeRequest": {`):]
    assertOrder(t, section, `"RequestHeader"`, `"TerminalId"`, `"Amount"`, `"Notification"`)
    if !strings.Contains(text, `"BasicAuth": []`) {
        t.Errorf("empty security requirement must be an empty array:\n%s", text)
    }
}

func TestMarshal_EmptyObjectSchema(t *testing.T) {
    t.Parallel()
    doc := mustCompile(t, &Source{Types: []TypeDefinition{NewTypeDefinition("Common_Empty", nil)}})
    out, err := Marshal(doc, FormatYAML)
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    if !strings.Contains(string(out), "properties: {}") {
        t.Fatalf("empty object schema must render empty properties mapping:\n%s", out)
    }
}

func TestMarshal_Errors(t *testing.T) {
    t.Parallel()
    var se *Error
    if _, err := Marshal(nil, FormatYAML); !errors.As(err, &se) || se.Code != EncodeError {
        t.Fatalf("expected EncodeError for nil doc, got %v", err)
    }
    if _, err := Marshal(NewDocument(), Format("toml")); !errors.As(err, &se) || se.Code != EncodeError {
        t.Fatalf("expected EncodeError for unknown format, got %v", err)
    }
}

func TestParseFormat(t *testing.T) {
    t.Parallel()
    for in, want := range map[string]Format{"yaml": FormatYAML, "YML": FormatYAML, " json ": FormatJSON} {
        got, err := ParseFormat(in)
        if err != nil || got != want {
            t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
        }
    }
    if _, err := ParseFormat("xml"); err == nil {
        t.Errorf("expected error for xml")
    }
}

func TestValidate_CompiledDocument(t *testing.T) {
    t.Parallel()
    doc := mustCompile(t, sampleSource(), WithFieldDocs(true))
    for _, format := range []Format{FormatYAML, FormatJSON} {
        out, err := Marshal(doc, format)
        if err != nil {
            t.Fatalf("marshal %s: %v", format, err)
        }
        if err := Validate(context.Background(), out); err != nil {
            t.Fatalf("validate %s: %v\n%s", format, err, out)
        }
    }
}

func TestValidate_Invalid(t *testing.T) {
    t.Parallel()
    bad := strings.TrimSpace(`openapi: 3.0.0
info:
  title: Bad
  version: "1.0.0"
paths:
  /pet:
    get:
      responses:
        "200":
          $ref: '#/components/responses/Missing'
`) + "\n"
    err := Validate(context.Background(), []byte(bad))
    var se *Error
    if !errors.As(err, &se) || se.Code != ValidationError {
        t.Fatalf("expected ValidationError, got %v (%T)", err, err)
    }
}

func assertOrder(t *testing.T, text string, parts ...string) {
    t.Helper()
    last := -1
    for _, p := range parts {
        idx := strings.Index(text, p)
        if idx < 0 {
            t.Errorf("missing %q", p)
            return
        }
        if idx < last {
            t.Errorf("%q appears out of order", p)
            return
        }
        last = idx
    }
}
