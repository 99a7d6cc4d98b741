package spec

import (
    "fmt"
    "strings"
)

// TypeKind tags the variant held by a TypeDescriptor.
type TypeKind int

const (
    Primitive TypeKind = iota
    Ref
    Array
    Date
    Decimal
)

func (k TypeKind) String() string {
    switch k {
    case Primitive:
        return "primitive"
    case Ref:
        return "ref"
    case Array:
        return "array"
    case Date:
        return "date"
    case Decimal:
        return "decimal"
    default:
        return fmt.Sprintf("TypeKind(%d)", int(k))
    }
}

// TypeDescriptor is a resolved type token. Name holds the primitive name for
// Primitive, the normalized target for Ref and the element primitive for Array.
type TypeDescriptor struct {
    Kind TypeKind
    Name string
}

func PrimitiveType(name string) TypeDescriptor { return TypeDescriptor{Kind: Primitive, Name: name} }
func RefType(target string) TypeDescriptor     { return TypeDescriptor{Kind: Ref, Name: target} }
func ArrayOf(element string) TypeDescriptor    { return TypeDescriptor{Kind: Array, Name: element} }
func DateType() TypeDescriptor                 { return TypeDescriptor{Kind: Date} }
func DecimalType() TypeDescriptor              { return TypeDescriptor{Kind: Decimal} }

func (t TypeDescriptor) String() string {
    switch t.Kind {
    case Ref:
        return "#" + t.Name
    case Array:
        return t.Name + "[]"
    case Date:
        return "date"
    case Decimal:
        return "decimal number"
    default:
        return t.Name
    }
}

// ResolveType maps a raw documentation type token to a TypeDescriptor.
// Structural markers are checked before literal names.
func ResolveType(token string) TypeDescriptor {
    switch {
    case strings.HasPrefix(token, "#"):
        return RefType(ShortName(strings.TrimPrefix(token, "#")))
    case strings.HasSuffix(token, "[]"):
        return ArrayOf(strings.TrimSuffix(token, "[]"))
    case token == "date":
        return DateType()
    case token == "decimal number":
        return DecimalType()
    default:
        return PrimitiveType(token)
    }
}

// Schema renders the OpenAPI property fragment for t.
func (t TypeDescriptor) Schema() *Schema {
    switch t.Kind {
    case Ref:
        return &Schema{Ref: schemaRefPrefix + t.Name}
    case Array:
        return &Schema{Type: "array", Items: &Schema{Type: t.Name}}
    case Date:
        return &Schema{Type: "string", Format: "date"}
    case Decimal:
        return &Schema{Type: "number", Format: "double"}
    default:
        return &Schema{Type: t.Name}
    }
}

// isString reports whether values of t are serialized as JSON strings.
func (t TypeDescriptor) isString() bool {
    return t.Kind == Date || (t.Kind == Primitive && t.Name == "string")
}
