package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Render produces SDL from the Schema.
// Deterministic ordering: type/directive names sorted lexicographically.
// Built-in scalars, standard directives and introspection types are omitted.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	return renderSDL(s, false)
}

// renderSDL renders the schema; forParser drops constructs the GraphQL
// prelude of the document validator does not declare.
func renderSDL(s *Schema, forParser bool) string {
	r := &renderer{schema: s, forParser: forParser}
	b := &r.b

	if s.Description != "" && !forParser {
		renderDescription(b, "", s.Description)
	}
	b.WriteString("schema {\n")
	for _, root := range []struct{ op, name string }{
		{"query", s.QueryType},
		{"mutation", s.MutationType},
		{"subscription", s.SubscriptionType},
	} {
		if root.name != "" {
			b.WriteString("  " + root.op + ": " + root.name + "\n")
		}
	}
	b.WriteString("}\n\n")

	for _, name := range sortedKeys(s.Types) {
		if IsBuiltinType(name) {
			continue
		}
		typ := s.Types[name]
		switch typ.Kind {
		case TypeKindScalar:
			r.renderScalar(typ)
		case TypeKindEnum:
			r.renderEnum(typ)
		case TypeKindInputObject:
			r.renderInputObject(typ)
		case TypeKindObject:
			r.renderComposite("type", typ)
		case TypeKindInterface:
			r.renderComposite("interface", typ)
		case TypeKindUnion:
			r.renderUnion(typ)
		}
	}

	for _, name := range sortedKeys(s.Directives) {
		if IsBuiltinDirective(name) {
			continue
		}
		r.renderDirective(s.Directives[name])
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// ValueLiteral renders value as a GraphQL literal of type typ, as used for
// default values in SDL and introspection.
func ValueLiteral(s *Schema, value any, typ *TypeRef) string {
	r := &renderer{schema: s}
	return r.renderValue(value, typ)
}

type renderer struct {
	b         strings.Builder
	schema    *Schema
	forParser bool
}

// ----- render helpers -----

func renderDescription(b *strings.Builder, indent, desc string) {
	if desc == "" {
		return
	}
	b.WriteString(indent)
	b.WriteString("\"\"\"\n")
	for _, line := range strings.Split(strings.ReplaceAll(desc, `"""`, `\"""`), "\n") {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(indent)
	b.WriteString("\"\"\"\n")
}

func renderDeprecation(b *strings.Builder, deprecated bool, reason string) {
	if !deprecated {
		return
	}
	b.WriteString(" @deprecated")
	if reason != "" && reason != DefaultDeprecationReason {
		b.WriteString("(reason: ")
		b.WriteString(strconv.Quote(reason))
		b.WriteString(")")
	}
}

func (r *renderer) renderScalar(typ *Type) {
	b := &r.b
	renderDescription(b, "", typ.Description)
	b.WriteString("scalar ")
	b.WriteString(typ.Name)
	if typ.SpecifiedByURL != nil {
		b.WriteString(" @specifiedBy(url: ")
		b.WriteString(strconv.Quote(*typ.SpecifiedByURL))
		b.WriteString(")")
	}
	b.WriteString("\n\n")
}

func (r *renderer) renderEnum(typ *Type) {
	b := &r.b
	renderDescription(b, "", typ.Description)
	b.WriteString("enum ")
	b.WriteString(typ.Name)
	b.WriteString(" {\n")
	for _, val := range typ.EnumValues {
		renderDescription(b, "  ", val.Description)
		b.WriteString("  ")
		b.WriteString(val.Name)
		renderDeprecation(b, val.IsDeprecated, val.DeprecationReason)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func (r *renderer) renderInputObject(typ *Type) {
	b := &r.b
	renderDescription(b, "", typ.Description)
	b.WriteString("input ")
	b.WriteString(typ.Name)
	if typ.OneOf && !r.forParser {
		b.WriteString(" @oneOf")
	}
	b.WriteString(" {\n")
	for _, field := range typ.InputFields {
		renderDescription(b, "  ", field.Description)
		b.WriteString("  ")
		r.renderInputValue(field)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func (r *renderer) renderComposite(keyword string, typ *Type) {
	b := &r.b
	renderDescription(b, "", typ.Description)
	b.WriteString(keyword)
	b.WriteString(" ")
	b.WriteString(typ.Name)
	if len(typ.Interfaces) > 0 {
		b.WriteString(" implements ")
		b.WriteString(strings.Join(typ.Interfaces, " & "))
	}
	b.WriteString(" {\n")
	for _, field := range typ.Fields {
		if strings.HasPrefix(field.Name, "__") {
			continue
		}
		r.renderField(field)
	}
	b.WriteString("}\n\n")
}

func (r *renderer) renderUnion(typ *Type) {
	b := &r.b
	renderDescription(b, "", typ.Description)
	b.WriteString("union ")
	b.WriteString(typ.Name)
	b.WriteString(" = ")
	b.WriteString(strings.Join(typ.PossibleTypes, " | "))
	b.WriteString("\n\n")
}

func (r *renderer) renderField(field *Field) {
	b := &r.b
	renderDescription(b, "  ", field.Description)
	b.WriteString("  ")
	b.WriteString(field.Name)
	r.renderArguments(field.Arguments)
	b.WriteString(": ")
	b.WriteString(renderTypeRef(field.Type))
	renderDeprecation(b, field.IsDeprecated, field.DeprecationReason)
	b.WriteString("\n")
}

func (r *renderer) renderArguments(args []*InputValue) {
	if len(args) == 0 {
		return
	}
	b := &r.b
	b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		r.renderInputValue(arg)
	}
	b.WriteString(")")
}

func (r *renderer) renderInputValue(v *InputValue) {
	b := &r.b
	b.WriteString(v.Name)
	b.WriteString(": ")
	b.WriteString(renderTypeRef(v.Type))
	if v.HasDefault() {
		b.WriteString(" = ")
		b.WriteString(r.renderValue(v.DefaultValue, v.Type))
	}
	renderDeprecation(b, v.IsDeprecated, v.DeprecationReason)
}

func (r *renderer) renderDirective(directive *Directive) {
	b := &r.b
	renderDescription(b, "", directive.Description)
	b.WriteString("directive @")
	b.WriteString(directive.Name)
	r.renderArguments(directive.Arguments)
	if directive.IsRepeatable {
		b.WriteString(" repeatable")
	}
	b.WriteString(" on ")
	b.WriteString(strings.Join(directive.Locations, " | "))
	b.WriteString("\n\n")
}

func renderTypeRef(typeRef *TypeRef) string {
	if typeRef == nil {
		return ""
	}

	switch typeRef.Kind {
	case TypeRefKindNamed:
		return typeRef.Named
	case TypeRefKindList:
		return "[" + renderTypeRef(typeRef.OfType) + "]"
	case TypeRefKindNonNull:
		return renderTypeRef(typeRef.OfType) + "!"
	default:
		return ""
	}
}

// renderValue renders a default value in GraphQL literal syntax. The type is
// used to print enum members unquoted and to order input object fields.
func (r *renderer) renderValue(value any, typ *TypeRef) string {
	if value == nil {
		return "null"
	}
	if typ != nil && typ.Kind == TypeRefKindNonNull {
		return r.renderValue(value, typ.OfType)
	}
	var named *Type
	if typ != nil && typ.Kind == TypeRefKindNamed {
		named = r.schema.Types[typ.Named]
	}

	if typ != nil && typ.Kind == TypeRefKindList {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			// single values coerce to one-element lists
			return r.renderValue(value, typ.OfType)
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = r.renderValue(rv.Index(i).Interface(), typ.OfType)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}

	switch v := value.(type) {
	case string:
		if named != nil && named.Kind == TypeKindEnum {
			return v
		}
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = r.renderValue(item, nil)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		var parts []string
		if named != nil && named.Kind == TypeKindInputObject {
			for _, f := range named.InputFields {
				if fv, ok := v[f.Name]; ok {
					parts = append(parts, f.Name+": "+r.renderValue(fv, f.Type))
				}
			}
		} else {
			for _, k := range sortedKeys(v) {
				parts = append(parts, k+": "+r.renderValue(v[k], nil))
			}
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}
