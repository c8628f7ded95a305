package schema

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	language "github.com/hanpama/gqlengine/internal/language"
)

// Bindings attaches runtime behavior to an SDL-defined schema. Field keys
// use the "Type.field" notation.
type Bindings struct {
	Resolvers     map[string]Resolver
	Subscribers   map[string]Subscriber
	TypeResolvers map[string]TypeResolver
	IsTypeOf      map[string]IsTypeOfFunc
	Scalars       map[string]ScalarCodec
	// EnumValues maps enum name to member name to internal value.
	EnumValues map[string]map[string]any
}

// BuildFromSDL parses schema definition language sources and binds them to
// runtime behavior. Fields without a resolver binding use PropertyResolver.
// Custom scalars without a codec pass values through, except DateTime and
// Duration which default to the standard codecs.
func BuildFromSDL(bindings Bindings, sources ...*language.Source) (*Schema, error) {
	doc, err := language.LoadSchema(sources...)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	b := NewBuilder()
	if doc.Query != nil {
		b.SetQueryType(doc.Query.Name)
	}
	if doc.Mutation != nil {
		b.SetMutationType(doc.Mutation.Name)
	}
	if doc.Subscription != nil {
		b.SetSubscriptionType(doc.Subscription.Name)
	}

	standard := StandardScalars()
	for _, def := range orderedDefinitions(doc) {
		t := typeFromDefinition(def)
		if t.Kind == TypeKindScalar {
			if codec, ok := bindings.Scalars[t.Name]; ok {
				t.Codec = codec
			} else if codec, ok := standard[t.Name]; ok {
				t.Codec = codec
			}
		}
		b.AddType(t)
	}
	for _, d := range doc.Directives {
		if IsBuiltinDirective(d.Name) {
			continue
		}
		b.AddDirective(directiveFromDefinition(d))
	}

	if err := applyBindings(b, bindings); err != nil {
		return nil, err
	}
	return b.Build()
}

// LoadSDL is BuildFromSDL for a single named document.
func LoadSDL(name, sdl string, bindings Bindings) (*Schema, error) {
	return BuildFromSDL(bindings, &language.Source{Name: name, Input: sdl})
}

// orderedDefinitions returns the user-defined types in source order.
func orderedDefinitions(doc *language.Schema) []*language.Definition {
	defs := make([]*language.Definition, 0, len(doc.Types))
	for _, def := range doc.Types {
		if def.BuiltIn || strings.HasPrefix(def.Name, "__") {
			continue
		}
		defs = append(defs, def)
	}
	sortDefinitions(defs)
	return defs
}

func sortDefinitions(defs []*language.Definition) {
	slices.SortFunc(defs, func(a, b *language.Definition) int {
		pa, pb := a.Position, b.Position
		if pa == nil || pb == nil || pa.Src == nil || pb.Src == nil {
			return strings.Compare(a.Name, b.Name)
		}
		return cmp.Or(
			strings.Compare(pa.Src.Name, pb.Src.Name),
			cmp.Compare(pa.Start, pb.Start),
			strings.Compare(a.Name, b.Name),
		)
	})
}

func typeFromDefinition(def *language.Definition) *Type {
	t := &Type{Name: def.Name, Description: def.Description}
	switch def.Kind {
	case language.Scalar:
		t.Kind = TypeKindScalar
		if d := def.Directives.ForName("specifiedBy"); d != nil {
			if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
				url := arg.Value.Raw
				t.SpecifiedByURL = &url
			}
		}
	case language.Object, language.Interface:
		t.Kind = TypeKindObject
		if def.Kind == language.Interface {
			t.Kind = TypeKindInterface
		}
		t.Interfaces = append(t.Interfaces, def.Interfaces...)
		for _, fd := range def.Fields {
			if strings.HasPrefix(fd.Name, "__") {
				continue
			}
			f := &Field{Name: fd.Name, Description: fd.Description, Type: TypeRefFromAST(fd.Type)}
			for _, ad := range fd.Arguments {
				f.Arguments = append(f.Arguments, inputValueFromAST(ad.Name, ad.Description, ad.Type, ad.DefaultValue, ad.Directives))
			}
			f.IsDeprecated, f.DeprecationReason = deprecation(fd.Directives)
			t.Fields = append(t.Fields, f)
		}
	case language.Union:
		t.Kind = TypeKindUnion
		t.PossibleTypes = append(t.PossibleTypes, def.Types...)
	case language.Enum:
		t.Kind = TypeKindEnum
		for _, ev := range def.EnumValues {
			v := &EnumValue{Name: ev.Name, Description: ev.Description}
			v.IsDeprecated, v.DeprecationReason = deprecation(ev.Directives)
			t.EnumValues = append(t.EnumValues, v)
		}
	case language.InputObject:
		t.Kind = TypeKindInputObject
		t.OneOf = def.Directives.ForName("oneOf") != nil
		for _, fd := range def.Fields {
			t.InputFields = append(t.InputFields, inputValueFromAST(fd.Name, fd.Description, fd.Type, fd.DefaultValue, fd.Directives))
		}
	}
	return t
}

func inputValueFromAST(name, desc string, typ *language.Type, def *language.Value, directives language.DirectiveList) *InputValue {
	v := &InputValue{Name: name, Description: desc, Type: TypeRefFromAST(typ)}
	if def != nil {
		// constant values never reference variables
		v.DefaultValue, _ = def.Value(nil)
	}
	v.IsDeprecated, v.DeprecationReason = deprecation(directives)
	return v
}

func deprecation(directives language.DirectiveList) (bool, string) {
	d := directives.ForName("deprecated")
	if d == nil {
		return false, ""
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return true, arg.Value.Raw
	}
	return true, DefaultDeprecationReason
}

func directiveFromDefinition(d *language.DirectiveDefinition) *Directive {
	out := &Directive{Name: d.Name, Description: d.Description, IsRepeatable: d.IsRepeatable}
	for _, loc := range d.Locations {
		out.Locations = append(out.Locations, string(loc))
	}
	for _, ad := range d.Arguments {
		out.Arguments = append(out.Arguments, inputValueFromAST(ad.Name, ad.Description, ad.Type, ad.DefaultValue, ad.Directives))
	}
	return out
}

func applyBindings(b *Builder, bindings Bindings) error {
	var errs []error
	lookupField := func(kind, key string) *Field {
		typeName, fieldName, ok := strings.Cut(key, ".")
		if !ok {
			errs = append(errs, fmt.Errorf("%s binding %q must use Type.field notation", kind, key))
			return nil
		}
		t := b.Type(typeName)
		if t == nil {
			errs = append(errs, fmt.Errorf("%s binding %q: unknown type %q", kind, key, typeName))
			return nil
		}
		f := t.Field(fieldName)
		if f == nil {
			errs = append(errs, fmt.Errorf("%s binding %q: type %s has no field %q", kind, key, typeName, fieldName))
		}
		return f
	}
	lookupType := func(kind, name string, kinds ...TypeKind) *Type {
		t := b.Type(name)
		if t == nil {
			errs = append(errs, fmt.Errorf("%s binding: unknown type %q", kind, name))
			return nil
		}
		for _, k := range kinds {
			if t.Kind == k {
				return t
			}
		}
		errs = append(errs, fmt.Errorf("%s binding: %s is %s", kind, name, t.Kind))
		return nil
	}

	for _, key := range sortedKeys(bindings.Resolvers) {
		if f := lookupField("resolver", key); f != nil {
			f.Resolver = bindings.Resolvers[key]
		}
	}
	for _, key := range sortedKeys(bindings.Subscribers) {
		if f := lookupField("subscriber", key); f != nil {
			f.Subscriber = bindings.Subscribers[key]
		}
	}
	for _, name := range sortedKeys(bindings.TypeResolvers) {
		if t := lookupType("type resolver", name, TypeKindInterface, TypeKindUnion); t != nil {
			t.ResolveType = bindings.TypeResolvers[name]
		}
	}
	for _, name := range sortedKeys(bindings.IsTypeOf) {
		if t := lookupType("isTypeOf", name, TypeKindObject); t != nil {
			t.IsTypeOf = bindings.IsTypeOf[name]
		}
	}
	for _, name := range sortedKeys(bindings.Scalars) {
		lookupType("scalar", name, TypeKindScalar)
	}
	for _, name := range sortedKeys(bindings.EnumValues) {
		t := lookupType("enum", name, TypeKindEnum)
		if t == nil {
			continue
		}
		for member, value := range bindings.EnumValues[name] {
			ev := t.EnumValue(member)
			if ev == nil {
				errs = append(errs, fmt.Errorf("enum binding: %s has no value %q", name, member))
				continue
			}
			ev.Value = value
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid bindings: %w", errors.Join(errs...))
	}
	return nil
}
