package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	language "github.com/hanpama/gqlengine/internal/language"
)

// Builder assembles a Schema programmatically. Builder methods record
// problems instead of failing immediately; Build reports all of them.
type Builder struct {
	schema *Schema
	order  []string // type declaration order
	errs   []error
}

// NewBuilder returns a builder pre-populated with the built-in scalars and
// the standard directives.
func NewBuilder() *Builder {
	b := &Builder{schema: &Schema{
		Types:      make(map[string]*Type),
		Directives: make(map[string]*Directive),
	}}
	for _, t := range builtinScalars() {
		b.AddType(t)
	}
	for _, d := range builtinDirectives() {
		b.schema.Directives[d.Name] = d
	}
	return b
}

// NewBuilderFrom returns a builder seeded with a copy of an existing schema,
// so that the copy can be extended without touching s.
func NewBuilderFrom(s *Schema) *Builder {
	b := &Builder{schema: &Schema{
		QueryType:        s.QueryType,
		MutationType:     s.MutationType,
		SubscriptionType: s.SubscriptionType,
		Description:      s.Description,
		Types:            make(map[string]*Type, len(s.Types)),
		Directives:       make(map[string]*Directive, len(s.Directives)),
	}}
	for _, name := range s.TypeNames() {
		t := cloneType(s.Types[name])
		b.schema.Types[name] = t
		b.order = append(b.order, name)
	}
	for name, d := range s.Directives {
		b.schema.Directives[name] = d
	}
	return b
}

func (b *Builder) SetQueryType(name string) *Builder {
	b.schema.QueryType = name
	return b
}

func (b *Builder) SetMutationType(name string) *Builder {
	b.schema.MutationType = name
	return b
}

func (b *Builder) SetSubscriptionType(name string) *Builder {
	b.schema.SubscriptionType = name
	return b
}

func (b *Builder) SetDescription(desc string) *Builder {
	b.schema.Description = desc
	return b
}

// AddType registers a named type. Names are unique across all kinds.
func (b *Builder) AddType(t *Type) *Builder {
	if t == nil || t.Name == "" {
		b.errs = append(b.errs, errors.New("type must have a name"))
		return b
	}
	if _, exists := b.schema.Types[t.Name]; exists {
		b.errs = append(b.errs, fmt.Errorf("type %q is defined more than once", t.Name))
		return b
	}
	b.schema.Types[t.Name] = t
	b.order = append(b.order, t.Name)
	return b
}

// Type returns a registered type for further modification before Build.
func (b *Builder) Type(name string) *Type { return b.schema.Types[name] }

func (b *Builder) AddDirective(d *Directive) *Builder {
	if _, exists := b.schema.Directives[d.Name]; exists {
		b.errs = append(b.errs, fmt.Errorf("directive @%s is defined more than once", d.Name))
		return b
	}
	b.schema.Directives[d.Name] = d
	return b
}

// Build validates the collected definitions and returns an immutable schema.
// Every type reference must resolve (closed world), wrappers must be well
// formed and each position must use a type of the right kind.
func (b *Builder) Build() (*Schema, error) {
	src := b.schema
	s := &Schema{
		QueryType:        src.QueryType,
		MutationType:     src.MutationType,
		SubscriptionType: src.SubscriptionType,
		Description:      src.Description,
		Types:            make(map[string]*Type, len(src.Types)),
		Directives:       make(map[string]*Directive, len(src.Directives)),
	}
	for _, name := range b.order {
		s.Types[name] = cloneType(src.Types[name])
	}
	for name, d := range src.Directives {
		s.Directives[name] = d
	}

	errs := append([]error(nil), b.errs...)
	errs = append(errs, checkRoots(s)...)
	for _, name := range b.order {
		errs = append(errs, checkType(s, s.Types[name])...)
	}
	for _, name := range sortedKeys(s.Directives) {
		d := s.Directives[name]
		for _, arg := range d.Arguments {
			errs = append(errs, checkInputRef(s, fmt.Sprintf("@%s(%s:)", d.Name, arg.Name), arg.Type)...)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid schema: %w", errors.Join(errs...))
	}

	s.order = append([]string(nil), b.order...)
	computePossibleTypes(s, b.order)
	bindDefaultResolvers(s)

	doc, err := language.LoadSchema(&language.Source{Name: "schema.graphql", Input: renderSDL(s, true)})
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	s.document = doc
	return s, nil
}

func checkRoots(s *Schema) []error {
	var errs []error
	if s.QueryType == "" {
		errs = append(errs, errors.New("query root type is required"))
	}
	for _, root := range []struct{ op, name string }{
		{"query", s.QueryType},
		{"mutation", s.MutationType},
		{"subscription", s.SubscriptionType},
	} {
		if root.name == "" {
			continue
		}
		t := s.Types[root.name]
		if t == nil {
			errs = append(errs, fmt.Errorf("%s root type %q is not defined", root.op, root.name))
		} else if t.Kind != TypeKindObject {
			errs = append(errs, fmt.Errorf("%s root type %q must be an object type", root.op, root.name))
		}
	}
	return errs
}

func checkType(s *Schema, t *Type) []error {
	var errs []error
	switch t.Kind {
	case TypeKindObject, TypeKindInterface:
		if len(t.Fields) == 0 {
			errs = append(errs, fmt.Errorf("%s %q must define at least one field", strings.ToLower(string(t.Kind)), t.Name))
		}
		seen := make(map[string]bool, len(t.Fields))
		for _, f := range t.Fields {
			where := t.Name + "." + f.Name
			if seen[f.Name] {
				errs = append(errs, fmt.Errorf("field %s is defined more than once", where))
			}
			seen[f.Name] = true
			errs = append(errs, checkOutputRef(s, where, f.Type)...)
			for _, arg := range f.Arguments {
				errs = append(errs, checkInputRef(s, fmt.Sprintf("%s(%s:)", where, arg.Name), arg.Type)...)
			}
		}
		for _, name := range t.Interfaces {
			iface := s.Types[name]
			if iface == nil {
				errs = append(errs, fmt.Errorf("%s implements undefined interface %q", t.Name, name))
				continue
			}
			if iface.Kind != TypeKindInterface {
				errs = append(errs, fmt.Errorf("%s implements %q, which is not an interface", t.Name, name))
				continue
			}
			for _, f := range iface.Fields {
				if t.Field(f.Name) == nil {
					errs = append(errs, fmt.Errorf("%s must define field %q required by interface %s", t.Name, f.Name, name))
				}
			}
		}
	case TypeKindUnion:
		if len(t.PossibleTypes) == 0 {
			errs = append(errs, fmt.Errorf("union %q must have at least one member", t.Name))
		}
		for _, name := range t.PossibleTypes {
			member := s.Types[name]
			if member == nil {
				errs = append(errs, fmt.Errorf("union %s references undefined type %q", t.Name, name))
			} else if member.Kind != TypeKindObject {
				errs = append(errs, fmt.Errorf("union %s member %q must be an object type", t.Name, name))
			}
		}
	case TypeKindEnum:
		if len(t.EnumValues) == 0 {
			errs = append(errs, fmt.Errorf("enum %q must define at least one value", t.Name))
		}
	case TypeKindInputObject:
		if len(t.InputFields) == 0 {
			errs = append(errs, fmt.Errorf("input %q must define at least one field", t.Name))
		}
		for _, f := range t.InputFields {
			where := t.Name + "." + f.Name
			errs = append(errs, checkInputRef(s, where, f.Type)...)
			if t.OneOf && (f.Type.IsNonNull() || f.HasDefault()) {
				errs = append(errs, fmt.Errorf("oneOf input field %s must be nullable without a default", where))
			}
		}
	case TypeKindScalar:
	default:
		errs = append(errs, fmt.Errorf("type %q has unknown kind %q", t.Name, t.Kind))
	}
	return errs
}

func checkOutputRef(s *Schema, where string, ref *TypeRef) []error {
	named, errs := checkRef(s, where, ref)
	if named != nil && !named.IsOutput() {
		errs = append(errs, fmt.Errorf("%s: %s is an input type and cannot be used as an output", where, named.Name))
	}
	return errs
}

func checkInputRef(s *Schema, where string, ref *TypeRef) []error {
	named, errs := checkRef(s, where, ref)
	if named != nil && !named.IsInput() {
		errs = append(errs, fmt.Errorf("%s: %s is an output type and cannot be used as an input", where, named.Name))
	}
	return errs
}

func checkRef(s *Schema, where string, ref *TypeRef) (*Type, []error) {
	for cur := ref; ; cur = cur.OfType {
		if cur == nil {
			return nil, []error{fmt.Errorf("%s: missing type reference", where)}
		}
		switch cur.Kind {
		case TypeRefKindNonNull:
			if cur.OfType != nil && cur.OfType.Kind == TypeRefKindNonNull {
				return nil, []error{fmt.Errorf("%s: non-null cannot wrap another non-null type", where)}
			}
		case TypeRefKindList:
		case TypeRefKindNamed:
			t := s.Types[cur.Named]
			if t == nil {
				return nil, []error{fmt.Errorf("%s: unknown type %q", where, cur.Named)}
			}
			return t, nil
		default:
			return nil, []error{fmt.Errorf("%s: invalid type reference kind %q", where, cur.Kind)}
		}
	}
}

func computePossibleTypes(s *Schema, order []string) {
	for _, name := range order {
		if t := s.Types[name]; t.Kind == TypeKindInterface {
			t.PossibleTypes = nil
		}
	}
	for _, name := range order {
		t := s.Types[name]
		if t.Kind != TypeKindObject {
			continue
		}
		for _, iface := range t.Interfaces {
			it := s.Types[iface]
			it.PossibleTypes = append(it.PossibleTypes, t.Name)
		}
	}
}

func bindDefaultResolvers(s *Schema) {
	for _, t := range s.Types {
		for _, f := range t.Fields {
			if f.Resolver == nil {
				f.Resolver = PropertyResolver{}
			}
			_, isProperty := f.Resolver.(PropertyResolver)
			f.Async = !isProperty
		}
	}
}

func cloneType(t *Type) *Type {
	c := *t
	c.Fields = make([]*Field, len(t.Fields))
	for i, f := range t.Fields {
		fc := *f
		c.Fields[i] = &fc
	}
	c.Interfaces = append([]string(nil), t.Interfaces...)
	c.PossibleTypes = append([]string(nil), t.PossibleTypes...)
	c.EnumValues = append([]*EnumValue(nil), t.EnumValues...)
	c.InputFields = append([]*InputValue(nil), t.InputFields...)
	return &c
}

// ----- constructors -----

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func NewObject(name string, fields ...*Field) *Type {
	return &Type{Name: name, Kind: TypeKindObject, Fields: fields}
}

func NewInterface(name string, fields ...*Field) *Type {
	return &Type{Name: name, Kind: TypeKindInterface, Fields: fields}
}

func NewUnion(name string, members ...string) *Type {
	return &Type{Name: name, Kind: TypeKindUnion, PossibleTypes: members}
}

func NewEnum(name string, values ...string) *Type {
	t := &Type{Name: name, Kind: TypeKindEnum}
	for _, v := range values {
		t.AddEnumValue(&EnumValue{Name: v})
	}
	return t
}

func NewScalar(name string, codec ScalarCodec) *Type {
	return &Type{Name: name, Kind: TypeKindScalar, Codec: codec}
}

func NewInputObject(name string, fields ...*InputValue) *Type {
	return &Type{Name: name, Kind: TypeKindInputObject, InputFields: fields}
}

func (t *Type) AddField(f *Field) *Type {
	t.Fields = append(t.Fields, f)
	return t
}

func (t *Type) AddInterface(name string) *Type {
	t.Interfaces = append(t.Interfaces, name)
	return t
}

func (t *Type) AddPossibleType(name string) *Type {
	t.PossibleTypes = append(t.PossibleTypes, name)
	return t
}

func (t *Type) AddEnumValue(v *EnumValue) *Type {
	t.EnumValues = append(t.EnumValues, v)
	return t
}

func (t *Type) AddInputField(v *InputValue) *Type {
	t.InputFields = append(t.InputFields, v)
	return t
}

func NewField(name string, typ *TypeRef, description string) *Field {
	return &Field{Name: name, Type: typ, Description: description}
}

func (f *Field) AddArgument(arg *InputValue) *Field {
	f.Arguments = append(f.Arguments, arg)
	return f
}

func (f *Field) WithResolver(r Resolver) *Field {
	f.Resolver = r
	return f
}

// WithResolverFunc binds fn as the field resolver.
func (f *Field) WithResolverFunc(fn func(ctx context.Context, p ResolveParams) (any, error)) *Field {
	f.Resolver = ResolverFunc(fn)
	return f
}

func (f *Field) WithSubscriber(sub Subscriber) *Field {
	f.Subscriber = sub
	return f
}

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

func NewInputValue(name string, typ *TypeRef, description string) *InputValue {
	return &InputValue{Name: name, Type: typ, Description: description}
}

func (v *InputValue) WithDefault(value any) *InputValue {
	v.DefaultValue = value
	return v
}
