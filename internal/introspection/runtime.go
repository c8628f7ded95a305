package introspection

import (
	"context"
	"slices"
	"strings"

	executor "github.com/hanpama/gqlengine/internal/executor"
	schema "github.com/hanpama/gqlengine/internal/schema"
)

// Wrapper holds the runtime and the extended schema that an executor must
// be built with for introspection queries to work.
type Wrapper struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap returns a Runtime that answers the introspection fields and delegates
// everything else to base. The given schema is not modified.
func Wrap(base executor.Runtime, sch *schema.Schema) (*Wrapper, error) {
	extended, err := extend(sch)
	if err != nil {
		return nil, err
	}
	return &Wrapper{
		Runtime: &runtime{base: base, schema: extended},
		Schema:  extended,
	}, nil
}

// Executor is a convenience for NewExecutor over the wrapped schema and
// runtime.
func (w *Wrapper) Executor(opts ...executor.Option) *executor.Executor {
	opts = append([]executor.Option{executor.WithRuntime(w.Runtime)}, opts...)
	return executor.NewExecutor(w.Schema, opts...)
}

type runtime struct {
	base   executor.Runtime
	schema *schema.Schema
}

func (r *runtime) Resolve(ctx context.Context, field *schema.Field, p schema.ResolveParams) (any, error) {
	name := field.Name
	switch src := p.Source.(type) {
	case *schema.Schema:
		if v, ok := r.resolveSchemaField(src, name); ok {
			return v, nil
		}
	case *schema.Type:
		if v, ok := r.resolveTypeField(src, name, p.Args); ok {
			return v, nil
		}
	case *schema.TypeRef:
		if v, ok := r.resolveWrapperField(src, name); ok {
			return v, nil
		}
	case *schema.Field:
		if v, ok := r.resolveFieldField(src, name, p.Args); ok {
			return v, nil
		}
	case *schema.InputValue:
		if v, ok := r.resolveInputValueField(src, name); ok {
			return v, nil
		}
	case *schema.EnumValue:
		if v, ok := resolveEnumValueField(src, name); ok {
			return v, nil
		}
	case *schema.Directive:
		if v, ok := resolveDirectiveField(src, name, p.Args); ok {
			return v, nil
		}
	}

	if p.Info.ParentType != nil && p.Info.ParentType.Name == r.schema.QueryType {
		switch name {
		case "__schema":
			return r.schema, nil
		case "__type":
			typeName, _ := p.Args["name"].(string)
			if t := r.schema.Type(typeName); t != nil {
				return t, nil
			}
			return nil, nil
		}
	}

	return r.base.Resolve(ctx, field, p)
}

func (r *runtime) ResolveType(ctx context.Context, abstractType *schema.Type, value any) (string, error) {
	return r.base.ResolveType(ctx, abstractType, value)
}

func (r *runtime) SerializeLeafValue(ctx context.Context, leafType *schema.Type, value any) (any, error) {
	return r.base.SerializeLeafValue(ctx, leafType, value)
}

// --- helpers ---

// typeValue maps a reference to the value an __Type field resolves to:
// the named type itself, or the wrapper for LIST and NON_NULL.
func (r *runtime) typeValue(ref *schema.TypeRef) any {
	if ref == nil {
		return nil
	}
	if ref.Kind == schema.TypeRefKindNamed {
		if t := r.schema.Type(ref.Named); t != nil {
			return t
		}
		return nil
	}
	return ref
}

func (r *runtime) typesByName(names []string) []*schema.Type {
	out := make([]*schema.Type, 0, len(names))
	for _, name := range names {
		if t := r.schema.Type(name); t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (r *runtime) resolveSchemaField(sch *schema.Schema, field string) (any, bool) {
	switch field {
	case "description":
		return optional(sch.Description), true
	case "types":
		names := sch.TypeNames()
		slices.Sort(names)
		return r.typesByName(names), true
	case "queryType":
		return sch.GetQueryType(), true
	case "mutationType":
		return nilIfAbsent(sch.GetMutationType()), true
	case "subscriptionType":
		return nilIfAbsent(sch.GetSubscriptionType()), true
	case "directives":
		names := make([]string, 0, len(sch.Directives))
		for name := range sch.Directives {
			names = append(names, name)
		}
		slices.Sort(names)
		out := make([]*schema.Directive, len(names))
		for i, name := range names {
			out[i] = sch.Directives[name]
		}
		return out, true
	}
	return nil, false
}

func (r *runtime) resolveTypeField(t *schema.Type, field string, args map[string]any) (any, bool) {
	switch field {
	case "kind":
		return string(t.Kind), true
	case "name":
		return t.Name, true
	case "description":
		return optional(t.Description), true
	case "specifiedByURL":
		if t.Kind != schema.TypeKindScalar || t.SpecifiedByURL == nil {
			return nil, true
		}
		return *t.SpecifiedByURL, true
	case "fields":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, true
		}
		out := []*schema.Field{}
		for _, f := range t.Fields {
			if strings.HasPrefix(f.Name, "__") || (f.IsDeprecated && !boolArg(args, "includeDeprecated")) {
				continue
			}
			out = append(out, f)
		}
		return out, true
	case "interfaces":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, true
		}
		return r.typesByName(t.Interfaces), true
	case "possibleTypes":
		if !t.IsAbstract() {
			return nil, true
		}
		return r.typesByName(t.PossibleTypes), true
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil, true
		}
		out := []*schema.EnumValue{}
		for _, ev := range t.EnumValues {
			if ev.IsDeprecated && !boolArg(args, "includeDeprecated") {
				continue
			}
			out = append(out, ev)
		}
		return out, true
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil, true
		}
		return filterInputValues(t.InputFields, args), true
	case "ofType":
		return nil, true
	case "isOneOf":
		if t.Kind != schema.TypeKindInputObject {
			return nil, true
		}
		return t.OneOf, true
	}
	return nil, false
}

// resolveWrapperField answers __Type fields for LIST and NON_NULL wrappers.
func (r *runtime) resolveWrapperField(ref *schema.TypeRef, field string) (any, bool) {
	if ref.Kind == schema.TypeRefKindNamed {
		if t := r.schema.Type(ref.Named); t != nil {
			return r.resolveTypeField(t, field, nil)
		}
		return nil, true
	}
	switch field {
	case "kind":
		return string(ref.Kind), true
	case "ofType":
		return r.typeValue(ref.OfType), true
	}
	return nil, true
}

func (r *runtime) resolveFieldField(f *schema.Field, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return f.Name, true
	case "description":
		return optional(f.Description), true
	case "args":
		return filterInputValues(f.Arguments, args), true
	case "type":
		return r.typeValue(f.Type), true
	case "isDeprecated":
		return f.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(f.IsDeprecated, f.DeprecationReason), true
	}
	return nil, false
}

func (r *runtime) resolveInputValueField(v *schema.InputValue, field string) (any, bool) {
	switch field {
	case "name":
		return v.Name, true
	case "description":
		return optional(v.Description), true
	case "type":
		return r.typeValue(v.Type), true
	case "defaultValue":
		if !v.HasDefault() {
			return nil, true
		}
		return schema.ValueLiteral(r.schema, v.DefaultValue, v.Type), true
	case "isDeprecated":
		return v.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(v.IsDeprecated, v.DeprecationReason), true
	}
	return nil, false
}

func resolveEnumValueField(ev *schema.EnumValue, field string) (any, bool) {
	switch field {
	case "name":
		return ev.Name, true
	case "description":
		return optional(ev.Description), true
	case "isDeprecated":
		return ev.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(ev.IsDeprecated, ev.DeprecationReason), true
	}
	return nil, false
}

func resolveDirectiveField(d *schema.Directive, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return d.Name, true
	case "description":
		return optional(d.Description), true
	case "isRepeatable":
		return d.IsRepeatable, true
	case "locations":
		return append([]string{}, d.Locations...), true
	case "args":
		return filterInputValues(d.Arguments, args), true
	}
	return nil, false
}

func filterInputValues(values []*schema.InputValue, args map[string]any) []*schema.InputValue {
	out := []*schema.InputValue{}
	for _, v := range values {
		if v.IsDeprecated && !boolArg(args, "includeDeprecated") {
			continue
		}
		out = append(out, v)
	}
	return out
}

func deprecationReason(deprecated bool, reason string) any {
	if !deprecated {
		return nil
	}
	if reason == "" {
		return schema.DefaultDeprecationReason
	}
	return reason
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nilIfAbsent keeps a missing root type from turning into a typed nil.
func nilIfAbsent(t *schema.Type) any {
	if t == nil {
		return nil
	}
	return t
}

func boolArg(args map[string]any, name string) bool {
	b, _ := args[name].(bool)
	return b
}
