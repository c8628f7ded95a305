package schema

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	language "github.com/hanpama/gqlengine/internal/language"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Resolver produces the raw value of a field. Implementations must be safe
// for concurrent use; the executor may call a resolver from several
// goroutines for sibling fields and list items.
type Resolver interface {
	Resolve(ctx context.Context, p ResolveParams) (any, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, p ResolveParams) (any, error)

func (f ResolverFunc) Resolve(ctx context.Context, p ResolveParams) (any, error) { return f(ctx, p) }

// ResolveParams carries the inputs of a single field resolution.
type ResolveParams struct {
	Source any            // parent object value (root value for root fields)
	Args   map[string]any // coerced argument values
	Info   ResolveInfo
}

// ResolveInfo describes the field being resolved.
type ResolveInfo struct {
	FieldName  string
	Path       language.Path
	ParentType *Type
	ReturnType *TypeRef
	Schema     *Schema
	Operation  *language.OperationDefinition
	Fields     []*language.Field
	Variables  map[string]any
}

// Subscriber produces the event stream of a root subscription field. The
// returned channel is closed by the producer when the stream ends; producers
// must stop sending once ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, p ResolveParams) (<-chan any, error)
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(ctx context.Context, p ResolveParams) (<-chan any, error)

func (f SubscriberFunc) Subscribe(ctx context.Context, p ResolveParams) (<-chan any, error) {
	return f(ctx, p)
}

// TypeResolver discriminates a value of an interface or union. It returns
// the concrete object type name, or "" when the value is not recognized.
type TypeResolver func(ctx context.Context, value any) (string, error)

// IsTypeOfFunc reports whether value belongs to the object type it is bound to.
type IsTypeOfFunc func(ctx context.Context, value any) bool

// PropertyResolver is the default binding for fields without a custom
// resolver. It looks up the field name on the source value:
//   - map[string]any keys
//   - proto.Message fields by GraphQL name (json name) or proto name
//   - struct fields by `json` tag, then by case-insensitive name
//   - zero-argument methods named like the field, optionally returning an error
type PropertyResolver struct{}

func (PropertyResolver) Resolve(ctx context.Context, p ResolveParams) (any, error) {
	return LookupProperty(p.Source, p.Info.FieldName)
}

// LookupProperty resolves name on source using the default lookup rules.
// Missing properties resolve to nil.
func LookupProperty(source any, name string) (any, error) {
	if source == nil {
		return nil, nil
	}
	switch src := source.(type) {
	case map[string]any:
		return src[name], nil
	case proto.Message:
		return lookupProtoField(src.ProtoReflect(), name), nil
	}

	rv := reflect.ValueOf(source)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	if m, ok := lookupMethod(rv, name); ok {
		return callProperty(m)
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, nil
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, nil
		}
		return v.Interface(), nil
	case reflect.Struct:
		idx, ok := structFieldIndex(rv.Type(), name)
		if !ok {
			return nil, nil
		}
		// A promoted field behind a nil embedded pointer is missing.
		fv, err := rv.FieldByIndexErr(idx)
		if err != nil || !fv.CanInterface() {
			return nil, nil
		}
		return fv.Interface(), nil
	}
	return nil, nil
}

func lookupProtoField(msg protoreflect.Message, name string) any {
	fields := msg.Descriptor().Fields()
	fd := fields.ByJSONName(name)
	if fd == nil {
		fd = fields.ByName(protoreflect.Name(name))
	}
	if fd == nil {
		return nil
	}
	if fd.HasPresence() && !msg.Has(fd) {
		return nil
	}
	return protoValue(fd, msg.Get(fd))
}

func protoValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch {
	case fd.IsList():
		list := v.List()
		out := make([]any, list.Len())
		for i := range out {
			out[i] = protoScalar(fd, list.Get(i))
		}
		return out
	case fd.IsMap():
		out := make(map[string]any, v.Map().Len())
		v.Map().Range(func(k protoreflect.MapKey, mv protoreflect.Value) bool {
			out[k.String()] = protoScalar(fd.MapValue(), mv)
			return true
		})
		return out
	}
	return protoScalar(fd, v)
}

func protoScalar(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return v.Message().Interface()
	case protoreflect.EnumKind:
		if ev := fd.Enum().Values().ByNumber(v.Enum()); ev != nil {
			return string(ev.Name())
		}
		return int32(v.Enum())
	}
	return v.Interface()
}

func lookupMethod(rv reflect.Value, name string) (reflect.Value, bool) {
	if !rv.IsValid() || name == "" {
		return reflect.Value{}, false
	}
	method := strings.ToUpper(name[:1]) + name[1:]
	m := rv.MethodByName(method)
	if !m.IsValid() || m.Type().NumIn() != 0 {
		return reflect.Value{}, false
	}
	switch m.Type().NumOut() {
	case 1:
		return m, true
	case 2:
		if m.Type().Out(1) == errorType {
			return m, true
		}
	}
	return reflect.Value{}, false
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func callProperty(m reflect.Value) (any, error) {
	out := m.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

var structFieldCache sync.Map // map[structFieldKey][]int

type structFieldKey struct {
	t    reflect.Type
	name string
}

func structFieldIndex(t reflect.Type, name string) ([]int, bool) {
	key := structFieldKey{t, name}
	if cached, ok := structFieldCache.Load(key); ok {
		idx := cached.([]int)
		return idx, idx != nil
	}
	idx := findStructField(t, name)
	structFieldCache.Store(key, idx)
	return idx, idx != nil
}

func findStructField(t reflect.Type, name string) []int {
	var byName []int
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == name {
				return f.Index
			}
			if tagName != "" {
				continue
			}
		}
		if byName == nil && strings.EqualFold(f.Name, name) {
			byName = f.Index
		}
	}
	return byName
}

// Typenamer lets values name their own GraphQL object type.
type Typenamer interface {
	GraphQLTypename() string
}

func typenameOf(value any) string {
	switch v := value.(type) {
	case Typenamer:
		return v.GraphQLTypename()
	case map[string]any:
		if name, ok := v["__typename"].(string); ok {
			return name
		}
	case proto.Message:
		return string(v.ProtoReflect().Descriptor().Name())
	}
	return ""
}

func describeValue(value any) string {
	if value == nil {
		return "null"
	}
	return fmt.Sprintf("%T", value)
}
