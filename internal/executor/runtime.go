package executor

import (
	"context"

	schema "github.com/hanpama/gqlengine/internal/schema"
)

// Runtime defines the host integration surface for field resolution,
// abstract type resolution and leaf-value serialization used by the Executor.
//
// General contract
//   - Resolve is invoked once per field instance. Fields with a custom
//     resolver (Field.Async) may be invoked concurrently with their siblings
//     and with other list items; property fields are resolved inline.
//   - Errors returned from any method are converted into located GraphQL
//     errors. If the field's return type is Non-Null, the Executor propagates
//     the null up to the nearest nullable ancestor.
//   - Implementations must be concurrency-safe and must not mutate source or
//     args values.
//   - ctx is the request context. It is cancelled when the client goes away
//     or the deadline passes; long running resolvers should honor it.
//
// Abstract types and leaf values
//   - ResolveType must return the concrete type name for interface/union
//     values, and that name must be a possible type of abstractType.
//   - SerializeLeafValue must coerce scalars and enums into JSON-safe Go
//     values. For enums it returns the member name.
//
// The default runtime dispatches to the bindings stored in the schema.
// Wrappers may decorate it, e.g. to record telemetry around Resolve.
type Runtime interface {
	// Resolve produces the raw value of a field prior to completion.
	// Return (nil, nil) to produce a GraphQL null for nullable fields.
	Resolve(ctx context.Context, field *schema.Field, p schema.ResolveParams) (any, error)

	// ResolveType determines the concrete object type name of a value of an
	// interface or union.
	ResolveType(ctx context.Context, abstractType *schema.Type, value any) (string, error)

	// SerializeLeafValue serializes a scalar or enum value.
	SerializeLeafValue(ctx context.Context, leafType *schema.Type, value any) (any, error)
}

// DefaultRuntime returns the Runtime that dispatches to schema bindings:
// field resolvers, type resolvers with IsTypeOf probing, and scalar codecs.
func DefaultRuntime(s *schema.Schema) Runtime {
	return bindingRuntime{schema: s}
}

type bindingRuntime struct {
	schema *schema.Schema
}

func (r bindingRuntime) Resolve(ctx context.Context, field *schema.Field, p schema.ResolveParams) (any, error) {
	if field.Resolver == nil {
		return schema.PropertyResolver{}.Resolve(ctx, p)
	}
	return field.Resolver.Resolve(ctx, p)
}

func (r bindingRuntime) ResolveType(ctx context.Context, abstractType *schema.Type, value any) (string, error) {
	return schema.ResolveAbstractType(ctx, r.schema, abstractType, value)
}

func (r bindingRuntime) SerializeLeafValue(ctx context.Context, leafType *schema.Type, value any) (any, error) {
	return schema.SerializeLeaf(leafType, value)
}
