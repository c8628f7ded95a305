// Package executor implements a concurrent GraphQL executor with explicit
// runtime hooks for field resolution, abstract-type resolution, and leaf
// serialization.
//
// # Overview
//
// The executor walks a validated document depth-first:
//   - Sibling fields of one selection set are independent. Fields backed by
//     custom resolvers, and fields whose results need further selection, run
//     in their own goroutines inside an errgroup scope that is joined before
//     the parent object is assembled. Leaf property lookups run inline.
//   - Root mutation fields run one at a time in document order; each field's
//     whole subtree completes before the next field starts.
//   - List items of composite type complete concurrently; the result keeps
//     index order.
//   - Values are completed by their declared type (lists,
//     leafs, objects, abstract types), including Non-Null null propagation.
//
// # Preparation
//
// Before execution, the executor:
//  1. Chooses the operation (by name or by uniqueness when unnamed).
//  2. Coerces variables against the operation variable definitions. Errors
//     here stop the request and the response carries no data.
//  3. Builds an execution context: schema, document, operation, coerced
//     variables, root value, and the Runtime.
//  4. Determines the root object type and collects the root selection set.
//
// # Field collection
//
// collectFields walks a selection set in document order. @skip, @include
// and the handlers registered with WithDirective decide inclusion. Fragment
// type conditions match the object type itself, the interfaces it
// implements and the unions it belongs to. Fields sharing a response key are
// merged and their sub-selections are collected together.
//
// # Errors and null propagation
//
// Field errors are located by response path and field locations. Each
// completion step returns either a value or a propagating error. A nullable
// position absorbs the error: it records it and becomes null. A Non-Null
// position passes it up, so the null bubbles to the nearest nullable
// ancestor, or to data itself. When several siblings propagate at once, the
// first one in collection order nulls the parent and the others are
// recorded, so no error is lost. Errors are reported in traversal order
// regardless of which goroutine produced them first.
//
// Resolver panics are recovered, logged and reported as resolver errors.
//
// # Cancellation
//
// The request context is passed to every resolver. Once it is done no new
// resolvers are dispatched and the result is a single REQUEST_CANCELLED
// error with null data.
//
// # Runtime Contract
//
// The Runtime interface abstracts host integration:
//   - Resolve: produce a field's raw value.
//   - ResolveType: map interface/union values to concrete object types.
//   - SerializeLeafValue: serialize scalars and enums to JSON-safe values.
//
// DefaultRuntime dispatches to the bindings stored in the schema. See
// runtime.go for detailed method contracts.
package executor
