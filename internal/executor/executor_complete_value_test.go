package executor

import (
	"context"
	"errors"
	"testing"

	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

const chainSDL = `
type Query { A: A list: [B!] nullableItems: [B] strict: A! }
type A { B: B! other: String }
type B { C: String! }
`

// Pattern: Result comparison
func TestCompleteValue_NonNull_Propagation_Result(t *testing.T) {
	t.Run("null bubbles to nearest nullable ancestor", func(t *testing.T) {
		s := mustSchema(t, chainSDL, schema.Bindings{})
		root := map[string]any{"A": map[string]any{"B": map[string]any{"C": nil}, "other": "x"}}
		got := NewExecutor(s).ExecuteRequest(context.Background(), mustParseQuery(t, "{ A { B { C } other } }"), "", nil, root)

		want := &ExecutionResult{
			Data: obj("A", nil),
			Errors: []*gqlerror.Error{
				fieldErr("Cannot return null for non-nullable field B.C.", CodeNonNullValueNull, "A", "B", "C"),
			},
		}
		assertResult(t, want, got)
	})

	t.Run("resolver error on non-null field", func(t *testing.T) {
		s := mustSchema(t, chainSDL, schema.Bindings{Resolvers: map[string]schema.Resolver{
			"Query.A": value(map[string]any{}),
			"A.B":     failing(errors.New("boom")),
		}})
		got := execute(t, s, "{ A { other B { C } } }", nil)

		want := &ExecutionResult{
			Data:   obj("A", nil),
			Errors: []*gqlerror.Error{fieldErr("boom", CodeResolver, "A", "B")},
		}
		assertResult(t, want, got)
	})

	t.Run("null reaches data through non-null root", func(t *testing.T) {
		s := mustSchema(t, chainSDL, schema.Bindings{Resolvers: map[string]schema.Resolver{
			"Query.strict": value(map[string]any{"B": nil}),
		}})
		got := execute(t, s, "{ strict { B { C } } }", nil)

		want := &ExecutionResult{
			Data:   nil,
			Errors: []*gqlerror.Error{fieldErr("Cannot return null for non-nullable field A.B.", CodeNonNullValueNull, "strict", "B")},
		}
		assertResult(t, want, got)
	})

	t.Run("non-null list item nulls the list", func(t *testing.T) {
		s := mustSchema(t, chainSDL, schema.Bindings{Resolvers: map[string]schema.Resolver{
			"Query.list": value([]any{map[string]any{"C": "ok"}, nil, map[string]any{"C": "ok"}}),
		}})
		got := execute(t, s, "{ list { C } }", nil)

		want := &ExecutionResult{
			Data:   obj("list", nil),
			Errors: []*gqlerror.Error{fieldErr("Cannot return null for non-nullable field Query.list.", CodeNonNullValueNull, "list", 1)},
		}
		assertResult(t, want, got)
	})

	t.Run("nullable list item absorbs the error", func(t *testing.T) {
		s := mustSchema(t, chainSDL, schema.Bindings{Resolvers: map[string]schema.Resolver{
			"Query.nullableItems": value([]any{map[string]any{"C": "a"}, map[string]any{}, map[string]any{"C": "c"}}),
		}})
		got := execute(t, s, "{ nullableItems { C } }", nil)

		want := &ExecutionResult{
			Data: obj("nullableItems", []any{obj("C", "a"), nil, obj("C", "c")}),
			Errors: []*gqlerror.Error{
				fieldErr("Cannot return null for non-nullable field B.C.", CodeNonNullValueNull, "nullableItems", 1, "C"),
			},
		}
		assertResult(t, want, got)
	})

	t.Run("errors from every propagating sibling are kept", func(t *testing.T) {
		s := mustSchema(t, `
type Query { obj: Obj }
type Obj { a: String! b: String! c: String }
`, schema.Bindings{Resolvers: map[string]schema.Resolver{
			"Query.obj": value(map[string]any{"c": "C"}),
			"Obj.a":     failing(errors.New("a failed")),
			"Obj.b":     failing(errors.New("b failed")),
		}})
		got := execute(t, s, "{ obj { a b c } }", nil)

		want := &ExecutionResult{
			Data: obj("obj", nil),
			Errors: []*gqlerror.Error{
				fieldErr("a failed", CodeResolver, "obj", "a"),
				fieldErr("b failed", CodeResolver, "obj", "b"),
			},
		}
		assertResult(t, want, got)
	})
}

// Pattern: Result comparison
func TestCompleteValue_Leaf_Result(t *testing.T) {
	s := mustSchema(t, `
type Query { count: Int color: Color colors: [Color] when: DateTime id: ID }
enum Color { RED GREEN }
scalar DateTime
`, schema.Bindings{
		EnumValues: map[string]map[string]any{"Color": {"RED": 1, "GREEN": 2}},
	})

	t.Run("serializes scalars and enums", func(t *testing.T) {
		root := map[string]any{"count": 3, "color": 2, "colors": []int{1, 2}, "id": 7}
		got := NewExecutor(s).ExecuteRequest(context.Background(), mustParseQuery(t, "{ count color colors id }"), "", nil, root)
		want := &ExecutionResult{
			Data: obj("count", int32(3), "color", "GREEN", "colors", []any{"RED", "GREEN"}, "id", "7"),
		}
		assertResult(t, want, got)
	})

	t.Run("invalid scalar output", func(t *testing.T) {
		root := map[string]any{"count": "three", "color": 9, "when": 12}
		got := NewExecutor(s).ExecuteRequest(context.Background(), mustParseQuery(t, "{ count color when }"), "", nil, root)
		want := &ExecutionResult{
			Data: obj("count", nil, "color", nil, "when", nil),
			Errors: []*gqlerror.Error{
				fieldErr(`invalid scalar value: Int cannot represent "three"`, CodeInvalidScalarOutput, "count"),
				fieldErr("invalid scalar value: enum Color cannot represent 9", CodeInvalidScalarOutput, "color"),
				fieldErr("invalid scalar value: DateTime cannot represent 12", CodeInvalidScalarOutput, "when"),
			},
		}
		assertResult(t, want, got)
	})

	t.Run("non-list value for list field", func(t *testing.T) {
		root := map[string]any{"colors": "RED"}
		got := NewExecutor(s).ExecuteRequest(context.Background(), mustParseQuery(t, "{ colors }"), "", nil, root)
		want := &ExecutionResult{
			Data:   obj("colors", nil),
			Errors: []*gqlerror.Error{fieldErr("Expected Iterable, but did not find one for field Query.colors.", CodeResolver, "colors")},
		}
		assertResult(t, want, got)
	})
}

// Pattern: Result comparison
func TestCompleteValue_Panic_Result(t *testing.T) {
	s := mustSchema(t, `type Query { a: String b: String }`, schema.Bindings{Resolvers: map[string]schema.Resolver{
		"Query.a": resolverFunc(func(context.Context, schema.ResolveParams) (any, error) { panic("kaboom") }),
		"Query.b": value("B"),
	}})
	got := execute(t, s, "{ a b }", nil)

	want := &ExecutionResult{
		Data:   obj("a", nil, "b", "B"),
		Errors: []*gqlerror.Error{fieldErr("internal error: resolver panicked: kaboom", CodeResolver, "a")},
	}
	assertResult(t, want, got)
}

// Pattern: Result comparison
func TestCompleteObjectValue_IsTypeOf_Result(t *testing.T) {
	isMap := func(_ context.Context, v any) bool {
		_, ok := v.(map[string]any)
		return ok
	}

	t.Run("value claimed by its object type", func(t *testing.T) {
		s := mustSchema(t, chainSDL, schema.Bindings{
			Resolvers: map[string]schema.Resolver{"Query.A": value(map[string]any{"other": "x"})},
			IsTypeOf:  map[string]schema.IsTypeOfFunc{"A": isMap},
		})
		got := execute(t, s, "{ A { other } }", nil)
		assertResult(t, &ExecutionResult{Data: obj("A", obj("other", "x"))}, got)
	})

	t.Run("value rejected by its object type", func(t *testing.T) {
		s := mustSchema(t, chainSDL, schema.Bindings{
			Resolvers: map[string]schema.Resolver{"Query.A": value("nope")},
			IsTypeOf:  map[string]schema.IsTypeOfFunc{"A": isMap},
		})
		got := execute(t, s, "{ A { other } }", nil)

		want := &ExecutionResult{
			Data:   obj("A", nil),
			Errors: []*gqlerror.Error{fieldErr(`Expected value of type "A" but got: nope.`, CodeResolver, "A")},
		}
		assertResult(t, want, got)
	})
}
