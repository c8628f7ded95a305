package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	schema "github.com/hanpama/gqlengine/internal/schema"
)

// Pattern: Calls comparison
func TestMockRuntime_RecordsRegisteredCalls(t *testing.T) {
	s := mustSchema(t, `
type Query { me: Person }
type Person { name: String friends(first: Int = 2): [Person] }
`, schema.Bindings{})
	me := map[string]any{"name": "ada"}
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.me": NewMockValueResolver(me),
	})
	rt.SetResolver("Person", "friends", NewMockValueResolver([]any{map[string]any{"name": "bob"}}))
	rt.SetSerializer(func(leafType *schema.Type, value any) (any, error) {
		out, err := schema.SerializeLeaf(leafType, value)
		if s, ok := out.(string); ok {
			return strings.ToUpper(s), err
		}
		return out, err
	})

	got := NewExecutor(s, WithRuntime(rt)).ExecuteRequest(context.Background(), mustParseQuery(t, "{ me { name friends { name } } }"), "", nil, nil)
	assertResult(t, &ExecutionResult{Data: obj("me", obj("name", "ADA", "friends", []any{obj("name", "BOB")}))}, got)

	wantCalls := []Call{
		{ObjectType: "Query", Field: "me", Path: "me", Args: map[string]any{}},
		{ObjectType: "Person", Field: "friends", Path: "me.friends", Source: me, Args: map[string]any{"first": int32(2)}},
	}
	if diff := cmp.Diff(wantCalls, rt.GetCalls(), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}

	rt.Reset()
	if calls := rt.GetCalls(); len(calls) != 0 {
		t.Fatalf("expected no calls after Reset, got %d", len(calls))
	}
}

// Pattern: Result comparison
func TestMockRuntime_TypeResolver_Result(t *testing.T) {
	s := mustSchema(t, `
type Query { node: Node }
interface Node { id: ID! }
type User implements Node { id: ID! }
`, schema.Bindings{})
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.node": NewMockValueResolver(map[string]any{"id": "u1"}),
	})
	rt.SetTypeResolver(func(value any) (string, error) { return "User", nil })

	got := NewExecutor(s, WithRuntime(rt)).ExecuteRequest(context.Background(), mustParseQuery(t, "{ node { __typename id } }"), "", nil, nil)
	assertResult(t, &ExecutionResult{Data: obj("node", obj("__typename", "User", "id", "u1"))}, got)
}
