package executor

import (
	"context"
	"testing"
	"time"

	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Pattern: Result comparison
func TestExecute_Cancellation_Result(t *testing.T) {
	t.Run("cancelled before execution", func(t *testing.T) {
		s := mustSchema(t, `type Query { a: String }`, schema.Bindings{Resolvers: map[string]schema.Resolver{"Query.a": value("a")}})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		got := NewExecutor(s).ExecuteRequest(ctx, mustParseQuery(t, "{ a }"), "", nil, nil)

		want := &ExecutionResult{Errors: gqlerror.List{fieldErr("Request cancelled: context canceled", CodeRequestCancelled)}}
		assertResult(t, want, got)
	})

	t.Run("cancelled by a resolver", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		s := mustSchema(t, `
type Query { a: Item b: String }
type Item { x: String }
`, schema.Bindings{Resolvers: map[string]schema.Resolver{
			"Query.a": resolverFunc(func(context.Context, schema.ResolveParams) (any, error) {
				cancel()
				return map[string]any{"x": "x"}, nil
			}),
			"Query.b": value("b"),
		}})
		got := NewExecutor(s).ExecuteRequest(ctx, mustParseQuery(t, "{ a { x } b }"), "", nil, nil)

		want := &ExecutionResult{Errors: gqlerror.List{fieldErr("Request cancelled: context canceled", CodeRequestCancelled)}}
		assertResult(t, want, got)
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		s := mustSchema(t, `type Query { slow: String }`, schema.Bindings{Resolvers: map[string]schema.Resolver{
			"Query.slow": resolverFunc(func(ctx context.Context, p schema.ResolveParams) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}),
		}})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		got := NewExecutor(s).ExecuteRequest(ctx, mustParseQuery(t, "{ slow }"), "", nil, nil)

		require.Nil(t, got.Data)
		require.False(t, got.NotExecuted)
		require.Len(t, got.Errors, 1)
		require.Equal(t, CodeRequestCancelled, ErrorCode(got.Errors[0]))
		require.Equal(t, "Request cancelled: context deadline exceeded", got.Errors[0].Message)
	})
}
