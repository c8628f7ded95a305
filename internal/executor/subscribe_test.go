package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

const subscriptionSDL = `
type Query { noop: String }
type Subscription {
  ticks(n: Int!): Tick!
  names: String
  plain: String
  forever: String
}
type Tick { n: Int! }
`

func emit(events ...any) schema.Subscriber {
	return schema.SubscriberFunc(func(ctx context.Context, p schema.ResolveParams) (<-chan any, error) {
		ch := make(chan any)
		go func() {
			defer close(ch)
			for _, ev := range events {
				select {
				case ch <- ev:
				case <-ctx.Done():
					return
				}
			}
		}()
		return ch, nil
	})
}

func subscriptionSchema(t *testing.T) *schema.Schema {
	return mustSchema(t, subscriptionSDL, schema.Bindings{
		Subscribers: map[string]schema.Subscriber{
			"Subscription.ticks": schema.SubscriberFunc(func(ctx context.Context, p schema.ResolveParams) (<-chan any, error) {
				n := int(p.Args["n"].(int32))
				if n < 0 {
					return nil, errors.New("n must not be negative")
				}
				events := make([]any, 0, n+1)
				for i := 1; i <= n; i++ {
					events = append(events, map[string]any{"n": i})
				}
				if n == 0 {
					events = append(events, map[string]any{"n": nil})
				}
				return emit(events...).Subscribe(ctx, p)
			}),
			"Subscription.names": emit("ada", "bob"),
			"Subscription.forever": schema.SubscriberFunc(func(ctx context.Context, p schema.ResolveParams) (<-chan any, error) {
				return make(chan any), nil
			}),
		},
		Resolvers: map[string]schema.Resolver{
			"Subscription.names": resolverFunc(func(ctx context.Context, p schema.ResolveParams) (any, error) {
				return strings.ToUpper(p.Source.(string)), nil
			}),
		},
	})
}

func collect(t *testing.T, ch <-chan *ExecutionResult) []*ExecutionResult {
	t.Helper()
	var out []*ExecutionResult
	timeout := time.After(2 * time.Second)
	for {
		select {
		case res, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, res)
		case <-timeout:
			t.Fatalf("subscription did not finish; got %d results", len(out))
		}
	}
}

func subscribe(ctx context.Context, t *testing.T, s *schema.Schema, query string) <-chan *ExecutionResult {
	t.Helper()
	return NewExecutor(s).Subscribe(ctx, mustParseQuery(t, query), "", nil, nil)
}

// Pattern: Result comparison
func TestSubscribe_Events_Result(t *testing.T) {
	s := subscriptionSchema(t)

	t.Run("event is the root field value", func(t *testing.T) {
		got := collect(t, subscribe(context.Background(), t, s, `subscription { ticks(n: 2) { n } }`))
		require.Len(t, got, 2)
		assertResult(t, &ExecutionResult{Data: obj("ticks", obj("n", int32(1)))}, got[0])
		assertResult(t, &ExecutionResult{Data: obj("ticks", obj("n", int32(2)))}, got[1])
	})

	t.Run("resolver maps the event", func(t *testing.T) {
		got := collect(t, subscribe(context.Background(), t, s, `subscription { who: names }`))
		require.Len(t, got, 2)
		assertResult(t, &ExecutionResult{Data: obj("who", "ADA")}, got[0])
		assertResult(t, &ExecutionResult{Data: obj("who", "BOB")}, got[1])
	})

	t.Run("errors are scoped to one event", func(t *testing.T) {
		got := collect(t, subscribe(context.Background(), t, s, `subscription { ticks(n: 0) { n } }`))
		require.Len(t, got, 1)
		want := &ExecutionResult{
			Errors: gqlerror.List{fieldErr("Cannot return null for non-nullable field Tick.n.", CodeNonNullValueNull, "ticks", "n")},
		}
		assertResult(t, want, got[0])
	})
}

// Pattern: Result comparison
func TestSubscribe_SetupErrors_Result(t *testing.T) {
	s := subscriptionSchema(t)

	tests := []struct {
		name  string
		query string
		want  *ExecutionResult
	}{
		{
			name:  "subscriber error",
			query: `subscription { ticks(n: -1) { n } }`,
			want:  NewErrorResult(fieldErr("n must not be negative", CodeSubscriptionSetupFailed, "ticks")),
		},
		{
			name:  "field without event source",
			query: `subscription { plain }`,
			want:  NewErrorResult(Errorf(CodeSubscriptionSetupFailed, `Subscription field "plain" has no event source.`)),
		},
		{
			name:  "more than one root field",
			query: `subscription { plain names }`,
			want:  NewErrorResult(Errorf(CodeOperationResolution, "Subscription must select exactly one top level field.")),
		},
		{
			name:  "not a subscription",
			query: `query Q { noop }`,
			want:  NewErrorResult(Errorf(CodeOperationResolution, `Operation "Q" is not a subscription.`)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, subscribe(context.Background(), t, s, tt.query))
			require.Len(t, got, 1)
			assertResult(t, tt.want, got[0])
		})
	}

	t.Run("ExecuteRequest refuses subscriptions", func(t *testing.T) {
		got := execute(t, s, `subscription { names }`, nil)
		require.True(t, got.NotExecuted)
		require.Equal(t, CodeOperationResolution, ErrorCode(got.Errors[0]))
	})
}

func TestSubscribe_ContextCancelClosesStream(t *testing.T) {
	s := subscriptionSchema(t)
	ctx, cancel := context.WithCancel(context.Background())
	ch := subscribe(ctx, t, s, `subscription { forever }`)
	cancel()
	require.Empty(t, collect(t, ch))
}
