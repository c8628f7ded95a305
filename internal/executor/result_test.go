package executor

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

func TestMap_MarshalJSON_KeepsOrder(t *testing.T) {
	m := obj("b", int32(1), "a", obj("z", true, "y", nil), "c", []any{"x", obj()})
	b, err := json.Marshal(m)
	require.NoError(t, err)
	require.Equal(t, `{"b":1,"a":{"z":true,"y":null},"c":["x",{}]}`, string(b))

	v, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, obj("z", true, "y", nil), v)
	require.Equal(t, []string{"b", "a", "c"}, m.Keys())
	_, ok = m.Get("missing")
	require.False(t, ok)
}

func TestExecutionResult_MarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		result *ExecutionResult
		want   string
	}{
		{
			name:   "data only",
			result: &ExecutionResult{Data: obj("a", "x")},
			want:   `{"data":{"a":"x"}}`,
		},
		{
			name: "errors come before data",
			result: &ExecutionResult{
				Data:   obj("a", nil),
				Errors: gqlerror.List{fieldErr("boom", CodeResolver, "a")},
			},
			want: `{"errors":[{"message":"boom","path":["a"],"extensions":{"code":"RESOLVER_ERROR"}}],"data":{"a":null}}`,
		},
		{
			name:   "null data after propagation",
			result: &ExecutionResult{Errors: gqlerror.List{fieldErr("boom", CodeResolver, "a")}},
			want:   `{"errors":[{"message":"boom","path":["a"],"extensions":{"code":"RESOLVER_ERROR"}}],"data":null}`,
		},
		{
			name:   "not executed omits data",
			result: NewErrorResult(Errorf(CodeParseFailed, "bad")),
			want:   `{"errors":[{"message":"bad","extensions":{"code":"GRAPHQL_PARSE_FAILED"}}]}`,
		},
		{
			name:   "extensions",
			result: &ExecutionResult{Data: obj(), Extensions: map[string]any{"requestId": "r1"}},
			want:   `{"data":{},"extensions":{"requestId":"r1"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.result)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(b))
			if tt.result.HasErrors() {
				require.True(t, strings.HasPrefix(string(b), `{"errors":`), "errors must be encoded first: %s", b)
			}
		})
	}
}
