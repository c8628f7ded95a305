package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	language "github.com/hanpama/gqlengine/internal/language"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

func mustSchema(t *testing.T, sdl string, bindings schema.Bindings) *schema.Schema {
	t.Helper()
	s, err := schema.LoadSDL("test.graphql", sdl, bindings)
	if err != nil {
		t.Fatalf("schema error: %v", err)
	}
	return s
}

func resolverFunc(fn func(ctx context.Context, p schema.ResolveParams) (any, error)) schema.Resolver {
	return schema.ResolverFunc(fn)
}

func value(v any) schema.Resolver {
	return schema.ResolverFunc(func(context.Context, schema.ResolveParams) (any, error) { return v, nil })
}

func failing(err error) schema.Resolver {
	return schema.ResolverFunc(func(context.Context, schema.ResolveParams) (any, error) { return nil, err })
}

// obj builds an ordered result map from alternating keys and values.
func obj(kv ...any) Map {
	m := make(Map, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		m = append(m, Entry{Key: kv[i].(string), Value: kv[i+1]})
	}
	return m
}

// fieldErr builds the expected form of a located field error.
func fieldErr(message, code string, path ...any) *gqlerror.Error {
	p := make(ast.Path, len(path))
	for i, el := range path {
		switch v := el.(type) {
		case string:
			p[i] = ast.PathName(v)
		case int:
			p[i] = ast.PathIndex(v)
		}
	}
	if len(p) == 0 {
		p = nil
	}
	return &gqlerror.Error{Message: message, Path: p, Extensions: map[string]any{"code": code}}
}

// resultOpts ignores error causes and source locations; locations are
// covered by dedicated tests.
var resultOpts = cmp.Options{
	cmpopts.IgnoreFields(gqlerror.Error{}, "Err", "Locations"),
	cmpopts.EquateEmpty(),
}

func execute(t *testing.T, s *schema.Schema, query string, vars map[string]any, opts ...Option) *ExecutionResult {
	t.Helper()
	return NewExecutor(s, opts...).ExecuteRequest(context.Background(), mustParseQuery(t, query), "", vars, nil)
}

func assertResult(t *testing.T, want, got *ExecutionResult) {
	t.Helper()
	if diff := cmp.Diff(want, got, resultOpts); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}
