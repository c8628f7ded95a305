package introspection

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	executor "github.com/hanpama/gqlengine/internal/executor"
	language "github.com/hanpama/gqlengine/internal/language"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/stretchr/testify/require"
)

const petsSDL = `
"""Something with a name."""
interface Pet { name: String! }

type Dog implements Pet {
  name: String!
  barks: Boolean
  old: String @deprecated(reason: "gone")
}

enum Color { RED GREEN @deprecated }

input Filter {
  color: Color = RED
  limit: Int = 10
}

type Query {
  pets(filter: Filter): [Pet!]!
  hello: String
}
`

func buildSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.LoadSDL("pets.graphql", petsSDL, schema.Bindings{})
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}
	return sch
}

func obj(kv ...any) executor.Map {
	m := make(executor.Map, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		m = append(m, executor.Entry{Key: kv[i].(string), Value: kv[i+1]})
	}
	return m
}

func run(t *testing.T, sch *schema.Schema, query string) any {
	t.Helper()
	w, err := Wrap(executor.DefaultRuntime(sch), sch)
	require.NoError(t, err)
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	res := w.Executor().ExecuteRequest(context.Background(), doc, "", nil, nil)
	require.Empty(t, res.Errors)
	return res.Data
}

// Pattern: Result comparison
func TestIntrospection_Result(t *testing.T) {
	sch := buildSchema(t)

	tests := []struct {
		name  string
		query string
		want  any
	}{
		{
			name:  "root types",
			query: `{ __schema { queryType { name } mutationType { name } } }`,
			want:  obj("__schema", obj("queryType", obj("name", "Query"), "mutationType", nil)),
		},
		{
			name:  "object type",
			query: `{ __type(name: "Dog") { kind name fields { name isDeprecated } interfaces { name } } }`,
			want: obj("__type", obj(
				"kind", "OBJECT",
				"name", "Dog",
				"fields", []any{obj("name", "name", "isDeprecated", false), obj("name", "barks", "isDeprecated", false)},
				"interfaces", []any{obj("name", "Pet")},
			)),
		},
		{
			name:  "deprecated fields on request",
			query: `{ __type(name: "Dog") { fields(includeDeprecated: true) { name deprecationReason } } }`,
			want: obj("__type", obj("fields", []any{
				obj("name", "name", "deprecationReason", nil),
				obj("name", "barks", "deprecationReason", nil),
				obj("name", "old", "deprecationReason", "gone"),
			})),
		},
		{
			name:  "wrapped type references",
			query: `{ __type(name: "Query") { fields { name type { kind name ofType { kind name ofType { kind name ofType { name } } } } } } }`,
			want: obj("__type", obj("fields", []any{
				obj("name", "pets", "type", obj(
					"kind", "NON_NULL", "name", nil, "ofType", obj(
						"kind", "LIST", "name", nil, "ofType", obj(
							"kind", "NON_NULL", "name", nil, "ofType", obj("name", "Pet"))))),
				obj("name", "hello", "type", obj("kind", "SCALAR", "name", "String", "ofType", nil)),
			})),
		},
		{
			name:  "input default values are GraphQL literals",
			query: `{ __type(name: "Filter") { kind inputFields { name defaultValue } } }`,
			want: obj("__type", obj("kind", "INPUT_OBJECT", "inputFields", []any{
				obj("name", "color", "defaultValue", "RED"),
				obj("name", "limit", "defaultValue", "10"),
			})),
		},
		{
			name:  "enum values and possible types",
			query: `{ color: __type(name: "Color") { enumValues { name } } pet: __type(name: "Pet") { description possibleTypes { name } fields { name } } }`,
			want: obj(
				"color", obj("enumValues", []any{obj("name", "RED")}),
				"pet", obj("description", "Something with a name.", "possibleTypes", []any{obj("name", "Dog")}, "fields", []any{obj("name", "name")}),
			),
		},
		{
			name:  "unknown type",
			query: `{ __type(name: "Nope") { name } }`,
			want:  obj("__type", nil),
		},
		{
			name:  "standard directives",
			query: `{ __type(name: "Query") { name } __schema { directives { name } } }`,
			want: obj("__type", obj("name", "Query"), "__schema", obj("directives", []any{
				obj("name", "deprecated"), obj("name", "include"), obj("name", "skip"), obj("name", "specifiedBy"),
			})),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run(t, sch, tt.query)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIntrospection_TypesIncludeMetaTypes(t *testing.T) {
	got := run(t, buildSchema(t), `{ __schema { types { name } } }`)
	types, _ := got.(executor.Map).Get("__schema")
	list, _ := types.(executor.Map).Get("types")

	var names []string
	for _, item := range list.([]any) {
		name, _ := item.(executor.Map).Get("name")
		names = append(names, name.(string))
	}
	require.Contains(t, names, "Dog")
	require.Contains(t, names, "String")
	require.Contains(t, names, "__Type")
	require.IsIncreasing(t, names)
}

func TestWrap_LeavesSchemaUntouched(t *testing.T) {
	sch := buildSchema(t)
	w, err := Wrap(executor.DefaultRuntime(sch), sch)
	require.NoError(t, err)

	require.Nil(t, sch.GetQueryType().Field("__schema"))
	require.Nil(t, sch.Type("__Type"))
	require.NotNil(t, w.Schema.GetQueryType().Field("__schema"))

	_, err = Wrap(w.Runtime, w.Schema)
	require.Error(t, err, "wrapping twice must fail")
}

func TestTypenameField(t *testing.T) {
	sch := buildSchema(t)
	// __typename works without the wrapper
	doc, err := language.ParseQuery("{__typename}")
	require.NoError(t, err)
	res := executor.NewExecutor(sch).ExecuteRequest(context.Background(), doc, "", nil, nil)
	require.Empty(t, res.Errors)
	if diff := cmp.Diff(obj("__typename", "Query"), res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}
