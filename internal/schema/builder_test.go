package schema_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	t.Run("computes interface possible types in declaration order", func(t *testing.T) {
		s, err := schema.NewBuilder().
			SetQueryType("Query").
			AddType(schema.NewObject("Query", schema.NewField("node", schema.NamedType("Node"), ""))).
			AddType(schema.NewInterface("Node", schema.NewField("id", schema.NonNullType(schema.NamedType("ID")), ""))).
			AddType(schema.NewObject("User", schema.NewField("id", schema.NonNullType(schema.NamedType("ID")), "")).AddInterface("Node")).
			AddType(schema.NewObject("Post", schema.NewField("id", schema.NonNullType(schema.NamedType("ID")), "")).AddInterface("Node")).
			Build()
		require.NoError(t, err)

		if diff := cmp.Diff([]string{"User", "Post"}, s.Types["Node"].PossibleTypes); diff != "" {
			t.Fatalf("possible types mismatch (-want +got):\n%s", diff)
		}
		require.NotNil(t, s.Document())
		require.NotNil(t, s.Document().Types["User"])
	})

	t.Run("binds default resolvers", func(t *testing.T) {
		custom := schema.ResolverFunc(func(ctx context.Context, p schema.ResolveParams) (any, error) { return "x", nil })
		s, err := schema.NewBuilder().
			SetQueryType("Query").
			AddType(schema.NewObject("Query",
				schema.NewField("plain", schema.NamedType("String"), ""),
				schema.NewField("custom", schema.NamedType("String"), "").WithResolver(custom),
			)).
			Build()
		require.NoError(t, err)

		plain := s.GetQueryType().Field("plain")
		require.IsType(t, schema.PropertyResolver{}, plain.Resolver)
		require.False(t, plain.Async)
		require.True(t, s.GetQueryType().Field("custom").Async)
	})

	t.Run("build does not mutate builder input", func(t *testing.T) {
		query := schema.NewObject("Query", schema.NewField("a", schema.NamedType("String"), ""))
		_, err := schema.NewBuilder().SetQueryType("Query").AddType(query).Build()
		require.NoError(t, err)
		require.Nil(t, query.Fields[0].Resolver)
	})
}

func TestBuilder_Build_Errors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() *schema.Builder
		want    string
	}{
		{
			name: "missing query type",
			builder: func() *schema.Builder {
				return schema.NewBuilder().AddType(schema.NewObject("Query", schema.NewField("a", schema.NamedType("String"), "")))
			},
			want: "query root type is required",
		},
		{
			name: "unknown field type",
			builder: func() *schema.Builder {
				return schema.NewBuilder().SetQueryType("Query").
					AddType(schema.NewObject("Query", schema.NewField("a", schema.NamedType("Missing"), "")))
			},
			want: `Query.a: unknown type "Missing"`,
		},
		{
			name: "non-null wrapping non-null",
			builder: func() *schema.Builder {
				return schema.NewBuilder().SetQueryType("Query").
					AddType(schema.NewObject("Query", schema.NewField("a", schema.NonNullType(schema.NonNullType(schema.NamedType("String"))), "")))
			},
			want: "non-null cannot wrap another non-null type",
		},
		{
			name: "input type in output position",
			builder: func() *schema.Builder {
				return schema.NewBuilder().SetQueryType("Query").
					AddType(schema.NewObject("Query", schema.NewField("a", schema.NamedType("Filter"), ""))).
					AddType(schema.NewInputObject("Filter", schema.NewInputValue("q", schema.NamedType("String"), "")))
			},
			want: "Filter is an input type",
		},
		{
			name: "output type in argument position",
			builder: func() *schema.Builder {
				return schema.NewBuilder().SetQueryType("Query").
					AddType(schema.NewObject("Query", schema.NewField("a", schema.NamedType("String"), "").
						AddArgument(schema.NewInputValue("q", schema.NamedType("Query"), ""))))
			},
			want: "Query is an output type",
		},
		{
			name: "union member is not an object",
			builder: func() *schema.Builder {
				return schema.NewBuilder().SetQueryType("Query").
					AddType(schema.NewObject("Query", schema.NewField("a", schema.NamedType("U"), ""))).
					AddType(schema.NewUnion("U", "String"))
			},
			want: `member "String" must be an object type`,
		},
		{
			name: "implements a non-interface",
			builder: func() *schema.Builder {
				return schema.NewBuilder().SetQueryType("Query").
					AddType(schema.NewObject("Query", schema.NewField("a", schema.NamedType("String"), "")).AddInterface("String"))
			},
			want: `implements "String", which is not an interface`,
		},
		{
			name: "missing interface field",
			builder: func() *schema.Builder {
				return schema.NewBuilder().SetQueryType("Query").
					AddType(schema.NewObject("Query", schema.NewField("a", schema.NamedType("String"), "")).AddInterface("Node")).
					AddType(schema.NewInterface("Node", schema.NewField("id", schema.NamedType("ID"), "")))
			},
			want: `must define field "id" required by interface Node`,
		},
		{
			name: "duplicate type",
			builder: func() *schema.Builder {
				return schema.NewBuilder().SetQueryType("Query").
					AddType(schema.NewObject("Query", schema.NewField("a", schema.NamedType("String"), ""))).
					AddType(schema.NewEnum("String", "A"))
			},
			want: `type "String" is defined more than once`,
		},
		{
			name: "oneOf field must be nullable",
			builder: func() *schema.Builder {
				in := schema.NewInputObject("By", schema.NewInputValue("id", schema.NonNullType(schema.NamedType("ID")), ""))
				in.OneOf = true
				return schema.NewBuilder().SetQueryType("Query").
					AddType(schema.NewObject("Query", schema.NewField("a", schema.NamedType("String"), "").
						AddArgument(schema.NewInputValue("by", schema.NamedType("By"), "")))).
					AddType(in)
			},
			want: "oneOf input field By.id must be nullable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder().Build()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewBuilderFrom(t *testing.T) {
	base, err := schema.NewBuilder().
		SetQueryType("Query").
		AddType(schema.NewObject("Query", schema.NewField("a", schema.NamedType("String"), ""))).
		Build()
	require.NoError(t, err)

	b := schema.NewBuilderFrom(base)
	b.Type("Query").AddField(schema.NewField("b", schema.NamedType("Int"), ""))
	extended, err := b.Build()
	require.NoError(t, err)

	require.Len(t, base.GetQueryType().Fields, 1)
	require.Len(t, extended.GetQueryType().Fields, 2)
}

func TestTypeRef_String(t *testing.T) {
	ref := schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("String"))))
	require.Equal(t, "[String!]!", ref.String())
	require.Equal(t, "String", ref.GetNamedType())
	require.True(t, ref.IsList())
}
