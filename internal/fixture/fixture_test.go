package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	engine "github.com/hanpama/gqlengine/internal/engine"
	executor "github.com/hanpama/gqlengine/internal/executor"
	schema "github.com/hanpama/gqlengine/internal/schema"
	"github.com/stretchr/testify/require"
)

const sdl = `
type Query { shop: Shop }
type Shop { name: String! items: [Item!]! }
type Item { id: ID! price: Int! tags: [String!] }
`

const yamlData = `
shop:
  name: Corner
  items:
    - id: a
      price: 3
      tags: [x, y]
    - id: b
      price: 5
`

const jsonData = `{"shop":{"name":"Corner","items":[{"id":"a","price":3,"tags":["x","y"]},{"id":"b","price":5}]}}`

func obj(kv ...any) executor.Map {
	m := make(executor.Map, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		m = append(m, executor.Entry{Key: kv[i].(string), Value: kv[i+1]})
	}
	return m
}

// Pattern: Result comparison
func TestFixtureServesQueries(t *testing.T) {
	s, err := schema.LoadSDL("shop.graphql", sdl, schema.Bindings{})
	require.NoError(t, err)

	want := obj("shop", obj(
		"name", "Corner",
		"items", []any{
			obj("id", "a", "price", int32(3), "tags", []any{"x", "y"}),
			obj("id", "b", "price", int32(5), "tags", nil),
		},
	))

	for _, tt := range []struct {
		format string
		data   string
	}{
		{"yaml", yamlData},
		{"json", jsonData},
	} {
		t.Run(tt.format, func(t *testing.T) {
			root, err := Parse([]byte(tt.data), tt.format)
			require.NoError(t, err)
			eng, err := engine.New(s, engine.WithRootValue(root))
			require.NoError(t, err)

			got := eng.Do(context.Background(), engine.Request{Query: `{ shop { name items { id price tags } } }`})
			require.Empty(t, got.Errors)
			if diff := cmp.Diff(want, got.Data); diff != "" {
				t.Fatalf("data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`[1, 2]`), "json")
	require.ErrorContains(t, err, "must be an object")

	_, err = Parse([]byte(`a: [`), "yaml")
	require.Error(t, err)

	_, err = Parse([]byte(`a = 1`), "toml")
	require.ErrorContains(t, err, "unsupported fixture format")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o600))

	v, err := Load(path)
	require.NoError(t, err)
	require.Contains(t, v.(map[string]any), "shop")
}
