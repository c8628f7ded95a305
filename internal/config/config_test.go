package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// Pattern: Result comparison
func TestParse(t *testing.T) {
	src := `
server:
  addr: ":9000"
  timeout: 2s
  cors_origins: ["*"]
  metadata_headers:
    - Authorization
schema:
  files: [a.graphql, b.graphql]
  data: data.yaml
executor:
  max_concurrency: 4
  introspection: false
log:
  level: debug
  format: json
`
	got, err := Parse([]byte(src))
	require.NoError(t, err)

	want := Default()
	want.Server.Addr = ":9000"
	want.Server.Timeout = "2s"
	want.Server.CORSOrigins = []string{"*"}
	want.Server.MetadataHeaders = []string{"Authorization"}
	want.Schema = SchemaConfig{Files: []string{"a.graphql", "b.graphql"}, Data: "data.yaml"}
	want.Executor = ExecutorConfig{MaxConcurrency: 4, Introspection: false}
	want.Log = LogConfig{Level: "debug", Format: "json"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 2*time.Second, got.Server.TimeoutDuration())
	require.Equal(t, 5*time.Second, got.Server.ShutdownTimeoutDuration())
}

func TestParseEmptyUsesDefaults(t *testing.T) {
	got, err := Parse(nil)
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"duration", "server:\n  timeout: soon\n", "server.timeout"},
		{"negative concurrency", "executor:\n  max_concurrency: -1\n", "executor.max_concurrency"},
		{"level", "log:\n  level: loud\n", "log.level"},
		{"format", "log:\n  format: xml\n", "log.format"},
		{"unknown key", "server:\n  port: 80\n", "port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gqlengine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema:\n  files: [s.graphql]\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"s.graphql"}, cfg.Schema.Files)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
