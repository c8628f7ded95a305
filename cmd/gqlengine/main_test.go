package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSDL = `type Query {
  greeting: String!
  users: [User!]!
}

type User {
  id: ID!
  name: String
}
`

const testData = `
greeting: hello
users:
  - id: "1"
    name: Ada
  - id: "2"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, "gqlengine "+version+"\n", out)
}

func TestExec(t *testing.T) {
	dir := t.TempDir()
	sdl := writeFile(t, dir, "schema.graphql", testSDL)
	data := writeFile(t, dir, "data.yaml", testData)

	out, _, err := run(t, "", "exec", "--schema", sdl, "--data", data, "--compact",
		"-q", `query($skip: Boolean!) { greeting users @skip(if: $skip) { id name } }`, "--variables", `{"skip":false}`)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"data":{"greeting":"hello","users":[{"id":"1","name":"Ada"},{"id":"2","name":null}]}}`,
		out)
}

func TestExecReadsStdin(t *testing.T) {
	dir := t.TempDir()
	sdl := writeFile(t, dir, "schema.graphql", testSDL)
	data := writeFile(t, dir, "data.yaml", testData)

	out, _, err := run(t, "{ greeting }", "exec", "--schema", sdl, "--data", data)
	require.NoError(t, err)
	require.JSONEq(t, `{"data":{"greeting":"hello"}}`, out)
}

func TestExecReportsErrors(t *testing.T) {
	dir := t.TempDir()
	sdl := writeFile(t, dir, "schema.graphql", testSDL)

	// No data: the non-null greeting resolves to null.
	out, _, err := run(t, "", "exec", "--schema", sdl, "--compact", "-q", "{ greeting }")
	require.Error(t, err)
	require.Contains(t, out, `"errors"`)
	require.Contains(t, out, `"data":null`)
}

func TestExecIntrospectionFlag(t *testing.T) {
	dir := t.TempDir()
	sdl := writeFile(t, dir, "schema.graphql", testSDL)

	_, _, err := run(t, "", "exec", "--schema", sdl, "-q", "{ __schema { queryType { name } } }")
	require.NoError(t, err)

	out, _, err := run(t, "", "exec", "--schema", sdl, "--introspection=false", "-q", "{ __schema { queryType { name } } }")
	require.Error(t, err)
	require.Contains(t, out, "introspection is not allowed")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	sdl := writeFile(t, dir, "schema.graphql", testSDL)
	data := writeFile(t, dir, "data.yaml", testData)
	cfg := writeFile(t, dir, "gqlengine.yaml", "schema:\n  files: ["+sdl+"]\n  data: "+data+"\n")

	out, _, err := run(t, "", "exec", "-c", cfg, "--compact", "-q", "{ greeting }")
	require.NoError(t, err)
	require.JSONEq(t, `{"data":{"greeting":"hello"}}`, out)

	_, _, err = run(t, "", "exec", "-c", filepath.Join(dir, "missing.yaml"), "-q", "{ greeting }")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	sdl := writeFile(t, dir, "schema.graphql", testSDL)
	good := writeFile(t, dir, "good.graphql", "{ users { id } }")
	bad := writeFile(t, dir, "bad.graphql", "{ users { email } }")

	out, _, err := run(t, "", "validate", "--schema", sdl, good)
	require.NoError(t, err)
	require.Equal(t, "ok\n", out)

	_, stderr, err := run(t, "", "validate", "--schema", sdl, good, bad)
	require.Error(t, err)
	require.Contains(t, stderr, bad+":")
	require.Contains(t, stderr, `Cannot query field "email" on type "User".`)
}

func TestValidateRequiresSchema(t *testing.T) {
	_, _, err := run(t, "", "validate")
	require.ErrorContains(t, err, "no schema files")
}

func TestPrintSchema(t *testing.T) {
	dir := t.TempDir()
	sdl := writeFile(t, dir, "schema.graphql", testSDL)

	out, _, err := run(t, "", "print-schema", "--schema", sdl)
	require.NoError(t, err)
	require.Contains(t, out, "type Query {")
	require.Contains(t, out, "users: [User!]!")

	target := filepath.Join(dir, "out.graphql")
	_, _, err = run(t, "", "print-schema", "--schema", sdl, "--out", target)
	require.NoError(t, err)
	written, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, out, string(written))
}
