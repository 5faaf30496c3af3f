package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/aretw0/courier/pkg/mediator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func missingConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "none.yaml")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "courier version dev\n", out)
}

func TestHandlers_JSON(t *testing.T) {
	out, err := run(t, "handlers", "--config", missingConfig(t), "--format", "json")
	require.NoError(t, err)

	var cat mediator.Catalog
	require.NoError(t, json.Unmarshal([]byte(out), &cat))
	assert.Len(t, cat.Requests, 7)
	assert.Len(t, cat.Notifications, 3)
}

func TestHandlers_Markdown(t *testing.T) {
	out, err := run(t, "handlers", "--config", missingConfig(t), "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "`school.CreateSchool`")
}

func TestHandlers_Mermaid(t *testing.T) {
	out, err := run(t, "handlers", "--config", missingConfig(t), "--format", "mermaid")
	require.NoError(t, err)
	assert.Contains(t, out, "graph LR")
}

func TestHandlers_UnknownFormat(t *testing.T) {
	_, err := run(t, "handlers", "--config", missingConfig(t), "--format", "yaml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestMCP_UnknownTransport(t *testing.T) {
	_, err := run(t, "mcp", "--config", missingConfig(t), "--transport", "websocket")
	assert.ErrorContains(t, err, "unknown transport")
}
