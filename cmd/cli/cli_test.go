package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const salesCSV = "month,amount\njan,10\nfeb,\nmar,30\n"

func TestInspectJSON(t *testing.T) {
	path := writeCSV(t, salesCSV)

	out, err := runCLI(t, "inspect", path, "-o", "json")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, path, doc["file"])
	assert.Equal(t, 3.0, doc["rows"])
	assert.Len(t, doc["columns"], 2)
	assert.Contains(t, out, `"type": "numeric"`)
}

func TestInspectYAML(t *testing.T) {
	path := writeCSV(t, salesCSV)

	out, err := runCLI(t, "inspect", path, "--output", "yaml")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 3, doc["rows"])
	assert.Len(t, doc["columns"], 2)
}

func TestInspectMarkdown(t *testing.T) {
	path := writeCSV(t, salesCSV)

	out, err := runCLI(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# Data summary")
	assert.Contains(t, out, "amount")
}

func TestInspectBlankPolicyFromEnv(t *testing.T) {
	path := writeCSV(t, salesCSV)
	t.Setenv("DATAVIZ_BLANK_POLICY", "missing")

	out, err := runCLI(t, "inspect", path, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"missing": 1`)
}

func TestInspectRejectsUnknownOutput(t *testing.T) {
	path := writeCSV(t, salesCSV)

	_, err := runCLI(t, "inspect", path, "-o", "xml")
	assert.ErrorContains(t, err, "unsupported --output")
}

func TestExplicitConfigMustExist(t *testing.T) {
	path := writeCSV(t, salesCSV)

	_, err := runCLI(t, "inspect", path, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestChartFigure(t *testing.T) {
	path := writeCSV(t, "x,y\n1,2\n2,4\n3,9\n")

	out, err := runCLI(t, "chart", path, "--type", "line", "--x", "x", "--y", "y")
	require.NoError(t, err)

	var fig map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &fig))
	assert.Len(t, fig["data"], 1)
}

func TestChartPNG(t *testing.T) {
	path := writeCSV(t, "x,y\n1,2\n2,4\n3,9\n")
	png := filepath.Join(t.TempDir(), "out.png")

	_, err := runCLI(t, "chart", path, "--x", "x", "--y", "y", "--png", png, "--width", "320", "--height", "240")
	require.NoError(t, err)

	raw, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")))
}

func TestChartUnknownColumn(t *testing.T) {
	path := writeCSV(t, "x,y\n1,2\n")

	_, err := runCLI(t, "chart", path, "--x", "x", "--y", "z")
	assert.ErrorContains(t, err, `"z"`)
}

func TestMigrateAndListSnapshots(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	out, err := runCLI(t, "migrate", "--sqlite-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "applied (sqlite)")

	out, err = runCLI(t, "snapshots", "list", "--sqlite-path", dbPath, "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)

	out, err = runCLI(t, "snapshots", "list", "--sqlite-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "| id | name | rows | created_at |")
}
