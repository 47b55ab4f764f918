package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_Version(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "set-data", c.writeJSON(t, "data.json", sampleData()))
	file := c.path("version.json")
	c.mustRun(t, "versions", "show", "--out", file)

	out := c.mustRun(t, "validate", file)
	assert.Contains(t, out, "Validation passed")
}

func TestValidateCommand_Collection(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "versions", "list")

	out := c.mustRun(t, "validate", "--collection", c.store)
	assert.Contains(t, out, "Validation passed")

	out, err := c.run(t, "validate", c.store)
	require.Error(t, err)
	assert.Contains(t, out, "Validation failed")
}

func TestValidateCommand_Failure(t *testing.T) {
	c := newCLI(t)
	file := c.path("bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"id": "v1", "name": "X", "template": "neon"}`), 0644))

	out, err := c.run(t, "validate", file)
	require.Error(t, err)
	assert.Contains(t, out, "Validation failed")
	assert.Contains(t, out, "template")
}

func TestValidateCommand_SchemaFile(t *testing.T) {
	c := newCLI(t)
	schema := filepath.Join("..", "..", "internal", "schemas", "files", "cv_versions.schema.json")
	c.mustRun(t, "versions", "list")

	out := c.mustRun(t, "validate", "--schema", schema, c.store)
	assert.Contains(t, out, "Validation passed")

	file := c.path("version.json")
	c.mustRun(t, "versions", "show", "--out", file)
	out, err := c.run(t, "validate", "--schema", schema, file)
	require.Error(t, err)
	assert.Contains(t, out, "Validation failed")
}

func TestValidateCommand_MissingFile(t *testing.T) {
	c := newCLI(t)
	out, err := c.run(t, "validate", c.path("nope.json"))
	require.Error(t, err)
	assert.NotContains(t, out, "Validation passed")
}
