package main

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionsList_CreatesDefaultVersion(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun(t, "versions", "list")
	assert.Contains(t, out, "My main CV")
	assert.Contains(t, out, "modern")
	assert.FileExists(t, c.store)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "*"), "active version should be marked")
}

func TestVersionsCreateSwitchAndDelete(t *testing.T) {
	c := newCLI(t)
	first := c.activeVersionAfter(t, "versions", "list")

	c.mustRun(t, "versions", "create", "--name", "Tech", "--template", "swiss")
	created := c.activeVersion(t)
	assert.Equal(t, "Tech", created.Name)
	assert.Equal(t, types.TemplateSwiss, created.Template)

	c.mustRun(t, "versions", "switch", first.ID)
	assert.Equal(t, first.ID, c.activeVersion(t).ID)

	out := c.mustRun(t, "versions", "delete", first.ID)
	assert.Contains(t, out, created.ID)
	assert.Equal(t, created.ID, c.activeVersion(t).ID)

	out, err := c.run(t, "versions", "delete", created.ID)
	require.Error(t, err)
	assert.Contains(t, out, "cannot delete")
}

func TestVersionsCreate_UnknownTemplate(t *testing.T) {
	c := newCLI(t)
	_, err := c.run(t, "versions", "create", "--template", "neon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template")
}

func TestVersionsDuplicateAndRename(t *testing.T) {
	c := newCLI(t)
	original := c.activeVersionAfter(t, "set-role", "Platform engineer")

	out := c.mustRun(t, "versions", "duplicate", original.ID)
	assert.Contains(t, out, "My main CV (copy)")
	dup := c.activeVersion(t)
	assert.NotEqual(t, original.ID, dup.ID)
	assert.Equal(t, "Platform engineer", dup.TargetRole)

	c.mustRun(t, "versions", "rename", dup.ID, "Startup")
	assert.Equal(t, "Startup", c.activeVersion(t).Name)

	_, err := c.run(t, "versions", "rename", "missing", "x")
	assert.Error(t, err)
}

func TestVersionsShowAndImport(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "set-data", c.writeJSON(t, "data.json", sampleData()))
	original := c.activeVersion(t)

	out := c.mustRun(t, "versions", "show")
	var shown types.Version
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, original.ID, shown.ID)

	file := c.path("export/version.json")
	c.mustRun(t, "versions", "show", original.ID, "--out", file)
	assert.FileExists(t, file)

	out = c.mustRun(t, "versions", "import", file)
	assert.Contains(t, out, "already exists, regenerated")
	imported := c.activeVersion(t)
	assert.NotEqual(t, original.ID, imported.ID)
	assert.Equal(t, "Alex", imported.Data.PersonalInfo.FirstName)
	assert.Len(t, imported.Data.Experiences, 2)
}

func TestVersionsImport_Strict(t *testing.T) {
	c := newCLI(t)
	file := c.path("bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"name": "X", "template": "neon", "data": {}}`), 0644))

	out, err := c.run(t, "versions", "import", file, "--strict")
	require.Error(t, err)
	assert.Contains(t, out, "template")

	out = c.mustRun(t, "versions", "import", file)
	assert.Contains(t, out, "Warning:")
	assert.Equal(t, "X", c.activeVersion(t).Name)
}

// activeVersionAfter runs a command and returns the active version it left behind
func (c *cli) activeVersionAfter(t *testing.T, args ...string) types.Version {
	t.Helper()
	c.mustRun(t, args...)
	return c.activeVersion(t)
}

func TestVersionsShow_Summary(t *testing.T) {
	c := newCLI(t)
	c.mustRun(t, "set-data", c.writeJSON(t, "data.json", sampleData()))

	out := c.mustRun(t, "versions", "show", "--summary")
	assert.Contains(t, out, "CV VERSION")
	assert.Contains(t, out, "My main CV (active)")
	assert.Contains(t, out, "Alex Martin")
	assert.Contains(t, out, "◦ languages")
}
