package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/versions"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// cli runs commands in-process against a store file in a temporary directory
type cli struct {
	dir   string
	store string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "CHROME_PATH", "CV_STORE_PATH", "PORT"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	return &cli{dir: dir, store: filepath.Join(dir, "versions.json")}
}

// resetFlags restores every flag to its default so earlier runs do not leak
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func (c *cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--store", c.store))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := c.run(t, args...)
	require.NoError(t, err, out)
	return out
}

// path returns a file name inside the test directory
func (c *cli) path(name string) string {
	return filepath.Join(c.dir, name)
}

// writeJSON marshals v into a file of the test directory
func (c *cli) writeJSON(t *testing.T, name string, v any) string {
	t.Helper()
	content, err := json.Marshal(v)
	require.NoError(t, err)
	path := c.path(name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

// activeVersion reads the active version straight from the store file
func (c *cli) activeVersion(t *testing.T) types.Version {
	t.Helper()
	content, err := os.ReadFile(c.store)
	require.NoError(t, err)
	var snap versions.Snapshot
	require.NoError(t, json.Unmarshal(content, &snap))
	for _, v := range snap.Versions {
		if v.ID == snap.ActiveID {
			return v
		}
	}
	t.Fatalf("active version %q not in store", snap.ActiveID)
	return types.Version{}
}

func sampleData() types.CVData {
	data := types.NewCVData()
	data.PersonalInfo.FirstName = "Alex"
	data.PersonalInfo.LastName = "Martin"
	data.PersonalInfo.Summary = "Backend engineer"
	data.Experiences = []types.Experience{
		{ID: "e1", Company: "Acme", Position: "Engineer", StartDate: "2020-01", Current: true},
		{ID: "e2", Company: "Globex", Position: "Intern", StartDate: "2018-06", EndDate: "2019-12"},
	}
	data.Skills = []types.Skill{{ID: "s1", Name: "Go", Level: 4}}
	return data
}
