package versions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_MissingFileIsEmpty(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "versions.json"), false)
	snap, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Versions)
}

func TestFileBackend_SaveAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "versions.json")
	b := NewFileBackend(path, false)

	s, err := Open(ctx, b)
	require.NoError(t, err)
	data := types.NewCVData()
	data.PersonalInfo.FirstName = "Alex"
	data.AddLanguage("French")
	_, err = s.UpdateData(ctx, s.ActiveID(), data)
	require.NoError(t, err)
	second, err := s.Create(ctx, "Second", types.TemplateElegant)
	require.NoError(t, err)

	reopened, err := Open(ctx, NewFileBackend(path, false))
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Count())
	assert.Equal(t, second.ID, reopened.ActiveID())
	assert.Equal(t, s.List(), reopened.List())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFileBackend_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := Open(context.Background(), NewFileBackend(path, false))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, DefaultVersionName, s.Active().Name)
}

func TestFileBackend_RepairsPartialPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.json")
	payload := `{"versions":[{"id":"a","name":"Kept","data":{"personalInfo":{"firstName":"Alex"},"skills":"oops"}}],"activeVersionId":"a"}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	s, err := Open(context.Background(), NewFileBackend(path, false))
	require.NoError(t, err)
	v := s.Active()
	assert.Equal(t, "a", v.ID)
	assert.Equal(t, "Kept", v.Name)
	assert.Equal(t, "Alex", v.Data.PersonalInfo.FirstName)
	assert.Empty(t, v.Data.Skills)
	assert.Equal(t, types.DefaultSectionOrder(), v.SectionOrder)
}

func TestFileBackend_ReadErrorIsLoadError(t *testing.T) {
	dir := t.TempDir()
	b := NewFileBackend(dir, false)
	_, err := b.Load(context.Background())
	var loadErr *LoadError
	assert.True(t, errors.As(err, &loadErr))
}
