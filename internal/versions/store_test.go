package versions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func openStore(t *testing.T) (*Store, *MemoryBackend, *clock) {
	t.Helper()
	backend := NewMemoryBackend(Snapshot{})
	c := &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	s, err := Open(context.Background(), backend, WithClock(c.now))
	require.NoError(t, err)
	return s, backend, c
}

func TestOpen_CreatesDefaultVersion(t *testing.T) {
	s, backend, _ := openStore(t)

	require.Equal(t, 1, s.Count())
	active := s.Active()
	assert.Equal(t, DefaultVersionName, active.Name)
	assert.Equal(t, types.TemplateModern, active.Template)
	assert.Equal(t, types.DefaultSectionOrder(), active.SectionOrder)
	assert.Equal(t, active.ID, s.ActiveID())
	assert.Equal(t, 1, backend.Saves(), "the default version is persisted")
}

func TestOpen_UnknownActiveFallsBackToFirst(t *testing.T) {
	now := time.Now()
	a := types.NewVersion("A", types.TemplateClassic, now)
	b := types.NewVersion("B", types.TemplateSwiss, now)
	backend := NewMemoryBackend(Snapshot{Versions: []types.Version{a, b}, ActiveID: "gone"})

	s, err := Open(context.Background(), backend)
	require.NoError(t, err)
	assert.Equal(t, a.ID, s.ActiveID())
	assert.Equal(t, 2, s.Count())
}

func TestOpen_KeepsStoredActive(t *testing.T) {
	now := time.Now()
	a := types.NewVersion("A", types.TemplateClassic, now)
	b := types.NewVersion("B", types.TemplateSwiss, now)
	backend := NewMemoryBackend(Snapshot{Versions: []types.Version{a, b}, ActiveID: b.ID})

	s, err := Open(context.Background(), backend)
	require.NoError(t, err)
	assert.Equal(t, b.ID, s.ActiveID())
	assert.Equal(t, 0, backend.Saves())
}

func TestCreate_ActivatesNewVersion(t *testing.T) {
	s, _, _ := openStore(t)
	ctx := context.Background()

	v, err := s.Create(ctx, "Data roles", types.TemplateATS)
	require.NoError(t, err)
	assert.Equal(t, v.ID, s.ActiveID())
	assert.Equal(t, types.TemplateATS, v.Template)
	assert.True(t, v.Data.IsBlank())
	assert.Equal(t, types.DefaultSectionOrder(), v.SectionOrder)

	unnamed, err := s.Create(ctx, "  ", "neon")
	require.NoError(t, err)
	assert.Equal(t, DefaultVersionName, unnamed.Name)
	assert.Equal(t, types.TemplateModern, unnamed.Template)
	assert.Equal(t, 3, s.Count())
}

func TestDuplicate_CopiesDataUnderNewIdentity(t *testing.T) {
	s, _, _ := openStore(t)
	ctx := context.Background()
	orig := s.Active()

	data := types.NewCVData()
	data.PersonalInfo.FirstName = "Alex"
	data.AddSkill("Go")
	_, err := s.UpdateData(ctx, orig.ID, data)
	require.NoError(t, err)
	_, err = s.UpdateSectionOrder(ctx, orig.ID, []types.SectionID{types.SectionSkills, types.SectionSummary})
	require.NoError(t, err)

	dup, err := s.Duplicate(ctx, orig.ID, "")
	require.NoError(t, err)
	assert.NotEqual(t, orig.ID, dup.ID)
	assert.Equal(t, DefaultVersionName+" (copy)", dup.Name)
	assert.Equal(t, dup.ID, s.ActiveID())
	assert.Equal(t, "Alex", dup.Data.PersonalInfo.FirstName)
	assert.Equal(t, types.SectionSkills, dup.SectionOrder[0])
	assert.Equal(t, dup.CreatedAt, dup.UpdatedAt)

	named, err := s.Duplicate(ctx, orig.ID, "For Acme")
	require.NoError(t, err)
	assert.Equal(t, "For Acme", named.Name)

	_, err = s.Duplicate(ctx, "missing", "")
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestDuplicate_DoesNotShareData(t *testing.T) {
	s, _, _ := openStore(t)
	ctx := context.Background()
	orig := s.Active()

	data := types.NewCVData()
	data.AddSkill("Go")
	_, err := s.UpdateData(ctx, orig.ID, data)
	require.NoError(t, err)

	dup, err := s.Duplicate(ctx, orig.ID, "")
	require.NoError(t, err)

	_, err = s.Update(ctx, dup.ID, func(v *types.Version) { v.Data.Skills[0].Name = "Rust" })
	require.NoError(t, err)

	got, err := s.Get(orig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Data.Skills[0].Name)
}

func TestDelete_LastVersionIsRejected(t *testing.T) {
	s, backend, _ := openStore(t)
	only := s.Active()
	saves := backend.Saves()

	err := s.Delete(context.Background(), only.ID)
	var last *LastVersionError
	require.True(t, errors.As(err, &last))
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, only.ID, s.ActiveID())
	assert.Equal(t, saves, backend.Saves(), "nothing persisted")
}

func TestDelete_ActiveActivatesFirstRemaining(t *testing.T) {
	s, _, _ := openStore(t)
	ctx := context.Background()
	first := s.Active()
	second, err := s.Create(ctx, "Second", "")
	require.NoError(t, err)
	third, err := s.Create(ctx, "Third", "")
	require.NoError(t, err)
	require.Equal(t, third.ID, s.ActiveID())

	require.NoError(t, s.Delete(ctx, third.ID))
	assert.Equal(t, first.ID, s.ActiveID())

	require.NoError(t, s.Switch(ctx, second.ID))
	require.NoError(t, s.Delete(ctx, first.ID))
	assert.Equal(t, second.ID, s.ActiveID(), "deleting an inactive version keeps the selection")
	assert.Equal(t, 1, s.Count())

	err = s.Delete(ctx, second.ID)
	var last *LastVersionError
	assert.True(t, errors.As(err, &last))
}

func TestDelete_NeverDropsBelowOne(t *testing.T) {
	s, _, _ := openStore(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := s.Create(ctx, "v", "")
		require.NoError(t, err)
	}
	for _, v := range s.List() {
		_ = s.Delete(ctx, v.ID)
		assert.GreaterOrEqual(t, s.Count(), 1)
	}
	assert.Equal(t, 1, s.Count())
}

func TestSwitch_IsPureSelection(t *testing.T) {
	s, _, _ := openStore(t)
	ctx := context.Background()
	first := s.Active()
	_, err := s.Create(ctx, "Second", "")
	require.NoError(t, err)

	before := s.List()
	require.NoError(t, s.Switch(ctx, first.ID))
	assert.Equal(t, first.ID, s.ActiveID())
	assert.Equal(t, before, s.List())

	var nf *NotFoundError
	assert.True(t, errors.As(s.Switch(ctx, "nope"), &nf))
	assert.Equal(t, first.ID, s.ActiveID())
}

func TestUpdate_BumpsUpdatedAtAndKeepsIdentity(t *testing.T) {
	s, _, _ := openStore(t)
	ctx := context.Background()
	orig := s.Active()

	v, err := s.Update(ctx, orig.ID, func(v *types.Version) {
		v.ID = "hijack"
		v.CreatedAt = time.Time{}
		v.TargetRole = "SRE"
	})
	require.NoError(t, err)
	assert.Equal(t, orig.ID, v.ID)
	assert.Equal(t, orig.CreatedAt, v.CreatedAt)
	assert.True(t, v.UpdatedAt.After(orig.UpdatedAt))
	assert.Equal(t, "SRE", v.TargetRole)
}

func TestUpdateHelpers(t *testing.T) {
	s, _, _ := openStore(t)
	ctx := context.Background()
	id := s.ActiveID()

	v, err := s.Rename(ctx, id, "Platform roles")
	require.NoError(t, err)
	assert.Equal(t, "Platform roles", v.Name)

	v, err = s.Rename(ctx, id, "   ")
	require.NoError(t, err)
	assert.Equal(t, "Platform roles", v.Name, "blank rename keeps the name")

	v, err = s.UpdateTemplate(ctx, id, types.TemplateSwiss)
	require.NoError(t, err)
	assert.Equal(t, types.TemplateSwiss, v.Template)

	v, err = s.UpdateTemplate(ctx, id, "neon")
	require.NoError(t, err)
	assert.Equal(t, types.TemplateModern, v.Template)

	v, err = s.UpdateSectionOrder(ctx, id, []types.SectionID{"bogus", types.SectionLanguages})
	require.NoError(t, err)
	assert.Len(t, v.SectionOrder, 5)
	assert.Equal(t, types.SectionLanguages, v.SectionOrder[0])

	v, err = s.UpdateTargetRole(ctx, id, "  Staff engineer ")
	require.NoError(t, err)
	assert.Equal(t, "Staff engineer", v.TargetRole)

	_, err = s.UpdateTargetRole(ctx, "missing", "x")
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestUpdateData_CopiesInput(t *testing.T) {
	s, _, _ := openStore(t)
	ctx := context.Background()
	id := s.ActiveID()

	data := types.NewCVData()
	data.AddSkill("Go")
	_, err := s.UpdateData(ctx, id, data)
	require.NoError(t, err)

	data.Skills[0].Name = "changed after the call"
	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Data.Skills[0].Name)
}

func TestSaveFailureLeavesStoreUnchanged(t *testing.T) {
	s, backend, _ := openStore(t)
	ctx := context.Background()
	before := s.List()
	activeBefore := s.ActiveID()

	backend.Err = errors.New("disk full")

	_, err := s.Create(ctx, "New", "")
	var saveErr *SaveError
	require.True(t, errors.As(err, &saveErr))
	assert.ErrorContains(t, err, "disk full")

	_, err = s.Rename(ctx, activeBefore, "Renamed")
	require.Error(t, err)

	assert.Equal(t, before, s.List())
	assert.Equal(t, activeBefore, s.ActiveID())
}

func TestReturnedVersionsAreCopies(t *testing.T) {
	s, _, _ := openStore(t)
	v := s.Active()
	v.Name = "mutated"
	v.SectionOrder[0] = types.SectionLanguages
	assert.Equal(t, DefaultVersionName, s.Active().Name)
	assert.Equal(t, types.SectionSummary, s.Active().SectionOrder[0])
}

func TestImport_AddsAndActivates(t *testing.T) {
	s, _, _ := openStore(t)
	ctx := context.Background()
	existing := s.ActiveID()

	payload := []byte(`{"id": "imported", "name": "From file", "template": "swiss",
		"data": {"personalInfo": {"firstName": "Sam"}, "skills": [{"name": "Go", "level": 7}]},
		"sectionOrder": ["skills"], "createdAt": "2023-01-01T00:00:00Z"}`)
	v, warnings, err := s.Import(ctx, payload)
	require.NoError(t, err)

	assert.Equal(t, "imported", v.ID)
	assert.Equal(t, types.TemplateSwiss, v.Template)
	assert.Equal(t, "Sam", v.Data.PersonalInfo.FirstName)
	assert.Equal(t, types.MaxSkillLevel, v.Data.Skills[0].Level)
	assert.Len(t, v.SectionOrder, len(types.DefaultSectionOrder()))
	assert.Equal(t, types.SectionSkills, v.SectionOrder[0])
	assert.Equal(t, 2023, v.CreatedAt.Year())
	assert.NotEmpty(t, warnings)
	assert.Equal(t, v.ID, s.ActiveID())
	assert.NotEqual(t, existing, s.ActiveID())
}

func TestImport_ConflictingIDIsRegenerated(t *testing.T) {
	s, _, _ := openStore(t)
	ctx := context.Background()
	existing := s.ActiveID()

	v, warnings, err := s.Import(ctx, []byte(`{"id": "`+existing+`", "name": "Again"}`))
	require.NoError(t, err)
	assert.NotEqual(t, existing, v.ID)
	assert.Contains(t, warnings[len(warnings)-1], "already exists")
	assert.Equal(t, 2, s.Count())
}

func TestImport_RejectsNonVersion(t *testing.T) {
	s, backend, _ := openStore(t)
	saves := backend.Saves()

	_, _, err := s.Import(context.Background(), []byte(`[1, 2]`))
	var le *LoadError
	require.ErrorAs(t, err, &le)

	_, _, err = s.Import(context.Background(), []byte(`nope`))
	require.ErrorAs(t, err, &le)

	assert.Equal(t, 1, s.Count())
	assert.Equal(t, saves, backend.Saves())
}

func TestMoveSectionAndReset(t *testing.T) {
	s, _, _ := openStore(t)
	ctx := context.Background()
	id := s.ActiveID()

	v, err := s.MoveSection(ctx, id, types.SectionSkills, types.SectionExperience)
	require.NoError(t, err)
	assert.Equal(t, []types.SectionID{
		types.SectionSummary,
		types.SectionSkills,
		types.SectionExperience,
		types.SectionEducation,
		types.SectionLanguages,
	}, v.SectionOrder)

	v, err = s.MoveSection(ctx, id, "hobbies", types.SectionSummary)
	require.NoError(t, err)
	assert.Equal(t, types.SectionSkills, v.SectionOrder[1], "unknown section is a no-op")

	v, err = s.ResetSectionOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultSectionOrder(), v.SectionOrder)
}

func TestMoveItem(t *testing.T) {
	s, _, _ := openStore(t)
	ctx := context.Background()
	id := s.ActiveID()

	data := types.NewCVData()
	goID := data.AddSkill("Go")
	sqlID := data.AddSkill("SQL")
	k8sID := data.AddSkill("Kubernetes")
	_, err := s.UpdateData(ctx, id, data)
	require.NoError(t, err)

	v, err := s.MoveItem(ctx, id, types.SectionSkills, k8sID, goID)
	require.NoError(t, err)
	require.Len(t, v.Data.Skills, 3)
	assert.Equal(t, []string{k8sID, goID, sqlID}, []string{v.Data.Skills[0].ID, v.Data.Skills[1].ID, v.Data.Skills[2].ID})

	v, err = s.MoveItem(ctx, id, types.SectionSummary, goID, sqlID)
	require.NoError(t, err)
	assert.Equal(t, k8sID, v.Data.Skills[0].ID)

	_, err = s.MoveItem(ctx, "missing", types.SectionSkills, goID, sqlID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}
