// Package versions holds the collection of named CV versions and the active selection.
// At least one version always exists, and exactly one is active.
package versions

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
)

// Backend persists the whole collection
type Backend interface {
	// Load returns the stored snapshot. A backend with nothing stored returns an empty
	// snapshot and no error.
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Store is the version collection. Every mutation is persisted before it becomes visible;
// a failed save leaves the store unchanged. Returned versions are copies.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	snap    Snapshot
	now     func() time.Time
	verbose bool
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithVerbose enables per-mutation logging
func WithVerbose(verbose bool) Option {
	return func(s *Store) { s.verbose = verbose }
}

// Open loads the collection from backend. An empty collection gets a default version,
// and an unknown active id falls back to the first version.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}

	dirty := false
	if len(snap.Versions) == 0 {
		snap.Versions = []types.Version{types.NewVersion(DefaultVersionName, types.DefaultTemplate, s.now())}
		dirty = true
	}
	if indexOf(snap.Versions, snap.ActiveID) < 0 {
		snap.ActiveID = snap.Versions[0].ID
		dirty = true
	}

	if dirty {
		if err := backend.Save(ctx, snap); err != nil {
			return nil, &SaveError{Message: "failed to initialize store", Cause: err}
		}
	}
	s.snap = snap

	if s.verbose {
		log.Printf("[STORE] Loaded %d version(s), active %s", len(snap.Versions), snap.ActiveID)
	}
	return s, nil
}

func indexOf(list []types.Version, id string) int {
	for i, v := range list {
		if v.ID == id {
			return i
		}
	}
	return -1
}

// commit persists next and swaps it in. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next Snapshot, action string) error {
	if err := s.backend.Save(ctx, next); err != nil {
		return &SaveError{Message: "failed to " + action, Cause: err}
	}
	s.snap = next
	if s.verbose {
		log.Printf("[STORE] %s (versions=%d, active=%s)", action, len(next.Versions), next.ActiveID)
	}
	return nil
}

// List returns every version in creation order
func (s *Store) List() []types.Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone().Versions
}

// Count returns the number of versions
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snap.Versions)
}

// ActiveID returns the id of the active version
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.ActiveID
}

// Active returns the active version
func (s *Store) Active() types.Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := max(0, indexOf(s.snap.Versions, s.snap.ActiveID))
	return s.snap.Versions[i].Clone()
}

// Get returns the version with the given id
func (s *Store) Get(id string) (types.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.snap.Versions, id)
	if i < 0 {
		return types.Version{}, &NotFoundError{VersionID: id}
	}
	return s.snap.Versions[i].Clone(), nil
}

// Create adds a version with empty data and the default section order, and makes it active
func (s *Store) Create(ctx context.Context, name string, template types.TemplateID) (types.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := types.NewVersion(layout.Or(strings.TrimSpace(name), DefaultVersionName), template, s.now())
	next := s.snap.Clone()
	next.Versions = append(next.Versions, v)
	next.ActiveID = v.ID
	if err := s.commit(ctx, next, "create version "+v.ID); err != nil {
		return types.Version{}, err
	}
	return v.Clone(), nil
}

// Duplicate copies a version under a new identity and makes the copy active. An empty
// name gives "<name> (copy)".
func (s *Store) Duplicate(ctx context.Context, id, name string) (types.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.snap.Versions, id)
	if i < 0 {
		return types.Version{}, &NotFoundError{VersionID: id}
	}

	now := s.now().UTC()
	dup := s.snap.Versions[i].Clone()
	dup.ID = types.NewID()
	dup.Name = layout.Or(strings.TrimSpace(name), dup.Name+" (copy)")
	dup.CreatedAt, dup.UpdatedAt = now, now

	next := s.snap.Clone()
	next.Versions = append(next.Versions, dup)
	next.ActiveID = dup.ID
	if err := s.commit(ctx, next, "duplicate version "+id); err != nil {
		return types.Version{}, err
	}
	return dup.Clone(), nil
}

// Delete removes a version. Deleting the last version returns LastVersionError and changes
// nothing; deleting the active version activates the first remaining one.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.snap.Versions, id)
	if i < 0 {
		return &NotFoundError{VersionID: id}
	}
	if len(s.snap.Versions) <= 1 {
		return &LastVersionError{VersionID: id}
	}

	next := s.snap.Clone()
	next.Versions = append(next.Versions[:i], next.Versions[i+1:]...)
	if next.ActiveID == id {
		next.ActiveID = next.Versions[0].ID
	}
	return s.commit(ctx, next, "delete version "+id)
}

// Switch makes another version active. Nothing else changes.
func (s *Store) Switch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.snap.Versions, id) < 0 {
		return &NotFoundError{VersionID: id}
	}
	if s.snap.ActiveID == id {
		return nil
	}
	next := s.snap.Clone()
	next.ActiveID = id
	return s.commit(ctx, next, "switch to version "+id)
}

// Update applies fn to a copy of the version and bumps UpdatedAt. fn cannot change the
// identity or creation time.
func (s *Store) Update(ctx context.Context, id string, fn func(*types.Version)) (types.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.snap.Versions, id)
	if i < 0 {
		return types.Version{}, &NotFoundError{VersionID: id}
	}

	next := s.snap.Clone()
	v := &next.Versions[i]
	createdAt := v.CreatedAt
	fn(v)
	v.ID = id
	v.CreatedAt = createdAt
	v.UpdatedAt = s.now().UTC()

	if err := s.commit(ctx, next, "update version "+id); err != nil {
		return types.Version{}, err
	}
	return v.Clone(), nil
}

// Rename sets the display name. A blank name keeps the current one.
func (s *Store) Rename(ctx context.Context, id, name string) (types.Version, error) {
	return s.Update(ctx, id, func(v *types.Version) {
		v.Name = layout.Or(strings.TrimSpace(name), v.Name)
	})
}

// UpdateData replaces the CV data of a version
func (s *Store) UpdateData(ctx context.Context, id string, data types.CVData) (types.Version, error) {
	data = data.Clone()
	return s.Update(ctx, id, func(v *types.Version) { v.Data = data })
}

// UpdateTemplate changes the template. Unknown ids are stored as the default template.
func (s *Store) UpdateTemplate(ctx context.Context, id string, template types.TemplateID) (types.Version, error) {
	return s.Update(ctx, id, func(v *types.Version) { v.Template = template.OrDefault() })
}

// UpdateSectionOrder stores the resolved form of order
func (s *Store) UpdateSectionOrder(ctx context.Context, id string, order []types.SectionID) (types.Version, error) {
	resolved := layout.ResolveOrder(order)
	return s.Update(ctx, id, func(v *types.Version) { v.SectionOrder = resolved })
}

// MoveSection moves section active to the position of over in the version's order
func (s *Store) MoveSection(ctx context.Context, id string, active, over types.SectionID) (types.Version, error) {
	return s.Update(ctx, id, func(v *types.Version) {
		v.SectionOrder = layout.MoveSection(layout.ResolveOrder(v.SectionOrder), active, over)
	})
}

// ResetSectionOrder restores the default section order
func (s *Store) ResetSectionOrder(ctx context.Context, id string) (types.Version, error) {
	return s.Update(ctx, id, func(v *types.Version) { v.SectionOrder = types.DefaultSectionOrder() })
}

// MoveItem reorders one of the item lists of a version. Unknown ids leave it unchanged.
func (s *Store) MoveItem(ctx context.Context, id string, section types.SectionID, activeID, overID string) (types.Version, error) {
	return s.Update(ctx, id, func(v *types.Version) {
		v.Data = layout.ReorderList(v.Data, section, activeID, overID)
	})
}

// UpdateTargetRole sets the free-text target role
func (s *Store) UpdateTargetRole(ctx context.Context, id, role string) (types.Version, error) {
	return s.Update(ctx, id, func(v *types.Version) { v.TargetRole = strings.TrimSpace(role) })
}

// Import adds a version decoded from an exported document. The payload is normalized
// like a persisted one; a conflicting id is replaced. The imported version becomes active.
func (s *Store) Import(ctx context.Context, content []byte) (types.Version, []string, error) {
	var raw any
	if err := json.Unmarshal(content, &raw); err != nil {
		return types.Version{}, nil, &LoadError{Message: "import is not valid JSON", Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	v, warnings, ok := NormalizeVersion(raw, now)
	if !ok {
		return types.Version{}, warnings, &LoadError{Message: "import is not a version object"}
	}
	if indexOf(s.snap.Versions, v.ID) >= 0 {
		warnings = append(warnings, fmt.Sprintf("version.id: %s already exists, regenerated", v.ID))
		v.ID = types.NewID()
	}
	v.UpdatedAt = now

	next := s.snap.Clone()
	next.Versions = append(next.Versions, v)
	next.ActiveID = v.ID
	if err := s.commit(ctx, next, "import version "+v.ID); err != nil {
		return types.Version{}, warnings, err
	}
	return v.Clone(), warnings, nil
}
