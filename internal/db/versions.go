package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/versions"
)

// ListVersionRows returns every stored version in collection order
func (db *DB) ListVersionRows(ctx context.Context) ([]VersionRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, position, name, template, target_role, section_order, data, created_at, updated_at
		 FROM cv_versions ORDER BY position ASC, created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var out []VersionRow
	for rows.Next() {
		var r VersionRow
		if err := rows.Scan(&r.ID, &r.Position, &r.Name, &r.Template, &r.TargetRole,
			&r.SectionOrder, &r.Data, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return out, nil
}

// ActiveVersionID returns the stored active version id, empty when unset
func (db *DB) ActiveVersionID(ctx context.Context) (string, error) {
	var id string
	err := db.pool.QueryRow(ctx,
		`SELECT value FROM cv_store_state WHERE key = $1`, StateActiveVersion,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get active version: %w", err)
	}
	return id, nil
}

// ReplaceVersions writes the whole collection and the active id in one transaction
func (db *DB) ReplaceVersions(ctx context.Context, rows []VersionRow, activeID string) error {
	return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM cv_versions`); err != nil {
			return fmt.Errorf("failed to clear versions: %w", err)
		}
		for _, r := range rows {
			_, err := tx.Exec(ctx,
				`INSERT INTO cv_versions (id, position, name, template, target_role, section_order, data, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				r.ID, r.Position, r.Name, r.Template, r.TargetRole, r.SectionOrder, r.Data, r.CreatedAt, r.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to save version %s: %w", r.ID, err)
			}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO cv_store_state (key, value) VALUES ($1, $2)
			 ON CONFLICT (key) DO UPDATE SET value = $2`,
			StateActiveVersion, activeID,
		)
		if err != nil {
			return fmt.Errorf("failed to save active version: %w", err)
		}
		return nil
	})
}

// RowFromVersion converts a version to its table form
func RowFromVersion(v types.Version, position int) (VersionRow, error) {
	data, err := json.Marshal(v.Data)
	if err != nil {
		return VersionRow{}, fmt.Errorf("failed to marshal data of version %s: %w", v.ID, err)
	}
	order, err := json.Marshal(v.SectionOrder)
	if err != nil {
		return VersionRow{}, fmt.Errorf("failed to marshal section order of version %s: %w", v.ID, err)
	}
	return VersionRow{
		ID:           v.ID,
		Position:     position,
		Name:         v.Name,
		Template:     string(v.Template),
		TargetRole:   v.TargetRole,
		SectionOrder: order,
		Data:         data,
		CreatedAt:    v.CreatedAt.UTC(),
		UpdatedAt:    v.UpdatedAt.UTC(),
	}, nil
}

// VersionFromRow rebuilds a version, repairing damaged JSON columns the same way the
// file store repairs its payload
func VersionFromRow(r VersionRow, now time.Time) (types.Version, []string) {
	raw := map[string]any{
		"id":         r.ID,
		"name":       r.Name,
		"template":   r.Template,
		"targetRole": r.TargetRole,
		"createdAt":  r.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt":  r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	var data, order any
	if err := json.Unmarshal(r.Data, &data); err == nil {
		raw["data"] = data
	}
	if err := json.Unmarshal(r.SectionOrder, &order); err == nil {
		raw["sectionOrder"] = order
	}

	v, warnings, _ := versions.NormalizeVersion(raw, now)
	return v, warnings
}

// VersionBackend stores the version collection in PostgreSQL
type VersionBackend struct {
	db      *DB
	verbose bool
}

// NewVersionBackend creates a versions.Backend on top of db
func NewVersionBackend(db *DB, verbose bool) *VersionBackend {
	return &VersionBackend{db: db, verbose: verbose}
}

// Load implements versions.Backend
func (b *VersionBackend) Load(ctx context.Context) (versions.Snapshot, error) {
	rows, err := b.db.ListVersionRows(ctx)
	if err != nil {
		return versions.Snapshot{}, &versions.LoadError{Message: "failed to read versions", Cause: err}
	}
	active, err := b.db.ActiveVersionID(ctx)
	if err != nil {
		return versions.Snapshot{}, &versions.LoadError{Message: "failed to read active version", Cause: err}
	}

	snap := versions.Snapshot{ActiveID: active}
	now := time.Now()
	for _, r := range rows {
		v, warnings := VersionFromRow(r, now)
		for _, w := range warnings {
			log.Printf("[STORE] Repaired row %s: %s", r.ID, w)
		}
		snap.Versions = append(snap.Versions, v)
	}
	return snap, nil
}

// Save implements versions.Backend
func (b *VersionBackend) Save(ctx context.Context, snap versions.Snapshot) error {
	rows := make([]VersionRow, 0, len(snap.Versions))
	for i, v := range snap.Versions {
		r, err := RowFromVersion(v, i)
		if err != nil {
			return err
		}
		rows = append(rows, r)
	}
	if err := b.db.ReplaceVersions(ctx, rows, snap.ActiveID); err != nil {
		return err
	}
	if b.verbose {
		log.Printf("[STORE] Saved %d version(s) to database", len(rows))
	}
	return nil
}
