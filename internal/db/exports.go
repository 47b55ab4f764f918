package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// DefaultExportListLimit bounds ListExports when no limit is given
const DefaultExportListLimit = 50

// RecordExport stores one export in the history and returns its id
func (db *DB) RecordExport(ctx context.Context, rec ExportRecord) (uuid.UUID, error) {
	if rec.Sections == nil {
		rec.Sections = []string{}
	}
	sections, err := json.Marshal(rec.Sections)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal sections: %w", err)
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO cv_exports (id, version_id, format, filename, sections, size_bytes, pages)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, rec.VersionID, rec.Format, rec.Filename, sections, rec.SizeBytes, rec.Pages,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record export: %w", err)
	}
	return id, nil
}

// ListExports returns the most recent exports of a version, newest first
func (db *DB) ListExports(ctx context.Context, versionID string, limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = DefaultExportListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, version_id, format, filename, sections, size_bytes, pages, created_at
		 FROM cv_exports WHERE version_id = $1 ORDER BY created_at DESC LIMIT $2`,
		versionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var out []ExportRecord
	for rows.Next() {
		var rec ExportRecord
		var sections []byte
		if err := rows.Scan(&rec.ID, &rec.VersionID, &rec.Format, &rec.Filename, &sections,
			&rec.SizeBytes, &rec.Pages, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		if err := json.Unmarshal(sections, &rec.Sections); err != nil {
			rec.Sections = nil
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return out, nil
}
