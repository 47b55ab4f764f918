package db

import (
	"time"

	"github.com/google/uuid"
)

// VersionRow is a cv_versions record. Data and SectionOrder hold raw JSON so that a
// damaged row can be repaired on load rather than failing the scan.
type VersionRow struct {
	ID           string
	Position     int
	Name         string
	Template     string
	TargetRole   string
	SectionOrder []byte
	Data         []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StateActiveVersion is the cv_store_state key of the active version id
const StateActiveVersion = "active_version_id"

// ExportRecord is one entry of the export history
type ExportRecord struct {
	ID        uuid.UUID `json:"id"`
	VersionID string    `json:"version_id"`
	Format    string    `json:"format"`
	Filename  string    `json:"filename"`
	Sections  []string  `json:"sections"`
	SizeBytes int       `json:"size_bytes"`
	Pages     int       `json:"pages"`
	CreatedAt time.Time `json:"created_at"`
}
