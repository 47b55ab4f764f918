package types

import "time"

// Version is a named, independently editable CV with its own template and section order.
// A version exclusively owns its Data and SectionOrder.
type Version struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Template     TemplateID  `json:"template"`
	Data         CVData      `json:"data"`
	TargetRole   string      `json:"targetRole,omitempty"`
	SectionOrder []SectionID `json:"sectionOrder"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// NewVersion creates a version with empty data and the default section order
func NewVersion(name string, template TemplateID, now time.Time) Version {
	return Version{
		ID:           NewID(),
		Name:         name,
		Template:     template.OrDefault(),
		Data:         NewCVData(),
		SectionOrder: DefaultSectionOrder(),
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
}

// Clone returns a deep copy of the version
func (v Version) Clone() Version {
	out := v
	out.Data = v.Data.Clone()
	out.SectionOrder = append(make([]SectionID, 0, len(v.SectionOrder)), v.SectionOrder...)
	return out
}
