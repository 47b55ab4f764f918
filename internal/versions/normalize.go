package versions

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
)

// DefaultVersionName names the version created when the store is empty
const DefaultVersionName = "My main CV"

// Snapshot is the persisted shape of the collection
type Snapshot struct {
	Versions []types.Version `json:"versions"`
	ActiveID string          `json:"activeVersionId"`
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{ActiveID: s.ActiveID, Versions: make([]types.Version, len(s.Versions))}
	for i, v := range s.Versions {
		out.Versions[i] = v.Clone()
	}
	return out
}

// DecodeSnapshot parses a persisted payload. It accepts the snapshot object or a bare
// array of versions. Missing or malformed fields are rebuilt from defaults and reported
// as warnings; only a payload that is not JSON at all is an error.
func DecodeSnapshot(data []byte, now time.Time) (Snapshot, []string, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, nil, &LoadError{Message: "payload is not valid JSON", Cause: err}
	}

	n := &normalizer{now: now.UTC(), seen: map[string]bool{}}
	var snap Snapshot
	var list any

	switch root := raw.(type) {
	case map[string]any:
		list = root["versions"]
		snap.ActiveID, _ = root["activeVersionId"].(string)
	case []any:
		list = root
	default:
		n.warn("(root): expected an object or array, starting empty")
	}

	items, ok := list.([]any)
	if !ok && list != nil {
		n.warn("versions: expected an array, starting empty")
	}
	for i, item := range items {
		if v, ok := n.version(fmt.Sprintf("versions[%d]", i), item); ok {
			snap.Versions = append(snap.Versions, v)
		}
	}
	return snap, n.warnings, nil
}

// NormalizeVersion rebuilds one version from a decoded JSON value. ok is false when the
// value is not an object at all.
func NormalizeVersion(raw any, now time.Time) (types.Version, []string, bool) {
	n := &normalizer{now: now.UTC(), seen: map[string]bool{}}
	v, ok := n.version("version", raw)
	return v, n.warnings, ok
}

type normalizer struct {
	now      time.Time
	seen     map[string]bool
	warnings []string
}

func (n *normalizer) warn(format string, args ...any) {
	n.warnings = append(n.warnings, fmt.Sprintf(format, args...))
}

func (n *normalizer) version(path string, raw any) (types.Version, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		n.warn("%s: not an object, dropped", path)
		return types.Version{}, false
	}

	v := types.Version{
		ID:         str(m, "id"),
		Name:       str(m, "name"),
		Template:   types.TemplateID(str(m, "template")),
		TargetRole: str(m, "targetRole"),
	}

	if v.ID == "" || n.seen[v.ID] {
		n.warn("%s.id: missing or duplicate, regenerated", path)
		v.ID = types.NewID()
	}
	n.seen[v.ID] = true

	if _, isString := m["name"].(string); !isString {
		n.warn("%s.name: missing, using default", path)
		v.Name = DefaultVersionName
	}
	if v.Template == "" {
		v.Template = types.DefaultTemplate
	}

	if d, ok := m["data"].(map[string]any); ok {
		v.Data = n.data(path+".data", d)
	} else {
		n.warn("%s.data: missing, using empty CV", path)
		v.Data = types.NewCVData()
	}

	var order []string
	if list, ok := m["sectionOrder"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				order = append(order, s)
			}
		}
	} else {
		n.warn("%s.sectionOrder: missing, using default order", path)
	}
	v.SectionOrder = layout.ParseOrder(order)

	v.CreatedAt = n.timestamp(path+".createdAt", m["createdAt"])
	v.UpdatedAt = n.timestamp(path+".updatedAt", m["updatedAt"])
	return v, true
}

func (n *normalizer) data(path string, m map[string]any) types.CVData {
	data := types.NewCVData()

	if p, ok := m["personalInfo"].(map[string]any); ok {
		data.PersonalInfo = types.PersonalInfo{
			FirstName: str(p, "firstName"),
			LastName:  str(p, "lastName"),
			Title:     str(p, "title"),
			Email:     str(p, "email"),
			Phone:     str(p, "phone"),
			Address:   str(p, "address"),
			Photo:     str(p, "photo"),
			Summary:   str(p, "summary"),
			LinkedIn:  str(p, "linkedin"),
			Website:   str(p, "website"),
		}
	} else if m["personalInfo"] != nil {
		n.warn("%s.personalInfo: not an object, using empty header", path)
	}

	for _, e := range n.objects(path+".experiences", m["experiences"]) {
		data.Experiences = append(data.Experiences, types.Experience{
			ID:          itemID(e),
			Company:     str(e, "company"),
			Position:    str(e, "position"),
			StartDate:   str(e, "startDate"),
			EndDate:     str(e, "endDate"),
			Current:     e["current"] == true,
			Description: str(e, "description"),
		})
	}
	for _, e := range n.objects(path+".education", m["education"]) {
		data.Education = append(data.Education, types.Education{
			ID:          itemID(e),
			School:      str(e, "school"),
			Degree:      str(e, "degree"),
			Field:       str(e, "field"),
			StartDate:   str(e, "startDate"),
			EndDate:     str(e, "endDate"),
			Description: str(e, "description"),
		})
	}
	for _, s := range n.objects(path+".skills", m["skills"]) {
		data.Skills = append(data.Skills, types.Skill{
			ID:    itemID(s),
			Name:  str(s, "name"),
			Level: skillLevel(s["level"]),
		})
	}
	for _, l := range n.objects(path+".languages", m["languages"]) {
		data.Languages = append(data.Languages, types.Language{
			ID:    itemID(l),
			Name:  str(l, "name"),
			Level: str(l, "level"),
		})
	}
	return data
}

// objects returns the object elements of a JSON array, dropping everything else
func (n *normalizer) objects(path string, raw any) []map[string]any {
	if raw == nil {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		n.warn("%s: expected an array, using empty list", path)
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			n.warn("%s[%d]: not an object, dropped", path, i)
			continue
		}
		out = append(out, m)
	}
	return out
}

func (n *normalizer) timestamp(path string, raw any) time.Time {
	if s, ok := raw.(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC()
		}
	}
	n.warn("%s: missing or malformed, using current time", path)
	return n.now
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func itemID(m map[string]any) string {
	if id := str(m, "id"); id != "" {
		return id
	}
	return types.NewID()
}

func skillLevel(raw any) int {
	f, ok := raw.(float64)
	if !ok || math.IsNaN(f) {
		return types.DefaultSkillLevel
	}
	return min(types.MaxSkillLevel, max(types.MinSkillLevel, int(math.Round(f))))
}
