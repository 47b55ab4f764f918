package layout

import "github.com/jonathan/cv-builder/internal/types"

// Move removes the element at index from and reinserts it at index to, shifting the
// elements in between by one. It always returns a new slice; out-of-range indexes
// return an unchanged copy.
func Move[T any](items []T, from, to int) []T {
	out := append(make([]T, 0, len(items)), items...)
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) || from == to {
		return out
	}

	item := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = item
	return out
}

// MoveFunc moves the item whose key is activeKey to the position of the item whose key
// is overKey. Missing keys and self-moves are no-ops.
func MoveFunc[T any](items []T, key func(T) string, activeKey, overKey string) []T {
	from, to := -1, -1
	for i, it := range items {
		k := key(it)
		if k == activeKey && from == -1 {
			from = i
		}
		if k == overKey && to == -1 {
			to = i
		}
	}
	if from == -1 || to == -1 {
		return append(make([]T, 0, len(items)), items...)
	}
	return Move(items, from, to)
}

// MoveByID is MoveFunc keyed on the item identity
func MoveByID[T types.Identified](items []T, activeID, overID string) []T {
	return MoveFunc(items, func(it T) string { return it.ItemID() }, activeID, overID)
}

// ReorderList moves an item inside one of the four lists of data, selected by section.
// Summary has no items; unknown sections and ids leave data unchanged.
func ReorderList(data types.CVData, section types.SectionID, activeID, overID string) types.CVData {
	out := data.Clone()
	switch section {
	case types.SectionExperience:
		out.Experiences = MoveByID(out.Experiences, activeID, overID)
	case types.SectionEducation:
		out.Education = MoveByID(out.Education, activeID, overID)
	case types.SectionSkills:
		out.Skills = MoveByID(out.Skills, activeID, overID)
	case types.SectionLanguages:
		out.Languages = MoveByID(out.Languages, activeID, overID)
	}
	return out
}
