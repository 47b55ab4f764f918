// Package layout holds the pure rules shared by the preview templates and every exporter:
// section order resolution, list reordering, section inclusion, date formatting and block planning.
package layout

import "github.com/jonathan/cv-builder/internal/types"

// ResolveOrder normalizes a candidate section order into the authoritative render order.
//
// Unknown tags and repeated tags are dropped. An empty result falls back to the default
// order. Known sections missing from a partial candidate are appended in default order so
// the result is always a permutation of the five known sections.
func ResolveOrder(candidate []types.SectionID) []types.SectionID {
	seen := make(map[types.SectionID]bool, len(candidate))
	order := make([]types.SectionID, 0, len(types.DefaultSectionOrder()))

	for _, s := range candidate {
		if !s.Valid() || seen[s] {
			continue
		}
		seen[s] = true
		order = append(order, s)
	}

	if len(order) == 0 {
		return types.DefaultSectionOrder()
	}

	for _, s := range types.DefaultSectionOrder() {
		if !seen[s] {
			order = append(order, s)
		}
	}
	return order
}

// ParseOrder converts raw persisted strings into section ids and resolves them
func ParseOrder(raw []string) []types.SectionID {
	ids := make([]types.SectionID, 0, len(raw))
	for _, r := range raw {
		ids = append(ids, types.SectionID(r))
	}
	return ResolveOrder(ids)
}

// MoveSection moves section active to the index currently held by over.
// Unknown endpoints and self-moves leave the order unchanged.
func MoveSection(order []types.SectionID, active, over types.SectionID) []types.SectionID {
	return MoveFunc(order, func(s types.SectionID) string { return string(s) }, string(active), string(over))
}
