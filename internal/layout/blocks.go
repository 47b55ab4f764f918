package layout

import "github.com/jonathan/cv-builder/internal/types"

// Block is one layout slot: a single section, or a side-by-side pair
type Block struct {
	Sections []types.SectionID
}

// PlanBlocks turns the resolved order into renderable blocks, skipping empty sections.
//
// With pairing enabled, skills and languages share one block when they are directly
// adjacent in the order (either way round) and both have content; otherwise they stack.
// Block order always follows the resolved order.
func PlanBlocks(data types.CVData, order []types.SectionID, pairing bool) []Block {
	resolved := ResolveOrder(order)
	blocks := make([]Block, 0, len(resolved))

	for i := 0; i < len(resolved); i++ {
		id := resolved[i]
		if pairing && i+1 < len(resolved) && isPairable(id, resolved[i+1]) {
			next := resolved[i+1]
			a, b := HasContent(data, id), HasContent(data, next)
			switch {
			case a && b:
				blocks = append(blocks, Block{Sections: []types.SectionID{id, next}})
			case a:
				blocks = append(blocks, Block{Sections: []types.SectionID{id}})
			case b:
				blocks = append(blocks, Block{Sections: []types.SectionID{next}})
			}
			i++
			continue
		}
		if HasContent(data, id) {
			blocks = append(blocks, Block{Sections: []types.SectionID{id}})
		}
	}
	return blocks
}

func isPairable(a, b types.SectionID) bool {
	return (a == types.SectionSkills && b == types.SectionLanguages) ||
		(a == types.SectionLanguages && b == types.SectionSkills)
}

// SplitColumns routes visible sections to a side column and a main column.
// Membership is a structural choice of the theme; order inside each column follows the
// resolved order.
func SplitColumns(data types.CVData, order []types.SectionID, side map[types.SectionID]bool) (sideCol, mainCol []types.SectionID) {
	for _, s := range VisibleSections(data, order) {
		if side[s] {
			sideCol = append(sideCol, s)
		} else {
			mainCol = append(mainCol, s)
		}
	}
	return sideCol, mainCol
}

// SkillsLanguagesSide is the sidebar membership used by two-column document themes
var SkillsLanguagesSide = map[types.SectionID]bool{
	types.SectionSkills:    true,
	types.SectionLanguages: true,
}

// SummarySkillsLanguagesSide is the sidebar membership of grid-style preview templates
var SummarySkillsLanguagesSide = map[types.SectionID]bool{
	types.SectionSummary:   true,
	types.SectionSkills:    true,
	types.SectionLanguages: true,
}
