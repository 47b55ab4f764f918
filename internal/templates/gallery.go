package templates

import (
	"context"

	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
	"golang.org/x/sync/errgroup"
)

// Preview is one rendered gallery tile
type Preview struct {
	Template types.TemplateID
	Sections []types.SectionID
	HTML     string
}

// Gallery renders the same CV through every template, in selector order
func Gallery(ctx context.Context, data types.CVData, order []types.SectionID, loc layout.Locale, opts HTMLOptions) ([]Preview, error) {
	ids := types.AllTemplates()
	out := make([]Preview, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := Select(id, loc).Render(data, order)
			if err != nil {
				return err
			}
			html, err := RenderString(doc, opts)
			if err != nil {
				return err
			}
			out[i] = Preview{Template: id, Sections: doc.Sections(), HTML: html}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
