package server

import (
	"log"
	"net/http"
	"strconv"

	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/templates"
	"github.com/jonathan/cv-builder/internal/types"
)

// GalleryTile represents one template rendering in GET /versions/{id}/gallery
type GalleryTile struct {
	Template types.TemplateID  `json:"template"`
	Selected bool              `json:"selected"`
	Sections []types.SectionID `json:"sections"`
	HTML     string            `json:"html,omitempty"`
}

// localeFor picks the request's ?locale= or the server default
func (s *Server) localeFor(r *http.Request) layout.Locale {
	if code := r.URL.Query().Get("locale"); code != "" {
		return layout.LocaleFor(code)
	}
	return layout.LocaleFor(s.locale)
}

// previewScale reads ?scale= or derives it from ?width= (container width in CSS px)
func previewScale(r *http.Request) (float64, error) {
	q := r.URL.Query()
	if raw := q.Get("scale"); raw != "" {
		scale, err := strconv.ParseFloat(raw, 64)
		if err != nil || scale <= 0 || scale > 4 {
			return 0, &ErrValidation{Field: "scale", Message: "must be a number in (0, 4]"}
		}
		return scale, nil
	}
	if raw := q.Get("width"); raw != "" {
		width, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, &ErrValidation{Field: "width", Message: "must be a number"}
		}
		return templates.PreviewScale(width), nil
	}
	return 1, nil
}

// handlePreview renders a version as HTML. ?template= previews another template without
// saving it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.failure(w, err)
		return
	}
	scale, err := previewScale(r)
	if err != nil {
		s.failure(w, err)
		return
	}

	tmpl := v.Template
	if raw := r.URL.Query().Get("template"); raw != "" {
		tmpl = types.TemplateID(raw)
	}
	doc, err := templates.Select(tmpl.OrDefault(), s.localeFor(r)).Render(v.Data, layout.ResolveOrder(v.SectionOrder))
	if err != nil {
		s.failure(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.RenderHTML(w, doc, templates.HTMLOptions{Scale: scale}); err != nil {
		// Headers may already be written
		log.Printf("[SERVER] Preview of %s failed: %v", v.ID, err)
	}
}

// handleGallery renders a version through every template. ?html=false leaves out the
// markup and keeps the section lists.
func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.failure(w, err)
		return
	}
	scale, err := previewScale(r)
	if err != nil {
		s.failure(w, err)
		return
	}

	previews, err := templates.Gallery(r.Context(), v.Data, layout.ResolveOrder(v.SectionOrder), s.localeFor(r), templates.HTMLOptions{Scale: scale})
	if err != nil {
		s.failure(w, err)
		return
	}

	withHTML := r.URL.Query().Get("html") != "false"
	current := v.Template.OrDefault()
	tiles := make([]GalleryTile, 0, len(previews))
	for _, p := range previews {
		tile := GalleryTile{Template: p.Template, Selected: p.Template == current, Sections: p.Sections}
		if withHTML {
			tile.HTML = p.HTML
		}
		tiles = append(tiles, tile)
	}
	s.jsonResponse(w, http.StatusOK, tiles)
}
