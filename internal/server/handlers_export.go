package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
	"golang.org/x/sync/errgroup"
)

// BatchExportRequest represents the request body for POST /versions/{id}/export/batch
type BatchExportRequest struct {
	Formats []export.Format `json:"formats" validate:"required,min=1,max=4,unique,dive,oneof=pdf_visual pdf_ats pdf_print docx"`
	// Options apply to every format; their Format field is ignored
	Options *export.Options `json:"options,omitempty" validate:"-"`
}

// ExportListResponse represents the response for GET /versions/{id}/exports
type ExportListResponse struct {
	Exports []db.ExportRecord `json:"exports"`
}

// exportOptions overlays the request body on the server defaults
func (s *Server) exportOptions(r *http.Request) (export.Options, error) {
	opts := s.defaults
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return export.Options{}, &ErrValidation{Field: "body", Message: err.Error()}
	}
	return opts, nil
}

// handleExport produces one file and returns it as an attachment
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.failure(w, err)
		return
	}
	opts, err := s.exportOptions(r)
	if err != nil {
		s.failure(w, err)
		return
	}

	res, err := s.exporter.Export(r.Context(), v, opts)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.record(r.Context(), v.ID, opts.Format, res)

	sections := make([]string, 0, len(res.Sections))
	for _, id := range res.Sections {
		sections = append(sections, string(id))
	}
	w.Header().Set("X-CV-Sections", strings.Join(sections, ","))
	if res.Pages > 0 {
		w.Header().Set("X-CV-Pages", strconv.Itoa(res.Pages))
	}
	s.attachment(w, res.Filename, res.ContentType, res.Data)
}

// handleExportBatch produces several formats of one version and returns them as a zip.
// Direct formats run concurrently; browser formats share the version's export lock and
// run one after another.
func (s *Server) handleExportBatch(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.failure(w, err)
		return
	}
	var req BatchExportRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	base := s.defaults
	if req.Options != nil {
		base = *req.Options
	}

	results, err := s.exportBatch(r.Context(), v, req.Formats, base)
	if err != nil {
		s.failure(w, err)
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := map[string]bool{}
	for i, res := range results {
		name := res.Filename
		if used[name] {
			ext := path.Ext(name)
			name = strings.TrimSuffix(name, ext) + "_" + string(req.Formats[i]) + ext
		}
		used[name] = true

		f, err := zw.Create(name)
		if err == nil {
			_, err = f.Write(res.Data)
		}
		if err != nil {
			s.failure(w, err)
			return
		}
		s.record(r.Context(), v.ID, req.Formats[i], res)
	}
	if err := zw.Close(); err != nil {
		s.failure(w, err)
		return
	}

	loc := layout.LocaleFor(layout.Or(base.Locale, s.locale))
	s.attachment(w, export.WithExtension(v.Name, "zip", loc.DefaultFile), "application/zip", buf.Bytes())
}

func (s *Server) exportBatch(ctx context.Context, v types.Version, formats []export.Format, base export.Options) ([]*export.Result, error) {
	results := make([]*export.Result, len(formats))
	run := func(ctx context.Context, i int) error {
		opts := base
		opts.Format = formats[i]
		res, err := s.exporter.Export(ctx, v, opts)
		if err != nil {
			return err
		}
		results[i] = res
		return nil
	}

	var viaBrowser []int
	for i, f := range formats {
		if f.UsesBrowser() {
			viaBrowser = append(viaBrowser, i)
		}
	}
	// refuse up front rather than discard the direct formats afterwards
	if len(viaBrowser) > 0 && s.exporter.Busy(v.ID) {
		return nil, &export.BusyError{VersionID: v.ID}
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		if !f.UsesBrowser() {
			g.Go(func() error { return run(ctx, i) })
		}
	}
	if len(viaBrowser) > 0 {
		g.Go(func() error {
			for _, i := range viaBrowser {
				if err := run(ctx, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// handleListExports returns the export history of a version
func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, http.StatusNotImplemented, "Export history requires a database")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.failure(w, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		limit = n
	}

	recs, err := s.history.ListExports(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		s.failure(w, err)
		return
	}
	if recs == nil {
		recs = []db.ExportRecord{}
	}
	s.jsonResponse(w, http.StatusOK, ExportListResponse{Exports: recs})
}

// record stores res in the export history. Failures are logged; the file is still served.
func (s *Server) record(ctx context.Context, versionID string, format export.Format, res *export.Result) {
	if s.history == nil {
		return
	}
	sections := make([]string, 0, len(res.Sections))
	for _, id := range res.Sections {
		sections = append(sections, string(id))
	}
	_, err := s.history.RecordExport(ctx, db.ExportRecord{
		VersionID: versionID,
		Format:    string(format),
		Filename:  res.Filename,
		Sections:  sections,
		SizeBytes: len(res.Data),
		Pages:     res.Pages,
	})
	if err != nil {
		log.Printf("[SERVER] Failed to record export of %s: %v", versionID, err)
	}
}

func (s *Server) attachment(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("Error writing attachment: %v", err)
	}
}
