package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/types"
)

// maxImportBytes bounds an imported version; photos are embedded as data URLs
const maxImportBytes = 8 << 20

// VersionListResponse represents the response for GET /versions
type VersionListResponse struct {
	Versions []types.Version `json:"versions"`
	ActiveID string          `json:"activeVersionId"`
}

// CreateVersionRequest represents the request body for POST /versions
type CreateVersionRequest struct {
	Name     string `json:"name" validate:"max=200"`
	Template string `json:"template,omitempty" validate:"omitempty,max=64"`
}

// DuplicateVersionRequest represents the request body for POST /versions/{id}/duplicate
type DuplicateVersionRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// RenameRequest represents the request body for PUT /versions/{id}/name
type RenameRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// TemplateRequest represents the request body for PUT /versions/{id}/template
type TemplateRequest struct {
	Template string `json:"template" validate:"required,max=64"`
}

// TargetRoleRequest represents the request body for PUT /versions/{id}/target-role
type TargetRoleRequest struct {
	TargetRole string `json:"targetRole" validate:"max=200"`
}

// SectionOrderRequest represents the request body for PUT /versions/{id}/section-order
type SectionOrderRequest struct {
	Order []string `json:"order" validate:"required,max=32"`
}

// MoveSectionRequest represents the request body for POST /versions/{id}/section-order/move
type MoveSectionRequest struct {
	Active string `json:"active" validate:"required"`
	Over   string `json:"over" validate:"required"`
}

// MoveItemRequest represents the request body for POST /versions/{id}/items/move
type MoveItemRequest struct {
	Section  string `json:"section" validate:"required,oneof=experience education skills languages"`
	ActiveID string `json:"activeId" validate:"required"`
	OverID   string `json:"overId" validate:"required"`
}

// ImportResponse represents the response for POST /versions/import
type ImportResponse struct {
	Version  types.Version `json:"version"`
	Warnings []string      `json:"warnings"`
}

// decodeRequest reads a JSON body into dst and validates it. An empty body decodes as
// the zero value. On failure the response is written and false is returned.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validator.Struct(dst); err != nil {
		s.failure(w, extractValidationErrors(err))
		return false
	}
	return true
}

// handleListVersions lists every version and the active id
func (s *Server) handleListVersions(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, VersionListResponse{
		Versions: s.store.List(),
		ActiveID: s.store.ActiveID(),
	})
}

// handleCreateVersion creates an empty version and activates it
func (s *Server) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	var req CreateVersionRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	template := types.TemplateID(req.Template)
	if template != "" && !template.Known() {
		s.failure(w, &ErrValidation{Field: "template", Message: "unknown template " + req.Template})
		return
	}

	v, err := s.store.Create(r.Context(), req.Name, template)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, v)
}

// handleGetActiveVersion returns the active version
func (s *Server) handleGetActiveVersion(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.Active())
}

// handleGetVersion returns one version
func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, v)
}

// handleDeleteVersion deletes a version. The last version cannot be deleted.
func (s *Server) handleDeleteVersion(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, VersionListResponse{
		Versions: s.store.List(),
		ActiveID: s.store.ActiveID(),
	})
}

// handleDuplicateVersion copies a version under a new identity and activates the copy
func (s *Server) handleDuplicateVersion(w http.ResponseWriter, r *http.Request) {
	var req DuplicateVersionRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	v, err := s.store.Duplicate(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, v)
}

// handleActivateVersion switches the active version
func (s *Server) handleActivateVersion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Switch(r.Context(), id); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"activeVersionId": id})
}

// handleDownloadVersion returns a version as a JSON attachment suitable for import
func (s *Server) handleDownloadVersion(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.failure(w, err)
		return
	}
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.failure(w, err)
		return
	}
	filename := export.WithExtension(v.Name, "json", layout.LocaleFor(s.locale).DefaultFile)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		log.Printf("Error writing download: %v", err)
	}
}

// handleImportVersion adds a version from an exported JSON document. Schema issues are
// returned as warnings unless ?strict=true, in which case they reject the import.
func (s *Server) handleImportVersion(w http.ResponseWriter, r *http.Request) {
	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, "Import too large: "+err.Error())
		return
	}

	schemaErr := schemas.ValidateVersion(content)
	if schemaErr != nil && r.URL.Query().Get("strict") == "true" {
		s.jsonResponse(w, http.StatusBadRequest, map[string]any{
			"error":  "import does not match the version schema",
			"issues": schemas.Issues(schemaErr),
		})
		return
	}

	v, repairs, err := s.store.Import(r.Context(), content)
	if err != nil {
		s.failure(w, err)
		return
	}
	warnings := append(schemas.Issues(schemaErr), repairs...)
	if warnings == nil {
		warnings = []string{}
	}
	s.jsonResponse(w, http.StatusCreated, ImportResponse{Version: v, Warnings: warnings})
}

// handleRenameVersion changes the display name
func (s *Server) handleRenameVersion(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	v, err := s.store.Rename(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, v)
}

// handleUpdateData replaces the CV data of a version
func (s *Server) handleUpdateData(w http.ResponseWriter, r *http.Request) {
	var data types.CVData
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes)).Decode(&data); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	v, err := s.store.UpdateData(r.Context(), r.PathValue("id"), data)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, v)
}

// handleUpdateTemplate selects one of the known templates
func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	template := types.TemplateID(req.Template)
	if !template.Known() {
		s.failure(w, &ErrValidation{Field: "template", Message: "unknown template " + req.Template})
		return
	}
	v, err := s.store.UpdateTemplate(r.Context(), r.PathValue("id"), template)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, v)
}

// handleUpdateTargetRole sets the free-text target role
func (s *Server) handleUpdateTargetRole(w http.ResponseWriter, r *http.Request) {
	var req TargetRoleRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	v, err := s.store.UpdateTargetRole(r.Context(), r.PathValue("id"), req.TargetRole)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, v)
}

// handleUpdateSectionOrder stores a new section order. Unknown and duplicate tags are
// dropped and missing sections appended.
func (s *Server) handleUpdateSectionOrder(w http.ResponseWriter, r *http.Request) {
	var req SectionOrderRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	order := make([]types.SectionID, 0, len(req.Order))
	for _, tag := range req.Order {
		order = append(order, types.SectionID(strings.TrimSpace(tag)))
	}
	v, err := s.store.UpdateSectionOrder(r.Context(), r.PathValue("id"), order)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, v)
}

// handleResetSectionOrder restores the default order
func (s *Server) handleResetSectionOrder(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.ResetSectionOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, v)
}

// handleMoveSection moves one section onto the position of another
func (s *Server) handleMoveSection(w http.ResponseWriter, r *http.Request) {
	var req MoveSectionRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	v, err := s.store.MoveSection(r.Context(), r.PathValue("id"), types.SectionID(req.Active), types.SectionID(req.Over))
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, v)
}

// handleMoveItem reorders an entry inside one of the item lists
func (s *Server) handleMoveItem(w http.ResponseWriter, r *http.Request) {
	var req MoveItemRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	v, err := s.store.MoveItem(r.Context(), r.PathValue("id"), types.SectionID(req.Section), req.ActiveID, req.OverID)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, v)
}
