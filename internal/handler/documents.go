package handler

import (
	"context"
	"log/slog"
	"net/http"

	"documite/internal/auth"
	"documite/internal/document"
	"documite/internal/identity"
	"documite/internal/jwtauth"
)

// DocumentService is the document read API used by the handlers.
type DocumentService interface {
	GetDocumentsByType(ctx context.Context, f document.TypeFilter, claims identity.ClaimSource) ([]document.View, error)
	GetDocumentsByName(ctx context.Context, name string, claims identity.ClaimSource) ([]document.View, error)
}

// DocumentsHandler serves the caller's documents.
type DocumentsHandler struct {
	svc    DocumentService
	logger *slog.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(svc DocumentService, logger *slog.Logger) *DocumentsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentsHandler{svc: svc, logger: logger}
}

// documentsRequest is the body of POST /getdocuments. DocName holds document types.
type documentsRequest struct {
	DocName *[]string `json:"docName"`
}

// ListByType handles GET /api/v1/documents?type=A&type=B
func (h *DocumentsHandler) ListByType(w http.ResponseWriter, r *http.Request) {
	filter := document.AllTypes()
	if types, ok := r.URL.Query()["type"]; ok {
		filter = document.TypesOf(types...)
	}
	h.byType(w, r, filter)
}

// Search handles POST /getdocuments
func (h *DocumentsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req documentsRequest
	if err := decodeBody(w, r, &req); err != nil {
		auth.WriteBadRequest(w, "invalid JSON body")
		return
	}

	filter := document.AllTypes()
	if req.DocName != nil {
		filter = document.TypesOf(*req.DocName...)
	}
	h.byType(w, r, filter)
}

// ListByName handles GET /api/v1/documents/by-name?name=X
func (h *DocumentsHandler) ListByName(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.GetDocumentsByName(r.Context(), r.URL.Query().Get("name"), jwtauth.GetClaims(r.Context()))
	if err != nil {
		writeServerError(w, r, h.logger, "failed to get documents by name", err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *DocumentsHandler) byType(w http.ResponseWriter, r *http.Request, filter document.TypeFilter) {
	views, err := h.svc.GetDocumentsByType(r.Context(), filter, jwtauth.GetClaims(r.Context()))
	if err != nil {
		writeServerError(w, r, h.logger, "failed to get documents by type", err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}
