package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"documite/internal/identity"
	"documite/internal/jwtauth"
	"documite/internal/user"
)

// ClaimsResolver maps verified claims to a canonical user.
type ClaimsResolver interface {
	ResolveClaims(ctx context.Context, claims identity.ClaimSource) (identity.Result, error)
}

// UserGetter loads a user record by ID.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// MeHandler reports who the caller resolves to.
type MeHandler struct {
	resolver ClaimsResolver
	users    UserGetter
	logger   *slog.Logger
}

// NewMeHandler creates a new identity handler.
func NewMeHandler(resolver ClaimsResolver, users UserGetter, logger *slog.Logger) *MeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MeHandler{resolver: resolver, users: users, logger: logger}
}

type meResponse struct {
	Resolved     bool   `json:"resolved"`
	UserID       int64  `json:"user_id,omitempty"`
	UserName     string `json:"user_name,omitempty"`
	Email        string `json:"email,omitempty"`
	MatchedClaim string `json:"matched_claim,omitempty"`
}

// Get handles GET /api/v1/me
func (h *MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.resolver.ResolveClaims(r.Context(), jwtauth.GetClaims(r.Context()))
	if err != nil {
		writeServerError(w, r, h.logger, "failed to resolve identity", err)
		return
	}

	u, ok := res.User()
	if !ok {
		writeJSON(w, http.StatusOK, meResponse{Resolved: false})
		return
	}

	// The row can disappear between resolution and this read.
	rec, err := h.users.GetByID(r.Context(), u.ID)
	if errors.Is(err, user.ErrNotFound) {
		writeJSON(w, http.StatusOK, meResponse{Resolved: false})
		return
	}
	if err != nil {
		writeServerError(w, r, h.logger, "failed to load resolved user", err)
		return
	}

	matched, _ := res.MatchedBy()
	writeJSON(w, http.StatusOK, meResponse{
		Resolved:     true,
		UserID:       rec.ID,
		UserName:     rec.UserName,
		Email:        rec.Email,
		MatchedClaim: matched.Claim,
	})
}
