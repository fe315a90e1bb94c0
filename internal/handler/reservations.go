package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"documite/internal/auth"
	"documite/internal/identity"
	"documite/internal/jwtauth"
	"documite/internal/reservation"
)

// ReservationService builds room calendars for a resolved caller.
type ReservationService interface {
	CalendarFor(ctx context.Context, date time.Time, claims identity.ClaimSource) ([]reservation.RoomReservation, error)
}

// ReservationsHandler serves the room reservation calendar.
type ReservationsHandler struct {
	svc    ReservationService
	logger *slog.Logger
	now    func() time.Time
}

// NewReservationsHandler creates a new reservations handler. now defaults to time.Now.
func NewReservationsHandler(svc ReservationService, logger *slog.Logger, now func() time.Time) *ReservationsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationsHandler{svc: svc, logger: logger, now: now}
}

type reservationsRequest struct {
	Date *string `json:"date"`
}

// List handles GET /api/v1/reservations?date=YYYY-MM-DD
func (h *ReservationsHandler) List(w http.ResponseWriter, r *http.Request) {
	h.calendar(w, r, r.URL.Query().Get("date"))
}

// Search handles POST /reservations
func (h *ReservationsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req reservationsRequest
	if err := decodeBody(w, r, &req); err != nil {
		auth.WriteBadRequest(w, "invalid JSON body")
		return
	}

	var raw string
	if req.Date != nil {
		raw = *req.Date
	}
	h.calendar(w, r, raw)
}

func (h *ReservationsHandler) calendar(w http.ResponseWriter, r *http.Request, raw string) {
	date, err := h.parseDate(raw)
	if err != nil {
		auth.WriteBadRequest(w, "date must be formatted as YYYY-MM-DD")
		return
	}

	cal, err := h.svc.CalendarFor(r.Context(), date, jwtauth.GetClaims(r.Context()))
	if err != nil {
		writeServerError(w, r, h.logger, "failed to build reservation calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

// parseDate returns today for a blank value.
func (h *ReservationsHandler) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		y, m, d := h.now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(time.DateOnly, raw)
}
