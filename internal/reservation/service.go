package reservation

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"documite/internal/identity"
)

// Store is the read side of rooms and reservations.
type Store interface {
	ListRooms(ctx context.Context) ([]*Room, error)
	ListReservationsByDate(ctx context.Context, date time.Time) ([]*Reservation, error)
}

// ClaimsResolver maps verified claims to a canonical user.
type ClaimsResolver interface {
	ResolveClaims(ctx context.Context, claims identity.ClaimSource) (identity.Result, error)
}

// Service assembles room calendars.
type Service struct {
	store    Store
	resolver ClaimsResolver
	logger   *slog.Logger
}

// NewService creates a reservation service. logger may be nil.
func NewService(store Store, resolver ClaimsResolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, resolver: resolver, logger: logger}
}

// Calendar returns one entry per room for date, with guest details on booked rooms,
// sorted by room name then room number.
func (s *Service) Calendar(ctx context.Context, date time.Time) ([]RoomReservation, error) {
	var (
		rooms        []*Room
		reservations []*Reservation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rooms, err = s.store.ListRooms(gctx)
		if err != nil {
			return fmt.Errorf("failed to list rooms: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reservations, err = s.store.ListReservationsByDate(gctx, date)
		if err != nil {
			return fmt.Errorf("failed to list reservations: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	day := date.Format(time.DateOnly)
	byRoom := make(map[int64]*RoomReservation, len(rooms))
	calendar := make([]RoomReservation, 0, len(rooms))
	for _, r := range rooms {
		calendar = append(calendar, RoomReservation{
			RoomID:     r.ID,
			RoomName:   r.Name,
			RoomNumber: r.RoomNumber,
			Date:       day,
		})
	}
	for i := range calendar {
		byRoom[calendar[i].RoomID] = &calendar[i]
	}

	for _, res := range reservations {
		entry, ok := byRoom[res.RoomID]
		if !ok {
			s.logger.WarnContext(ctx, "reservation references unknown room",
				"reservation_id", res.ID,
				"room_id", res.RoomID,
			)
			continue
		}
		entry.GuestID = res.GuestID
		entry.FirstName = res.GuestFirstName
		entry.LastName = res.GuestLastName
	}

	slices.SortStableFunc(calendar, func(a, b RoomReservation) int {
		return cmp.Or(
			cmp.Compare(a.RoomName, b.RoomName),
			cmp.Compare(a.RoomNumber, b.RoomNumber),
		)
	})
	return calendar, nil
}

// CalendarFor resolves the caller from claims first. A caller with no
// matching user gets an empty calendar.
func (s *Service) CalendarFor(ctx context.Context, date time.Time, claims identity.ClaimSource) ([]RoomReservation, error) {
	res, err := s.resolver.ResolveClaims(ctx, claims)
	if err != nil {
		return nil, err
	}
	if !res.IsFound() {
		return []RoomReservation{}, nil
	}
	return s.Calendar(ctx, date)
}
