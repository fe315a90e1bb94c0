package reservation

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the interface for database operations.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Datastore handles database operations for rooms and reservations.
type Datastore struct {
	db DBTX
}

// NewDatastore creates a new reservation datastore.
func NewDatastore(db DBTX) *Datastore {
	return &Datastore{db: db}
}

// ListRooms returns every room.
func (ds *Datastore) ListRooms(ctx context.Context) ([]*Room, error) {
	query := `SELECT room_id, name, room_number, bed_info FROM rooms ORDER BY room_id`

	rows, err := ds.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		r := &Room{}
		if err := rows.Scan(&r.ID, &r.Name, &r.RoomNumber, &r.BedInfo); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// ListReservationsByDate returns the reservations on the given day with guest names.
func (ds *Datastore) ListReservationsByDate(ctx context.Context, date time.Time) ([]*Reservation, error) {
	query := `
		SELECT r.reservation_id, r.room_id, r.guest_id, r.res_date, g.first_name, g.last_name
		FROM reservations r
		JOIN guests g ON g.guest_id = r.guest_id
		WHERE r.res_date = $1
		ORDER BY r.reservation_id`

	rows, err := ds.db.QueryContext(ctx, query, date.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []*Reservation
	for rows.Next() {
		res := &Reservation{}
		var first, last sql.NullString
		if err := rows.Scan(&res.ID, &res.RoomID, &res.GuestID, &res.Date, &first, &last); err != nil {
			return nil, err
		}
		res.GuestFirstName = first.String
		res.GuestLastName = last.String
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}
