package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockDatastore(t *testing.T) (*Datastore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewDatastore(db), mock
}

func TestDatastore_ListRooms(t *testing.T) {
	ds, mock := newMockDatastore(t)

	mock.ExpectQuery(`SELECT room_id, name, room_number, bed_info FROM rooms`).
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "name", "room_number", "bed_info"}).
			AddRow(int64(1), "Piccadilly", "P1", "1Q").
			AddRow(int64(2), "Cambridge", "C1", "2D"))

	rooms, err := ds.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 2 || rooms[1].Name != "Cambridge" || rooms[0].BedInfo != "1Q" {
		t.Errorf("unexpected rooms %+v", rooms)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDatastore_ListReservationsByDate(t *testing.T) {
	ds, mock := newMockDatastore(t)
	d := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM reservations r\s+JOIN guests g .+ WHERE r.res_date = \$1`).
		WithArgs("2025-06-14").
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "room_id", "guest_id", "res_date", "first_name", "last_name"}).
			AddRow(int64(100), int64(3), int64(55), d, "Ana", nil))

	res, err := ds.ListReservationsByDate(context.Background(), d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("expected 1 reservation, got %d", len(res))
	}
	if res[0].RoomID != 3 || res[0].GuestFirstName != "Ana" || res[0].GuestLastName != "" {
		t.Errorf("unexpected reservation %+v", res[0])
	}
}

func TestDatastore_ListRooms_Error(t *testing.T) {
	ds, mock := newMockDatastore(t)
	boom := errors.New("db down")

	mock.ExpectQuery(`SELECT .+ FROM rooms`).WillReturnError(boom)

	if _, err := ds.ListRooms(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected db error, got %v", err)
	}
}
