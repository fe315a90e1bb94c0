// Package reservation builds the per-day room calendar.
package reservation

import "time"

// Room is a row of the rooms table.
type Room struct {
	ID         int64
	Name       string
	RoomNumber string
	BedInfo    string
}

// Reservation is a booking for one room on one day, joined with its guest.
type Reservation struct {
	ID             int64
	RoomID         int64
	GuestID        int64
	Date           time.Time
	GuestFirstName string
	GuestLastName  string
}

// RoomReservation is one calendar line: a room and, if booked, its guest.
type RoomReservation struct {
	RoomID     int64  `json:"room_id"`
	RoomName   string `json:"room_name"`
	RoomNumber string `json:"room_number"`
	GuestID    int64  `json:"guest_id,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Date       string `json:"date"`
}
