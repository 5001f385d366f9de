// Package appointment books in-store eye tests and fittings.
package appointment

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when an appointment does not exist or belongs
	// to another session.
	ErrNotFound = errors.New("appointment not found")
	// ErrNotCancellable is returned when cancelling a completed or already
	// cancelled appointment.
	ErrNotCancellable = errors.New("appointment cannot be cancelled")
	// ErrInvalidStatus is returned for unknown status values.
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Kind is the purpose of a visit.
type Kind string

const (
	KindEyeTest      Kind = "eye-test"
	KindFrameFitting Kind = "frame-fitting"
	KindConsultation Kind = "consultation"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindEyeTest || k == KindFrameFitting || k == KindConsultation
}

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Cancellable reports whether an appointment in status s may be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Slots are the bookable store hours.
var Slots = []string{
	"10:00 AM - 11:00 AM",
	"11:00 AM - 12:00 PM",
	"12:00 PM - 01:00 PM",
	"02:00 PM - 03:00 PM",
	"03:00 PM - 04:00 PM",
	"04:00 PM - 05:00 PM",
	"05:00 PM - 06:00 PM",
	"07:00 PM - 08:00 PM",
}

// Appointment is a booked visit. PreferredDate carries a date at midnight UTC.
type Appointment struct {
	ID            string
	SessionID     string
	Name          string
	Phone         string
	Email         string
	Kind          Kind
	PreferredDate time.Time
	PreferredSlot string
	Notes         string
	AdminNotes    string
	Status        Status
	CreatedAt     time.Time
}

// ListFilter selects appointments for the admin listing. A zero Date
// matches every day.
type ListFilter struct {
	Status  Status
	Date    time.Time
	Page    int
	PerPage int
}

// Repository defines persistence operations for appointments.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	ListBySession(ctx context.Context, sessionID string) ([]Appointment, error)
	List(ctx context.Context, f ListFilter) ([]Appointment, int, error)
	Update(ctx context.Context, id string, status Status, adminNotes *string) (*Appointment, error)
	CountOnDate(ctx context.Context, day time.Time) (int, error)
}
