package appointment

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var phoneRe = regexp.MustCompile(`^[0-9]{10}$`)

// ValidationError reports a rejected booking field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// BookRequest is the customer input for a booking.
type BookRequest struct {
	SessionID     string
	Name          string
	Phone         string
	Email         string
	Kind          Kind
	PreferredDate time.Time
	PreferredSlot string
	Notes         string
}

// Service manages appointment bookings.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) validate(req BookRequest) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return &ValidationError{Field: "name", Message: "Name is required"}
	case !phoneRe.MatchString(req.Phone):
		return &ValidationError{Field: "phone", Message: "Enter a valid 10-digit phone number"}
	case !req.Kind.Valid():
		return &ValidationError{Field: "kind", Message: "Unknown appointment type"}
	case req.PreferredDate.IsZero():
		return &ValidationError{Field: "date", Message: "Please select a date"}
	case Day(req.PreferredDate).Before(Day(s.now())):
		return &ValidationError{Field: "date", Message: "Date must not be in the past"}
	case !slices.Contains(Slots, req.PreferredSlot):
		return &ValidationError{Field: "slot", Message: "Please select a time slot"}
	}
	return nil
}

// Book validates and stores a new pending appointment.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	if req.Kind == "" {
		req.Kind = KindEyeTest
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	a := &Appointment{
		ID:            uuid.New().String(),
		SessionID:     req.SessionID,
		Name:          strings.TrimSpace(req.Name),
		Phone:         req.Phone,
		Email:         strings.TrimSpace(req.Email),
		Kind:          req.Kind,
		PreferredDate: Day(req.PreferredDate),
		PreferredSlot: req.PreferredSlot,
		Notes:         req.Notes,
		Status:        StatusPending,
		CreatedAt:     s.now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, errors.Wrap(err, "create appointment")
	}
	return a, nil
}

// ListBySession returns the appointments of a session by preferred date.
func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]Appointment, error) {
	list, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "list appointments")
	}
	return list, nil
}

// Cancel cancels an appointment owned by sessionID.
func (s *Service) Cancel(ctx context.Context, sessionID, id string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get appointment")
	}
	if a.SessionID != sessionID {
		return nil, ErrNotFound
	}
	if !a.Status.Cancellable() {
		return nil, ErrNotCancellable
	}
	a, err = s.repo.Update(ctx, id, StatusCancelled, nil)
	if err != nil {
		return nil, errors.Wrap(err, "cancel appointment")
	}
	return a, nil
}

// List returns a page of appointments and the total matching f.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Appointment, int, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 20
	}
	if !f.Date.IsZero() {
		f.Date = Day(f.Date)
	}
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list appointments")
	}
	return list, total, nil
}

// UpdateStatus sets the status and, when adminNotes is not nil, the staff
// notes of an appointment.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status, adminNotes *string) (*Appointment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	a, err := s.repo.Update(ctx, id, status, adminNotes)
	if err != nil {
		return nil, errors.Wrap(err, "update appointment")
	}
	return a, nil
}

// CountOnDate counts appointments preferring day.
func (s *Service) CountOnDate(ctx context.Context, day time.Time) (int, error) {
	n, err := s.repo.CountOnDate(ctx, Day(day))
	if err != nil {
		return 0, errors.Wrap(err, "count appointments")
	}
	return n, nil
}
