package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/xenking/optic-storefront/internal/domain/appointment"
)

const dateLayout = time.DateOnly

// AppointmentSlots lists bookable kinds and time slots.
func (h *Handler) AppointmentSlots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("kinds", func(e *jx.Encoder) {
				encodeStrings(e, []string{
					string(appointment.KindEyeTest),
					string(appointment.KindFrameFitting),
					string(appointment.KindConsultation),
				})
			})
			e.Field("slots", func(e *jx.Encoder) { encodeStrings(e, appointment.Slots) })
		})
	})
}

// ListAppointments returns the session's bookings.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request, sid string) {
	list, err := h.Appointments.ListBySession(r.Context(), sid)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeAppointments(e, list) })
}

// BookAppointment books a store visit.
func (h *Handler) BookAppointment(w http.ResponseWriter, r *http.Request, sid string) {
	req := appointment.BookRequest{SessionID: sid}
	if err := decodeObject(w, r, func(d *jx.Decoder, key string) (err error) {
		var s string
		switch key {
		case "name":
			req.Name, err = d.Str()
		case "phone":
			req.Phone, err = d.Str()
		case "email":
			req.Email, _, err = decodeOptStr(d)
		case "kind":
			s, err = d.Str()
			req.Kind = appointment.Kind(s)
		case "preferredDate":
			if s, err = d.Str(); err == nil {
				req.PreferredDate, err = parseDate(s)
			}
		case "preferredSlot":
			req.PreferredSlot, err = d.Str()
		case "notes":
			req.Notes, _, err = decodeOptStr(d)
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		fail(w, r, err)
		return
	}

	a, err := h.Appointments.Book(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeAppointment(e, *a) })
}

// CancelAppointment cancels one of the session's pending or confirmed bookings.
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request, sid string) {
	id, err := pathID(r, "id", appointment.ErrNotFound)
	if err != nil {
		fail(w, r, err)
		return
	}
	a, err := h.Appointments.Cancel(r.Context(), sid, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeAppointment(e, *a) })
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, badRequest("date must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

func encodeAppointments(e *jx.Encoder, list []appointment.Appointment) {
	e.Arr(func(e *jx.Encoder) {
		for _, a := range list {
			encodeAppointment(e, a)
		}
	})
}

func encodeAppointment(e *jx.Encoder, a appointment.Appointment) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(a.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(a.Name) })
		e.Field("phone", func(e *jx.Encoder) { e.Str(a.Phone) })
		if a.Email != "" {
			e.Field("email", func(e *jx.Encoder) { e.Str(a.Email) })
		}
		e.Field("kind", func(e *jx.Encoder) { e.Str(string(a.Kind)) })
		e.Field("preferredDate", func(e *jx.Encoder) { e.Str(a.PreferredDate.Format(dateLayout)) })
		e.Field("preferredSlot", func(e *jx.Encoder) { e.Str(a.PreferredSlot) })
		if a.Notes != "" {
			e.Field("notes", func(e *jx.Encoder) { e.Str(a.Notes) })
		}
		if a.AdminNotes != "" {
			e.Field("adminNotes", func(e *jx.Encoder) { e.Str(a.AdminNotes) })
		}
		e.Field("status", func(e *jx.Encoder) { e.Str(string(a.Status)) })
		e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, a.CreatedAt) })
	})
}
