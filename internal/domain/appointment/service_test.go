package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	byID      map[string]*Appointment
	createErr error
	lastList  ListFilter
	countDay  time.Time
}

func newMockRepo(list ...*Appointment) *mockRepo {
	m := &mockRepo{byID: map[string]*Appointment{}}
	for _, a := range list {
		m.byID[a.ID] = a
	}
	return m
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.byID[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Appointment, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockRepo) ListBySession(_ context.Context, sessionID string) ([]Appointment, error) {
	var out []Appointment
	for _, a := range m.byID {
		if a.SessionID == sessionID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter) ([]Appointment, int, error) {
	m.lastList = f
	return nil, 0, nil
}

func (m *mockRepo) Update(_ context.Context, id string, status Status, notes *string) (*Appointment, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Status = status
	if notes != nil {
		a.AdminNotes = *notes
	}
	return a, nil
}

func (m *mockRepo) CountOnDate(_ context.Context, day time.Time) (int, error) {
	m.countDay = day
	return 2, nil
}

var testNow = time.Date(2025, 6, 15, 16, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepo) *Service {
	s := NewService(repo)
	s.now = func() time.Time { return testNow }
	return s
}

func validRequest() BookRequest {
	return BookRequest{
		SessionID:     "s1",
		Name:          "Ravi",
		Phone:         "9876543210",
		Kind:          KindEyeTest,
		PreferredDate: testNow.AddDate(0, 0, 1),
		PreferredSlot: Slots[0],
	}
}

func TestBook(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	a, err := svc.Book(context.Background(), validRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), a.PreferredDate)
	assert.Equal(t, testNow, a.CreatedAt)
	assert.Contains(t, repo.byID, a.ID)
}

func TestBook_TodayIsAllowed(t *testing.T) {
	req := validRequest()
	req.PreferredDate = testNow.Add(-time.Hour)

	_, err := newTestService(newMockRepo()).Book(context.Background(), req)
	require.NoError(t, err)
}

func TestBook_DefaultKind(t *testing.T) {
	req := validRequest()
	req.Kind = ""

	a, err := newTestService(newMockRepo()).Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, KindEyeTest, a.Kind)
}

func TestBook_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*BookRequest)
		wantField string
	}{
		{"blank name", func(r *BookRequest) { r.Name = "  " }, "name"},
		{"short phone", func(r *BookRequest) { r.Phone = "12345" }, "phone"},
		{"letters in phone", func(r *BookRequest) { r.Phone = "98765abcde" }, "phone"},
		{"unknown kind", func(r *BookRequest) { r.Kind = "surgery" }, "kind"},
		{"missing date", func(r *BookRequest) { r.PreferredDate = time.Time{} }, "date"},
		{"past date", func(r *BookRequest) { r.PreferredDate = testNow.AddDate(0, 0, -1) }, "date"},
		{"unknown slot", func(r *BookRequest) { r.PreferredSlot = "midnight" }, "slot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			req := validRequest()
			tt.mutate(&req)

			_, err := newTestService(repo).Book(context.Background(), req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
			assert.Empty(t, repo.byID)
		})
	}
}

func TestBook_CreateError(t *testing.T) {
	repo := newMockRepo()
	repo.createErr = errors.New("insert failed")

	_, err := newTestService(repo).Book(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create appointment")
}

func TestCancel(t *testing.T) {
	tests := []struct {
		status  Status
		session string
		wantErr error
	}{
		{StatusPending, "s1", nil},
		{StatusConfirmed, "s1", nil},
		{StatusCompleted, "s1", ErrNotCancellable},
		{StatusCancelled, "s1", ErrNotCancellable},
		{StatusPending, "other", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(string(tt.status)+"/"+tt.session, func(t *testing.T) {
			repo := newMockRepo(&Appointment{ID: "a1", SessionID: "s1", Status: tt.status})

			got, err := newTestService(repo).Cancel(context.Background(), tt.session, "a1")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, repo.byID["a1"].Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusCancelled, got.Status)
		})
	}
}

func TestCancel_Missing(t *testing.T) {
	_, err := newTestService(newMockRepo()).Cancel(context.Background(), "s1", "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	repo := newMockRepo(&Appointment{ID: "a1", Status: StatusPending})
	svc := newTestService(repo)
	notes := "bring old prescription"

	got, err := svc.UpdateStatus(context.Background(), "a1", StatusConfirmed, &notes)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Equal(t, notes, got.AdminNotes)

	_, err = svc.UpdateStatus(context.Background(), "a1", "noshow", nil)
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestList_Normalizes(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	_, _, err := svc.List(context.Background(), ListFilter{Date: testNow})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lastList.Page)
	assert.Equal(t, 20, repo.lastList.PerPage)
	assert.Equal(t, Day(testNow), repo.lastList.Date)

	_, _, err = svc.List(context.Background(), ListFilter{Status: "x"})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCountOnDate(t *testing.T) {
	repo := newMockRepo()
	loc := time.FixedZone("IST", 5*3600+1800)

	n, err := newTestService(repo).CountOnDate(context.Background(), time.Date(2025, 6, 15, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), repo.countDay)
}
