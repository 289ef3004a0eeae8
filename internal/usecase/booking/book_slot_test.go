package booking

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/slot-booking/internal/domain/booking"
	"github.com/BruksfildServices01/slot-booking/internal/httperr"
	"github.com/BruksfildServices01/slot-booking/internal/models"
)

func TestBookSlotCreatesBookingAndSlot(t *testing.T) {
	f := newFixture(t)

	b, err := f.book(t, f.patient.ID, "2025-01-06T09:00:00Z")
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), b.Status)
	assert.Equal(t, "Pat", b.User.Name)
	assert.True(t, b.Slot.IsBooked)
	assert.Equal(t, 1, f.metrics.claimCount(OutcomeSuccess))
	assert.Contains(t, f.cache.invalidated, "2025-01-06")
}

func TestBookSlotTrimsAndBoundsNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.bookSlot.Execute(ctx, BookSlotInput{
		UserID:  f.patient.ID,
		StartAt: "2025-01-06T10:00:00Z",
		EndAt:   "2025-01-06T10:30:00Z",
		Notes:   "  first visit  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "first visit", b.Notes)

	_, err = f.bookSlot.Execute(ctx, BookSlotInput{
		UserID:  f.patient.ID,
		StartAt: "2025-01-06T11:00:00Z",
		EndAt:   "2025-01-06T11:30:00Z",
		Notes:   string(make([]byte, domain.MaxNotesLength+1)),
	})
	assert.ErrorIs(t, err, domain.ErrNotesTooLong)
}

func TestBookSlotValidationErrorsAreClientErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.book(t, f.patient.ID, "2025-01-06T08:30:00Z")
	assert.ErrorIs(t, err, domain.ErrOutsideBusinessHours)
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))
	assert.Equal(t, 1, f.metrics.claimCount(OutcomeInvalid))

	_, err = f.book(t, f.patient.ID, "2025-01-06T16:30:00Z")
	assert.NoError(t, err)
}

func TestBookSlotRejectsBookedSlot(t *testing.T) {
	f := newFixture(t)

	_, err := f.book(t, f.patient.ID, "2025-01-06T09:00:00Z")
	require.NoError(t, err)

	_, err = f.book(t, f.admin.ID, "2025-01-06T09:00:00Z")
	assert.ErrorIs(t, err, domain.ErrSlotConflict)
	assert.Equal(t, 1, f.metrics.claimCount(OutcomeConflict))
}

func TestBookSlotReusesReleasedSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.book(t, f.patient.ID, "2025-01-06T09:00:00Z")
	require.NoError(t, err)

	_, err = f.setStatus.Execute(ctx, SetStatusInput{ActorID: f.admin.ID, BookingID: first.ID, Status: "cancelled"})
	require.NoError(t, err)

	second, err := f.book(t, f.patient.ID, "2025-01-06T09:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, first.SlotID, second.SlotID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestConcurrentClaimsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
		others    []error
	)

	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.bookSlot.Execute(ctx, BookSlotInput{
				UserID:  f.patient.ID,
				StartAt: "2025-01-07T14:00:00Z",
				EndAt:   "2025-01-07T14:30:00Z",
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case httperr.KindOf(err) == httperr.KindSlotConflict:
				conflicts++
			default:
				others = append(others, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, conflicts)

	all, total, err := f.store.ListBookings(ctx, domain.ListFilter{Limit: n})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, all, 1)
	assert.True(t, all[0].Slot.IsBooked)
}

// lostRace makes CreateBooking fail as if another caller inserted first.
type lostRace struct {
	domain.Repository
}

func (r lostRace) WithinTx(ctx context.Context, fn func(domain.Repository) error) error {
	return r.Repository.WithinTx(ctx, func(tx domain.Repository) error {
		return fn(lostRace{tx})
	})
}

func (r lostRace) CreateBooking(context.Context, *models.Booking) error {
	return domain.ErrDuplicate
}

func TestLostBookingInsertRollsBackSlotFlag(t *testing.T) {
	f := newFixtureWithRepo(t, func(r domain.Repository) domain.Repository { return lostRace{r} })
	ctx := context.Background()

	_, err := f.book(t, f.patient.ID, "2025-01-06T09:00:00Z")
	assert.ErrorIs(t, err, domain.ErrSlotConflict)

	_, err = f.store.FindSlot(ctx, mustTime(t, "2025-01-06T09:00:00Z"), mustTime(t, "2025-01-06T09:30:00Z"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// An existing free slot must stay free too.
	slot := &models.Slot{StartAt: mustTime(t, "2025-01-06T10:00:00Z"), EndAt: mustTime(t, "2025-01-06T10:30:00Z")}
	require.NoError(t, f.store.CreateSlot(ctx, slot))

	_, err = f.book(t, f.patient.ID, "2025-01-06T10:00:00Z")
	assert.ErrorIs(t, err, domain.ErrSlotConflict)

	got, err := f.store.FindSlot(ctx, slot.StartAt, slot.EndAt)
	require.NoError(t, err)
	assert.False(t, got.IsBooked)
}
