package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-booking/internal/audit"
	"github.com/BruksfildServices01/slot-booking/internal/cache"
	domain "github.com/BruksfildServices01/slot-booking/internal/domain/booking"
	"github.com/BruksfildServices01/slot-booking/internal/infra/memstore"
	"github.com/BruksfildServices01/slot-booking/internal/models"
	"github.com/BruksfildServices01/slot-booking/internal/timezone"
)

var testNow = time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memstore.Store
	clock   timezone.FixedClock
	metrics *countingRecorder
	cache   *fakeCache

	patient *models.User
	admin   *models.User

	listSlots *ListSlots
	bookSlot  *BookSlot
	setStatus *SetStatus
	myList    *ListMyBookings
	allList   *ListAllBookings
	get       *GetBooking
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, nil)
}

// newFixtureWithRepo lets a test wrap the store before use cases see it.
func newFixtureWithRepo(t *testing.T, wrap func(domain.Repository) domain.Repository) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store:   memstore.New(),
		clock:   timezone.FixedClock{At: testNow, Loc: time.UTC},
		metrics: &countingRecorder{claims: map[string]int{}},
		cache:   newFakeCache(),
	}

	f.patient = &models.User{Name: "Pat", Email: "pat@example.com", Role: models.RolePatient}
	f.admin = &models.User{Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin}
	require.NoError(t, f.store.CreateUser(ctx, f.patient))
	require.NoError(t, f.store.CreateUser(ctx, f.admin))

	var repo domain.Repository = f.store
	if wrap != nil {
		repo = wrap(repo)
	}

	log := zap.NewNop()
	dispatcher := audit.NewDispatcher(audit.New(f.store), log)
	t.Cleanup(func() { _ = dispatcher.Close(context.Background()) })

	f.listSlots = NewListSlots(repo, f.cache, f.clock, log)
	f.bookSlot = NewBookSlot(repo, f.cache, f.clock, dispatcher, f.metrics, log)
	f.setStatus = NewSetStatus(repo, f.cache, f.clock, dispatcher, f.metrics, log)
	f.myList = NewListMyBookings(repo)
	f.allList = NewListAllBookings(repo)
	f.get = NewGetBooking(repo)
	return f
}

func (f *fixture) book(t *testing.T, userID uint, start string) (*models.Booking, error) {
	t.Helper()
	st, err := time.Parse(time.RFC3339, start)
	require.NoError(t, err)
	return f.bookSlot.Execute(context.Background(), BookSlotInput{
		UserID:  userID,
		StartAt: st.Format(time.RFC3339),
		EndAt:   st.Add(30 * time.Minute).Format(time.RFC3339),
	})
}

// ------------------------------------------------------

type countingRecorder struct {
	mu          sync.Mutex
	claims      map[string]int
	transitions int
}

func (r *countingRecorder) ObserveClaim(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims[outcome]++
}

func (r *countingRecorder) ObserveTransition(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions++
}

func (r *countingRecorder) claimCount(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claims[outcome]
}

// ------------------------------------------------------

type fakeCache struct {
	mu          sync.Mutex
	days        map[string][]cache.BookedWindow
	gens        map[string]int64
	gets        int
	staleWrites int
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		days: map[string][]cache.BookedWindow{},
		gens: map[string]int64{},
	}
}

func (c *fakeCache) GetDay(_ context.Context, day string) ([]cache.BookedWindow, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	w, ok := c.days[day]
	return w, ok, nil
}

func (c *fakeCache) Generation(_ context.Context, day string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[day], nil
}

func (c *fakeCache) SetDay(_ context.Context, day string, gen int64, booked []cache.BookedWindow) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[day] != gen {
		c.staleWrites++
		return nil
	}
	c.days[day] = booked
	return nil
}

func (c *fakeCache) InvalidateDay(_ context.Context, day string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[day]++
	delete(c.days, day)
	c.invalidated = append(c.invalidated, day)
	return nil
}
