// Package memstore is an in-process storage engine for bookings, users and
// audit logs. It keeps the uniqueness rules of the Postgres schema and runs
// transactions one at a time with rollback on error.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BruksfildServices01/slot-booking/internal/audit"
	domain "github.com/BruksfildServices01/slot-booking/internal/domain/booking"
	"github.com/BruksfildServices01/slot-booking/internal/models"
)

type windowKey struct {
	start int64
	end   int64
}

func keyOf(start, end time.Time) windowKey {
	return windowKey{start: start.UnixNano(), end: end.UnixNano()}
}

type state struct {
	slots     map[uint]models.Slot
	slotByKey map[windowKey]uint
	bookings  map[uint]models.Booking
	users     map[uint]models.User
	userEmail map[string]uint
	audit     []models.AuditLog

	nextSlotID    uint
	nextBookingID uint
	nextUserID    uint
	nextAuditID   uint
}

func newState() *state {
	return &state{
		slots:     map[uint]models.Slot{},
		slotByKey: map[windowKey]uint{},
		bookings:  map[uint]models.Booking{},
		users:     map[uint]models.User{},
		userEmail: map[string]uint{},
	}
}

func (s *state) clone() state {
	c := *s
	c.slots = make(map[uint]models.Slot, len(s.slots))
	for k, v := range s.slots {
		c.slots[k] = v
	}
	c.slotByKey = make(map[windowKey]uint, len(s.slotByKey))
	for k, v := range s.slotByKey {
		c.slotByKey[k] = v
	}
	c.bookings = make(map[uint]models.Booking, len(s.bookings))
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	c.users = make(map[uint]models.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.userEmail = make(map[string]uint, len(s.userEmail))
	for k, v := range s.userEmail {
		c.userEmail[k] = v
	}
	c.audit = append([]models.AuditLog(nil), s.audit...)
	return c
}

type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
}

func New() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState()}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) WithinTx(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.st.clone()
	if err := fn(&Store{mu: s.mu, st: s.st, inTx: true}); err != nil {
		*s.st = snapshot
		return err
	}
	return nil
}

// --------------------------------------------------
// Slot
// --------------------------------------------------

func (s *Store) FindSlot(_ context.Context, start, end time.Time) (*models.Slot, error) {
	defer s.lock()()

	id, ok := s.st.slotByKey[keyOf(start, end)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	slot := s.st.slots[id]
	return &slot, nil
}

func (s *Store) CreateSlot(_ context.Context, slot *models.Slot) error {
	defer s.lock()()

	key := keyOf(slot.StartAt, slot.EndAt)
	if _, exists := s.st.slotByKey[key]; exists {
		return domain.ErrDuplicate
	}

	now := time.Now()
	s.st.nextSlotID++
	slot.ID = s.st.nextSlotID
	slot.StartAt = slot.StartAt.UTC()
	slot.EndAt = slot.EndAt.UTC()
	slot.CreatedAt, slot.UpdatedAt = now, now

	s.st.slots[slot.ID] = *slot
	s.st.slotByKey[key] = slot.ID
	return nil
}

func (s *Store) MarkSlotBooked(_ context.Context, slotID uint) (bool, error) {
	defer s.lock()()

	slot, ok := s.st.slots[slotID]
	if !ok || slot.IsBooked {
		return false, nil
	}
	slot.IsBooked = true
	slot.UpdatedAt = time.Now()
	s.st.slots[slotID] = slot
	return true, nil
}

func (s *Store) ReleaseSlot(_ context.Context, slotID uint) error {
	defer s.lock()()

	slot, ok := s.st.slots[slotID]
	if !ok {
		return nil
	}
	slot.IsBooked = false
	slot.UpdatedAt = time.Now()
	s.st.slots[slotID] = slot
	return nil
}

func (s *Store) ListBookedSlots(_ context.Context, from, to time.Time) ([]models.Slot, error) {
	defer s.lock()()

	var out []models.Slot
	for _, slot := range s.st.slots {
		if slot.IsBooked && !slot.StartAt.Before(from) && slot.StartAt.Before(to) {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (s *Store) activeHolder(slotID, except uint) bool {
	for id, b := range s.st.bookings {
		if id != except && b.SlotID == slotID && domain.Status(b.Status).IsActive() {
			return true
		}
	}
	return false
}

func (s *Store) CreateBooking(_ context.Context, b *models.Booking) error {
	defer s.lock()()

	if domain.Status(b.Status).IsActive() && s.activeHolder(b.SlotID, 0) {
		return domain.ErrDuplicate
	}

	now := time.Now()
	s.st.nextBookingID++
	b.ID = s.st.nextBookingID
	b.CreatedAt, b.UpdatedAt = now, now

	stored := *b
	stored.User = models.User{}
	stored.Slot = models.Slot{}
	s.st.bookings[b.ID] = stored
	return nil
}

func (s *Store) populate(b models.Booking) models.Booking {
	b.User = s.st.users[b.UserID]
	b.Slot = s.st.slots[b.SlotID]
	return b
}

func (s *Store) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	defer s.lock()()

	b, ok := s.st.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b = s.populate(b)
	return &b, nil
}

func (s *Store) GetBookingForUpdate(ctx context.Context, id uint) (*models.Booking, error) {
	return s.GetBooking(ctx, id)
}

func (s *Store) UpdateBookingStatus(_ context.Context, b *models.Booking) error {
	defer s.lock()()

	stored, ok := s.st.bookings[b.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if domain.Status(b.Status).IsActive() && s.activeHolder(stored.SlotID, b.ID) {
		return domain.ErrDuplicate
	}

	stored.Status = b.Status
	stored.CancelledAt = b.CancelledAt
	stored.CompletedAt = b.CompletedAt
	stored.UpdatedAt = time.Now()
	s.st.bookings[b.ID] = stored
	return nil
}

func (s *Store) ListBookingsByUser(_ context.Context, userID uint) ([]models.Booking, error) {
	defer s.lock()()

	var out []models.Booking
	for _, b := range s.st.bookings {
		if b.UserID == userID {
			out = append(out, s.populate(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Slot.StartAt.Equal(out[j].Slot.StartAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].Slot.StartAt.Before(out[j].Slot.StartAt)
	})
	return out, nil
}

func (s *Store) ListBookings(_ context.Context, filter domain.ListFilter) ([]models.Booking, int64, error) {
	defer s.lock()()

	var all []models.Booking
	for _, b := range s.st.bookings {
		if filter.Status != "" && domain.Status(b.Status) != filter.Status {
			continue
		}
		all = append(all, s.populate(b))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Slot.StartAt.Equal(all[j].Slot.StartAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].Slot.StartAt.After(all[j].Slot.StartAt)
	})

	return paginate(all, filter.Offset, filter.Limit), int64(len(all)), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return items[offset:end]
}

// --------------------------------------------------
// User
// --------------------------------------------------

func (s *Store) FindUserByID(_ context.Context, id uint) (*models.User, error) {
	defer s.lock()()

	u, ok := s.st.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	defer s.lock()()

	id, ok := s.st.userEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := s.st.users[id]
	return &u, nil
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	defer s.lock()()

	email := strings.ToLower(u.Email)
	if _, taken := s.st.userEmail[email]; taken {
		return domain.ErrDuplicate
	}

	now := time.Now()
	s.st.nextUserID++
	u.ID = s.st.nextUserID
	u.CreatedAt, u.UpdatedAt = now, now

	s.st.users[u.ID] = *u
	s.st.userEmail[email] = u.ID
	return nil
}

// --------------------------------------------------
// Audit
// --------------------------------------------------

func (s *Store) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	defer s.lock()()

	s.st.nextAuditID++
	log.ID = s.st.nextAuditID
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	s.st.audit = append(s.st.audit, *log)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, q audit.Query) ([]models.AuditLog, int64, error) {
	defer s.lock()()

	var out []models.AuditLog
	for i := len(s.st.audit) - 1; i >= 0; i-- {
		l := s.st.audit[i]
		if q.Action != "" && l.Action != q.Action {
			continue
		}
		if q.Entity != "" && l.Entity != q.Entity {
			continue
		}
		if q.From != nil && l.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && !l.CreatedAt.Before(*q.To) {
			continue
		}
		out = append(out, l)
	}

	return paginate(out, q.Offset, q.Limit), int64(len(out)), nil
}

var (
	_ domain.Repository     = (*Store)(nil)
	_ domain.UserRepository = (*Store)(nil)
	_ audit.Store           = (*Store)(nil)
)
