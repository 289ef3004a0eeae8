package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/BruksfildServices01/slot-booking/internal/audit"
	domain "github.com/BruksfildServices01/slot-booking/internal/domain/booking"
	"github.com/BruksfildServices01/slot-booking/internal/models"
)

// sqlRecorder keeps every statement gorm builds in dry-run mode.
type sqlRecorder struct {
	mu   sync.Mutex
	sqls []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }

func (r *sqlRecorder) Info(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Warn(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sqls = append(r.sqls, sql)
}

func (r *sqlRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sqls...)
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	all := r.all()
	require.NotEmpty(t, all)
	return all[len(all)-1]
}

// find returns the first statement containing fragment.
func (r *sqlRecorder) find(t *testing.T, fragment string) string {
	t.Helper()
	for _, s := range r.all() {
		if strings.Contains(s, fragment) {
			return s
		}
	}
	t.Fatalf("no statement contains %q in %v", fragment, r.all())
	return ""
}

// newDryRunDB builds a postgres-dialect gorm handle that renders SQL
// without opening a connection.
func newDryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=booking_user dbname=booking_db sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 rec,
	})
	require.NoError(t, err)
	return db, rec
}

var (
	dryStart = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	dryEnd   = dryStart.Add(30 * time.Minute)
)

func TestFindSlotQueriesUTCWindow(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewBookingGormRepository(db)

	local := time.FixedZone("UTC+2", 2*60*60)
	_, err := repo.FindSlot(context.Background(), dryStart.In(local), dryEnd.In(local))
	require.NoError(t, err)

	sql := rec.last(t)
	assert.Contains(t, sql, `FROM "slots"`)
	assert.Contains(t, sql, "start_at = '2025-01-06 09:00:00' AND end_at = '2025-01-06 09:30:00'")
}

func TestMarkSlotBookedIsConditionalUpdate(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewBookingGormRepository(db)

	ok, err := repo.MarkSlotBooked(context.Background(), 7)
	require.NoError(t, err)
	// Nothing is executed in dry-run mode, so no row matched.
	assert.False(t, ok)

	sql := rec.last(t)
	assert.True(t, strings.HasPrefix(sql, `UPDATE "slots" SET "is_booked"=true`), sql)
	assert.Contains(t, sql, "id = 7 AND is_booked = false")
}

func TestReleaseSlotClearsFlag(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewBookingGormRepository(db)

	require.NoError(t, repo.ReleaseSlot(context.Background(), 7))

	sql := rec.last(t)
	assert.Contains(t, sql, `"is_booked"=false`)
	assert.Contains(t, sql, "id = 7")
	assert.NotContains(t, sql, "is_booked = ")
}

func TestListBookedSlotsRange(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewBookingGormRepository(db)

	_, err := repo.ListBookedSlots(context.Background(), dryStart, dryStart.AddDate(0, 0, 1))
	require.NoError(t, err)

	sql := rec.last(t)
	assert.Contains(t, sql, "is_booked = true AND start_at >= '2025-01-06 09:00:00' AND start_at < '2025-01-07 09:00:00'")
	assert.Contains(t, sql, "ORDER BY start_at ASC")
}

func TestCreateBookingSkipsAssociations(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewBookingGormRepository(db)

	b := &models.Booking{
		UserID: 3,
		User:   models.User{ID: 3, Email: "p@example.com"},
		SlotID: 4,
		Slot:   models.Slot{ID: 4, StartAt: dryStart, EndAt: dryEnd},
		Status: string(domain.StatusConfirmed),
	}
	require.NoError(t, repo.CreateBooking(context.Background(), b))

	all := rec.all()
	require.Len(t, all, 1)
	assert.True(t, strings.HasPrefix(all[0], `INSERT INTO "bookings"`), all[0])
	for _, sql := range all {
		assert.NotContains(t, sql, `INSERT INTO "users"`)
		assert.NotContains(t, sql, `INSERT INTO "slots"`)
	}
}

func TestGetBookingForUpdateLocksRow(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewBookingGormRepository(db)

	_, err := repo.GetBookingForUpdate(context.Background(), 9)
	require.NoError(t, err)

	sql := rec.last(t)
	assert.Contains(t, sql, `FROM "bookings"`)
	assert.Contains(t, sql, `"bookings"."id" = 9`)
	assert.True(t, strings.HasSuffix(sql, "FOR UPDATE"), sql)
}

func TestUpdateBookingStatusWritesStatusAndStamps(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewBookingGormRepository(db)

	cancelled := dryStart
	require.NoError(t, repo.UpdateBookingStatus(context.Background(), &models.Booking{
		ID:          5,
		Status:      string(domain.StatusCancelled),
		CancelledAt: &cancelled,
	}))

	sql := rec.last(t)
	assert.True(t, strings.HasPrefix(sql, `UPDATE "bookings" SET`), sql)
	assert.Contains(t, sql, `"status"='cancelled'`)
	assert.Contains(t, sql, `"cancelled_at"='2025-01-06 09:00:00'`)
	assert.Contains(t, sql, `"completed_at"=NULL`)
	assert.Contains(t, sql, `"id" = 5`)
}

func TestListBookingsByUserJoinsSlotAscending(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewBookingGormRepository(db)

	_, err := repo.ListBookingsByUser(context.Background(), 3)
	require.NoError(t, err)

	sql := rec.find(t, `FROM "bookings"`)
	assert.Contains(t, sql, `LEFT JOIN "slots" "Slot" ON "bookings"."slot_id" = "Slot"."id"`)
	assert.Contains(t, sql, "bookings.user_id = 3")
	assert.Contains(t, sql, `ORDER BY "Slot"."start_at" ASC`)
}

func TestListBookingsCountsThenPages(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewBookingGormRepository(db)

	_, _, err := repo.ListBookings(context.Background(), domain.ListFilter{
		Status: domain.StatusCancelled,
		Offset: 40,
		Limit:  20,
	})
	require.NoError(t, err)

	count := rec.find(t, "count(*)")
	assert.Contains(t, count, `FROM "bookings"`)
	assert.Contains(t, count, "bookings.status = 'cancelled'")
	assert.NotContains(t, count, "LIMIT")

	page := rec.find(t, `LEFT JOIN "slots" "Slot"`)
	assert.Contains(t, page, "bookings.status = 'cancelled'")
	assert.Contains(t, page, `ORDER BY "Slot"."start_at" DESC`)
	assert.Contains(t, page, "LIMIT 20 OFFSET 40")
}

func TestListBookingsUnfilteredHasNoStatusClause(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewBookingGormRepository(db)

	_, _, err := repo.ListBookings(context.Background(), domain.ListFilter{Limit: 20})
	require.NoError(t, err)

	for _, sql := range rec.all() {
		assert.NotContains(t, sql, "status =")
	}
	assert.Contains(t, rec.find(t, `LEFT JOIN "slots" "Slot"`), "LIMIT 20")
}

func TestListAuditLogsFilters(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewAuditGormRepository(db)

	from := dryStart
	to := dryStart.AddDate(0, 0, 1)
	_, _, err := repo.ListAuditLogs(context.Background(), audit.Query{
		Action: audit.ActionBookingCreated,
		From:   &from,
		To:     &to,
		Offset: 10,
		Limit:  10,
	})
	require.NoError(t, err)

	count := rec.find(t, "count(*)")
	assert.Contains(t, count, "action = 'booking_created'")
	assert.NotContains(t, count, "entity =")

	page := rec.find(t, "ORDER BY created_at DESC")
	assert.Contains(t, page, "created_at >= '2025-01-06 09:00:00' AND created_at < '2025-01-07 09:00:00'")
	assert.Contains(t, page, "LIMIT 10 OFFSET 10")
}

func TestFindUserByEmail(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewUserGormRepository(db)

	_, err := repo.FindUserByEmail(context.Background(), "p@example.com")
	require.NoError(t, err)
	assert.Contains(t, rec.last(t), "email = 'p@example.com'")
}

func TestModelIndexes(t *testing.T) {
	indexesOf := func(model any) map[string]*schema.Index {
		s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)
		out := map[string]*schema.Index{}
		for _, idx := range s.ParseIndexes() {
			out[idx.Name] = idx
		}
		return out
	}

	slot := indexesOf(&models.Slot{})["idx_slots_window"]
	require.NotNil(t, slot)
	assert.Equal(t, "UNIQUE", slot.Class)
	require.Len(t, slot.Fields, 2)
	assert.Equal(t, "start_at", slot.Fields[0].DBName)
	assert.Equal(t, "end_at", slot.Fields[1].DBName)

	active := indexesOf(&models.Booking{})["idx_bookings_active_slot"]
	require.NotNil(t, active)
	assert.Equal(t, "UNIQUE", active.Class)
	assert.Equal(t, "status <> 'cancelled'", active.Where)
	require.Len(t, active.Fields, 1)
	assert.Equal(t, "slot_id", active.Fields[0].DBName)

	email := indexesOf(&models.User{})
	var unique bool
	for _, idx := range email {
		if idx.Class == "UNIQUE" && len(idx.Fields) == 1 && idx.Fields[0].DBName == "email" {
			unique = true
		}
	}
	assert.True(t, unique, "users.email must be unique")
}

func TestMigratorCreatesPartialUniqueIndex(t *testing.T) {
	db, rec := newDryRunDB(t)

	require.NoError(t, db.Migrator().CreateIndex(&models.Booking{}, "idx_bookings_active_slot"))

	sql := rec.last(t)
	assert.Contains(t, sql, `CREATE UNIQUE INDEX IF NOT EXISTS "idx_bookings_active_slot" ON "bookings"`)
	assert.Contains(t, sql, `"slot_id"`)
	assert.True(t, strings.HasSuffix(sql, "WHERE status <> 'cancelled'"), sql)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), domain.ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), domain.ErrDuplicate)
	assert.ErrorIs(t, translate(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})), domain.ErrDuplicate)

	other := &pgconn.PgError{Code: "23503"}
	assert.ErrorIs(t, translate(other), other)
}
