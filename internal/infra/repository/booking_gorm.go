package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/slot-booking/internal/domain/booking"
	"github.com/BruksfildServices01/slot-booking/internal/httperr"
	"github.com/BruksfildServices01/slot-booking/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

func (r *BookingGormRepository) WithinTx(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Slot
// --------------------------------------------------

func (r *BookingGormRepository) FindSlot(
	ctx context.Context,
	start time.Time,
	end time.Time,
) (*models.Slot, error) {

	var slot models.Slot
	if err := r.db.WithContext(ctx).
		Where("start_at = ? AND end_at = ?", start.UTC(), end.UTC()).
		First(&slot).Error; err != nil {
		return nil, translate(err)
	}
	return &slot, nil
}

func (r *BookingGormRepository) CreateSlot(
	ctx context.Context,
	slot *models.Slot,
) error {
	slot.StartAt = slot.StartAt.UTC()
	slot.EndAt = slot.EndAt.UTC()
	return translate(r.db.WithContext(ctx).Create(slot).Error)
}

func (r *BookingGormRepository) MarkSlotBooked(
	ctx context.Context,
	slotID uint,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Slot{}).
		Where("id = ? AND is_booked = ?", slotID, false).
		Update("is_booked", true)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *BookingGormRepository) ReleaseSlot(
	ctx context.Context,
	slotID uint,
) error {
	return translate(r.db.WithContext(ctx).
		Model(&models.Slot{}).
		Where("id = ?", slotID).
		Update("is_booked", false).Error)
}

func (r *BookingGormRepository) ListBookedSlots(
	ctx context.Context,
	from time.Time,
	to time.Time,
) ([]models.Slot, error) {

	var slots []models.Slot
	if err := r.db.WithContext(ctx).
		Where("is_booked = ? AND start_at >= ? AND start_at < ?", true, from.UTC(), to.UTC()).
		Order("start_at ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return translate(r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(b).Error)
}

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Slot").
		First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingForUpdate(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingGormRepository) UpdateBookingStatus(
	ctx context.Context,
	b *models.Booking,
) error {
	return translate(r.db.WithContext(ctx).
		Model(&models.Booking{ID: b.ID}).
		Updates(map[string]any{
			"status":       b.Status,
			"cancelled_at": b.CancelledAt,
			"completed_at": b.CompletedAt,
		}).Error)
}

func (r *BookingGormRepository) ListBookingsByUser(
	ctx context.Context,
	userID uint,
) ([]models.Booking, error) {

	var out []models.Booking
	if err := r.db.WithContext(ctx).
		Joins("Slot").
		Preload("User").
		Where("bookings.user_id = ?", userID).
		Order(`"Slot"."start_at" ASC`).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingGormRepository) ListBookings(
	ctx context.Context,
	filter domain.ListFilter,
) ([]models.Booking, int64, error) {

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Booking{})
		if filter.Status != "" {
			q = q.Where("bookings.status = ?", string(filter.Status))
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.Booking
	if err := base().
		Joins("Slot").
		Preload("User").
		Order(`"Slot"."start_at" DESC`).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

// translate maps gorm and postgres errors onto the storage sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case httperr.IsUniqueViolation(err):
		return domain.ErrDuplicate
	}
	return err
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
