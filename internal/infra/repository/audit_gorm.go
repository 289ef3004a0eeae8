package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/slot-booking/internal/audit"
	"github.com/BruksfildServices01/slot-booking/internal/models"
)

type AuditGormRepository struct {
	db *gorm.DB
}

func NewAuditGormRepository(db *gorm.DB) *AuditGormRepository {
	return &AuditGormRepository{db: db}
}

func (r *AuditGormRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *AuditGormRepository) ListAuditLogs(
	ctx context.Context,
	q audit.Query,
) ([]models.AuditLog, int64, error) {

	base := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&models.AuditLog{})
		if q.Action != "" {
			tx = tx.Where("action = ?", q.Action)
		}
		if q.Entity != "" {
			tx = tx.Where("entity = ?", q.Entity)
		}
		if q.From != nil {
			tx = tx.Where("created_at >= ?", *q.From)
		}
		if q.To != nil {
			tx = tx.Where("created_at < ?", *q.To)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	if err := base().
		Order("created_at DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

var _ audit.Store = (*AuditGormRepository)(nil)
