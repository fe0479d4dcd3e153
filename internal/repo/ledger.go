package repo

import (
	"context"
	"time"

	"github.com/dokyun-lab/stock-tracker/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepo 발송된 알림 키 저장소
// Commit is idempotent: re-committing a known key is a no-op, never an error.
type LedgerRepo interface {
	Has(ctx context.Context, alertKey string) (bool, error)
	Commit(ctx context.Context, alert entity.SentAlert) error
	// EmittedSince 주어진 시각 이후 발송된 알림, oldest first.
	EmittedSince(ctx context.Context, since time.Time) ([]entity.SentAlert, error)
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepo {
	return &ledgerRepo{
		db: db,
	}
}

func (r *ledgerRepo) Has(ctx context.Context, alertKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.SentAlert{}).
		Where("alert_key = ?", alertKey).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ledgerRepo) EmittedSince(ctx context.Context, since time.Time) ([]entity.SentAlert, error) {
	var alerts []entity.SentAlert
	err := r.db.WithContext(ctx).
		Where("emitted_at >= ?", since).
		Order("emitted_at").
		Find(&alerts).Error
	return alerts, err
}

func (r *ledgerRepo) Commit(ctx context.Context, alert entity.SentAlert) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "alert_key"}},
		DoNothing: true,
	}).Create(&alert).Error
}
