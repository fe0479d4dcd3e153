package repo

import (
	"context"
	"errors"

	"github.com/dokyun-lab/stock-tracker/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrendRepo interface {
	// Find returns the stored state and whether it exists.
	Find(ctx context.Context, stockCode, investorType string) (entity.TrendState, bool, error)
	Save(ctx context.Context, state entity.TrendState) error
}

type trendRepo struct {
	db *gorm.DB
}

func NewTrendRepo(db *gorm.DB) TrendRepo {
	return &trendRepo{
		db: db,
	}
}

func (r *trendRepo) Find(ctx context.Context, stockCode, investorType string) (entity.TrendState, bool, error) {
	var state entity.TrendState
	err := r.db.WithContext(ctx).
		Where("stock_code = ? AND investor_type = ?", stockCode, investorType).
		First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.TrendState{}, false, nil
		}
		return entity.TrendState{}, false, err
	}
	return state, true, nil
}

func (r *trendRepo) Save(ctx context.Context, state entity.TrendState) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stock_code"}, {Name: "investor_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"streak_days", "streak_side", "streak_amount", "streak_start", "last_date", "updated_at",
		}),
	}).Create(&state).Error
}
