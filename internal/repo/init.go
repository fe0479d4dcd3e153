package repo

import (
	"github.com/dokyun-lab/stock-tracker/internal/entity"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&entity.TrendState{}, &entity.SentAlert{})
}
