package entity

import (
	"time"
)

// SentAlert 발송 기록, one row per alert key ever emitted.
// Rows are never deleted; the unique key is what suppresses duplicates.
type SentAlert struct {
	Id        int64  `gorm:"primaryKey;autoIncrement"`
	AlertKey  string `gorm:"uniqueIndex"`
	RuleType  string `gorm:"index"`
	StockCode string `gorm:"index"`
	EmittedAt time.Time
	CreatedAt time.Time
}
