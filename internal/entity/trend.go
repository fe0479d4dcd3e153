package entity

import (
	"time"
)

// TrendState 종목/투자자별 연속 순매수 흐름
// one row per (stock, investor type), mutated once per trading date
type TrendState struct {
	Id           int64  `gorm:"primaryKey;autoIncrement"`
	StockCode    string `gorm:"uniqueIndex:trend_idx"`
	InvestorType string `gorm:"uniqueIndex:trend_idx"`
	StreakDays   int
	StreakSide   string // buy / sell / none
	StreakAmount string // cumulative net amount over the streak, decimal string
	StreakStart  string // YYYY-MM-DD of the streak's first day, empty when StreakSide is none
	LastDate     string // YYYY-MM-DD, empty before the first observation
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	SideBuy  = "buy"
	SideSell = "sell"
	SideNone = "none"
)
