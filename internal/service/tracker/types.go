package tracker

import (
	"errors"
	"time"

	"github.com/dokyun-lab/stock-tracker/internal/service/collector"
	"github.com/shopspring/decimal"
)

var (
	// ErrMalformedRecord 단일 레코드 정규화 실패, skipped, never fatal for the batch.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrStateStore trend/ledger read or write failed, the whole invocation is rolled back.
	ErrStateStore = errors.New("state store unavailable")
	// ErrInvalidConfig rejected before any processing begins.
	ErrInvalidConfig = errors.New("invalid tracker config")
)

type InvestorType string

const (
	InvestorForeigner   InvestorType = "foreigner"
	InvestorInstitution InvestorType = "institution"
)

type Kind string

const (
	KindTradeFlow  Kind = "trade_flow"
	KindMajorStake Kind = "major_stake"
	KindInsider    Kind = "insider_trading"
)

type RuleType string

const (
	RuleStreak      RuleType = "streak"
	RuleStakeChange RuleType = "stake_change"
	RuleInsider     RuleType = "insider_trading"
)

// Observation 정규화된 데이터 포인트, exactly one payload set depending on Kind.
type Observation struct {
	StockCode string
	StockName string
	Date      time.Time // trading date, truncated to day
	Kind      Kind

	TradeFlow  *TradeFlowPayload
	MajorStake *MajorStakePayload
	Insider    *InsiderPayload
}

type TradeFlowPayload struct {
	Investor  InvestorType
	NetAmount decimal.Decimal // signed, won
}

type MajorStakePayload struct {
	FilingID    string
	Reporter    string
	StakeBefore decimal.Decimal // percent
	StakeAfter  decimal.Decimal // percent
	ChangePP    decimal.Decimal // signed percentage points
}

type InsiderPayload struct {
	FilingID string
	Insider  string
	Side     string          // entity.SideBuy / entity.SideSell
	Quantity decimal.Decimal // shares, absolute
	Price    decimal.Decimal // optional, zero when the filing omits it
}

// AlertCandidate 규칙에 걸린 이벤트
// AlertKey is derived from the semantic event, not the invocation, so the
// same real-world event always computes the same key.
type AlertCandidate struct {
	AlertKey    string
	RuleType    RuleType
	StockCode   string
	StockName   string
	TriggeredAt time.Time
	Reason      string

	// streak alerts
	Investor   InvestorType
	StreakDays int
	NetAmount  decimal.Decimal

	// filing alerts
	FilingID    string
	Reporter    string
	StakeChange decimal.Decimal
	ShareChange decimal.Decimal
}

// Batch 한 번의 실행에서 처리할 raw 레코드 묶음
type Batch struct {
	TradeFlows []collector.TradeFlowRecord
	Filings    []collector.FilingRecord
}
