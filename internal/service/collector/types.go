package collector

import (
	"context"
)

// TradeFlowRecord 투자자별 순매수 raw record as fetched from KRX.
// Amounts are kept as the provider's strings (comma-grouped won) and only
// parsed during normalization.
type TradeFlowRecord struct {
	StockCode string
	StockName string
	Date      string // YYYY-MM-DD
	Investor  string // foreigner / institution
	NetAmount string // signed net buy value in won
}

const (
	FilingMajorStake = "major_stake"
	FilingInsider    = "insider_trading"
)

// FilingRecord 공시 raw record as fetched from DART.
// ReceiptNo is DART's immutable disclosure id (rcept_no).
type FilingRecord struct {
	Kind        string // FilingMajorStake / FilingInsider
	StockCode   string
	CorpName    string
	ReceiptNo   string
	ReceiptDate string // YYYYMMDD
	Reporter    string

	// major stake fields (percent of shares outstanding)
	StakeAfter  string
	StakeChange string // percentage points, signed

	// insider trading fields
	ShareChange string // signed share quantity
	SharePrice  string // optional, zero when the filing omits it
}

type TradeFlowCollector interface {
	Collect(ctx context.Context) ([]TradeFlowRecord, error)
}

type FilingCollector interface {
	Collect(ctx context.Context) ([]FilingRecord, error)
}
