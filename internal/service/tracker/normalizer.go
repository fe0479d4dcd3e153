package tracker

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dokyun-lab/stock-tracker/internal/entity"
	"github.com/dokyun-lab/stock-tracker/internal/service/collector"
	"github.com/dokyun-lab/stock-tracker/pkg/decimalx"
	"github.com/shopspring/decimal"
)

const (
	dateLayout       = "2006-01-02"
	filingDateLayout = "20060102"
)

// KRX 종목코드는 6자리 숫자
var stockCodePattern = regexp.MustCompile(`^\d{6}$`)

var hundred = decimal.NewFromInt(100)

// Normalizer converts raw provider records into canonical observations.
// It validates shape and ranges only; whether a code refers to a live
// instrument is not its concern.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) NormalizeTradeFlow(rec collector.TradeFlowRecord) (Observation, error) {
	if !stockCodePattern.MatchString(rec.StockCode) {
		return Observation{}, fmt.Errorf("%w: bad stock code %q", ErrMalformedRecord, rec.StockCode)
	}

	investor := InvestorType(rec.Investor)
	if investor != InvestorForeigner && investor != InvestorInstitution {
		return Observation{}, fmt.Errorf("%w: unknown investor type %q", ErrMalformedRecord, rec.Investor)
	}

	date, err := time.Parse(dateLayout, rec.Date)
	if err != nil {
		return Observation{}, fmt.Errorf("%w: bad date %q", ErrMalformedRecord, rec.Date)
	}

	amount, err := decimalx.ParseComma(rec.NetAmount)
	if err != nil {
		return Observation{}, fmt.Errorf("%w: bad net amount %q", ErrMalformedRecord, rec.NetAmount)
	}

	return Observation{
		StockCode: rec.StockCode,
		StockName: rec.StockName,
		Date:      date,
		Kind:      KindTradeFlow,
		TradeFlow: &TradeFlowPayload{
			Investor:  investor,
			NetAmount: amount,
		},
	}, nil
}

func (n *Normalizer) NormalizeFiling(rec collector.FilingRecord) (Observation, error) {
	if !stockCodePattern.MatchString(rec.StockCode) {
		return Observation{}, fmt.Errorf("%w: bad stock code %q", ErrMalformedRecord, rec.StockCode)
	}
	if rec.ReceiptNo == "" {
		return Observation{}, fmt.Errorf("%w: missing receipt no", ErrMalformedRecord)
	}

	date, err := time.Parse(filingDateLayout, rec.ReceiptDate)
	if err != nil {
		return Observation{}, fmt.Errorf("%w: bad receipt date %q", ErrMalformedRecord, rec.ReceiptDate)
	}

	obs := Observation{
		StockCode: rec.StockCode,
		StockName: rec.CorpName,
		Date:      date,
	}

	switch rec.Kind {
	case collector.FilingMajorStake:
		after, err := decimalx.ParseComma(rec.StakeAfter)
		if err != nil {
			return Observation{}, fmt.Errorf("%w: bad stake ratio %q", ErrMalformedRecord, rec.StakeAfter)
		}
		change, err := decimalx.ParseComma(rec.StakeChange)
		if err != nil {
			return Observation{}, fmt.Errorf("%w: bad stake change %q", ErrMalformedRecord, rec.StakeChange)
		}
		if after.IsNegative() || after.GreaterThan(hundred) || change.Abs().GreaterThan(hundred) {
			return Observation{}, fmt.Errorf("%w: stake ratio out of range (after=%s change=%s)", ErrMalformedRecord, after, change)
		}
		obs.Kind = KindMajorStake
		obs.MajorStake = &MajorStakePayload{
			FilingID:    rec.ReceiptNo,
			Reporter:    rec.Reporter,
			StakeBefore: after.Sub(change),
			StakeAfter:  after,
			ChangePP:    change,
		}

	case collector.FilingInsider:
		shares, err := decimalx.ParseComma(rec.ShareChange)
		if err != nil {
			return Observation{}, fmt.Errorf("%w: bad share change %q", ErrMalformedRecord, rec.ShareChange)
		}
		if shares.IsZero() {
			return Observation{}, fmt.Errorf("%w: zero share change", ErrMalformedRecord)
		}
		price := decimal.Zero
		if rec.SharePrice != "" {
			price, err = decimalx.ParseComma(rec.SharePrice)
			if err != nil || price.IsNegative() {
				return Observation{}, fmt.Errorf("%w: bad share price %q", ErrMalformedRecord, rec.SharePrice)
			}
		}
		side := entity.SideBuy
		if shares.IsNegative() {
			side = entity.SideSell
		}
		obs.Kind = KindInsider
		obs.Insider = &InsiderPayload{
			FilingID: rec.ReceiptNo,
			Insider:  rec.Reporter,
			Side:     side,
			Quantity: shares.Abs(),
			Price:    price,
		}

	default:
		return Observation{}, fmt.Errorf("%w: unknown filing kind %q", ErrMalformedRecord, rec.Kind)
	}

	return obs, nil
}
