package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/dokyun-lab/stock-tracker/internal/entity"
	"github.com/dokyun-lab/stock-tracker/internal/repo"
	"github.com/shopspring/decimal"
)

// TrendTracker 종목/투자자별 연속 순매수 흐름 추적
// Only a new calendar date advances a streak; same-day re-polls fold their
// amount into the running total without touching the day count.
type TrendTracker struct {
	trends repo.TrendRepo
}

func NewTrendTracker(trends repo.TrendRepo) *TrendTracker {
	return &TrendTracker{
		trends: trends,
	}
}

func (t *TrendTracker) Update(ctx context.Context, stockCode string, investor InvestorType, date time.Time, netAmount decimal.Decimal) (entity.TrendState, error) {
	state, found, err := t.trends.Find(ctx, stockCode, string(investor))
	if err != nil {
		return entity.TrendState{}, err
	}
	if !found {
		state = entity.TrendState{
			StockCode:    stockCode,
			InvestorType: string(investor),
			StreakSide:   entity.SideNone,
			StreakAmount: "0",
		}
	}

	day := date.Format(dateLayout)
	if found && state.LastDate == day {
		// same-day re-observation, fold into the day's running total
		cum, err := decimal.NewFromString(state.StreakAmount)
		if err != nil {
			return entity.TrendState{}, fmt.Errorf("corrupt streak amount %q: %v", state.StreakAmount, err)
		}
		state.StreakAmount = cum.Add(netAmount).String()
	} else {
		side := sideOf(netAmount)
		if side != entity.SideNone && side == state.StreakSide {
			cum, err := decimal.NewFromString(state.StreakAmount)
			if err != nil {
				return entity.TrendState{}, fmt.Errorf("corrupt streak amount %q: %v", state.StreakAmount, err)
			}
			state.StreakDays++
			state.StreakAmount = cum.Add(netAmount).String()
		} else {
			// streak broken (or never started); trading days skip weekends
			// and holidays, so the start date is recorded here rather than
			// derived from the day count later
			if side == entity.SideNone {
				state.StreakDays = 0
				state.StreakStart = ""
			} else {
				state.StreakDays = 1
				state.StreakStart = day
			}
			state.StreakSide = side
			state.StreakAmount = netAmount.String()
		}
		state.LastDate = day
	}

	if err := t.trends.Save(ctx, state); err != nil {
		return entity.TrendState{}, err
	}
	return state, nil
}

func sideOf(amount decimal.Decimal) string {
	switch {
	case amount.IsPositive():
		return entity.SideBuy
	case amount.IsNegative():
		return entity.SideSell
	default:
		return entity.SideNone
	}
}
