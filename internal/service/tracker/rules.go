package tracker

import (
	"fmt"

	"github.com/dokyun-lab/stock-tracker/internal/entity"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// RuleEngine 관측치 + 현재 흐름 상태를 설정된 규칙으로 평가
type RuleEngine struct {
	cfg      Config
	watch    map[string]struct{}
	minNet   decimal.Decimal
	minStake decimal.Decimal
}

func NewRuleEngine(cfg Config) *RuleEngine {
	return &RuleEngine{
		cfg: cfg,
		watch: lo.SliceToMap(cfg.Watchlist, func(code string) (string, struct{}) {
			return code, struct{}{}
		}),
		minNet:   decimal.NewFromFloat(cfg.MinNetAmount),
		minStake: decimal.NewFromFloat(cfg.MinStakeChange),
	}
}

// Evaluate returns zero or more candidates for one observation.
// trend is the freshly updated state for trade flow observations, nil otherwise.
func (e *RuleEngine) Evaluate(obs Observation, trend *entity.TrendState) []AlertCandidate {
	if len(e.watch) > 0 {
		if _, ok := e.watch[obs.StockCode]; !ok {
			return nil
		}
	}

	var candidates []AlertCandidate
	switch obs.Kind {
	case KindTradeFlow:
		if c, ok := e.evalStreak(obs, trend); ok {
			candidates = append(candidates, c)
		}
	case KindMajorStake:
		if c, ok := e.evalStakeChange(obs); ok {
			candidates = append(candidates, c)
		}
	case KindInsider:
		if c, ok := e.evalInsider(obs); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

func (e *RuleEngine) evalStreak(obs Observation, trend *entity.TrendState) (AlertCandidate, bool) {
	if !e.cfg.Rules.Streak || trend == nil {
		return AlertCandidate{}, false
	}
	if trend.StreakDays < e.cfg.ConsecutiveDays {
		return AlertCandidate{}, false
	}
	cum, err := decimal.NewFromString(trend.StreakAmount)
	if err != nil || cum.Abs().LessThan(e.minNet) {
		return AlertCandidate{}, false
	}
	if trend.StreakStart == "" {
		return AlertCandidate{}, false
	}

	// the key pins the streak's recorded start date, so an unbroken streak
	// keeps computing the same key day after day even across a weekend gap
	action := "net buying"
	if trend.StreakSide == entity.SideSell {
		action = "net selling"
	}
	return AlertCandidate{
		AlertKey:   fmt.Sprintf("streak_%s_%s_%s", obs.TradeFlow.Investor, obs.StockCode, trend.StreakStart),
		RuleType:   RuleStreak,
		StockCode:  obs.StockCode,
		StockName:  obs.StockName,
		Investor:   obs.TradeFlow.Investor,
		StreakDays: trend.StreakDays,
		NetAmount:  cum,
		Reason: fmt.Sprintf("%s %s for %d consecutive days, total %s won",
			obs.TradeFlow.Investor, action, trend.StreakDays, cum.String()),
	}, true
}

func (e *RuleEngine) evalStakeChange(obs Observation) (AlertCandidate, bool) {
	if !e.cfg.Rules.StakeChange {
		return AlertCandidate{}, false
	}
	p := obs.MajorStake
	if p.ChangePP.Abs().LessThan(e.minStake) {
		return AlertCandidate{}, false
	}
	return AlertCandidate{
		AlertKey:    fmt.Sprintf("stake_change_%s_%s", obs.StockCode, p.FilingID),
		RuleType:    RuleStakeChange,
		StockCode:   obs.StockCode,
		StockName:   obs.StockName,
		FilingID:    p.FilingID,
		Reporter:    p.Reporter,
		StakeChange: p.ChangePP,
		Reason: fmt.Sprintf("major stake moved %s%%p (%s%% -> %s%%) by %s",
			p.ChangePP.String(), p.StakeBefore.String(), p.StakeAfter.String(), p.Reporter),
	}, true
}

func (e *RuleEngine) evalInsider(obs Observation) (AlertCandidate, bool) {
	if !e.cfg.Rules.Insider {
		return AlertCandidate{}, false
	}
	// presence of the filing is itself the signal, no magnitude threshold
	p := obs.Insider
	change := p.Quantity
	if p.Side == entity.SideSell {
		change = change.Neg()
	}
	return AlertCandidate{
		AlertKey:    fmt.Sprintf("insider_%s_%s", obs.StockCode, p.FilingID),
		RuleType:    RuleInsider,
		StockCode:   obs.StockCode,
		StockName:   obs.StockName,
		FilingID:    p.FilingID,
		Reporter:    p.Insider,
		ShareChange: change,
		Reason:      fmt.Sprintf("insider %s reported %s of %s shares", p.Insider, p.Side, p.Quantity.String()),
	}, true
}
