package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dokyun-lab/stock-tracker/internal/entity"
	"github.com/dokyun-lab/stock-tracker/internal/repo"
	"gorm.io/gorm"
)

// Result 한 번의 실행 결과
// An empty Alerts with a nil error means a clean run with nothing to report,
// which is not the same thing as a failed run.
type Result struct {
	Alerts    []AlertCandidate
	Malformed int
}

type Service interface {
	Process(ctx context.Context, batch Batch) (Result, error)
}

type trackerService struct {
	db     *gorm.DB
	norm   *Normalizer
	engine *RuleEngine
	now    func() time.Time
}

func NewService(db *gorm.DB, cfg Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &trackerService{
		db:     db,
		norm:   NewNormalizer(),
		engine: NewRuleEngine(cfg),
		now:    time.Now,
	}, nil
}

// Process normalizes the batch, updates trends, evaluates rules and filters
// candidates through the dedup ledger. Trend and ledger writes commit in one
// transaction before any alert is returned; a crash mid-run therefore re-offers
// the same candidates on the next run instead of losing them.
func (s *trackerService) Process(ctx context.Context, batch Batch) (Result, error) {
	observations := make([]Observation, 0, len(batch.TradeFlows)+len(batch.Filings))
	malformed := 0

	for _, rec := range batch.TradeFlows {
		obs, err := s.norm.NormalizeTradeFlow(rec)
		if err != nil {
			slog.Error("skipping trade flow record", "stock", rec.StockCode, "error", err)
			malformed++
			continue
		}
		observations = append(observations, obs)
	}
	for _, rec := range batch.Filings {
		obs, err := s.norm.NormalizeFiling(rec)
		if err != nil {
			slog.Error("skipping filing record", "stock", rec.StockCode, "receipt", rec.ReceiptNo, "error", err)
			malformed++
			continue
		}
		observations = append(observations, obs)
	}

	var alerts []AlertCandidate
	err := s.db.Transaction(func(tx *gorm.DB) error {
		trends := NewTrendTracker(repo.NewTrendRepo(tx))
		ledger := repo.NewLedgerRepo(tx)

		for _, obs := range observations {
			var state *entity.TrendState
			if obs.Kind == KindTradeFlow {
				// update before evaluating so the streak rule sees the freshest state
				updated, err := trends.Update(ctx, obs.StockCode, obs.TradeFlow.Investor, obs.Date, obs.TradeFlow.NetAmount)
				if err != nil {
					return err
				}
				state = &updated
			}

			for _, cand := range s.engine.Evaluate(obs, state) {
				// checked observation-by-observation inside the transaction,
				// so a duplicate later in the same batch sees the earlier commit
				seen, err := ledger.Has(ctx, cand.AlertKey)
				if err != nil {
					return err
				}
				if seen {
					continue
				}
				cand.TriggeredAt = s.now()
				if err := ledger.Commit(ctx, entity.SentAlert{
					AlertKey:  cand.AlertKey,
					RuleType:  string(cand.RuleType),
					StockCode: cand.StockCode,
					EmittedAt: cand.TriggeredAt,
				}); err != nil {
					return err
				}
				alerts = append(alerts, cand)
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStateStore, err)
	}

	return Result{Alerts: alerts, Malformed: malformed}, nil
}
