package monitor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dokyun-lab/stock-tracker/internal/schedule"
	"github.com/dokyun-lab/stock-tracker/internal/service/collector"
	"github.com/dokyun-lab/stock-tracker/internal/service/notification"
	"github.com/dokyun-lab/stock-tracker/internal/service/recommend"
	"github.com/dokyun-lab/stock-tracker/internal/service/tracker"
)

type consoleNotifier struct {
}

func (c consoleNotifier) Notify(ctx context.Context, alerts []tracker.AlertCandidate) error {
	for _, a := range alerts {
		fmt.Printf("[%s] %s (%s): %s\n", a.RuleType, a.StockName, a.StockCode, a.Reason)
	}
	return nil
}

func (c consoleNotifier) NotifyText(ctx context.Context, text string) error {
	fmt.Println(text)
	return nil
}

// NewConsoleNotifier dry-run용 stdout 알림
func NewConsoleNotifier() notification.Notifier {
	return consoleNotifier{}
}

type Option func(t *TrackerTask)

func WithNotifier(notifier notification.Notifier) Option {
	return func(t *TrackerTask) {
		t.notifier = notifier
	}
}

func WithRecommender(recommender recommend.Service) Option {
	return func(t *TrackerTask) {
		t.recommender = recommender
	}
}

// WithMarketOverview 실행마다 수급 현황 요약 메시지를 먼저 발송
func WithMarketOverview() Option {
	return func(t *TrackerTask) {
		t.overview = true
	}
}

// TrackerTask 한 번의 실행: 수집 → 분석 → 알림
// One collector failing only shrinks the batch; the sources that did answer
// are still processed.
type TrackerTask struct {
	flows   []collector.TradeFlowCollector
	filings []collector.FilingCollector

	trackerSvc  tracker.Service
	notifier    notification.Notifier
	recommender recommend.Service
	overview    bool
}

func NewTrackerTask(trackerSvc tracker.Service, flows []collector.TradeFlowCollector,
	filings []collector.FilingCollector, opts ...Option) schedule.Task {
	task := &TrackerTask{
		flows:      flows,
		filings:    filings,
		trackerSvc: trackerSvc,
		notifier:   consoleNotifier{},
	}
	for _, opt := range opts {
		opt(task)
	}
	return task
}

func (t *TrackerTask) Run(ctx context.Context) error {
	var batch tracker.Batch
	for _, c := range t.flows {
		records, err := c.Collect(ctx)
		if err != nil {
			slog.Error("trade flow collect failed", "error", err)
			continue
		}
		batch.TradeFlows = append(batch.TradeFlows, records...)
	}
	for _, c := range t.filings {
		records, err := c.Collect(ctx)
		if err != nil {
			slog.Error("filing collect failed", "error", err)
			continue
		}
		batch.Filings = append(batch.Filings, records...)
	}

	if t.overview {
		if text := formatOverview(batch); text != "" {
			if err := t.notifier.NotifyText(ctx, text); err != nil {
				slog.Error("failed to send market overview", "error", err)
			}
		}
	}

	result, err := t.trackerSvc.Process(ctx, batch)
	if err != nil {
		return err
	}
	slog.Info("tracker run finished",
		"trade_flows", len(batch.TradeFlows),
		"filings", len(batch.Filings),
		"alerts", len(result.Alerts),
		"malformed", result.Malformed)

	if len(result.Alerts) == 0 {
		return nil
	}
	if err := t.notifier.Notify(ctx, result.Alerts); err != nil {
		return fmt.Errorf("notify alerts: %w", err)
	}

	if t.recommender != nil {
		comment, err := t.recommender.Comment(ctx, result.Alerts)
		if err != nil {
			slog.Error("recommender failed", "error", err)
			return nil
		}
		if comment != "" {
			if err := t.notifier.NotifyText(ctx, comment); err != nil {
				slog.Error("failed to send recommendation", "error", err)
			}
		}
	}
	return nil
}

func (t *TrackerTask) Name() string {
	return "stock tracker task"
}
