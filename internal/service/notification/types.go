package notification

import (
	"context"

	"github.com/dokyun-lab/stock-tracker/internal/service/tracker"
)

type Notifier interface {
	Notify(ctx context.Context, alerts []tracker.AlertCandidate) error
	// NotifyText 부가 코멘트 발송 (추천 등)
	NotifyText(ctx context.Context, text string) error
}
