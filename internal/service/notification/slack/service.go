package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dokyun-lab/stock-tracker/internal/service/notification"
	"github.com/dokyun-lab/stock-tracker/internal/service/tracker"
	"github.com/samber/lo"
)

var sectionTitles = map[tracker.RuleType]string{
	tracker.RuleStreak:      ":chart_with_upwards_trend: 연속 순매수/순매도",
	tracker.RuleStakeChange: ":bank: 대량보유 지분 변동",
	tracker.RuleInsider:     ":bust_in_silhouette: 임원/주요주주 거래",
}

var sectionOrder = []tracker.RuleType{tracker.RuleStreak, tracker.RuleStakeChange, tracker.RuleInsider}

type message struct {
	Text string `json:"text"`
}

// Service incoming-webhook 기반 Slack 알림
type Service struct {
	webhookURL string
	client     *http.Client
}

func NewService(webhookURL string) notification.Notifier {
	return &Service{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Service) Notify(ctx context.Context, alerts []tracker.AlertCandidate) error {
	if len(alerts) == 0 {
		return nil
	}
	return s.NotifyText(ctx, format(alerts))
}

func (s *Service) NotifyText(ctx context.Context, text string) error {
	body, err := json.Marshal(message{Text: text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack webhook status %d: %s", resp.StatusCode, text)
	}
	return nil
}

func format(alerts []tracker.AlertCandidate) string {
	grouped := lo.GroupBy(alerts, func(a tracker.AlertCandidate) tracker.RuleType {
		return a.RuleType
	})

	var b strings.Builder
	b.WriteString(fmt.Sprintf("*:rotating_light: 주식 알림 %d건*\n", len(alerts)))
	for _, rule := range sectionOrder {
		group := grouped[rule]
		if len(group) == 0 {
			continue
		}
		b.WriteString("\n" + sectionTitles[rule] + "\n")
		for _, a := range group {
			b.WriteString(fmt.Sprintf("• *%s* (%s): %s\n", a.StockName, a.StockCode, a.Reason))
		}
	}
	return b.String()
}
