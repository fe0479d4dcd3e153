package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/dokyun-lab/stock-tracker/internal/service/llm"
	"github.com/dokyun-lab/stock-tracker/internal/service/tracker"
	"github.com/samber/lo"
)

// Service 당일 알림에 걸린 종목을 LLM으로 재평가해 코멘트 생성
// Advisory only: failures here never block alert delivery.
type Service interface {
	Comment(ctx context.Context, alerts []tracker.AlertCandidate) (string, error)
}

type llmRecommender struct {
	llmSvc llm.Service
}

func NewService(llmSvc llm.Service) Service {
	return &llmRecommender{
		llmSvc: llmSvc,
	}
}

func (r *llmRecommender) Comment(ctx context.Context, alerts []tracker.AlertCandidate) (string, error) {
	if len(alerts) == 0 {
		return "", nil
	}

	lines := lo.Map(alerts, func(a tracker.AlertCandidate, _ int) string {
		return fmt.Sprintf("- %s(%s): %s", a.StockName, a.StockCode, a.Reason)
	})

	prompt := fmt.Sprintf("다음은 오늘 한국 주식시장에서 수급/공시 조건에 걸린 종목들이다:\n%s\n"+
		"각 종목의 신호 강도를 간단히 평가하고, 주목할 만한 상위 3개를 골라 한 문단씩 코멘트해줘. "+
		"투자 권유가 아닌 데이터 관찰 수준으로, 전체 10줄 이내로 답해줘.",
		strings.Join(lines, "\n"))

	answer, err := r.llmSvc.AskOnce(ctx, llm.Question{Content: prompt})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer.Content), nil
}
