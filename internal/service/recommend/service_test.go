package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokyun-lab/stock-tracker/internal/service/llm"
	"github.com/dokyun-lab/stock-tracker/internal/service/tracker"
)

type stubLLM struct {
	gotPrompt string
	answer    string
	err       error
}

func (s *stubLLM) AskOnce(_ context.Context, q llm.Question) (llm.Answer, error) {
	s.gotPrompt = q.Content
	return llm.Answer{Content: s.answer}, s.err
}

func TestComment(t *testing.T) {
	stub := &stubLLM{answer: "  삼성전자 수급이 가장 강하다.\n"}
	svc := NewService(stub)

	comment, err := svc.Comment(context.Background(), []tracker.AlertCandidate{
		{StockCode: "005930", StockName: "삼성전자", Reason: "외국인 3일 연속 순매수"},
		{StockCode: "005380", StockName: "현대차", Reason: "대량보유 비율 +1.2%p"},
	})
	require.NoError(t, err)

	assert.Equal(t, "삼성전자 수급이 가장 강하다.", comment)
	assert.Contains(t, stub.gotPrompt, "삼성전자(005930): 외국인 3일 연속 순매수")
	assert.Contains(t, stub.gotPrompt, "현대차(005380): 대량보유 비율 +1.2%p")
}

func TestComment_NoAlerts(t *testing.T) {
	stub := &stubLLM{answer: "should not be called"}
	svc := NewService(stub)

	comment, err := svc.Comment(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, comment)
	assert.Empty(t, stub.gotPrompt)
}

func TestComment_LLMFailure(t *testing.T) {
	stub := &stubLLM{err: errors.New("quota exceeded")}
	svc := NewService(stub)

	_, err := svc.Comment(context.Background(), []tracker.AlertCandidate{
		{StockCode: "005930", StockName: "삼성전자", Reason: "외국인 3일 연속 순매수"},
	})
	assert.Error(t, err)
}
