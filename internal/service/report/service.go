package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dokyun-lab/stock-tracker/internal/entity"
	"github.com/dokyun-lab/stock-tracker/internal/repo"
	"github.com/dokyun-lab/stock-tracker/internal/service/tracker"
	"github.com/samber/lo"
)

const dateLayout = "2006-01-02"

var ruleTitles = map[string]string{
	string(tracker.RuleStreak):      "연속 순매수/순매도",
	string(tracker.RuleStakeChange): "대량보유 지분 변동",
	string(tracker.RuleInsider):     "임원/주요주주 거래",
}

var ruleOrder = []string{
	string(tracker.RuleStreak),
	string(tracker.RuleStakeChange),
	string(tracker.RuleInsider),
}

// Service 알림 활동 리포트: 최근 발송된 알림을 규칙/종목별로 집계
type Service interface {
	Activity(ctx context.Context, days int) (string, error)
}

type reportService struct {
	ledger repo.LedgerRepo
	now    func() time.Time
}

func NewService(ledger repo.LedgerRepo) Service {
	return &reportService{
		ledger: ledger,
		now:    time.Now,
	}
}

func (s *reportService) Activity(ctx context.Context, days int) (string, error) {
	end := s.now()
	begin := end.AddDate(0, 0, -days)

	alerts, err := s.ledger.EmittedSince(ctx, begin)
	if err != nil {
		return "", err
	}
	if len(alerts) == 0 {
		return fmt.Sprintf("*📋 알림 리포트* (%s ~ %s)\n기간 내 발송된 알림이 없습니다.",
			begin.Format(dateLayout), end.Format(dateLayout)), nil
	}

	byRule := lo.CountValuesBy(alerts, func(a entity.SentAlert) string {
		return a.RuleType
	})
	byStock := lo.CountValuesBy(alerts, func(a entity.SentAlert) string {
		return a.StockCode
	})

	var b strings.Builder
	b.WriteString(fmt.Sprintf("*📋 알림 리포트* (%s ~ %s)\n총 %d건\n",
		begin.Format(dateLayout), end.Format(dateLayout), len(alerts)))
	for _, rule := range ruleOrder {
		if n := byRule[rule]; n > 0 {
			b.WriteString(fmt.Sprintf("• %s: %d건\n", ruleTitles[rule], n))
		}
	}

	for _, sc := range topStocks(byStock, 3) {
		b.WriteString(fmt.Sprintf("• 최다 알림: %s (%d건)\n", sc.code, sc.count))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

type stockCount struct {
	code  string
	count int
}

func topStocks(byStock map[string]int, n int) []stockCount {
	counts := lo.MapToSlice(byStock, func(code string, count int) stockCount {
		return stockCount{code: code, count: count}
	})
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].code < counts[j].code
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
