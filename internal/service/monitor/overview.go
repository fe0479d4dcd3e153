package monitor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dokyun-lab/stock-tracker/internal/service/collector"
	"github.com/dokyun-lab/stock-tracker/internal/service/tracker"
	"github.com/dokyun-lab/stock-tracker/pkg/decimalx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var eok = decimal.NewFromInt(100_000_000) // 1억원

type rankedFlow struct {
	code   string
	name   string
	amount decimal.Decimal
}

var investorTitles = map[string]string{
	"foreigner":   "🌍 외국인 순매수 TOP5",
	"institution": "🏦 기관 순매수 TOP5",
}

// formatOverview 시장 수급 현황 메시지 (투자자별 순매수 상위 + 공시 건수)
// Unparsable amounts are simply left out; the overview is informational and
// never blocks the run.
func formatOverview(batch tracker.Batch) string {
	byInvestor := lo.GroupBy(batch.TradeFlows, func(r collector.TradeFlowRecord) string {
		return r.Investor
	})

	var sections []string
	for _, investor := range []string{"foreigner", "institution"} {
		top := topNetBuys(byInvestor[investor], 5)
		if len(top) == 0 {
			continue
		}
		var b strings.Builder
		b.WriteString("*" + investorTitles[investor] + "*\n")
		for i, f := range top {
			b.WriteString(fmt.Sprintf("`%d` *%s* (%s) %s억\n",
				i+1, f.name, f.code, f.amount.Div(eok).StringFixed(0)))
		}
		sections = append(sections, b.String())
	}

	major := 0
	insider := 0
	for _, f := range batch.Filings {
		switch f.Kind {
		case collector.FilingMajorStake:
			major++
		case collector.FilingInsider:
			insider++
		}
	}
	if major > 0 || insider > 0 {
		sections = append(sections,
			fmt.Sprintf("*📋 오늘의 공시*\n• 대량보유: %d건\n• 임원/주요주주 거래: %d건\n", major, insider))
	}

	if len(sections) == 0 {
		return ""
	}
	return "*📊 시장 수급 현황*\n\n" + strings.Join(sections, "\n")
}

func topNetBuys(records []collector.TradeFlowRecord, n int) []rankedFlow {
	var flows []rankedFlow
	for _, r := range records {
		amount, err := decimalx.ParseComma(r.NetAmount)
		if err != nil || !amount.IsPositive() {
			continue
		}
		flows = append(flows, rankedFlow{code: r.StockCode, name: r.StockName, amount: amount})
	}
	sort.Slice(flows, func(i, j int) bool {
		return flows[i].amount.GreaterThan(flows[j].amount)
	})
	if len(flows) > n {
		flows = flows[:n]
	}
	return flows
}
