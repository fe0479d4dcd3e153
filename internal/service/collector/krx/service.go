package krx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dokyun-lab/stock-tracker/internal/service/collector"
)

const (
	endpoint = "http://data.krx.co.kr/comm/bldAttendant/getJsonData.cmd"
	bld      = "dbms/MDC/STAT/standard/MDCSTAT02401"

	dateLayout  = "2006-01-02"
	queryLayout = "20060102"
)

// 투자자 구분 코드
var investorCodes = []struct {
	investor string
	code     string
}{
	{investor: "foreigner", code: "9000"},
	{investor: "institution", code: "7050"},
}

var markets = []string{"STK", "KSQ"} // KOSPI, KOSDAQ

type response struct {
	Output []row `json:"output"`
}

type row struct {
	StockCode string `json:"ISU_SRT_CD"`
	StockName string `json:"ISU_ABBRV"`
	NetValue  string `json:"NETBID_TRDVAL"`
}

// Service 투자자별 순매수 동향 수집
type Service struct {
	endpoint string
	client   *http.Client
	now      func() time.Time
}

func NewService() *Service {
	return &Service{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		now:      time.Now,
	}
}

func (s *Service) Collect(ctx context.Context) ([]collector.TradeFlowRecord, error) {
	date := recentTradingDate(s.now())

	var records []collector.TradeFlowRecord
	for _, inv := range investorCodes {
		for _, market := range markets {
			rows, err := s.fetch(ctx, date, market, inv.code)
			if err != nil {
				return nil, fmt.Errorf("krx %s/%s: %w", market, inv.investor, err)
			}
			for _, r := range rows {
				records = append(records, collector.TradeFlowRecord{
					StockCode: r.StockCode,
					StockName: r.StockName,
					Date:      date.Format(dateLayout),
					Investor:  inv.investor,
					NetAmount: r.NetValue,
				})
			}
		}
	}
	return records, nil
}

func (s *Service) fetch(ctx context.Context, date time.Time, market, investorCode string) ([]row, error) {
	form := url.Values{
		"bld":       {bld},
		"mktId":     {market},
		"invstTpCd": {investorCode},
		"strtDd":    {date.Format(queryLayout)},
		"endDd":     {date.Format(queryLayout)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://data.krx.co.kr/")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var out response
	if err = json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.Output, nil
}

// recentTradingDate 최근 거래일 (주말 제외, 09시 이전이면 전일)
func recentTradingDate(now time.Time) time.Time {
	day := now
	if day.Hour() < 9 {
		day = day.AddDate(0, 0, -1)
	}
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, -1)
	}
	return day
}
