package dart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dokyun-lab/stock-tracker/internal/service/collector"
)

const (
	baseURL     = "https://opendart.fss.or.kr/api"
	queryLayout = "20060102"

	statusOK     = "000"
	statusNoData = "013"
)

type listResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	List    []listReport `json:"list"`
}

type listReport struct {
	CorpCode    string `json:"corp_code"`
	CorpName    string `json:"corp_name"`
	StockCode   string `json:"stock_code"`
	ReportName  string `json:"report_nm"`
	ReceiptNo   string `json:"rcept_no"`
	ReceiptDate string `json:"rcept_dt"`
	Filer       string `json:"flr_nm"`
}

type majorStockResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	List    []majorStock `json:"list"`
}

type majorStock struct {
	ReceiptNo   string `json:"rcept_no"`
	Reporter    string `json:"repror"`
	StakeRatio  string `json:"stkrt"`      // 보유비율 (%)
	StakeChange string `json:"stkrt_irds"` // 증감 (%p)
}

type elestockResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	List    []elestock `json:"list"`
}

type elestock struct {
	ReceiptNo   string `json:"rcept_no"`
	Reporter    string `json:"repror"`
	ShareChange string `json:"sp_stock_lmp_irds_cnt"` // 증감 주식수, signed
}

// Service DART 지분공시 수집 (대량보유, 임원/주요주주 거래)
type Service struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	lookback time.Duration
	now      func() time.Time
}

func NewService(apiKey string) *Service {
	return &Service{
		apiKey:   apiKey,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 15 * time.Second},
		lookback: 7 * 24 * time.Hour,
		now:      time.Now,
	}
}

func (s *Service) Collect(ctx context.Context) ([]collector.FilingRecord, error) {
	end := s.now()
	begin := end.Add(-s.lookback)

	reports, err := s.fetchList(ctx, begin, end)
	if err != nil {
		return nil, fmt.Errorf("dart list: %w", err)
	}

	// detail endpoints are per corp, fetch each corp at most once
	majorByCorp := make(map[string][]majorStock)
	insiderByCorp := make(map[string][]elestock)

	var records []collector.FilingRecord
	for _, r := range reports {
		switch {
		case strings.Contains(r.ReportName, "대량보유"):
			details, ok := majorByCorp[r.CorpCode]
			if !ok {
				details, err = s.fetchMajorStock(ctx, r.CorpCode)
				if err != nil {
					slog.Error("failed to fetch major stake detail", "corp", r.CorpName, "error", err)
					continue
				}
				majorByCorp[r.CorpCode] = details
			}
			detail, found := matchMajor(details, r.ReceiptNo)
			if !found {
				slog.Warn("no major stake detail for report", "corp", r.CorpName, "receipt", r.ReceiptNo)
				continue
			}
			records = append(records, collector.FilingRecord{
				Kind:        collector.FilingMajorStake,
				StockCode:   r.StockCode,
				CorpName:    r.CorpName,
				ReceiptNo:   r.ReceiptNo,
				ReceiptDate: r.ReceiptDate,
				Reporter:    detail.Reporter,
				StakeAfter:  detail.StakeRatio,
				StakeChange: detail.StakeChange,
			})

		case strings.Contains(r.ReportName, "임원") || strings.Contains(r.ReportName, "주요주주"):
			details, ok := insiderByCorp[r.CorpCode]
			if !ok {
				details, err = s.fetchElestock(ctx, r.CorpCode)
				if err != nil {
					slog.Error("failed to fetch insider trading detail", "corp", r.CorpName, "error", err)
					continue
				}
				insiderByCorp[r.CorpCode] = details
			}
			detail, found := matchInsider(details, r.ReceiptNo)
			if !found {
				slog.Warn("no insider trading detail for report", "corp", r.CorpName, "receipt", r.ReceiptNo)
				continue
			}
			records = append(records, collector.FilingRecord{
				Kind:        collector.FilingInsider,
				StockCode:   r.StockCode,
				CorpName:    r.CorpName,
				ReceiptNo:   r.ReceiptNo,
				ReceiptDate: r.ReceiptDate,
				Reporter:    detail.Reporter,
				ShareChange: detail.ShareChange,
			})
		}
	}
	return records, nil
}

func (s *Service) fetchList(ctx context.Context, begin, end time.Time) ([]listReport, error) {
	params := url.Values{
		"bgn_de":     {begin.Format(queryLayout)},
		"end_de":     {end.Format(queryLayout)},
		"pblntf_ty":  {"D"}, // 지분공시
		"page_count": {"100"},
	}
	var out listResponse
	if err := s.get(ctx, "list.json", params, &out); err != nil {
		return nil, err
	}
	if out.Status == statusNoData {
		return nil, nil
	}
	if out.Status != statusOK {
		return nil, fmt.Errorf("dart api error %s: %s", out.Status, out.Message)
	}
	return out.List, nil
}

func (s *Service) fetchMajorStock(ctx context.Context, corpCode string) ([]majorStock, error) {
	var out majorStockResponse
	if err := s.get(ctx, "majorstock.json", url.Values{"corp_code": {corpCode}}, &out); err != nil {
		return nil, err
	}
	if out.Status == statusNoData {
		return nil, nil
	}
	if out.Status != statusOK {
		return nil, fmt.Errorf("dart api error %s: %s", out.Status, out.Message)
	}
	return out.List, nil
}

func (s *Service) fetchElestock(ctx context.Context, corpCode string) ([]elestock, error) {
	var out elestockResponse
	if err := s.get(ctx, "elestock.json", url.Values{"corp_code": {corpCode}}, &out); err != nil {
		return nil, err
	}
	if out.Status == statusNoData {
		return nil, nil
	}
	if out.Status != statusOK {
		return nil, fmt.Errorf("dart api error %s: %s", out.Status, out.Message)
	}
	return out.List, nil
}

func (s *Service) get(ctx context.Context, path string, params url.Values, v any) error {
	params.Set("crtfc_key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func matchMajor(details []majorStock, receiptNo string) (majorStock, bool) {
	for _, d := range details {
		if d.ReceiptNo == receiptNo {
			return d, true
		}
	}
	return majorStock{}, false
}

func matchInsider(details []elestock, receiptNo string) (elestock, bool) {
	for _, d := range details {
		if d.ReceiptNo == receiptNo {
			return d, true
		}
	}
	return elestock{}, false
}
