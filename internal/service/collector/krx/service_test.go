package krx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	var gotCodes []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotCodes = append(gotCodes, r.FormValue("invstTpCd"))
		assert.Equal(t, bld, r.FormValue("bld"))
		assert.Equal(t, "20250704", r.FormValue("strtDd"))

		resp := response{Output: []row{
			{StockCode: "005930", StockName: "삼성전자", NetValue: "12,345,000,000"},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	svc := NewService()
	svc.endpoint = srv.URL
	svc.now = func() time.Time {
		// 금요일 장 마감 후
		return time.Date(2025, 7, 4, 17, 0, 0, 0, time.UTC)
	}

	records, err := svc.Collect(context.Background())
	require.NoError(t, err)

	// 투자자 2종 x 시장 2곳
	require.Len(t, records, 4)
	assert.ElementsMatch(t, []string{"9000", "9000", "7050", "7050"}, gotCodes)
	assert.Equal(t, "005930", records[0].StockCode)
	assert.Equal(t, "2025-07-04", records[0].Date)
	assert.Equal(t, "12,345,000,000", records[0].NetAmount)
}

func TestCollect_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewService()
	svc.endpoint = srv.URL

	_, err := svc.Collect(context.Background())
	assert.Error(t, err)
}

func TestRecentTradingDate(t *testing.T) {
	testCases := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			name: "장중 평일",
			now:  time.Date(2025, 7, 2, 14, 0, 0, 0, time.UTC),
			want: "2025-07-02",
		},
		{
			name: "개장 전에는 전일 기준",
			now:  time.Date(2025, 7, 2, 8, 30, 0, 0, time.UTC),
			want: "2025-07-01",
		},
		{
			name: "토요일은 금요일로",
			now:  time.Date(2025, 7, 5, 12, 0, 0, 0, time.UTC),
			want: "2025-07-04",
		},
		{
			name: "일요일도 금요일로",
			now:  time.Date(2025, 7, 6, 12, 0, 0, 0, time.UTC),
			want: "2025-07-04",
		},
		{
			name: "월요일 개장 전은 금요일",
			now:  time.Date(2025, 7, 7, 8, 0, 0, 0, time.UTC),
			want: "2025-07-04",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, recentTradingDate(tc.now).Format(dateLayout))
		})
	}
}
