package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dokyun-lab/stock-tracker/internal/service/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlerts() []tracker.AlertCandidate {
	return []tracker.AlertCandidate{
		{
			RuleType:  tracker.RuleStreak,
			StockCode: "005930",
			StockName: "삼성전자",
			Reason:    "foreigner net buying for 3 consecutive days, total 30000000000 won",
		},
		{
			RuleType:  tracker.RuleInsider,
			StockCode: "000660",
			StockName: "SK하이닉스",
			Reason:    "insider 홍길동 reported sell of 3000 shares",
		},
	}
}

func TestService_Notify(t *testing.T) {
	var got message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewService(srv.URL)
	require.NoError(t, svc.Notify(context.Background(), testAlerts()))

	assert.Contains(t, got.Text, "2건")
	assert.Contains(t, got.Text, "삼성전자")
	assert.Contains(t, got.Text, "SK하이닉스")
	// streak section comes before the insider section
	assert.Less(t,
		strings.Index(got.Text, "005930"),
		strings.Index(got.Text, "000660"))
}

func TestService_NotifyEmpty(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	svc := NewService(srv.URL)
	require.NoError(t, svc.Notify(context.Background(), nil))
	assert.False(t, called)
}

func TestService_NotifyWebhookError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	svc := NewService(srv.URL)
	err := svc.Notify(context.Background(), testAlerts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
