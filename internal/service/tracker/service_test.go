package tracker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dokyun-lab/stock-tracker/internal/service/collector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func flowRec(code, date, amount string) collector.TradeFlowRecord {
	return collector.TradeFlowRecord{
		StockCode: code,
		StockName: "테스트종목",
		Date:      date,
		Investor:  "foreigner",
		NetAmount: amount,
	}
}

func stakeRec(code, receiptNo string) collector.FilingRecord {
	return collector.FilingRecord{
		Kind:        collector.FilingMajorStake,
		StockCode:   code,
		CorpName:    "테스트종목",
		ReceiptNo:   receiptNo,
		ReceiptDate: "20250312",
		Reporter:    "국민연금공단",
		StakeAfter:  "8.2",
		StakeChange: "2.1",
	}
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(db, testConfig())
	require.NoError(t, err)
	return svc
}

func TestService_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ConsecutiveDays = 0
	_, err := NewService(newTestDB(t), cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestService_StreakFiresOncePerStreak(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	// days 1 and 2: below the day threshold
	for _, d := range []string{"2025-03-10", "2025-03-11"} {
		res, err := svc.Process(ctx, Batch{TradeFlows: []collector.TradeFlowRecord{flowRec("005930", d, "50")}})
		require.NoError(t, err)
		assert.Empty(t, res.Alerts)
	}

	// day 3 crosses both thresholds
	res, err := svc.Process(ctx, Batch{TradeFlows: []collector.TradeFlowRecord{flowRec("005930", "2025-03-12", "50")}})
	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, RuleStreak, res.Alerts[0].RuleType)
	assert.Equal(t, 3, res.Alerts[0].StreakDays)

	// day 4 of the same unbroken streak must not re-alert
	res, err = svc.Process(ctx, Batch{TradeFlows: []collector.TradeFlowRecord{flowRec("005930", "2025-03-13", "50")}})
	require.NoError(t, err)
	assert.Empty(t, res.Alerts)

	// reset, then a fresh qualifying streak alerts again under a new key
	_, err = svc.Process(ctx, Batch{TradeFlows: []collector.TradeFlowRecord{flowRec("005930", "2025-03-14", "-10")}})
	require.NoError(t, err)
	for _, d := range []string{"2025-03-17", "2025-03-18"} {
		_, err = svc.Process(ctx, Batch{TradeFlows: []collector.TradeFlowRecord{flowRec("005930", d, "60")}})
		require.NoError(t, err)
	}
	res, err = svc.Process(ctx, Batch{TradeFlows: []collector.TradeFlowRecord{flowRec("005930", "2025-03-19", "60")}})
	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)
}

func TestService_StreakSurvivesWeekendGap(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	// Wed through Fri: streak reaches the threshold and fires on Friday
	for _, d := range []string{"2025-03-12", "2025-03-13"} {
		res, err := svc.Process(ctx, Batch{TradeFlows: []collector.TradeFlowRecord{flowRec("005930", d, "50")}})
		require.NoError(t, err)
		assert.Empty(t, res.Alerts)
	}
	res, err := svc.Process(ctx, Batch{TradeFlows: []collector.TradeFlowRecord{flowRec("005930", "2025-03-14", "50")}})
	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, "streak_foreigner_005930_2025-03-12", res.Alerts[0].AlertKey)

	// Monday continues the same unbroken streak across the weekend; the key
	// must not shift, so no second alert
	res, err = svc.Process(ctx, Batch{TradeFlows: []collector.TradeFlowRecord{flowRec("005930", "2025-03-17", "50")}})
	require.NoError(t, err)
	assert.Empty(t, res.Alerts)
}

func TestService_IdempotentReRun(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	batch := Batch{
		Filings: []collector.FilingRecord{stakeRec("005930", "20250312000001")},
	}

	first, err := svc.Process(ctx, batch)
	require.NoError(t, err)
	require.Len(t, first.Alerts, 1)

	// identical batch again (intra-day re-poll): nothing new
	second, err := svc.Process(ctx, batch)
	require.NoError(t, err)
	assert.Empty(t, second.Alerts)
}

func TestService_FilingDedupAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	ctx := context.Background()
	batch := Batch{Filings: []collector.FilingRecord{stakeRec("005930", "20250312000001")}}

	db := openTestDB(t, path)
	res, err := newTestService(t, db).Process(ctx, batch)
	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	// fresh process, same persisted state
	db2 := openTestDB(t, path)
	res, err = newTestService(t, db2).Process(ctx, batch)
	require.NoError(t, err)
	assert.Empty(t, res.Alerts)
}

func TestService_DuplicateFilingWithinBatch(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	// two provider pulls of the same filing landed in one batch
	res, err := svc.Process(context.Background(), Batch{
		Filings: []collector.FilingRecord{
			stakeRec("005930", "20250312000001"),
			stakeRec("005930", "20250312000001"),
		},
	})
	require.NoError(t, err)
	assert.Len(t, res.Alerts, 1)
}

func TestService_PartialBatchResilience(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	res, err := svc.Process(context.Background(), Batch{
		TradeFlows: []collector.TradeFlowRecord{
			flowRec("005930", "2025-03-10", "100"),
			flowRec("000660", "2025-03-10", "200"),
			flowRec("bad", "2025-03-10", "300"), // malformed, skipped
			flowRec("035420", "2025-03-10", "400"),
			flowRec("051910", "2025-03-10", "500"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Malformed)

	// the four good records all reached the trend store
	var count int64
	require.NoError(t, db.Table("trend_states").Count(&count).Error)
	assert.EqualValues(t, 4, count)
}

func TestService_StateStoreFailure(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = svc.Process(context.Background(), Batch{
		TradeFlows: []collector.TradeFlowRecord{flowRec("005930", "2025-03-10", "100")},
	})
	assert.ErrorIs(t, err, ErrStateStore)
}

func TestService_MixedBatch(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	// warm up a 2-day streak
	for _, d := range []string{"2025-03-10", "2025-03-11"} {
		_, err := svc.Process(ctx, Batch{TradeFlows: []collector.TradeFlowRecord{flowRec("005930", d, "40")}})
		require.NoError(t, err)
	}

	res, err := svc.Process(ctx, Batch{
		TradeFlows: []collector.TradeFlowRecord{flowRec("005930", "2025-03-12", "40")},
		Filings: []collector.FilingRecord{
			stakeRec("005930", "20250312000001"),
			{
				Kind:        collector.FilingInsider,
				StockCode:   "000660",
				CorpName:    "SK하이닉스",
				ReceiptNo:   "20250312000002",
				ReceiptDate: "20250312",
				Reporter:    "홍길동",
				ShareChange: "-2,000",
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Alerts, 3)

	types := map[RuleType]bool{}
	for _, a := range res.Alerts {
		types[a.RuleType] = true
	}
	assert.True(t, types[RuleStreak])
	assert.True(t, types[RuleStakeChange])
	assert.True(t, types[RuleInsider])
}
