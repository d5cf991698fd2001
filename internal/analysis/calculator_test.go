package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonhee/rscreen/internal/contracts"
	"github.com/wonhee/rscreen/pkg/logger"
)

// fakePriceStore is an in-memory contracts.PriceRepository for calculator
// tests. Only the methods the calculator touches are meaningful.
type fakePriceStore struct {
	history    map[int64][]contracts.DailyBar
	historyErr error

	upserts     []contracts.IndicatorUpdate
	upsertCalls int
	upsertErr   error
}

func (f *fakePriceStore) GetHistory(_ context.Context, stockID int64) ([]contracts.DailyBar, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history[stockID], nil
}

func (f *fakePriceStore) GetLatestDate(context.Context) (time.Time, error) {
	return time.Time{}, nil
}

func (f *fakePriceStore) GetStockIDsWithBarOn(context.Context, time.Time) ([]int64, error) {
	return nil, nil
}

func (f *fakePriceStore) GetBarsByDate(context.Context, time.Time) ([]contracts.DailyBar, error) {
	return nil, nil
}

func (f *fakePriceStore) UpsertIndicators(_ context.Context, updates []contracts.IndicatorUpdate) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upsertCalls++
	f.upserts = append(f.upserts, updates...)
	return nil
}

func (f *fakePriceStore) GetMomentumScores(context.Context, time.Time) ([]contracts.MomentumScore, error) {
	return nil, nil
}

func (f *fakePriceStore) UpdateRankings(context.Context, time.Time, []contracts.RankingUpdate) error {
	return nil
}

func (f *fakePriceStore) HasRankings(context.Context, time.Time) (bool, error) {
	return false, nil
}

func testLogger() *logger.Logger {
	return logger.NewNop()
}

func TestCalculator_ProcessStock(t *testing.T) {
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 100 + float64(i%17)
	}
	store := &fakePriceStore{
		history: map[int64][]contracts.DailyBar{1: barsFromCloses(closes)},
	}

	calc := NewCalculator(store, nil, testLogger())
	result := calc.ProcessStock(context.Background(), contracts.Stock{ID: 1, Ticker: "005930"})

	require.NoError(t, result.Err)
	assert.False(t, result.Skipped)
	assert.Greater(t, result.RowsWritten, 0)
	assert.Equal(t, result.RowsWritten, len(store.upserts))

	// Last row must carry the composite score
	last := store.upserts[len(store.upserts)-1]
	assert.NotNil(t, last.Momentum)
}

func TestCalculator_ProcessStock_Rerun(t *testing.T) {
	closes := make([]float64, 280)
	for i := range closes {
		closes[i] = 50 + float64(i%11)
	}
	store := &fakePriceStore{
		history: map[int64][]contracts.DailyBar{1: barsFromCloses(closes)},
	}
	calc := NewCalculator(store, nil, testLogger())

	first := calc.ProcessStock(context.Background(), contracts.Stock{ID: 1, Ticker: "000660"})
	require.NoError(t, first.Err)
	firstRows := append([]contracts.IndicatorUpdate(nil), store.upserts...)

	store.upserts = nil
	second := calc.ProcessStock(context.Background(), contracts.Stock{ID: 1, Ticker: "000660"})
	require.NoError(t, second.Err)

	// Overwrite semantics: a re-run with unchanged history writes the
	// exact same rows.
	assert.Equal(t, firstRows, store.upserts)
}

func TestCalculator_ProcessStock_InsufficientHistory(t *testing.T) {
	store := &fakePriceStore{
		history: map[int64][]contracts.DailyBar{1: barsFromCloses(constSlice(100, 100))},
	}

	calc := NewCalculator(store, nil, testLogger())
	result := calc.ProcessStock(context.Background(), contracts.Stock{ID: 1, Ticker: "035420"})

	require.NoError(t, result.Err)
	assert.True(t, result.Skipped)
	assert.Zero(t, result.RowsWritten)
	assert.Empty(t, store.upserts, "skipped stock must not write anything")
}

func TestCalculator_ProcessStock_OutOfOrderHistory(t *testing.T) {
	bars := barsFromCloses(constSlice(300, 100))
	bars[10].Date = bars[9].Date // duplicate date

	store := &fakePriceStore{history: map[int64][]contracts.DailyBar{1: bars}}
	calc := NewCalculator(store, nil, testLogger())
	result := calc.ProcessStock(context.Background(), contracts.Stock{ID: 1, Ticker: "035720"})

	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, contracts.ErrOutOfOrderHistory)
	assert.Empty(t, store.upserts)
}

func TestCalculator_ProcessStock_StoreFailure(t *testing.T) {
	store := &fakePriceStore{historyErr: errors.New("connection refused")}
	calc := NewCalculator(store, nil, testLogger())

	result := calc.ProcessStock(context.Background(), contracts.Stock{ID: 1, Ticker: "051910"})
	require.Error(t, result.Err)
	assert.False(t, result.Skipped)
}
