package ranking

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

type fakeRankingStore struct {
	scores    []contracts.MomentumScore
	scoresErr error

	savedDate   time.Time
	saved       []contracts.RankingUpdate
	updateCalls int
	updateErr   error
}

func (f *fakeRankingStore) GetHistory(context.Context, int64) ([]contracts.DailyBar, error) {
	return nil, nil
}

func (f *fakeRankingStore) GetLatestDate(context.Context) (time.Time, error) {
	return time.Time{}, nil
}

func (f *fakeRankingStore) GetStockIDsWithBarOn(context.Context, time.Time) ([]int64, error) {
	return nil, nil
}

func (f *fakeRankingStore) GetBarsByDate(context.Context, time.Time) ([]contracts.DailyBar, error) {
	return nil, nil
}

func (f *fakeRankingStore) UpsertIndicators(context.Context, []contracts.IndicatorUpdate) error {
	return nil
}

func (f *fakeRankingStore) GetMomentumScores(context.Context, time.Time) ([]contracts.MomentumScore, error) {
	if f.scoresErr != nil {
		return nil, f.scoresErr
	}
	return f.scores, nil
}

func (f *fakeRankingStore) UpdateRankings(_ context.Context, date time.Time, updates []contracts.RankingUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updateCalls++
	f.savedDate = date
	f.saved = append([]contracts.RankingUpdate(nil), updates...)
	return nil
}

func (f *fakeRankingStore) HasRankings(context.Context, time.Time) (bool, error) {
	return false, nil
}

func TestRankScores(t *testing.T) {
	scores := []contracts.MomentumScore{
		{StockID: 1, Ticker: "005930", Momentum: 30},
		{StockID: 2, Ticker: "000660", Momentum: 10},
		{StockID: 3, Ticker: "035420", Momentum: 20},
	}

	updates := RankScores(scores)
	require.Len(t, updates, 3)

	// score 30 -> rank 1 / grade 100, score 20 -> rank 2 / grade 50,
	// score 10 -> rank 3 / grade 0
	assert.Equal(t, contracts.RankingUpdate{StockID: 1, Rank: 1, Grade: 100}, updates[0])
	assert.Equal(t, contracts.RankingUpdate{StockID: 3, Rank: 2, Grade: 50}, updates[1])
	assert.Equal(t, contracts.RankingUpdate{StockID: 2, Rank: 3, Grade: 0}, updates[2])
}

func TestRankScores_RanksArePermutation(t *testing.T) {
	scores := []contracts.MomentumScore{
		{StockID: 1, Ticker: "A", Momentum: 5.5},
		{StockID: 2, Ticker: "B", Momentum: -3.2},
		{StockID: 3, Ticker: "C", Momentum: 42.0},
		{StockID: 4, Ticker: "D", Momentum: 0.0},
		{StockID: 5, Ticker: "E", Momentum: 17.1},
	}

	updates := RankScores(scores)
	require.Len(t, updates, 5)

	seen := make(map[int]bool)
	for _, u := range updates {
		assert.False(t, seen[u.Rank], "duplicate rank %d", u.Rank)
		seen[u.Rank] = true
		assert.GreaterOrEqual(t, u.Grade, 0.0)
		assert.LessOrEqual(t, u.Grade, 100.0)
	}
	for rank := 1; rank <= 5; rank++ {
		assert.True(t, seen[rank], "missing rank %d", rank)
	}

	// rank 1 belongs to the max score; grades hit both endpoints
	assert.Equal(t, int64(3), updates[0].StockID)
	assert.Equal(t, 100.0, updates[0].Grade)
	assert.Equal(t, 0.0, updates[len(updates)-1].Grade)
}

func TestRankScores_SingleStock(t *testing.T) {
	updates := RankScores([]contracts.MomentumScore{{StockID: 7, Ticker: "005930", Momentum: 1.0}})
	require.Len(t, updates, 1)
	assert.Equal(t, 1, updates[0].Rank)
	assert.Equal(t, 100.0, updates[0].Grade)
}

func TestRankScores_TieBreakByTicker(t *testing.T) {
	scores := []contracts.MomentumScore{
		{StockID: 1, Ticker: "035720", Momentum: 12.0},
		{StockID: 2, Ticker: "005930", Momentum: 12.0},
	}

	updates := RankScores(scores)
	require.Len(t, updates, 2)
	assert.Equal(t, int64(2), updates[0].StockID, "equal scores break ties by ticker ascending")
	assert.Equal(t, int64(1), updates[1].StockID)
}

func TestRankScores_Idempotent(t *testing.T) {
	scores := []contracts.MomentumScore{
		{StockID: 1, Ticker: "A", Momentum: 3},
		{StockID: 2, Ticker: "B", Momentum: 3},
		{StockID: 3, Ticker: "C", Momentum: 9},
	}

	first := RankScores(scores)
	second := RankScores(scores)
	assert.Equal(t, first, second)
}

func TestRanker_RankDate(t *testing.T) {
	date := time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)
	store := &fakeRankingStore{
		scores: []contracts.MomentumScore{
			{StockID: 1, Ticker: "005930", Momentum: 30},
			{StockID: 2, Ticker: "000660", Momentum: 10},
			{StockID: 3, Ticker: "035420", Momentum: 20},
		},
	}

	ranker := NewRanker(store, logger.NewNop())
	ranked, err := ranker.RankDate(context.Background(), date)
	require.NoError(t, err)

	assert.Equal(t, 3, ranked)
	assert.Equal(t, 1, store.updateCalls)
	assert.True(t, store.savedDate.Equal(date))
	require.Len(t, store.saved, 3)
	assert.Equal(t, 1, store.saved[0].Rank)
}

func TestRanker_RankDate_EmptyUniverse(t *testing.T) {
	store := &fakeRankingStore{}
	ranker := NewRanker(store, logger.NewNop())

	ranked, err := ranker.RankDate(context.Background(), time.Now())
	require.NoError(t, err, "empty universe is not an error")
	assert.Zero(t, ranked)
	assert.Zero(t, store.updateCalls, "nothing to persist")
}

func TestRanker_RankDate_StoreFailure(t *testing.T) {
	store := &fakeRankingStore{scoresErr: errors.New("timeout")}
	ranker := NewRanker(store, logger.NewNop())

	_, err := ranker.RankDate(context.Background(), time.Now())
	assert.Error(t, err)
}
