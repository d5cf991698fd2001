package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonhee/rscreen/internal/contracts"
	"github.com/wonhee/rscreen/internal/screener"
	"github.com/wonhee/rscreen/pkg/logger"
)

var latestDate = time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)

type fakeStockRepo struct {
	stocks []contracts.Stock
	err    error
}

func (f *fakeStockRepo) GetAll(context.Context) ([]contracts.Stock, error) {
	return f.stocks, f.err
}

func (f *fakeStockRepo) GetByTicker(_ context.Context, ticker string) (*contracts.Stock, error) {
	for i := range f.stocks {
		if f.stocks[i].Ticker == ticker {
			return &f.stocks[i], nil
		}
	}
	return nil, errors.New("not found")
}

type fakePipelineStore struct {
	latest    time.Time
	idsOnDate []int64
}

func (f *fakePipelineStore) GetHistory(context.Context, int64) ([]contracts.DailyBar, error) {
	return nil, nil
}

func (f *fakePipelineStore) GetLatestDate(context.Context) (time.Time, error) {
	if f.latest.IsZero() {
		return time.Time{}, errors.New("no price data")
	}
	return f.latest, nil
}

func (f *fakePipelineStore) GetStockIDsWithBarOn(context.Context, time.Time) ([]int64, error) {
	return f.idsOnDate, nil
}

func (f *fakePipelineStore) GetBarsByDate(context.Context, time.Time) ([]contracts.DailyBar, error) {
	return nil, nil
}

func (f *fakePipelineStore) UpsertIndicators(context.Context, []contracts.IndicatorUpdate) error {
	return nil
}

func (f *fakePipelineStore) GetMomentumScores(context.Context, time.Time) ([]contracts.MomentumScore, error) {
	return nil, nil
}

func (f *fakePipelineStore) UpdateRankings(context.Context, time.Time, []contracts.RankingUpdate) error {
	return nil
}

func (f *fakePipelineStore) HasRankings(context.Context, time.Time) (bool, error) {
	return false, nil
}

// fakeProcessor records every processed ticker and appends to a shared
// event log so stage ordering can be asserted.
type fakeProcessor struct {
	mu      sync.Mutex
	tickers []string
	failOn  map[string]bool
	events  *eventLog
}

func (f *fakeProcessor) ProcessStock(_ context.Context, stock contracts.Stock) contracts.StockResult {
	f.mu.Lock()
	f.tickers = append(f.tickers, stock.Ticker)
	f.mu.Unlock()
	if f.events != nil {
		f.events.add("momentum:" + stock.Ticker)
	}
	if f.failOn[stock.Ticker] {
		return contracts.StockResult{Ticker: stock.Ticker, Err: errors.New("bad history")}
	}
	return contracts.StockResult{Ticker: stock.Ticker, RowsWritten: 10}
}

type fakePipelineRanker struct {
	calls  int
	date   time.Time
	events *eventLog
}

func (f *fakePipelineRanker) RankDate(_ context.Context, date time.Time) (int, error) {
	f.calls++
	f.date = date
	if f.events != nil {
		f.events.add("rank")
	}
	return 42, nil
}

type fakeScreenService struct {
	events *eventLog
	result []contracts.Candidate
}

func (f *fakeScreenService) Screen(_ context.Context, _ time.Time, _ screener.Params) ([]contracts.Candidate, error) {
	if f.events != nil {
		f.events.add("screen")
	}
	return f.result, nil
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func stocks(tickers ...string) []contracts.Stock {
	out := make([]contracts.Stock, len(tickers))
	for i, tk := range tickers {
		out[i] = contracts.Stock{ID: int64(i + 1), Ticker: tk, Name: tk, Market: "KOSPI"}
	}
	return out
}

func TestOrchestrator_RunMomentum(t *testing.T) {
	proc := &fakeProcessor{failOn: map[string]bool{"000660": true}}
	o := NewOrchestrator(
		&fakeStockRepo{stocks: stocks("005930", "000660", "035420", "035720", "051910")},
		&fakePipelineStore{latest: latestDate},
		proc,
		&fakePipelineRanker{},
		&fakeScreenService{},
		4,
		logger.NewNop(),
	)

	report, err := o.RunMomentum(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, report.Total, "every stock processed")
	assert.Equal(t, 4, report.Succeeded)
	assert.Equal(t, 1, report.Failed, "one failure collected, pass not aborted")
	assert.Equal(t, []string{"000660"}, report.FailedTickers)
	assert.Equal(t, 40, report.RowsWritten)

	sort.Strings(proc.tickers)
	assert.Equal(t, []string{"000660", "005930", "035420", "035720", "051910"}, proc.tickers)
}

func TestOrchestrator_RunMomentumLatest(t *testing.T) {
	proc := &fakeProcessor{}
	o := NewOrchestrator(
		&fakeStockRepo{stocks: stocks("005930", "000660", "035420")},
		&fakePipelineStore{latest: latestDate, idsOnDate: []int64{1, 3}},
		proc,
		&fakePipelineRanker{},
		&fakeScreenService{},
		2,
		logger.NewNop(),
	)

	report, err := o.RunMomentumLatest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total, "only stocks with a bar on the latest date")
	sort.Strings(proc.tickers)
	assert.Equal(t, []string{"005930", "035420"}, proc.tickers)
}

func TestOrchestrator_RunMomentumTicker(t *testing.T) {
	proc := &fakeProcessor{}
	o := NewOrchestrator(
		&fakeStockRepo{stocks: stocks("005930", "000660")},
		&fakePipelineStore{latest: latestDate},
		proc,
		&fakePipelineRanker{},
		&fakeScreenService{},
		4,
		logger.NewNop(),
	)

	report, err := o.RunMomentumTicker(context.Background(), "000660")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, []string{"000660"}, proc.tickers, "only the requested stock processed")

	_, err = o.RunMomentumTicker(context.Background(), "999999")
	assert.Error(t, err, "unknown ticker surfaces the lookup error")
}

func TestOrchestrator_RunRanking_ResolvesLatestDate(t *testing.T) {
	ranker := &fakePipelineRanker{}
	o := NewOrchestrator(
		&fakeStockRepo{},
		&fakePipelineStore{latest: latestDate},
		&fakeProcessor{},
		ranker,
		&fakeScreenService{},
		1,
		logger.NewNop(),
	)

	ranked, err := o.RunRanking(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 42, ranked)
	assert.True(t, ranker.date.Equal(latestDate), "zero date resolves to latest")

	explicit := latestDate.AddDate(0, 0, -1)
	_, err = o.RunRanking(context.Background(), explicit)
	require.NoError(t, err)
	assert.True(t, ranker.date.Equal(explicit), "explicit date passes through")
}

func TestOrchestrator_RunAll_StageOrdering(t *testing.T) {
	events := &eventLog{}
	proc := &fakeProcessor{events: events}
	ranker := &fakePipelineRanker{events: events}
	screen := &fakeScreenService{
		events: events,
		result: []contracts.Candidate{{Ticker: "005930", RSGrade: 100}},
	}

	o := NewOrchestrator(
		&fakeStockRepo{stocks: stocks("005930", "000660", "035420")},
		&fakePipelineStore{latest: latestDate},
		proc,
		ranker,
		screen,
		3,
		logger.NewNop(),
	)

	result, err := o.RunAll(context.Background(), screener.DefaultParams())
	require.NoError(t, err)

	assert.True(t, result.Date.Equal(latestDate))
	assert.Equal(t, 3, result.Momentum.Total)
	assert.Equal(t, 42, result.Ranked)
	require.Len(t, result.Candidates, 1)

	// Every momentum event must precede the ranking barrier, which must
	// precede the screen.
	rankIdx, screenIdx := -1, -1
	lastMomentumIdx := -1
	for i, e := range events.events {
		switch {
		case e == "rank":
			rankIdx = i
		case e == "screen":
			screenIdx = i
		default:
			lastMomentumIdx = i
		}
	}
	require.GreaterOrEqual(t, rankIdx, 0)
	require.GreaterOrEqual(t, screenIdx, 0)
	assert.Less(t, lastMomentumIdx, rankIdx, "momentum passes must commit before ranking")
	assert.Less(t, rankIdx, screenIdx, "ranking must precede the screen")
}

func TestOrchestrator_RunMomentum_UniverseLoadFailure(t *testing.T) {
	o := NewOrchestrator(
		&fakeStockRepo{err: errors.New("db down")},
		&fakePipelineStore{latest: latestDate},
		&fakeProcessor{},
		&fakePipelineRanker{},
		&fakeScreenService{},
		2,
		logger.NewNop(),
	)

	_, err := o.RunMomentum(context.Background())
	assert.Error(t, err)
}
