package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonhee/rscreen/internal/contracts"
	"github.com/wonhee/rscreen/internal/screener"
	"github.com/wonhee/rscreen/pkg/logger"
)

// DefaultWorkers matches the original batch tuning against DB pool limits.
const DefaultWorkers = 4

// StockProcessor runs the per-stock momentum pass.
type StockProcessor interface {
	ProcessStock(ctx context.Context, stock contracts.Stock) contracts.StockResult
}

// RankingService runs the cross-sectional ranking pass for one date.
type RankingService interface {
	RankDate(ctx context.Context, date time.Time) (int, error)
}

// ScreenService runs the trend-template funnel for one date.
type ScreenService interface {
	Screen(ctx context.Context, date time.Time, params screener.Params) ([]contracts.Candidate, error)
}

// Orchestrator sequences the batch stages: per-stock momentum passes in a
// shared-nothing worker pool, then the ranking barrier, then the screen.
// ⭐ SSOT: 배치 파이프라인 순서는 여기서만
type Orchestrator struct {
	stocks    contracts.StockRepository
	prices    contracts.PriceRepository
	processor StockProcessor
	ranker    RankingService
	screener  ScreenService
	workers   int
	logger    *logger.Logger
}

// NewOrchestrator creates a new orchestrator. workers <= 0 falls back to
// DefaultWorkers.
func NewOrchestrator(
	stocks contracts.StockRepository,
	prices contracts.PriceRepository,
	processor StockProcessor,
	ranker RankingService,
	screen ScreenService,
	workers int,
	log *logger.Logger,
) *Orchestrator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Orchestrator{
		stocks:    stocks,
		prices:    prices,
		processor: processor,
		ranker:    ranker,
		screener:  screen,
		workers:   workers,
		logger:    log,
	}
}

// RunMomentum recomputes derived fields for every stock in the universe.
// Per-stock failures are collected into the report; the pass never aborts
// because of one stock.
func (o *Orchestrator) RunMomentum(ctx context.Context) (*contracts.BatchReport, error) {
	stocks, err := o.stocks.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}

	o.logger.WithFields(map[string]interface{}{
		"stocks":  len(stocks),
		"workers": o.workers,
	}).Info("Starting momentum pass")

	report := o.runPool(ctx, stocks)
	o.logSummary("momentum", report)
	return report, nil
}

// RunMomentumLatest recomputes derived fields only for stocks that have an
// observation on the most recent date in the store (the incremental daily
// pass).
func (o *Orchestrator) RunMomentumLatest(ctx context.Context) (*contracts.BatchReport, error) {
	date, err := o.prices.GetLatestDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve latest date: %w", err)
	}

	ids, err := o.prices.GetStockIDsWithBarOn(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load stocks for %s: %w", date.Format("2006-01-02"), err)
	}
	withBar := make(map[int64]bool, len(ids))
	for _, id := range ids {
		withBar[id] = true
	}

	stocks, err := o.stocks.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}

	targets := make([]contracts.Stock, 0, len(ids))
	for _, s := range stocks {
		if withBar[s.ID] {
			targets = append(targets, s)
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"stocks":  len(targets),
		"workers": o.workers,
	}).Info("Starting incremental momentum pass")

	report := o.runPool(ctx, targets)
	o.logSummary("momentum_latest", report)
	return report, nil
}

// RunMomentumTicker recomputes derived fields for a single stock looked up
// by ticker. Cross-sectional rank and grade stay untouched; re-rank the
// date to refresh them.
func (o *Orchestrator) RunMomentumTicker(ctx context.Context, ticker string) (*contracts.BatchReport, error) {
	stock, err := o.stocks.GetByTicker(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("load stock %s: %w", ticker, err)
	}

	o.logger.WithField("ticker", ticker).Info("Starting single-stock momentum pass")

	start := time.Now()
	report := &contracts.BatchReport{}
	res := o.processor.ProcessStock(ctx, *stock)
	if res.Err != nil {
		o.logger.WithError(res.Err).WithField("ticker", res.Ticker).Error("Stock pass failed")
	}
	report.Add(res)
	report.Duration = time.Since(start)

	o.logSummary("momentum_ticker", report)
	return report, nil
}

// RunRanking ranks the universe on the given date. A zero date resolves to
// the latest date in the store. Must only run after the momentum passes for
// that date have committed (the ranking barrier).
func (o *Orchestrator) RunRanking(ctx context.Context, date time.Time) (int, error) {
	date, err := o.resolveDate(ctx, date)
	if err != nil {
		return 0, err
	}
	return o.ranker.RankDate(ctx, date)
}

// RunScreen runs the trend-template funnel on the given date. A zero date
// resolves to the latest date in the store.
func (o *Orchestrator) RunScreen(ctx context.Context, date time.Time, params screener.Params) ([]contracts.Candidate, error) {
	date, err := o.resolveDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return o.screener.Screen(ctx, date, params)
}

// AnalysisResult is the outcome of the composed full pass.
type AnalysisResult struct {
	Date       time.Time              `json:"date"`
	Momentum   *contracts.BatchReport `json:"momentum"`
	Ranked     int                    `json:"ranked"`
	Candidates []contracts.Candidate  `json:"candidates"`
}

// RunAll runs the stages in the required order: momentum for the full
// universe, the ranking barrier on the latest date, then the screen.
func (o *Orchestrator) RunAll(ctx context.Context, params screener.Params) (*AnalysisResult, error) {
	momentum, err := o.RunMomentum(ctx)
	if err != nil {
		return nil, err
	}

	date, err := o.prices.GetLatestDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve latest date: %w", err)
	}

	ranked, err := o.ranker.RankDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("ranking pass: %w", err)
	}

	candidates, err := o.screener.Screen(ctx, date, params)
	if err != nil {
		return nil, fmt.Errorf("screen pass: %w", err)
	}

	return &AnalysisResult{
		Date:       date,
		Momentum:   momentum,
		Ranked:     ranked,
		Candidates: candidates,
	}, nil
}

// runPool fans the stocks out over the worker pool. Workers are
// shared-nothing: each writes only its own stock's rows, so no locking is
// needed beyond the channels.
func (o *Orchestrator) runPool(ctx context.Context, stocks []contracts.Stock) *contracts.BatchReport {
	start := time.Now()

	jobs := make(chan contracts.Stock)
	results := make(chan contracts.StockResult)

	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for stock := range jobs {
				results <- o.processor.ProcessStock(ctx, stock)
			}
		}()
	}

	go func() {
		for _, stock := range stocks {
			jobs <- stock
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	report := &contracts.BatchReport{}
	for res := range results {
		if res.Err != nil {
			o.logger.WithError(res.Err).WithField("ticker", res.Ticker).Error("Stock pass failed")
		}
		report.Add(res)
	}
	report.Duration = time.Since(start)
	return report
}

func (o *Orchestrator) resolveDate(ctx context.Context, date time.Time) (time.Time, error) {
	if !date.IsZero() {
		return date, nil
	}
	latest, err := o.prices.GetLatestDate(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("resolve latest date: %w", err)
	}
	return latest, nil
}

func (o *Orchestrator) logSummary(pass string, report *contracts.BatchReport) {
	o.logger.WithFields(map[string]interface{}{
		"pass":         pass,
		"total":        report.Total,
		"succeeded":    report.Succeeded,
		"skipped":      report.Skipped,
		"failed":       report.Failed,
		"rows_written": report.RowsWritten,
		"duration":     report.Duration.String(),
	}).Info("Batch pass completed")
}
