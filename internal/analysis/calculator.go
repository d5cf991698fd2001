package analysis

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/wonhee/rscreen/internal/contracts"
	"github.com/wonhee/rscreen/pkg/logger"
)

// Persist in chunks so one stock's history never turns into a single
// oversized batch.
const writeChunkSize = 1000

// Calculator runs the per-stock momentum pass: load the full ordered
// history, compute derived fields, persist them with overwrite semantics.
// ⭐ SSOT: 종목별 모멘텀 계산은 여기서만
type Calculator struct {
	prices  contracts.PriceRepository
	limiter *rate.Limiter // write throttle, may be nil
	logger  *logger.Logger
}

// NewCalculator creates a new calculator. limiter throttles write batches
// against the database and may be nil to disable throttling.
func NewCalculator(prices contracts.PriceRepository, limiter *rate.Limiter, log *logger.Logger) *Calculator {
	return &Calculator{
		prices:  prices,
		limiter: limiter,
		logger:  log,
	}
}

// ProcessStock computes and persists derived fields for one stock.
// Insufficient history is reported as skipped; a malformed history or a
// store failure is reported as a per-stock error. Either way the caller's
// batch continues with the other stocks.
func (c *Calculator) ProcessStock(ctx context.Context, stock contracts.Stock) contracts.StockResult {
	result := contracts.StockResult{Ticker: stock.Ticker}

	bars, err := c.prices.GetHistory(ctx, stock.ID)
	if err != nil {
		result.Err = fmt.Errorf("load history for %s: %w", stock.Ticker, err)
		return result
	}

	if len(bars) < MinHistory {
		c.logger.WithFields(map[string]interface{}{
			"ticker": stock.Ticker,
			"bars":   len(bars),
			"need":   MinHistory,
		}).Warn("Skipping stock: insufficient history")
		result.Skipped = true
		return result
	}

	updates, err := ComputeIndicators(bars)
	if err != nil {
		result.Err = fmt.Errorf("compute indicators for %s: %w", stock.Ticker, err)
		return result
	}

	for start := 0; start < len(updates); start += writeChunkSize {
		end := start + writeChunkSize
		if end > len(updates) {
			end = len(updates)
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				result.Err = fmt.Errorf("write throttle for %s: %w", stock.Ticker, err)
				return result
			}
		}

		if err := c.prices.UpsertIndicators(ctx, updates[start:end]); err != nil {
			result.Err = fmt.Errorf("persist indicators for %s: %w", stock.Ticker, err)
			return result
		}
	}

	result.RowsWritten = len(updates)

	c.logger.WithFields(map[string]interface{}{
		"ticker": stock.Ticker,
		"bars":   len(bars),
		"rows":   len(updates),
	}).Debug("Momentum pass completed for stock")

	return result
}
