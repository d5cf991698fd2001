package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonhee/rscreen/internal/contracts"
	"github.com/wonhee/rscreen/pkg/logger"
)

// Ranker assigns cross-sectional RS ranks and percentile grades for one
// evaluation date. This is the only cross-stock operation in the engine:
// it must observe the complete score set for the date, so callers run it
// strictly after every per-stock momentum pass for that date has committed.
// ⭐ SSOT: RS 랭킹 계산은 여기서만
type Ranker struct {
	prices contracts.PriceRepository
	logger *logger.Logger
}

// NewRanker creates a new ranker.
func NewRanker(prices contracts.PriceRepository, log *logger.Logger) *Ranker {
	return &Ranker{
		prices: prices,
		logger: log,
	}
}

// RankDate collects every non-nil momentum score on the date, ranks the
// whole universe and persists rank and grade with overwrite semantics.
// Returns the number of stocks ranked. An empty universe ranks nothing and
// is not an error.
func (r *Ranker) RankDate(ctx context.Context, date time.Time) (int, error) {
	scores, err := r.prices.GetMomentumScores(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("collect momentum scores: %w", err)
	}

	if len(scores) == 0 {
		r.logger.WithField("date", date.Format("2006-01-02")).Warn("No momentum scores for date, nothing to rank")
		return 0, nil
	}

	updates := RankScores(scores)

	if err := r.prices.UpdateRankings(ctx, date, updates); err != nil {
		return 0, fmt.Errorf("persist rankings: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"date":   date.Format("2006-01-02"),
		"ranked": len(updates),
	}).Info("RS ranking completed")

	return len(updates), nil
}

// RankScores ranks a complete score snapshot: rank 1 is the highest
// momentum, ties broken by ticker ascending so the order is a deterministic
// total order. Grade is 100*(1-(rank-1)/(N-1)) for N > 1, 100 for N = 1.
// Pure function: calling it twice with the same snapshot yields identical
// output.
func RankScores(scores []contracts.MomentumScore) []contracts.RankingUpdate {
	sorted := make([]contracts.MomentumScore, len(scores))
	copy(sorted, scores)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Momentum != sorted[j].Momentum {
			return sorted[i].Momentum > sorted[j].Momentum
		}
		return sorted[i].Ticker < sorted[j].Ticker
	})

	n := len(sorted)
	updates := make([]contracts.RankingUpdate, n)
	for i, s := range sorted {
		rank := i + 1
		grade := 100.0
		if n > 1 {
			grade = 100.0 * (1.0 - float64(rank-1)/float64(n-1))
		}
		updates[i] = contracts.RankingUpdate{
			StockID: s.StockID,
			Rank:    rank,
			Grade:   grade,
		}
	}

	return updates
}
