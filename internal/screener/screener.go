package screener

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonhee/rscreen/internal/contracts"
	"github.com/wonhee/rscreen/pkg/logger"
	"github.com/wonhee/rscreen/pkg/redis"
)

// Params are the trend-template thresholds.
type Params struct {
	MinPrice float64 // Stage 1: minimum closing price
	MinGrade float64 // Stage 3: minimum RS percentile grade
	Limit    int     // result truncation, 0 = unbounded
}

// DefaultParams returns the standard trend-template thresholds
// (RS grade 70 = top 30% of the universe).
func DefaultParams() Params {
	return Params{
		MinPrice: 20.0,
		MinGrade: 70.0,
		Limit:    100,
	}
}

// CacheKey identifies one screen result set for one date and one set of
// thresholds.
func (p Params) CacheKey(date time.Time) string {
	return fmt.Sprintf("screen:%s:p%.2f:g%.2f:l%d", date.Format("2006-01-02"), p.MinPrice, p.MinGrade, p.Limit)
}

// RankingService triggers the cross-sectional ranking pass. The screener
// only calls it when the evaluation date has no rankings yet, and never
// when Stage 1 produced zero survivors.
type RankingService interface {
	RankDate(ctx context.Context, date time.Time) (int, error)
}

// ResultCache is the subset of pkg/redis.Cache the screener uses.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Screener runs the staged trend-template funnel: cheap per-stock
// predicates first, the expensive cross-sectional ranking only on demand,
// then the grade cut on the survivors.
// ⭐ SSOT: 트렌드 템플릿 필터링은 여기서만
type Screener struct {
	prices contracts.PriceRepository
	ranker RankingService
	cache  ResultCache // optional, may be nil
	logger *logger.Logger
}

// NewScreener creates a new screener.
func NewScreener(prices contracts.PriceRepository, ranker RankingService, log *logger.Logger) *Screener {
	return &Screener{
		prices: prices,
		ranker: ranker,
		logger: log,
	}
}

// WithCache attaches a result cache (screen output per date and params).
func (s *Screener) WithCache(cache ResultCache) *Screener {
	s.cache = cache
	return s
}

// Screen returns the candidates passing the full trend template on the
// evaluation date, ordered by descending RS grade and truncated to
// params.Limit. Zero candidates is a valid empty result, not an error.
func (s *Screener) Screen(ctx context.Context, date time.Time, params Params) ([]contracts.Candidate, error) {
	if s.cache != nil {
		var cached []contracts.Candidate
		if found, err := s.cache.Get(ctx, params.CacheKey(date), &cached); err == nil && found {
			s.logger.WithField("date", date.Format("2006-01-02")).Debug("Screen served from cache")
			return cached, nil
		}
	}

	bars, err := s.prices.GetBarsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load bars for %s: %w", date.Format("2006-01-02"), err)
	}

	// Stage 1: cheap per-stock predicates over already-materialized fields
	survivors := make([]contracts.DailyBar, 0)
	for _, bar := range bars {
		if PassesTrendTemplate(bar, params.MinPrice) {
			survivors = append(survivors, bar)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"date":      date.Format("2006-01-02"),
		"universe":  len(bars),
		"survivors": len(survivors),
	}).Info("Trend template stage 1 completed")

	if len(survivors) == 0 {
		return []contracts.Candidate{}, nil
	}

	// Stage 2: trigger the cross-sectional ranking only if the date carries
	// no grades at all. The check is universe-level, not per-survivor: a
	// survivor whose composite momentum is nil never receives a grade, and
	// a per-survivor check would re-pay the ranking pass on every call.
	// Ungraded survivors simply fail Stage 3.
	ranked, err := s.prices.HasRankings(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("check rankings for %s: %w", date.Format("2006-01-02"), err)
	}
	if !ranked {
		s.logger.WithField("date", date.Format("2006-01-02")).Info("RS rankings missing, triggering ranking pass")
		if _, err := s.ranker.RankDate(ctx, date); err != nil {
			return nil, fmt.Errorf("rank universe for %s: %w", date.Format("2006-01-02"), err)
		}
		if survivors, err = s.reloadGrades(ctx, date, survivors); err != nil {
			return nil, err
		}
	}

	// Stage 3: grade cut, order, truncate
	candidates := make([]contracts.Candidate, 0, len(survivors))
	for _, bar := range survivors {
		if bar.RSGrade == nil || *bar.RSGrade < params.MinGrade {
			continue
		}
		candidates = append(candidates, contracts.Candidate{
			StockID: bar.StockID,
			Ticker:  bar.Ticker,
			Name:    bar.Name,
			Close:   bar.Close,
			RSGrade: *bar.RSGrade,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].RSGrade != candidates[j].RSGrade {
			return candidates[i].RSGrade > candidates[j].RSGrade
		}
		return candidates[i].Ticker < candidates[j].Ticker
	})

	if params.Limit > 0 && len(candidates) > params.Limit {
		candidates = candidates[:params.Limit]
	}

	s.logger.WithFields(map[string]interface{}{
		"date":       date.Format("2006-01-02"),
		"candidates": len(candidates),
	}).Info("Trend template screen completed")

	if s.cache != nil {
		if err := s.cache.Set(ctx, params.CacheKey(date), candidates, redis.TTLMedium); err != nil {
			s.logger.WithError(err).Warn("Failed to cache screen result")
		}
	}

	return candidates, nil
}

// reloadGrades re-reads the date after a ranking pass and carries the fresh
// grades onto the surviving set.
func (s *Screener) reloadGrades(ctx context.Context, date time.Time, survivors []contracts.DailyBar) ([]contracts.DailyBar, error) {
	bars, err := s.prices.GetBarsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("reload bars after ranking: %w", err)
	}

	graded := make(map[int64]contracts.DailyBar, len(bars))
	for _, bar := range bars {
		graded[bar.StockID] = bar
	}

	refreshed := make([]contracts.DailyBar, 0, len(survivors))
	for _, bar := range survivors {
		if fresh, ok := graded[bar.StockID]; ok {
			refreshed = append(refreshed, fresh)
		}
	}
	return refreshed, nil
}

// PassesTrendTemplate applies the Stage-1 predicates. Every predicate must
// hold; any nil derived field fails the template (excluded, not an error).
//
//	close >= minPrice
//	close > MA50 > MA150 > MA200 구조
//	MA200 trending up
//	close within 25% of the 52-week high
func PassesTrendTemplate(bar contracts.DailyBar, minPrice float64) bool {
	if bar.Close < minPrice {
		return false
	}
	if bar.MA50 == nil || bar.MA150 == nil || bar.MA200 == nil {
		return false
	}
	if bar.MA200Bullish == nil || bar.NearHigh52W == nil {
		return false
	}

	return bar.Close > *bar.MA50 &&
		bar.Close > *bar.MA150 &&
		bar.Close > *bar.MA200 &&
		*bar.MA200Bullish &&
		*bar.NearHigh52W &&
		*bar.MA50 > *bar.MA150 &&
		*bar.MA150 > *bar.MA200
}
