package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// StockRepository manages the instrument master data.
type StockRepository interface {
	GetAll(ctx context.Context) ([]Stock, error)
	GetByTicker(ctx context.Context, ticker string) (*Stock, error)
}

// PriceRepository is the price series store: ordered daily observations per
// stock plus the derived fields this engine writes back.
type PriceRepository interface {
	// GetHistory returns the full price history for one stock,
	// ordered by date ascending.
	GetHistory(ctx context.Context, stockID int64) ([]DailyBar, error)

	// GetLatestDate returns the most recent observation date in the store.
	GetLatestDate(ctx context.Context) (time.Time, error)

	// GetStockIDsWithBarOn returns the stocks that have an observation
	// on the given date (incremental daily pass).
	GetStockIDsWithBarOn(ctx context.Context, date time.Time) ([]int64, error)

	// GetBarsByDate returns every observation on the given date with
	// ticker and name resolved.
	GetBarsByDate(ctx context.Context, date time.Time) ([]DailyBar, error)

	// UpsertIndicators overwrites derived fields for the given rows.
	UpsertIndicators(ctx context.Context, updates []IndicatorUpdate) error

	// GetMomentumScores returns every non-nil composite momentum score
	// on the given date, across the entire universe.
	GetMomentumScores(ctx context.Context, date time.Time) ([]MomentumScore, error)

	// UpdateRankings overwrites rank and grade for the given date.
	UpdateRankings(ctx context.Context, date time.Time, updates []RankingUpdate) error

	// HasRankings reports whether any observation on the given date
	// already carries a grade.
	HasRankings(ctx context.Context, date time.Time) (bool, error)
}
