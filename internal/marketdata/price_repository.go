package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonhee/rscreen/internal/contracts"
)

// PriceRepository implements contracts.PriceRepository on PostgreSQL.
// ⭐ SSOT: 일별 가격/지표 저장소는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository.
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

const barColumns = `
	dp.stock_id, dp.trade_date,
	dp.open_price, dp.high_price, dp.low_price, dp.close_price, dp.volume,
	dp.ma_50, dp.ma_150, dp.ma_200,
	dp.ma_200_lag, dp.is_ma_200_bullish,
	dp.week_52_high, dp.week_52_low, dp.is_near_52w_high, dp.is_above_52w_low,
	dp.roc_252, dp.roc_126, dp.roc_63, dp.roc_21,
	dp.rs_momentum, dp.rs_rank, dp.rs_grade
`

func scanBar(row pgx.Row, bar *contracts.DailyBar) error {
	return row.Scan(
		&bar.StockID, &bar.Date,
		&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume,
		&bar.MA50, &bar.MA150, &bar.MA200,
		&bar.MA200Lag, &bar.MA200Bullish,
		&bar.High52W, &bar.Low52W, &bar.NearHigh52W, &bar.AboveLow52W,
		&bar.ROC252, &bar.ROC126, &bar.ROC63, &bar.ROC21,
		&bar.Momentum, &bar.RSRank, &bar.RSGrade,
	)
}

// GetHistory returns the full price history for one stock ordered by date
// ascending.
func (r *PriceRepository) GetHistory(ctx context.Context, stockID int64) ([]contracts.DailyBar, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM daily_prices dp
		WHERE dp.stock_id = $1
		ORDER BY dp.trade_date ASC
	`, barColumns)

	rows, err := r.pool.Query(ctx, query, stockID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var bars []contracts.DailyBar
	for rows.Next() {
		var bar contracts.DailyBar
		if err := scanBar(rows, &bar); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, bar)
	}
	return bars, rows.Err()
}

// GetLatestDate returns the most recent observation date in the store.
func (r *PriceRepository) GetLatestDate(ctx context.Context) (time.Time, error) {
	var date *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(trade_date) FROM daily_prices`).Scan(&date)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest date: %w", err)
	}
	if date == nil {
		return time.Time{}, fmt.Errorf("no price observations in store")
	}
	return *date, nil
}

// GetStockIDsWithBarOn returns the stocks that have an observation on the
// given date.
func (r *PriceRepository) GetStockIDsWithBarOn(ctx context.Context, date time.Time) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT stock_id FROM daily_prices WHERE trade_date = $1`, date)
	if err != nil {
		return nil, fmt.Errorf("query stocks for date: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stock id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetBarsByDate returns every observation on the given date with ticker and
// name resolved (screen input).
func (r *PriceRepository) GetBarsByDate(ctx context.Context, date time.Time) ([]contracts.DailyBar, error) {
	query := fmt.Sprintf(`
		SELECT %s, s.ticker, s.name
		FROM daily_prices dp
		JOIN stocks s ON s.id = dp.stock_id
		WHERE dp.trade_date = $1
		ORDER BY s.ticker
	`, barColumns)

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query bars for date: %w", err)
	}
	defer rows.Close()

	var bars []contracts.DailyBar
	for rows.Next() {
		var bar contracts.DailyBar
		err := rows.Scan(
			&bar.StockID, &bar.Date,
			&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume,
			&bar.MA50, &bar.MA150, &bar.MA200,
			&bar.MA200Lag, &bar.MA200Bullish,
			&bar.High52W, &bar.Low52W, &bar.NearHigh52W, &bar.AboveLow52W,
			&bar.ROC252, &bar.ROC126, &bar.ROC63, &bar.ROC21,
			&bar.Momentum, &bar.RSRank, &bar.RSGrade,
			&bar.Ticker, &bar.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, bar)
	}
	return bars, rows.Err()
}

// UpsertIndicators overwrites derived fields for the given rows in one
// batch. Nil fields write NULL so re-runs cannot leave stale values behind.
func (r *PriceRepository) UpsertIndicators(ctx context.Context, updates []contracts.IndicatorUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	query := `
		UPDATE daily_prices SET
			ma_50 = $3, ma_150 = $4, ma_200 = $5,
			ma_200_lag = $6, is_ma_200_bullish = $7,
			week_52_high = $8, week_52_low = $9,
			is_near_52w_high = $10, is_above_52w_low = $11,
			roc_252 = $12, roc_126 = $13, roc_63 = $14, roc_21 = $15,
			rs_momentum = $16
		WHERE stock_id = $1 AND trade_date = $2
	`

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(query,
			u.StockID, u.Date,
			u.MA50, u.MA150, u.MA200,
			u.MA200Lag, u.MA200Bullish,
			u.High52W, u.Low52W,
			u.NearHigh52W, u.AboveLow52W,
			u.ROC252, u.ROC126, u.ROC63, u.ROC21,
			u.Momentum,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range updates {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert indicators: %w", err)
		}
	}
	return nil
}

// GetMomentumScores returns every non-nil composite momentum score on the
// given date, across the entire universe.
func (r *PriceRepository) GetMomentumScores(ctx context.Context, date time.Time) ([]contracts.MomentumScore, error) {
	query := `
		SELECT dp.stock_id, s.ticker, dp.rs_momentum
		FROM daily_prices dp
		JOIN stocks s ON s.id = dp.stock_id
		WHERE dp.trade_date = $1 AND dp.rs_momentum IS NOT NULL
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query momentum scores: %w", err)
	}
	defer rows.Close()

	var scores []contracts.MomentumScore
	for rows.Next() {
		var s contracts.MomentumScore
		if err := rows.Scan(&s.StockID, &s.Ticker, &s.Momentum); err != nil {
			return nil, fmt.Errorf("scan momentum score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// UpdateRankings overwrites rank and grade for the given date in one batch.
func (r *PriceRepository) UpdateRankings(ctx context.Context, date time.Time, updates []contracts.RankingUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	query := `
		UPDATE daily_prices
		SET rs_rank = $3, rs_grade = $4
		WHERE stock_id = $1 AND trade_date = $2
	`

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(query, u.StockID, date, u.Rank, u.Grade)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range updates {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("update rankings: %w", err)
		}
	}
	return nil
}

// HasRankings reports whether any observation on the given date already
// carries a grade.
func (r *PriceRepository) HasRankings(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM daily_prices WHERE trade_date = $1 AND rs_grade IS NOT NULL)`,
		date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query rankings existence: %w", err)
	}
	return exists, nil
}
