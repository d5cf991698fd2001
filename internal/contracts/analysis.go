package contracts

import "time"

// IndicatorUpdate carries the recomputed derived fields for one
// (stock, date) observation. Nil fields overwrite as NULL so a re-run with
// shorter history cannot leave stale values behind.
type IndicatorUpdate struct {
	StockID int64
	Date    time.Time

	MA50  *float64
	MA150 *float64
	MA200 *float64

	MA200Lag     *float64
	MA200Bullish *bool

	High52W     *float64
	Low52W      *float64
	NearHigh52W *bool
	AboveLow52W *bool

	ROC252 *float64
	ROC126 *float64
	ROC63  *float64
	ROC21  *float64

	Momentum *float64
}

// HasValues reports whether at least one derived field was computed.
// Rows with no computed fields are skipped when persisting.
func (u *IndicatorUpdate) HasValues() bool {
	return u.MA50 != nil || u.MA150 != nil || u.MA200 != nil ||
		u.MA200Lag != nil || u.High52W != nil || u.Low52W != nil ||
		u.ROC252 != nil || u.ROC126 != nil || u.ROC63 != nil || u.ROC21 != nil ||
		u.Momentum != nil
}

// MomentumScore is one stock's composite momentum on an evaluation date,
// collected for cross-sectional ranking.
type MomentumScore struct {
	StockID  int64
	Ticker   string
	Momentum float64
}

// RankingUpdate is the result of the ranking pass for one stock.
// Rank 1 is the strongest momentum; Grade is a percentile in [0, 100].
type RankingUpdate struct {
	StockID int64
	Rank    int
	Grade   float64
}

// Candidate is one row of the trend-template screen output, ordered by
// descending grade and suitable for direct presentation.
type Candidate struct {
	StockID int64   `json:"stock_id"`
	Ticker  string  `json:"ticker"`
	Name    string  `json:"name"`
	Close   float64 `json:"close"`
	RSGrade float64 `json:"rs_grade"`
}

// StockResult is the outcome of one per-stock calculator pass.
type StockResult struct {
	Ticker      string
	RowsWritten int
	Skipped     bool // insufficient history, not a failure
	Err         error
}

// BatchReport summarizes a full-universe pass. Per-stock failures are
// collected here; they never abort the pass.
type BatchReport struct {
	Total         int           `json:"total"`
	Succeeded     int           `json:"succeeded"`
	Skipped       int           `json:"skipped"`
	Failed        int           `json:"failed"`
	RowsWritten   int           `json:"rows_written"`
	FailedTickers []string      `json:"failed_tickers,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// Add folds one stock result into the report.
func (r *BatchReport) Add(res StockResult) {
	r.Total++
	switch {
	case res.Err != nil:
		r.Failed++
		r.FailedTickers = append(r.FailedTickers, res.Ticker)
	case res.Skipped:
		r.Skipped++
	default:
		r.Succeeded++
		r.RowsWritten += res.RowsWritten
	}
}

// SuccessRate returns the fraction of processed stocks that succeeded.
func (r *BatchReport) SuccessRate() float64 {
	if r.Total == 0 {
		return 0.0
	}
	return float64(r.Succeeded) / float64(r.Total)
}
