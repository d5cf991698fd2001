package contracts

import "time"

// ⭐ SSOT: 시장 데이터 타입 정의는 여기서만

// Stock represents a listed instrument. Ownership of this record belongs to
// the ingestion collaborator; the engine only reads it.
type Stock struct {
	ID     int64
	Ticker string
	Name   string
	Market string // KOSPI, KOSDAQ
}

// DailyBar represents one daily price observation plus the derived analytic
// fields this engine computes. Derived fields are nil until enough history
// exists for their window.
type DailyBar struct {
	StockID int64
	Ticker  string
	Name    string
	Date    time.Time

	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64

	// Moving averages (trailing, inclusive of Date)
	MA50  *float64
	MA150 *float64
	MA200 *float64

	// MA200 from TrendLag observations earlier, and its first-difference sign
	MA200Lag     *float64
	MA200Bullish *bool

	// Rolling 252-observation extremes
	High52W     *float64
	Low52W      *float64
	NearHigh52W *bool // Close >= 0.75 * High52W
	AboveLow52W *bool // Close >= 1.25 * Low52W

	// Rate of change over trailing observations (not calendar days)
	ROC252 *float64
	ROC126 *float64
	ROC63  *float64
	ROC21  *float64

	// Weighted composite momentum score (nil if any ROC is nil)
	Momentum *float64

	// Cross-sectional standing on Date; written only by the ranking pass
	RSRank  *int
	RSGrade *float64
}

// HasMomentum reports whether the composite momentum score is present.
func (b *DailyBar) HasMomentum() bool {
	return b.Momentum != nil
}

// HasRanking reports whether both rank and grade are present.
func (b *DailyBar) HasRanking() bool {
	return b.RSRank != nil && b.RSGrade != nil
}
