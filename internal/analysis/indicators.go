package analysis

import (
	"github.com/wonhee/rscreen/internal/contracts"
)

// ⭐ SSOT: 지표 계산 윈도우/가중치 상수는 여기서만

// Analysis windows, counted in observations (trading days), not calendar days.
const (
	WindowMA50  = 50
	WindowMA150 = 150
	WindowMA200 = 200

	// Rolling extreme window (~52 weeks of trading days)
	WindowExtreme = 252

	WindowROC252 = 252
	WindowROC126 = 126
	WindowROC63  = 63
	WindowROC21  = 21

	// TrendLag is how many observations back MA200 is compared against for
	// the bullish flag (first-difference sign test over a 20-observation lag).
	TrendLag = 20

	// MinHistory is the data-sufficiency gate for a full per-stock pass.
	MinHistory = 252
)

// IBD-style composite weights. Must sum to 1.0.
const (
	WeightROC252 = 0.4
	WeightROC126 = 0.2
	WeightROC63  = 0.2
	WeightROC21  = 0.2
)

// 52-week positioning thresholds
const (
	NearHighRatio = 0.75 // Close >= 75% of 52-week high
	AboveLowRatio = 1.25 // Close >= 125% of 52-week low
)

// ComputeIndicators computes moving averages, 52-week extremes, ROC values
// and the composite momentum score for every observation in the history.
//
// bars must be ordered by date ascending with no duplicates; anything else
// returns contracts.ErrOutOfOrderHistory. Insufficient history for a window
// produces a nil field, never an error. Rows where nothing could be computed
// are omitted from the result.
func ComputeIndicators(bars []contracts.DailyBar) ([]contracts.IndicatorUpdate, error) {
	n := len(bars)
	if n == 0 {
		return nil, nil
	}

	for i := 1; i < n; i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return nil, contracts.ErrOutOfOrderHistory
		}
	}

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
	}

	// Prefix sums for O(1) window means
	prefix := make([]float64, n+1)
	for i, c := range closes {
		prefix[i+1] = prefix[i] + c
	}

	ma50 := rollingMean(prefix, WindowMA50)
	ma150 := rollingMean(prefix, WindowMA150)
	ma200 := rollingMean(prefix, WindowMA200)
	high52 := rollingMax(highs, WindowExtreme)
	low52 := rollingMin(lows, WindowExtreme)

	updates := make([]contracts.IndicatorUpdate, 0, n)
	for i := range bars {
		u := contracts.IndicatorUpdate{
			StockID: bars[i].StockID,
			Date:    bars[i].Date,
			MA50:    ma50[i],
			MA150:   ma150[i],
			MA200:   ma200[i],
			High52W: high52[i],
			Low52W:  low52[i],
		}

		// MA200 trend: compare against its own value TrendLag observations back
		if i >= TrendLag && ma200[i-TrendLag] != nil {
			u.MA200Lag = ma200[i-TrendLag]
			if ma200[i] != nil {
				bullish := *ma200[i] > *u.MA200Lag
				u.MA200Bullish = &bullish
			}
		}

		if u.High52W != nil {
			near := closes[i] >= NearHighRatio**u.High52W
			u.NearHigh52W = &near
		}
		if u.Low52W != nil {
			above := closes[i] >= AboveLowRatio**u.Low52W
			u.AboveLow52W = &above
		}

		u.ROC252 = rateOfChange(closes, i, WindowROC252)
		u.ROC126 = rateOfChange(closes, i, WindowROC126)
		u.ROC63 = rateOfChange(closes, i, WindowROC63)
		u.ROC21 = rateOfChange(closes, i, WindowROC21)
		u.Momentum = compositeScore(u.ROC252, u.ROC126, u.ROC63, u.ROC21)

		if u.HasValues() {
			updates = append(updates, u)
		}
	}

	return updates, nil
}

// rateOfChange returns (P_i / P_{i-w} - 1) * 100, counting observations.
// Nil when fewer than w observations precede index i.
func rateOfChange(closes []float64, i, w int) *float64 {
	if i < w {
		return nil
	}
	past := closes[i-w]
	if past == 0 {
		return nil
	}
	roc := (closes[i]/past - 1) * 100
	return &roc
}

// compositeScore returns the weighted momentum score, or nil if any
// contributing ROC is nil. No partial-weight renormalization.
func compositeScore(roc252, roc126, roc63, roc21 *float64) *float64 {
	if roc252 == nil || roc126 == nil || roc63 == nil || roc21 == nil {
		return nil
	}
	score := *roc252*WeightROC252 + *roc126*WeightROC126 + *roc63*WeightROC63 + *roc21*WeightROC21
	return &score
}

// rollingMean computes trailing means over a prefix-sum array.
// Index i is nil until the window is full.
func rollingMean(prefix []float64, w int) []*float64 {
	n := len(prefix) - 1
	out := make([]*float64, n)
	for i := w - 1; i < n; i++ {
		mean := (prefix[i+1] - prefix[i+1-w]) / float64(w)
		v := mean
		out[i] = &v
	}
	return out
}

func rollingMax(values []float64, w int) []*float64 {
	n := len(values)
	out := make([]*float64, n)
	for i := w - 1; i < n; i++ {
		max := values[i+1-w]
		for j := i + 2 - w; j <= i; j++ {
			if values[j] > max {
				max = values[j]
			}
		}
		v := max
		out[i] = &v
	}
	return out
}

func rollingMin(values []float64, w int) []*float64 {
	n := len(values)
	out := make([]*float64, n)
	for i := w - 1; i < n; i++ {
		min := values[i+1-w]
		for j := i + 2 - w; j <= i; j++ {
			if values[j] < min {
				min = values[j]
			}
		}
		v := min
		out[i] = &v
	}
	return out
}
