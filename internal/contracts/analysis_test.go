package contracts

import (
	"errors"
	"testing"
	"time"
)

func TestBatchReport_Add(t *testing.T) {
	report := BatchReport{}

	report.Add(StockResult{Ticker: "005930", RowsWritten: 300})
	report.Add(StockResult{Ticker: "000660", RowsWritten: 260})
	report.Add(StockResult{Ticker: "035420", Skipped: true})
	report.Add(StockResult{Ticker: "035720", Err: errors.New("boom")})

	if report.Total != 4 {
		t.Errorf("Total = %d, want 4", report.Total)
	}
	if report.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", report.Succeeded)
	}
	if report.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", report.Skipped)
	}
	if report.Failed != 1 {
		t.Errorf("Failed = %d, want 1", report.Failed)
	}
	if report.RowsWritten != 560 {
		t.Errorf("RowsWritten = %d, want 560", report.RowsWritten)
	}
	if len(report.FailedTickers) != 1 || report.FailedTickers[0] != "035720" {
		t.Errorf("FailedTickers = %v, want [035720]", report.FailedTickers)
	}
}

func TestBatchReport_SuccessRate(t *testing.T) {
	tests := []struct {
		name   string
		report BatchReport
		want   float64
	}{
		{name: "empty report", report: BatchReport{}, want: 0.0},
		{name: "all success", report: BatchReport{Total: 4, Succeeded: 4}, want: 1.0},
		{name: "half success", report: BatchReport{Total: 4, Succeeded: 2, Skipped: 1, Failed: 1}, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.SuccessRate(); got != tt.want {
				t.Errorf("SuccessRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIndicatorUpdate_HasValues(t *testing.T) {
	ma := 1200.5

	empty := IndicatorUpdate{StockID: 1, Date: time.Now()}
	if empty.HasValues() {
		t.Error("HasValues() = true for update with no computed fields")
	}

	withMA := IndicatorUpdate{StockID: 1, Date: time.Now(), MA50: &ma}
	if !withMA.HasValues() {
		t.Error("HasValues() = false for update with MA50 set")
	}
}

func TestDailyBar_HasMomentum(t *testing.T) {
	score := 27.0
	rank := 1
	grade := 100.0

	bar := DailyBar{StockID: 1, Date: time.Now(), Close: 100}
	if bar.HasMomentum() {
		t.Error("HasMomentum() = true for bar without score")
	}
	if bar.HasRanking() {
		t.Error("HasRanking() = true for bar without rank/grade")
	}

	bar.Momentum = &score
	bar.RSRank = &rank
	if !bar.HasMomentum() {
		t.Error("HasMomentum() = false for bar with score")
	}
	if bar.HasRanking() {
		t.Error("HasRanking() = true for bar with rank but no grade")
	}

	bar.RSGrade = &grade
	if !bar.HasRanking() {
		t.Error("HasRanking() = false for bar with rank and grade")
	}
}
