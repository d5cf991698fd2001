package commands

import (
	"fmt"
	"time"

	"github.com/wonhee/rscreen/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	for i, col := range columns {
		fmt.Printf("%-*s", widths[i], col)
		if i < len(columns)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	for i := 0; i < totalWidth; i++ {
		fmt.Print("─")
	}
	fmt.Println()
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// printBatchReport prints the summary of one momentum batch pass
func printBatchReport(report *contracts.BatchReport) {
	fmt.Printf("  Processed : %d stocks\n", report.Total)
	fmt.Printf("  Succeeded : %d\n", report.Succeeded)
	fmt.Printf("  Skipped   : %d (insufficient history)\n", report.Skipped)
	fmt.Printf("  Failed    : %d\n", report.Failed)
	fmt.Printf("  Rows      : %d written\n", report.RowsWritten)
	fmt.Printf("  Duration  : %v\n", report.Duration.Round(time.Millisecond))

	if report.Failed > 0 {
		PrintWarning(fmt.Sprintf("Failed tickers: %v", report.FailedTickers))
	} else {
		PrintSuccess(fmt.Sprintf("Momentum pass completed (%.1f%% success)", report.SuccessRate()*100))
	}
}
