package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "전체 파이프라인 실행 (모멘텀 → 랭킹 → 스크리닝)",
	Long: `일일 배치 전체를 순서대로 실행합니다.

실행 순서:
  1. momentum - 전체 유니버스 종목별 지표 계산
  2. rank     - 최신 거래일 횡단면 랭킹
  3. screen   - 트렌드 템플릿 스크리닝

랭킹은 모든 모멘텀 계산이 커밋된 뒤에만 실행됩니다.

Example:
  go run ./cmd/rscreen analyze
  go run ./cmd/rscreen analyze --min-grade 80 --limit 50`,
	RunE: runAnalyze,
}

var (
	// Analyze flags
	analyzeMinPrice float64
	analyzeMinGrade float64
	analyzeLimit    int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Flags
	analyzeCmd.Flags().Float64Var(&analyzeMinPrice, "min-price", -1, "종가 하한 (음수면 설정값 사용)")
	analyzeCmd.Flags().Float64Var(&analyzeMinGrade, "min-grade", -1, "RS 등급 하한 (음수면 설정값 사용)")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", -1, "최대 후보 수, 0이면 무제한 (음수면 설정값 사용)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	PrintDoubleSeparator()
	fmt.Println("  Daily Analysis Pipeline")
	PrintSeparator()

	d, err := initDeps()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer d.Close()

	params := d.screenParams(analyzeMinPrice, analyzeMinGrade, analyzeLimit)

	result, err := d.orch.RunAll(cmd.Context(), params)
	if err != nil {
		return fmt.Errorf("analysis pipeline: %w", err)
	}

	fmt.Printf("  Trade date : %s\n", result.Date.Format("2006-01-02"))
	PrintSeparator()

	printBatchReport(result.Momentum)

	fmt.Println()
	PrintSuccess(fmt.Sprintf("Ranked %d stocks", result.Ranked))
	fmt.Println()

	printCandidates(result.Candidates)
	return nil
}
