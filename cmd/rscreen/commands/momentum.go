package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonhee/rscreen/internal/contracts"
)

// momentumCmd represents the momentum command
var momentumCmd = &cobra.Command{
	Use:   "momentum",
	Short: "종목별 RS 모멘텀 계산",
	Long: `전체 유니버스의 종목별 이동평균, 52주 고저가, ROC, 모멘텀 점수를
계산하고 저장합니다.

종목별로 독립 실행되며 개별 실패는 배치를 중단하지 않습니다.

Example:
  go run ./cmd/rscreen momentum
  go run ./cmd/rscreen momentum --latest
  go run ./cmd/rscreen momentum --ticker 005930`,
	RunE: runMomentum,
}

var (
	// Momentum flags
	momentumLatest  bool
	momentumTicker  string
	momentumWorkers int
)

func init() {
	rootCmd.AddCommand(momentumCmd)

	// Flags
	momentumCmd.Flags().BoolVar(&momentumLatest, "latest", false, "최신 거래일에 시세가 있는 종목만 갱신")
	momentumCmd.Flags().StringVar(&momentumTicker, "ticker", "", "단일 종목만 갱신 (예: 005930)")
	momentumCmd.Flags().IntVar(&momentumWorkers, "workers", 0, "워커 수 (0이면 설정값 사용)")
}

func runMomentum(cmd *cobra.Command, args []string) error {
	workersOverride = momentumWorkers

	PrintDoubleSeparator()
	fmt.Println("  RS Momentum Calculation")
	PrintSeparator()

	d, err := initDeps()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer d.Close()

	ctx := cmd.Context()

	var report *contracts.BatchReport
	switch {
	case momentumTicker != "":
		report, err = d.orch.RunMomentumTicker(ctx, momentumTicker)
	case momentumLatest:
		report, err = d.orch.RunMomentumLatest(ctx)
	default:
		report, err = d.orch.RunMomentum(ctx)
	}
	if err != nil {
		return fmt.Errorf("momentum pass: %w", err)
	}

	printBatchReport(report)
	return nil
}
