package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "전체 유니버스 횡단면 랭킹",
	Long: `해당 거래일의 모멘텀 점수를 내림차순으로 줄 세우고
RS 등급(0~100 백분위)을 저장합니다.

랭킹은 전체 유니버스 단위로만 의미가 있으므로 부분 실행은 없습니다.
날짜를 생략하면 저장된 최신 거래일을 사용합니다.

Example:
  go run ./cmd/rscreen rank
  go run ./cmd/rscreen rank --date 2024-01-15`,
	RunE: runRank,
}

var (
	// Rank flags
	rankDate string
)

func init() {
	rootCmd.AddCommand(rankCmd)

	// Flags
	rankCmd.Flags().StringVar(&rankDate, "date", "", "거래일 (YYYY-MM-DD, 생략 시 최신)")
}

func runRank(cmd *cobra.Command, args []string) error {
	date, err := parseDate(rankDate)
	if err != nil {
		return err
	}

	PrintDoubleSeparator()
	fmt.Println("  RS Cross-Sectional Ranking")
	PrintSeparator()

	d, err := initDeps()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer d.Close()

	ranked, err := d.orch.RunRanking(cmd.Context(), date)
	if err != nil {
		return fmt.Errorf("ranking pass: %w", err)
	}

	if ranked == 0 {
		PrintWarning("No momentum scores found for this date")
		return nil
	}

	PrintSuccess(fmt.Sprintf("Ranked %d stocks", ranked))
	return nil
}
