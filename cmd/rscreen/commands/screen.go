package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonhee/rscreen/internal/contracts"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "트렌드 템플릿 스크리닝",
	Long: `해당 거래일의 종목을 트렌드 템플릿 단계별 깔때기로 거릅니다.

Stages:
  1. 종목별 추세 조건 (가격 하한, MA 정배열, 52주 고저가 위치)
  2. 생존 종목에 등급이 없으면 전체 유니버스 랭킹 선계산
  3. RS 등급 하한 적용, 등급 내림차순 정렬, 상위 N 절단

Example:
  go run ./cmd/rscreen screen
  go run ./cmd/rscreen screen --date 2024-01-15 --min-grade 80
  go run ./cmd/rscreen screen --limit 0 --json`,
	RunE: runScreen,
}

var (
	// Screen flags
	screenDate     string
	screenMinPrice float64
	screenMinGrade float64
	screenLimit    int
	screenJSON     bool
)

func init() {
	rootCmd.AddCommand(screenCmd)

	// Flags
	screenCmd.Flags().StringVar(&screenDate, "date", "", "거래일 (YYYY-MM-DD, 생략 시 최신)")
	screenCmd.Flags().Float64Var(&screenMinPrice, "min-price", -1, "종가 하한 (음수면 설정값 사용)")
	screenCmd.Flags().Float64Var(&screenMinGrade, "min-grade", -1, "RS 등급 하한 (음수면 설정값 사용)")
	screenCmd.Flags().IntVar(&screenLimit, "limit", -1, "최대 후보 수, 0이면 무제한 (음수면 설정값 사용)")
	screenCmd.Flags().BoolVar(&screenJSON, "json", false, "JSON으로 출력")
}

func runScreen(cmd *cobra.Command, args []string) error {
	date, err := parseDate(screenDate)
	if err != nil {
		return err
	}

	d, err := initDeps()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer d.Close()

	params := d.screenParams(screenMinPrice, screenMinGrade, screenLimit)

	candidates, err := d.orch.RunScreen(cmd.Context(), date, params)
	if err != nil {
		return fmt.Errorf("screen pass: %w", err)
	}

	if screenJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	}

	PrintDoubleSeparator()
	fmt.Println("  Trend Template Screen")
	PrintSeparator()
	PrintKeyValue("Min Price", fmt.Sprintf("%.2f", params.MinPrice), 10)
	PrintKeyValue("Min Grade", fmt.Sprintf("%.1f", params.MinGrade), 10)
	if params.Limit > 0 {
		PrintKeyValue("Limit", fmt.Sprintf("%d", params.Limit), 10)
	}
	PrintSeparator()

	printCandidates(candidates)
	return nil
}

func printCandidates(candidates []contracts.Candidate) {
	if len(candidates) == 0 {
		PrintWarning("No candidates passed the trend template")
		return
	}

	columns := []string{"#", "Ticker", "Name", "Close", "RS Grade"}
	widths := []int{4, 8, 24, 12, 9}

	PrintTableHeader(columns, widths)
	for i, c := range candidates {
		PrintTableRow([]string{
			fmt.Sprintf("%d", i+1),
			c.Ticker,
			c.Name,
			fmt.Sprintf("%.2f", c.Close),
			fmt.Sprintf("%.1f", c.RSGrade),
		}, widths)
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("%d candidates", len(candidates)))
}
