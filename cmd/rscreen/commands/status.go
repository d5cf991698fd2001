package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "인프라 및 데이터 상태 점검",
	Long: `데이터베이스, Redis, 가격 데이터 현황을 점검합니다.

표시 정보:
- Database: 연결 상태, 풀 통계
- Redis: 연결 여부
- Data: 종목 수, 최신 거래일, 랭킹 존재 여부

Example:
  go run ./cmd/rscreen status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer d.Close()

	ctx := cmd.Context()

	PrintDoubleSeparator()
	fmt.Println("  rscreen Status")
	PrintSeparator()

	// Database
	health, err := d.db.HealthCheck(ctx)
	if err != nil {
		PrintError(fmt.Sprintf("Database: %v", err))
		return err
	}
	PrintSuccess(fmt.Sprintf("Database healthy (ping %v)", health.ResponseTime.Round(time.Millisecond)))
	PrintKeyValue("Pool", fmt.Sprintf("%d/%d conns (%d idle)",
		health.Stats.TotalConns, health.Stats.MaxConns, health.Stats.IdleConns), 10)

	// Redis
	if d.rdb.Enabled() {
		PrintSuccess("Redis connected")
	} else {
		PrintInfo("Redis disabled")
	}

	PrintSeparator()

	// Data coverage
	stocks, err := d.stocks.GetAll(ctx)
	if err != nil {
		PrintError(fmt.Sprintf("Load universe: %v", err))
		return err
	}
	PrintKeyValue("Stocks", fmt.Sprintf("%d", len(stocks)), 10)

	latest, err := d.prices.GetLatestDate(ctx)
	if err != nil {
		PrintWarning("No price data in store")
		return nil
	}
	PrintKeyValue("Latest", latest.Format("2006-01-02"), 10)

	ranked, err := d.prices.HasRankings(ctx, latest)
	if err != nil {
		return fmt.Errorf("check rankings: %w", err)
	}
	if ranked {
		PrintKeyValue("Rankings", "present", 10)
	} else {
		PrintKeyValue("Rankings", "missing (run: rscreen rank)", 10)
	}

	return nil
}
