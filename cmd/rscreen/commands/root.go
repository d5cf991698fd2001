package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rscreen",
	Short: "rscreen - RS 모멘텀 랭킹 & 트렌드 템플릿 스크리너",
	Long: `rscreen Unified CLI

일별 가격 데이터에서 RS 모멘텀 점수를 계산하고,
전체 유니버스를 백분위 랭킹한 뒤 트렌드 템플릿으로 후보를 추립니다.

Usage:
  go run ./cmd/rscreen [command]

Examples:
  go run ./cmd/rscreen momentum
  go run ./cmd/rscreen rank --date 2024-01-15
  go run ./cmd/rscreen screen --min-grade 80
  go run ./cmd/rscreen analyze`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
