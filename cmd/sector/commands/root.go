package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/sectorlens/pkg/config"
	"github.com/wonny/sectorlens/pkg/logger"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sector",
	Short: "SectorLens - 섹터 재무/밸류에이션 집계 및 시그널",
	Long: `SectorLens Unified CLI

종목 재무제표와 시장 데이터를 섹터 단위로 합산하고,
FA/TA 점수를 결합해 BUY/HOLD/SELL 시그널을 생성합니다.

Usage:
  go run ./cmd/sector [command]

Examples:
  go run ./cmd/sector run
  go run ./cmd/sector run --start-date 2020-01-01 --end-date 2024-12-31
  go run ./cmd/sector validate-config --scoring-config config/scoring.yaml
  go run ./cmd/sector check-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production), overrides ENV")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug log level)")
}

// loadRuntime loads env config and builds the logger, applying global flags
func loadRuntime() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}
