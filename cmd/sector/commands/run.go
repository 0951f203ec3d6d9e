package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/sectorlens/internal/contracts"
	"github.com/wonny/sectorlens/internal/entity"
	"github.com/wonny/sectorlens/internal/loader"
	"github.com/wonny/sectorlens/internal/processor"
	"github.com/wonny/sectorlens/internal/scoringconfig"
	"github.com/wonny/sectorlens/internal/store"
	"github.com/wonny/sectorlens/pkg/config"
	"github.com/wonny/sectorlens/pkg/database"
	"github.com/wonny/sectorlens/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "섹터 파이프라인 실행",
	Long: `섹터 파이프라인을 실행합니다.

FA aggregate → TA aggregate → FA score → TA score → combine → signal → persist

Flags:
  --start-date      시작일 (YYYY-MM-DD, TA/FA/시그널 필터)
  --end-date        종료일 (YYYY-MM-DD)
  --report-date     특정 보고일만 출력 (FA/시그널)
  --input-dir       입력 CSV 디렉토리 (기본: INPUT_DIR)
  --output-dir      출력 parquet 디렉토리 (기본: OUTPUT_DIR)
  --scoring-config  점수 설정 YAML (기본: SCORING_CONFIG, 없으면 내장 기본값)

DATABASE_URL 이 설정되어 있으면 postgres 에도 upsert 합니다.

Example:
  go run ./cmd/sector run
  go run ./cmd/sector run --start-date 2020-01-01 --end-date 2024-12-31
  go run ./cmd/sector run --report-date 2024-03-31 -v`,
	RunE: runSector,
}

var (
	runStartDate     string
	runEndDate       string
	runReportDate    string
	runInputDir      string
	runOutputDir     string
	runScoringConfig string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runStartDate, "start-date", "", "시작일 (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&runEndDate, "end-date", "", "종료일 (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&runReportDate, "report-date", "", "보고일 (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&runInputDir, "input-dir", "", "입력 CSV 디렉토리")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "출력 디렉토리")
	runCmd.Flags().StringVar(&runScoringConfig, "scoring-config", "", "점수 설정 YAML 경로")
}

func runSector(cmd *cobra.Command, args []string) error {
	rc, err := parseRunConfig(runStartDate, runEndDate, runReportDate)
	if err != nil {
		return err
	}

	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	applyPathFlags(cfg)

	scoring, _, err := scoringconfig.Load(cfg.ScoringConfig)
	if err != nil {
		return fmt.Errorf("scoring config: %w", err)
	}
	hash, err := scoringconfig.Hash(scoring)
	if err != nil {
		return fmt.Errorf("hash scoring config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sink, closeSink, err := buildSink(ctx, cfg, hash, log)
	if err != nil {
		return err
	}
	defer closeSink()

	PrintRunHeader(cfg, rc, hash)

	source := loader.NewCSVSource(cfg.InputDir, log)
	proc := processor.New(source, sink, entity.DefaultRegistry(), scoring, log)

	result, runErr := proc.Run(ctx, rc)
	PrintRunResult(result)

	if runErr != nil {
		return fmt.Errorf("sector run failed: %w", runErr)
	}
	if !result.Success {
		return errors.New("sector run completed with stage errors")
	}
	return nil
}

// parseRunConfig parses the optional date flags
func parseRunConfig(start, end, report string) (processor.RunConfig, error) {
	var rc processor.RunConfig
	var err error

	if rc.StartDate, err = parseDateFlag("start-date", start); err != nil {
		return rc, err
	}
	if rc.EndDate, err = parseDateFlag("end-date", end); err != nil {
		return rc, err
	}
	if rc.ReportDate, err = parseDateFlag("report-date", report); err != nil {
		return rc, err
	}
	return rc, rc.Validate()
}

func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid --%s %q", contracts.ErrConfiguration, name, value)
	}
	return t, nil
}

func applyPathFlags(cfg *config.Config) {
	if runInputDir != "" {
		cfg.InputDir = runInputDir
	}
	if runOutputDir != "" {
		cfg.OutputDir = runOutputDir
	}
	if runScoringConfig != "" {
		cfg.ScoringConfig = runScoringConfig
	}
}

// buildSink returns the parquet sink, fanned out to postgres when DATABASE_URL is set
func buildSink(ctx context.Context, cfg *config.Config, hash string, log *logger.Logger) (contracts.OutputSink, func(), error) {
	parquetSink, err := store.NewParquetSink(cfg.OutputDir, hash, log)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Database.Enabled() {
		return parquetSink, func() {}, nil
	}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	pgSink := store.NewPostgresSink(db.Pool, hash, log)
	if err := pgSink.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store.NewMultiSink(parquetSink, pgSink), db.Close, nil
}
