package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/sectorlens/internal/scoringconfig"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "점수 설정 YAML 검증",
	Long: `점수 설정 파일을 읽어 검증하고 해시와 가중치를 출력합니다.

- 알 수 없는 필드, 가중치 합 ≠ 1.0, 잘못된 임계값 순서는 실패
- --scoring-config 미지정 시 SCORING_CONFIG, 없으면 내장 기본값

Example:
  go run ./cmd/sector validate-config --scoring-config config/scoring.yaml`,
	RunE: runValidateConfig,
}

var validateScoringConfig string

func init() {
	rootCmd.AddCommand(validateConfigCmd)
	validateConfigCmd.Flags().StringVar(&validateScoringConfig, "scoring-config", "", "점수 설정 YAML 경로")
}

func runValidateConfig(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Scoring Config Validation ===")

	path := validateScoringConfig
	if path == "" {
		cfg, _, err := loadRuntime()
		if err != nil {
			return err
		}
		path = cfg.ScoringConfig
	}
	if path == "" {
		fmt.Println("Using built-in defaults")
	} else {
		fmt.Printf("Loading %s...\n", path)
	}

	scoring, _, err := scoringconfig.Load(path)
	if err != nil {
		PrintError("Invalid scoring config")
		return err
	}
	hash, err := scoringconfig.Hash(scoring)
	if err != nil {
		return fmt.Errorf("hash scoring config: %w", err)
	}

	PrintSuccess("Scoring config is valid")
	fmt.Printf("   Config ID: %s (v%s)\n", scoring.Meta.ConfigID, scoring.Meta.Version)
	fmt.Printf("   Hash: %s\n\n", hash)

	fmt.Printf("Split: FA %.2f / TA %.2f\n", scoring.Weights.Split.FA, scoring.Weights.Split.TA)
	printWeights("FA components", scoring.Weights.FAComponents)
	printWeights("TA components", scoring.Weights.TAComponents)

	if len(scoring.Sectors) > 0 {
		codes := make([]string, 0, len(scoring.Sectors))
		for code := range scoring.Sectors {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		fmt.Println("Sector overrides:")
		for _, code := range codes {
			split := scoring.FATAWeights(code)
			fmt.Printf("   %-12s FA %.2f / TA %.2f\n", code, split.FA, split.TA)
		}
	}

	sig := scoring.SignalThresholds()
	fmt.Printf("Signal: BUY >= %.1f, SELL <= %.1f\n", sig.BuyThreshold, sig.SellThreshold)
	return nil
}

func printWeights(title string, weights map[string]float64) {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%s:\n", title)
	for _, k := range keys {
		fmt.Printf("   %-12s %.2f\n", k, weights[k])
	}
}
