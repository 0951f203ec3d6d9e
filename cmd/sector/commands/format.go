package commands

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wonny/sectorlens/internal/processor"
	"github.com/wonny/sectorlens/pkg/config"
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
	fmt.Printf("⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
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

	totalWidth := 0
	for _, w := range widths {
		totalWidth += w
	}
	totalWidth += (len(widths) - 1) * 2
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintRunHeader prints the run parameters
func PrintRunHeader(cfg *config.Config, rc processor.RunConfig, hash string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Println("  Sector Pipeline")
	PrintSeparator()
	fmt.Printf("  Env       : %s\n", cfg.Env)
	fmt.Printf("  Input     : %s\n", cfg.InputDir)
	fmt.Printf("  Output    : %s\n", cfg.OutputDir)
	fmt.Printf("  Period    : %s ~ %s\n", dateOrDash(rc.StartDate), dateOrDash(rc.EndDate))
	if !rc.ReportDate.IsZero() {
		fmt.Printf("  Report    : %s\n", rc.ReportDate.Format("2006-01-02"))
	}
	fmt.Printf("  Config    : %s\n", shortHash(hash))
	if cfg.Database.Enabled() {
		fmt.Println("  Postgres  : enabled")
	}
	PrintSeparator()
}

// PrintRunResult prints stage results, the per-sector summary and exclusions
func PrintRunResult(result *processor.RunResult) {
	if result == nil {
		return
	}

	fmt.Println()
	fmt.Println("=== Stages ===")
	for _, sr := range result.StageResults {
		mark := "✅"
		if !sr.Success {
			mark = "❌"
		}
		fmt.Printf("%s %-12s in=%-6d out=%-6d %dms", mark, sr.Stage.String(), sr.InputCount, sr.OutputCount, sr.Duration)
		if sr.Error != "" {
			fmt.Printf("  %s", sr.Error)
		}
		fmt.Println()
	}

	if len(result.Summary) > 0 {
		fmt.Println()
		fmt.Println("=== Sector Summary ===")
		PrintTableHeader(
			[]string{"Sector", "Latest", "Tickers", "DQ", "Excluded Metrics"},
			[]int{12, 10, 7, 6, 30},
		)
		for _, q := range result.Summary {
			excluded := "-"
			if len(q.ExcludedMetrics) > 0 {
				excluded = strings.Join(q.ExcludedMetrics, ",")
			}
			fmt.Printf("%-12s  %-10s  %7d  %6.3f  %s\n",
				q.SectorCode, q.LatestReportDate.Format("2006-01-02"), q.TickerCount, q.DataQualityScore, excluded)
		}
	}

	if len(result.Signals) > 0 {
		fmt.Println()
		fmt.Println("=== Signals ===")
		counts := make(map[string]int)
		for _, s := range result.Signals {
			counts[string(s.Signal.Signal)]++
		}
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %-8s %d\n", k, counts[k])
		}
	}

	fmt.Println()
	if len(result.ExcludedTickers) > 0 {
		PrintWarning(fmt.Sprintf("Excluded tickers (%d): %s", len(result.ExcludedTickers), strings.Join(result.ExcludedTickers, ", ")))
	}
	if len(result.ExcludedMetrics) > 0 {
		PrintWarning(fmt.Sprintf("Excluded metrics (%d): %s", len(result.ExcludedMetrics), strings.Join(result.ExcludedMetrics, ", ")))
	}
	if len(result.LowConfidence) > 0 {
		PrintWarning(fmt.Sprintf("Low confidence sectors: %s", strings.Join(result.LowConfidence, ", ")))
	}
	for _, v := range result.Violations {
		PrintWarning(v.Error())
	}

	fmt.Printf("Fundamentals: %d  Valuations: %d  Signals: %d\n",
		len(result.Fundamentals), len(result.Valuations), len(result.Signals))
	if result.Success {
		PrintSuccess(fmt.Sprintf("Sector run completed in %.2fs", result.Duration.Seconds()))
	} else {
		PrintError(fmt.Sprintf("Sector run finished with %d stage error(s)", len(result.StageErrors)))
	}
}

func dateOrDash(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
