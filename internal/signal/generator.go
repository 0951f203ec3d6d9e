// Package signal combines FA/TA scores into BUY/HOLD/SELL signals.
package signal

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/wonny/sectorlens/internal/contracts"
	"github.com/wonny/sectorlens/internal/scoringconfig"
	"github.com/wonny/sectorlens/pkg/logger"
)

const (
	minStrength = 1
	maxStrength = 5
)

// Generator builds ScoreRecords and Signals
// ⭐ SSOT: 시그널은 combined_score와 임계값만의 순수 함수
type Generator struct {
	cfg    *scoringconfig.Config
	logger *logger.Logger
}

// NewGenerator creates a new signal generator
func NewGenerator(cfg *scoringconfig.Config, log *logger.Logger) *Generator {
	return &Generator{
		cfg:    cfg,
		logger: log.WithComponent("signal"),
	}
}

// Combine weights FA and TA totals with the sector's split.
// A missing side hands its weight to the other; both missing returns false.
func (g *Generator) Combine(sectorCode string, period time.Time, fa, ta *contracts.SectorScore) (contracts.ScoreRecord, bool) {
	if fa == nil && ta == nil {
		return contracts.ScoreRecord{}, false
	}

	split := g.cfg.FATAWeights(sectorCode)
	rec := contracts.ScoreRecord{
		SectorCode: sectorCode,
		Period:     period,
		FAWeight:   split.FA,
		TAWeight:   split.TA,
	}

	switch {
	case fa == nil:
		rec.FAWeight, rec.TAWeight = 0, 1
	case ta == nil:
		rec.FAWeight, rec.TAWeight = 1, 0
	}

	if fa != nil {
		rec.FATotalScore = contracts.Float(fa.Total)
		rec.FAComponents = fa.Components
		rec.CombinedScore += fa.Total * rec.FAWeight
	}
	if ta != nil {
		rec.TATotalScore = contracts.Float(ta.Total)
		rec.TAComponents = ta.Components
		rec.CombinedScore += ta.Total * rec.TAWeight
		d := ta.Date
		rec.ValuationDate = &d
	}

	return rec, true
}

// Classify maps a combined score to a signal and its 1~5 strength.
// Both threshold comparisons are inclusive.
func Classify(score float64, th scoringconfig.SignalConfig) (contracts.SignalType, int) {
	var sig contracts.SignalType
	var distance float64

	switch {
	case score >= th.BuyThreshold:
		sig = contracts.SignalBuy
		distance = score - th.BuyThreshold
	case score <= th.SellThreshold:
		sig = contracts.SignalSell
		distance = th.SellThreshold - score
	default:
		sig = contracts.SignalHold
		distance = math.Min(th.BuyThreshold-score, score-th.SellThreshold)
	}

	strength := minStrength
	if th.StrengthStep > 0 {
		strength = 1 + int(math.Floor(distance/th.StrengthStep))
	}
	if strength < minStrength {
		strength = minStrength
	}
	if strength > maxStrength {
		strength = maxStrength
	}
	return sig, strength
}

// Rationale names the notable sub-scores and the dominant contributor
func Rationale(rec contracts.ScoreRecord, th scoringconfig.SignalConfig) string {
	var parts []string

	if rec.FATotalScore != nil {
		switch fa := *rec.FATotalScore; {
		case fa > th.StrongScore:
			parts = append(parts, "strong fundamentals")
		case fa < th.WeakScore:
			parts = append(parts, "weak fundamentals")
		}
	}
	if rec.TATotalScore != nil {
		switch ta := *rec.TATotalScore; {
		case ta > th.StrongScore:
			parts = append(parts, "attractive valuation")
		case ta < th.WeakScore:
			parts = append(parts, "expensive valuation")
		}
	}

	parts = append(parts, dominant(rec))
	return strings.Join(parts, "; ")
}

// dominant describes the side contributing most to the combined score
func dominant(rec contracts.ScoreRecord) string {
	var faContrib, taContrib float64
	if rec.FATotalScore != nil {
		faContrib = *rec.FATotalScore * rec.FAWeight
	}
	if rec.TATotalScore != nil {
		taContrib = *rec.TATotalScore * rec.TAWeight
	}

	switch {
	case rec.TATotalScore == nil:
		return "fundamentals only" + topComponent(rec.FAComponents, scoringconfig.FAComponents())
	case rec.FATotalScore == nil:
		return "valuation only" + topComponent(rec.TAComponents, scoringconfig.TAComponents())
	case faContrib >= taContrib:
		return fmt.Sprintf("driven by fundamentals (%.1f of %.1f)%s",
			faContrib, rec.CombinedScore, topComponent(rec.FAComponents, scoringconfig.FAComponents()))
	default:
		return fmt.Sprintf("driven by valuation (%.1f of %.1f)%s",
			taContrib, rec.CombinedScore, topComponent(rec.TAComponents, scoringconfig.TAComponents()))
	}
}

// topComponent returns ", top: <name> <score>" for the highest component (ties by canonical order)
func topComponent(components contracts.ComponentScores, order []string) string {
	best := ""
	bestScore := -1.0
	for _, name := range order {
		if v, ok := components[name]; ok && v > bestScore {
			best, bestScore = name, v
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(", top: %s %.1f", best, bestScore)
}

// Generate classifies one ScoreRecord
func (g *Generator) Generate(rec contracts.ScoreRecord) contracts.Signal {
	th := g.cfg.SignalThresholds()
	sig, strength := Classify(rec.CombinedScore, th)
	return contracts.Signal{
		SectorCode:     rec.SectorCode,
		Period:         rec.Period,
		Signal:         sig,
		SignalStrength: strength,
		Rationale:      Rationale(rec, th),
	}
}

// PeriodScore is one dated score of a sector; Score is nil when nothing was scorable
type PeriodScore struct {
	SectorCode string
	Date       time.Time
	Score      *contracts.SectorScore
}

// Align pairs each FA period with its TA snapshot and combines the two.
// The TA snapshot of a period is the latest TA score dated before the next report_date,
// or the last available one for the latest period. A sector without FA periods gets one
// record at its latest TA date.
// Output is ordered by (sector_code, period).
func (g *Generator) Align(fa, ta []PeriodScore) []contracts.ScoreRecord {
	faBySector := groupByDate(fa)
	taBySector := groupByDate(ta)

	codeSet := make(map[string]bool)
	for code := range faBySector {
		codeSet[code] = true
	}
	for code := range taBySector {
		codeSet[code] = true
	}
	codes := make([]string, 0, len(codeSet))
	for code := range codeSet {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var out []contracts.ScoreRecord
	emit := func(code string, period time.Time, f, t *contracts.SectorScore) {
		rec, ok := g.Combine(code, period, f, t)
		if !ok {
			g.logger.WithSector(code, period).Debug("no FA or TA score, signal skipped")
			return
		}
		out = append(out, rec)
	}

	for _, code := range codes {
		periods := faBySector[code]
		snapshots := taBySector[code]

		if len(periods) == 0 {
			if last := latestScored(snapshots); last != nil {
				emit(code, last.Date, nil, last.Score)
			}
			continue
		}

		for i, p := range periods {
			var snap *contracts.SectorScore
			if i+1 < len(periods) {
				snap = latestBefore(snapshots, periods[i+1].Date)
			} else if last := latestScored(snapshots); last != nil {
				snap = last.Score
			}
			emit(code, p.Date, p.Score, snap)
		}
	}
	return out
}

// GenerateAll classifies aligned score records, keeping their order
func (g *Generator) GenerateAll(records []contracts.ScoreRecord) []contracts.SectorSignal {
	out := make([]contracts.SectorSignal, 0, len(records))
	counts := make(map[contracts.SignalType]int)
	for _, rec := range records {
		sig := g.Generate(rec)
		counts[sig.Signal]++
		out = append(out, contracts.SectorSignal{Score: rec, Signal: sig})
	}

	g.logger.WithFields(map[string]interface{}{
		"signals": len(out),
		"buy":     counts[contracts.SignalBuy],
		"hold":    counts[contracts.SignalHold],
		"sell":    counts[contracts.SignalSell],
	}).Info("Signal generation completed")

	return out
}

// Run aligns, combines and classifies in one call
func (g *Generator) Run(fa, ta []PeriodScore) []contracts.SectorSignal {
	return g.GenerateAll(g.Align(fa, ta))
}

func groupByDate(scores []PeriodScore) map[string][]PeriodScore {
	out := make(map[string][]PeriodScore)
	for _, s := range scores {
		out[s.SectorCode] = append(out[s.SectorCode], s)
	}
	for _, list := range out {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Date.Before(list[j].Date) })
	}
	return out
}

// latestBefore returns the last non-nil score dated strictly before cutoff
func latestBefore(snapshots []PeriodScore, cutoff time.Time) *contracts.SectorScore {
	var found *contracts.SectorScore
	for _, s := range snapshots {
		if !s.Date.Before(cutoff) {
			break
		}
		if s.Score != nil {
			found = s.Score
		}
	}
	return found
}

func latestScored(snapshots []PeriodScore) *PeriodScore {
	for i := len(snapshots) - 1; i >= 0; i-- {
		if snapshots[i].Score != nil {
			return &snapshots[i]
		}
	}
	return nil
}
