package scoring

import (
	"time"

	"github.com/wonny/sectorlens/internal/contracts"
	"github.com/wonny/sectorlens/internal/scoringconfig"
	"github.com/wonny/sectorlens/pkg/logger"
)

// Scorer produces FA and TA sector scores
// ⭐ SSOT: 컴포넌트 점수 = 가용 지표 점수 평균, 총점 = 컴포넌트 가중합 (0~100)
type Scorer struct {
	cfg    *scoringconfig.Config
	logger *logger.Logger
}

// NewScorer creates a new scorer
func NewScorer(cfg *scoringconfig.Config, log *logger.Logger) *Scorer {
	return &Scorer{
		cfg:    cfg,
		logger: log.WithComponent("scorer"),
	}
}

// ScoreFA scores one sector fundamental record.
// Returns nil when none of the configured metrics is available.
func (s *Scorer) ScoreFA(rec *contracts.SectorFundamentalRecord) *contracts.SectorScore {
	return s.score(
		rec.SectorCode,
		rec.ReportDate,
		scoringconfig.FAComponents(),
		s.cfg.ScoringThresholds().FA,
		s.cfg.FAComponentWeights(rec.SectorCode),
		rec.Metric,
	)
}

// ScoreTA scores one sector valuation record.
// Returns nil when none of the configured metrics is available.
func (s *Scorer) ScoreTA(rec *contracts.SectorValuationRecord) *contracts.SectorScore {
	return s.score(
		rec.SectorCode,
		rec.Date,
		scoringconfig.TAComponents(),
		s.cfg.ScoringThresholds().TA,
		s.cfg.TAComponentWeights(rec.SectorCode),
		rec.Metric,
	)
}

func (s *Scorer) score(
	sectorCode string,
	date time.Time,
	order []string,
	rules map[string][]scoringconfig.MetricRule,
	weights map[string]float64,
	lookup func(string) (float64, bool),
) *contracts.SectorScore {
	th := s.cfg.ScoringThresholds()
	components := make(contracts.ComponentScores)

	var weighted, weightSum float64
	available := 0

	for _, name := range order {
		w, ok := weights[name]
		if !ok || w == 0 {
			continue
		}

		var sum float64
		n := 0
		for _, rule := range rules[name] {
			v, ok := lookup(rule.Metric)
			if !ok {
				continue
			}
			sum += MetricScore(v, rule, th.BandScores)
			n++
		}

		var cs float64
		if n > 0 {
			cs = sum / float64(n)
			available += n
		} else {
			if th.MissingPolicy == scoringconfig.MissingSkip {
				continue
			}
			cs = th.BandScores.Neutral
		}

		components[name] = cs
		weighted += w * cs
		weightSum += w
	}

	if available == 0 || weightSum == 0 {
		s.logger.WithSector(sectorCode, date).Debug("no scorable metrics")
		return nil
	}

	// SKIP 정책이면 남은 컴포넌트 가중치로 재정규화
	return &contracts.SectorScore{
		SectorCode: sectorCode,
		Date:       date,
		Total:      clamp(weighted / weightSum),
		Components: components,
	}
}
