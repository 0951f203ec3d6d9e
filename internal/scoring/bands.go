// Package scoring maps sector metrics to 0~100 component and total scores.
package scoring

import (
	"github.com/wonny/sectorlens/internal/scoringconfig"
)

// MetricScore scores one metric value with its rule.
// Bands are monotone: for "higher" a larger value never scores lower, for "lower" the reverse.
func MetricScore(v float64, rule scoringconfig.MetricRule, bands scoringconfig.BandScores) float64 {
	if rule.EffectiveMethod() == scoringconfig.MethodInversePercentile {
		// 낮은 백분위 = 저평가 = 높은 점수
		return clamp(100 - v)
	}

	t := rule.Thresholds
	if rule.Direction == scoringconfig.DirectionLower {
		switch {
		case v <= t.Excellent:
			return bands.Excellent
		case v <= t.Good:
			return bands.Good
		case v <= t.Neutral:
			return bands.Neutral
		case v <= t.Poor:
			return bands.Poor
		default:
			return bands.Terrible
		}
	}

	switch {
	case v >= t.Excellent:
		return bands.Excellent
	case v >= t.Good:
		return bands.Good
	case v >= t.Neutral:
		return bands.Neutral
	case v >= t.Poor:
		return bands.Poor
	default:
		return bands.Terrible
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
