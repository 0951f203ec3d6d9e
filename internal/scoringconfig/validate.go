package scoringconfig

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/wonny/sectorlens/internal/contracts"
)

// weightEpsilon 가중치 합 허용 오차
const weightEpsilon = 1e-6

// ValidationError 검증 실패 (실행 중단, 집계 시작 전)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets callers match errors.Is(err, contracts.ErrConfiguration)
func (e ValidationError) Unwrap() error { return contracts.ErrConfiguration }

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Weights ===
	if err := validateSplit(cfg.Weights.Split, "weights.split"); err != nil {
		return err
	}
	if err := validateComponents(cfg.Weights.FAComponents, FAComponents(), "weights.fa_components"); err != nil {
		return err
	}
	if err := validateComponents(cfg.Weights.TAComponents, TAComponents(), "weights.ta_components"); err != nil {
		return err
	}

	// 섹터별 override (결정적 에러 메시지를 위해 정렬)
	codes := make([]string, 0, len(cfg.Sectors))
	for code := range cfg.Sectors {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		o := cfg.Sectors[code]
		prefix := fmt.Sprintf("sectors.%s", code)
		if o.Split != nil {
			if err := validateSplit(*o.Split, prefix+".split"); err != nil {
				return err
			}
		}
		if o.FAComponents != nil {
			if err := validateComponents(o.FAComponents, FAComponents(), prefix+".fa_components"); err != nil {
				return err
			}
		}
		if o.TAComponents != nil {
			if err := validateComponents(o.TAComponents, TAComponents(), prefix+".ta_components"); err != nil {
				return err
			}
		}
	}

	// === Scoring ===
	s := cfg.Scoring
	if s.MissingPolicy != MissingNeutral && s.MissingPolicy != MissingSkip {
		return ValidationError{"scoring.missing_policy", "must be NEUTRAL or SKIP"}
	}
	if err := validateBandScores(s.BandScores); err != nil {
		return err
	}
	if err := validateRules(s.FA, FAComponents(), "scoring.fa"); err != nil {
		return err
	}
	if err := validateRules(s.TA, TAComponents(), "scoring.ta"); err != nil {
		return err
	}

	// === Signal ===
	sig := cfg.Signal
	if sig.BuyThreshold <= sig.SellThreshold {
		return ValidationError{"signal", "buy_threshold must be > sell_threshold"}
	}
	if sig.SellThreshold < 0 || sig.BuyThreshold > 100 {
		return ValidationError{"signal", "thresholds must be within [0, 100]"}
	}
	if sig.StrengthStep <= 0 {
		return ValidationError{"signal.strength_step", "must be > 0"}
	}
	if sig.WeakScore >= sig.StrongScore {
		return ValidationError{"signal", "weak_score must be < strong_score"}
	}

	// === Valuation ===
	v := cfg.Valuation
	if v.PercentileWindowYears < 1 {
		return ValidationError{"valuation.percentile_window_years", "must be >= 1"}
	}
	if v.MinObservations < 2 {
		return ValidationError{"valuation.min_observations", "must be >= 2"}
	}
	if v.MomentumShortDays < 1 || v.MomentumShortDays >= v.MomentumLongDays {
		return ValidationError{"valuation", "momentum_short_days must be >= 1 and < momentum_long_days"}
	}

	// === Quality ===
	if err := validatePctRange(cfg.Quality.LowConfidenceThreshold, "quality.low_confidence_threshold"); err != nil {
		return err
	}

	return nil
}

// === Helper Functions ===

func validateSplit(s Split, field string) error {
	if s.FA < 0 || s.TA < 0 {
		return ValidationError{field, "weights must be >= 0"}
	}
	if err := validateWeightsSum([]float64{s.FA, s.TA}, 1.0, weightEpsilon); err != nil {
		return ValidationError{field, err.Error()}
	}
	return nil
}

func validateComponents(weights map[string]float64, known []string, field string) error {
	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}

	values := make([]float64, 0, len(weights))
	for _, name := range sortedKeys(weights) {
		if !allowed[name] {
			return ValidationError{field, fmt.Sprintf("unknown component %q", name)}
		}
		if weights[name] < 0 {
			return ValidationError{field + "." + name, "must be >= 0"}
		}
		values = append(values, weights[name])
	}

	if err := validateWeightsSum(values, 1.0, weightEpsilon); err != nil {
		return ValidationError{field, err.Error()}
	}
	return nil
}

func validateBandScores(b BandScores) error {
	scores := []float64{b.Excellent, b.Good, b.Neutral, b.Poor, b.Terrible}
	for _, v := range scores {
		if v < 0 || v > 100 {
			return ValidationError{"scoring.band_scores", "must be within [0, 100]"}
		}
	}
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[i-1] {
			return ValidationError{"scoring.band_scores", "must be non-increasing from excellent to terrible"}
		}
	}
	return nil
}

func validateRules(rules map[string][]MetricRule, known []string, field string) error {
	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}

	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !allowed[name] {
			return ValidationError{field, fmt.Sprintf("unknown component %q", name)}
		}
		for i, r := range rules[name] {
			rf := fmt.Sprintf("%s.%s[%d]", field, name, i)
			if r.Metric == "" {
				return ValidationError{rf + ".metric", "required"}
			}
			switch r.EffectiveMethod() {
			case MethodInversePercentile:
				continue
			case MethodBands:
			default:
				return ValidationError{rf + ".method", "must be bands or inverse_percentile"}
			}
			if err := validateThresholds(r.Direction, r.Thresholds); err != nil {
				return ValidationError{rf, err.Error()}
			}
		}
	}
	return nil
}

// validateThresholds ensures bands are strictly monotone in the metric's direction
func validateThresholds(direction string, t Thresholds) error {
	ordered := []float64{t.Excellent, t.Good, t.Neutral, t.Poor}
	switch direction {
	case DirectionHigher:
		for i := 1; i < len(ordered); i++ {
			if ordered[i] >= ordered[i-1] {
				return errors.New("thresholds must strictly decrease from excellent to poor")
			}
		}
	case DirectionLower:
		for i := 1; i < len(ordered); i++ {
			if ordered[i] <= ordered[i-1] {
				return errors.New("thresholds must strictly increase from excellent to poor")
			}
		}
	default:
		return errors.New("direction must be higher or lower")
	}
	return nil
}

func validateWeightsSum(weights []float64, target float64, epsilon float64) error {
	if len(weights) == 0 {
		return errors.New("must not be empty")
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-target) > epsilon {
		return fmt.Errorf("must sum to %.2f, got %.6f", target, sum)
	}
	return nil
}

// validatePctRange는 비율 값이 0~1 범위인지 검증
func validatePctRange(pct float64, field string) error {
	if pct < 0 || pct > 1 {
		return ValidationError{field, "must be in range [0, 1]"}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
