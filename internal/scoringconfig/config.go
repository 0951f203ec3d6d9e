// Package scoringconfig holds weights, scoring bands and signal thresholds.
// Loaded once per run, read-only afterwards.
package scoringconfig

// Component names
const (
	ComponentGrowth          = "growth"
	ComponentProfitability   = "profitability"
	ComponentEfficiency      = "efficiency"
	ComponentFinancialHealth = "financial_health"

	ComponentValuation = "valuation"
	ComponentMomentum  = "momentum"
	ComponentBreadth   = "breadth"
)

// FAComponents returns FA component names in output order
func FAComponents() []string {
	return []string{ComponentGrowth, ComponentProfitability, ComponentEfficiency, ComponentFinancialHealth}
}

// TAComponents returns TA component names in output order
func TAComponents() []string {
	return []string{ComponentValuation, ComponentMomentum, ComponentBreadth}
}

// Missing component policies
const (
	MissingNeutral = "NEUTRAL" // 지표 없는 컴포넌트 = neutral 밴드 점수
	MissingSkip    = "SKIP"    // 컴포넌트 제외 후 가중치 재정규화
)

// Scoring methods
const (
	MethodBands             = "bands"
	MethodInversePercentile = "inverse_percentile" // score = 100 - percentile
)

// Directions
const (
	DirectionHigher = "higher"
	DirectionLower  = "lower"
)

// Config is the complete scoring configuration
// ⭐ SSOT: 가중치/임계값은 여기서만 정의
type Config struct {
	Meta      Meta                      `yaml:"meta" json:"meta"`
	Weights   Weights                   `yaml:"weights" json:"weights"`
	Sectors   map[string]SectorOverride `yaml:"sectors" json:"sectors"`
	Scoring   Scoring                   `yaml:"scoring" json:"scoring"`
	Signal    SignalConfig              `yaml:"signal" json:"signal"`
	Valuation Valuation                 `yaml:"valuation" json:"valuation"`
	Quality   Quality                   `yaml:"quality" json:"quality"`
}

// Meta 메타 정보
type Meta struct {
	ConfigID string `yaml:"config_id" json:"config_id"`
	Version  string `yaml:"version" json:"version"`
}

// Split is the FA/TA weight pair (합 = 1.0)
type Split struct {
	FA float64 `yaml:"fa" json:"fa"`
	TA float64 `yaml:"ta" json:"ta"`
}

// Weights is the global weight set
type Weights struct {
	Split        Split              `yaml:"split" json:"split"`
	FAComponents map[string]float64 `yaml:"fa_components" json:"fa_components"` // 합 = 1.0
	TAComponents map[string]float64 `yaml:"ta_components" json:"ta_components"` // 합 = 1.0
}

// SectorOverride replaces parts of the global weight set for one sector.
// A component map, when present, replaces the global map entirely.
type SectorOverride struct {
	Split        *Split             `yaml:"split,omitempty" json:"split,omitempty"`
	FAComponents map[string]float64 `yaml:"fa_components,omitempty" json:"fa_components,omitempty"`
	TAComponents map[string]float64 `yaml:"ta_components,omitempty" json:"ta_components,omitempty"`
}

// Scoring holds the band definitions per component
type Scoring struct {
	MissingPolicy string                  `yaml:"missing_policy" json:"missing_policy"`
	BandScores    BandScores              `yaml:"band_scores" json:"band_scores"`
	FA            map[string][]MetricRule `yaml:"fa" json:"fa"`
	TA            map[string][]MetricRule `yaml:"ta" json:"ta"`
}

// BandScores is the score assigned to each band
type BandScores struct {
	Excellent float64 `yaml:"excellent" json:"excellent"`
	Good      float64 `yaml:"good" json:"good"`
	Neutral   float64 `yaml:"neutral" json:"neutral"`
	Poor      float64 `yaml:"poor" json:"poor"`
	Terrible  float64 `yaml:"terrible" json:"terrible"`
}

// MetricRule scores one metric
type MetricRule struct {
	Metric     string     `yaml:"metric" json:"metric"`
	Method     string     `yaml:"method,omitempty" json:"method,omitempty"`       // bands (default) | inverse_percentile
	Direction  string     `yaml:"direction,omitempty" json:"direction,omitempty"` // higher | lower
	Thresholds Thresholds `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
}

// Thresholds are band boundaries. For "higher" a value >= Excellent is excellent;
// for "lower" a value <= Excellent is excellent.
type Thresholds struct {
	Excellent float64 `yaml:"excellent" json:"excellent"`
	Good      float64 `yaml:"good" json:"good"`
	Neutral   float64 `yaml:"neutral" json:"neutral"`
	Poor      float64 `yaml:"poor" json:"poor"`
}

// EffectiveMethod returns the scoring method with the default applied
func (r MetricRule) EffectiveMethod() string {
	if r.Method == "" {
		return MethodBands
	}
	return r.Method
}

// SignalConfig holds classification thresholds
type SignalConfig struct {
	BuyThreshold  float64 `yaml:"buy_threshold" json:"buy_threshold"`
	SellThreshold float64 `yaml:"sell_threshold" json:"sell_threshold"`
	StrengthStep  float64 `yaml:"strength_step" json:"strength_step"` // 강도 1단계당 점수 거리
	StrongScore   float64 `yaml:"strong_score" json:"strong_score"`   // rationale: strong/attractive
	WeakScore     float64 `yaml:"weak_score" json:"weak_score"`       // rationale: weak/expensive
}

// Valuation holds TA aggregation settings
type Valuation struct {
	PercentileWindowYears int `yaml:"percentile_window_years" json:"percentile_window_years"`
	MinObservations       int `yaml:"min_observations" json:"min_observations"`
	MomentumShortDays     int `yaml:"momentum_short_days" json:"momentum_short_days"`
	MomentumLongDays      int `yaml:"momentum_long_days" json:"momentum_long_days"`
}

// Quality holds data quality settings
type Quality struct {
	LowConfidenceThreshold float64 `yaml:"low_confidence_threshold" json:"low_confidence_threshold"`
}

// FATAWeights returns the FA/TA split of a sector, falling back to the global split
func (c *Config) FATAWeights(sectorCode string) Split {
	if o, ok := c.Sectors[sectorCode]; ok && o.Split != nil {
		return *o.Split
	}
	return c.Weights.Split
}

// FAComponentWeights returns the FA component weights of a sector
func (c *Config) FAComponentWeights(sectorCode string) map[string]float64 {
	if o, ok := c.Sectors[sectorCode]; ok && o.FAComponents != nil {
		return copyWeights(o.FAComponents)
	}
	return copyWeights(c.Weights.FAComponents)
}

// TAComponentWeights returns the TA component weights of a sector
func (c *Config) TAComponentWeights(sectorCode string) map[string]float64 {
	if o, ok := c.Sectors[sectorCode]; ok && o.TAComponents != nil {
		return copyWeights(o.TAComponents)
	}
	return copyWeights(c.Weights.TAComponents)
}

// ScoringThresholds returns band definitions
func (c *Config) ScoringThresholds() Scoring {
	return c.Scoring
}

// SignalThresholds returns classification thresholds
func (c *Config) SignalThresholds() SignalConfig {
	return c.Signal
}

// ValuationSettings returns TA aggregation settings
func (c *Config) ValuationSettings() Valuation {
	return c.Valuation
}

func copyWeights(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Default returns the built-in configuration (config/scoring.yaml without sector overrides)
func Default() *Config {
	return &Config{
		Meta: Meta{ConfigID: "sector_default", Version: "1"},
		Weights: Weights{
			Split: Split{FA: 0.6, TA: 0.4},
			FAComponents: map[string]float64{
				ComponentGrowth:          0.3,
				ComponentProfitability:   0.3,
				ComponentEfficiency:      0.2,
				ComponentFinancialHealth: 0.2,
			},
			TAComponents: map[string]float64{
				ComponentValuation: 0.5,
				ComponentMomentum:  0.3,
				ComponentBreadth:   0.2,
			},
		},
		Sectors: map[string]SectorOverride{},
		Scoring: Scoring{
			MissingPolicy: MissingNeutral,
			BandScores:    BandScores{Excellent: 100, Good: 75, Neutral: 50, Poor: 25, Terrible: 0},
			FA: map[string][]MetricRule{
				ComponentGrowth: {
					higher("revenue_yoy", 0.20, 0.10, 0.05, 0.0),
					higher("net_profit_yoy", 0.20, 0.10, 0.05, 0.0),
				},
				ComponentProfitability: {
					higher("roe_ttm", 0.20, 0.15, 0.10, 0.05),
					higher("net_margin", 0.15, 0.10, 0.05, 0.0),
				},
				ComponentEfficiency: {
					higher("roa", 0.02, 0.0125, 0.005, 0.0),
					higher("asset_turnover", 1.0, 0.8, 0.6, 0.4),
				},
				ComponentFinancialHealth: {
					lower("debt_to_equity", 0.5, 1.0, 2.0, 3.0),
					higher("current_ratio", 2.0, 1.5, 1.0, 0.8),
				},
			},
			TA: map[string][]MetricRule{
				ComponentValuation: {
					{Metric: "pe_percentile_5y", Method: MethodInversePercentile},
					{Metric: "pb_percentile_5y", Method: MethodInversePercentile},
				},
				ComponentMomentum: {
					higher("return_3m", 0.10, 0.05, 0.0, -0.05),
					higher("return_1m", 0.05, 0.02, 0.0, -0.03),
				},
				ComponentBreadth: {
					higher("breadth", 0.7, 0.6, 0.5, 0.4),
				},
			},
		},
		Signal: SignalConfig{
			BuyThreshold:  70,
			SellThreshold: 30,
			StrengthStep:  5,
			StrongScore:   75,
			WeakScore:     40,
		},
		Valuation: Valuation{
			PercentileWindowYears: 5,
			MinObservations:       20,
			MomentumShortDays:     20,
			MomentumLongDays:      60,
		},
		Quality: Quality{LowConfidenceThreshold: 0.6},
	}
}

func higher(metric string, excellent, good, neutral, poor float64) MetricRule {
	return MetricRule{
		Metric:     metric,
		Method:     MethodBands,
		Direction:  DirectionHigher,
		Thresholds: Thresholds{Excellent: excellent, Good: good, Neutral: neutral, Poor: poor},
	}
}

func lower(metric string, excellent, good, neutral, poor float64) MetricRule {
	return MetricRule{
		Metric:     metric,
		Method:     MethodBands,
		Direction:  DirectionLower,
		Thresholds: Thresholds{Excellent: excellent, Good: good, Neutral: neutral, Poor: poor},
	}
}
