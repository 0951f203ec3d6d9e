package contracts

import "time"

// SectorFundamentalRecord is the FA aggregate of one sector-period.
// Maps hold only non-null values; a missing key means null.
// ⭐ SSOT: FA Aggregator → FA Scorer / 출력 테이블
type SectorFundamentalRecord struct {
	SectorCode       string             `json:"sector_code"`
	ReportDate       time.Time          `json:"report_date"`
	TickerCount      int                `json:"ticker_count"`
	EntityTypes      []EntityType       `json:"entity_types"`
	Absolute         map[Field]float64  `json:"absolute"`
	Ratios           map[string]float64 `json:"ratios"`
	Growth           map[string]float64 `json:"growth"`
	DataQualityScore float64            `json:"data_quality_score"`
}

// Metric looks a name up in ratios, growth and absolute metrics (in that order)
func (r *SectorFundamentalRecord) Metric(name string) (float64, bool) {
	if v, ok := r.Ratios[name]; ok {
		return v, true
	}
	if v, ok := r.Growth[name]; ok {
		return v, true
	}
	v, ok := r.Absolute[Field(name)]
	return v, ok
}

// IsHomogeneous reports whether all constituents share one entity type
func (r *SectorFundamentalRecord) IsHomogeneous() bool {
	return len(r.EntityTypes) == 1
}

// Distribution is the cross-sectional spread of per-ticker multiples at one date
type Distribution struct {
	Count  int      `json:"count"`
	Median *float64 `json:"median,omitempty"`
	Mean   *float64 `json:"mean,omitempty"`
	StdDev *float64 `json:"std_dev,omitempty"`
	P25    *float64 `json:"p25,omitempty"`
	P75    *float64 `json:"p75,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// SectorValuationRecord is the TA aggregate of one sector-date
// ⭐ SSOT: TA Aggregator → TA Scorer / 출력 테이블
type SectorValuationRecord struct {
	SectorCode string    `json:"sector_code"`
	Date       time.Time `json:"date"`

	SectorPE *float64 `json:"sector_pe,omitempty"`
	SectorPB *float64 `json:"sector_pb,omitempty"`
	SectorPS *float64 `json:"sector_ps,omitempty"`

	PEDistribution Distribution `json:"pe_distribution"`
	PBDistribution Distribution `json:"pb_distribution"`
	PSDistribution Distribution `json:"ps_distribution"`

	PEPercentile5Y *float64 `json:"pe_percentile_5y,omitempty"`
	PBPercentile5Y *float64 `json:"pb_percentile_5y,omitempty"`
	PSPercentile5Y *float64 `json:"ps_percentile_5y,omitempty"`

	TickerCount    int     `json:"ticker_count"`
	TotalMarketCap float64 `json:"total_market_cap"`

	// 모멘텀/브레드스 (시총 가중 가격 수익률)
	Return1M *float64 `json:"return_1m,omitempty"`
	Return3M *float64 `json:"return_3m,omitempty"`
	Breadth  *float64 `json:"breadth,omitempty"`
}

// Valuation metric names used by the TA scorer
const (
	MetricSectorPE       = "sector_pe"
	MetricSectorPB       = "sector_pb"
	MetricSectorPS       = "sector_ps"
	MetricPEPercentile5Y = "pe_percentile_5y"
	MetricPBPercentile5Y = "pb_percentile_5y"
	MetricPSPercentile5Y = "ps_percentile_5y"
	MetricReturn1M       = "return_1m"
	MetricReturn3M       = "return_3m"
	MetricBreadth        = "breadth"
)

// Metric looks a valuation metric up by name
func (r *SectorValuationRecord) Metric(name string) (float64, bool) {
	var v *float64
	switch name {
	case MetricSectorPE:
		v = r.SectorPE
	case MetricSectorPB:
		v = r.SectorPB
	case MetricSectorPS:
		v = r.SectorPS
	case MetricPEPercentile5Y:
		v = r.PEPercentile5Y
	case MetricPBPercentile5Y:
		v = r.PBPercentile5Y
	case MetricPSPercentile5Y:
		v = r.PSPercentile5Y
	case MetricReturn1M:
		v = r.Return1M
	case MetricReturn3M:
		v = r.Return3M
	case MetricBreadth:
		v = r.Breadth
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}
