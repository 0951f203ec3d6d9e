package contracts

import "time"

// MetricObservation is one raw long-format statement row
// ⭐ SSOT: 입력 피드 → Entity Metric Adapter
type MetricObservation struct {
	Ticker     string     `json:"ticker"`
	ReportDate time.Time  `json:"report_date"`
	MetricCode string     `json:"metric_code"`
	Value      float64    `json:"value"`
	EntityType EntityType `json:"entity_type"`
	Frequency  Frequency  `json:"frequency,omitempty"`
}

// CanonicalRecord is the wide form of one ticker-period after mapping
type CanonicalRecord struct {
	Ticker     string            `json:"ticker"`
	ReportDate time.Time         `json:"report_date"`
	EntityType EntityType        `json:"entity_type"`
	Frequency  Frequency         `json:"frequency,omitempty"`
	Fields     map[Field]float64 `json:"fields"`
}

// Get returns a field value and whether it was reported
func (r *CanonicalRecord) Get(f Field) (float64, bool) {
	v, ok := r.Fields[f]
	return v, ok
}

// SectorMapping assigns a ticker to exactly one sector
type SectorMapping struct {
	Ticker     string     `json:"ticker"`
	SectorCode string     `json:"sector_code"`
	EntityType EntityType `json:"entity_type"`
}

// MarketObservation is one daily market row
type MarketObservation struct {
	Ticker     string    `json:"ticker"`
	Date       time.Time `json:"date"`
	ClosePrice float64   `json:"close_price"`
	MarketCap  float64   `json:"market_cap"`
	Volume     float64   `json:"volume"`
}

// ValuationObservation is one daily/derived valuation row (nil = not reported)
type ValuationObservation struct {
	Ticker      string    `json:"ticker"`
	Date        time.Time `json:"date"`
	PE          *float64  `json:"pe,omitempty"`
	PB          *float64  `json:"pb,omitempty"`
	BookValue   *float64  `json:"book_value,omitempty"`
	TTMEarnings *float64  `json:"ttm_earnings,omitempty"`
	TTMRevenue  *float64  `json:"ttm_revenue,omitempty"`
}

// SectorQuality is the per-sector line of the final run summary
// ⭐ SSOT: 섹터별 데이터 품질 요약 (최종 출력)
type SectorQuality struct {
	SectorCode       string    `json:"sector_code"`
	LatestReportDate time.Time `json:"latest_report_date"`
	DataQualityScore float64   `json:"data_quality_score"`
	TickerCount      int       `json:"ticker_count"`
	ExcludedMetrics  []string  `json:"excluded_metrics,omitempty"`
}

// IsLowConfidence flags records below the given quality threshold
func (q *SectorQuality) IsLowConfidence(threshold float64) bool {
	return q.DataQualityScore < threshold
}

// Float returns a pointer to v, used for nullable output values
func Float(v float64) *float64 {
	return &v
}
