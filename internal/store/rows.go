// Package store persists the output tables (parquet files, optional postgres).
package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wonny/sectorlens/internal/contracts"
)

const dateLayout = "2006-01-02"

// FundamentalRow is one sector_fundamentals row.
// Headline columns are flattened; the full maps are kept as JSON.
type FundamentalRow struct {
	SectorCode       string  `json:"sector_code" parquet:"name=sector_code, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ReportDate       string  `json:"report_date" parquet:"name=report_date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	TickerCount      int32   `json:"ticker_count" parquet:"name=ticker_count, type=INT32"`
	EntityTypes      string  `json:"entity_types" parquet:"name=entity_types, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DataQualityScore float64 `json:"data_quality_score" parquet:"name=data_quality_score, type=DOUBLE"`

	Revenue          *float64 `json:"revenue" parquet:"name=revenue, type=DOUBLE, repetitiontype=OPTIONAL"`
	NetProfit        *float64 `json:"net_profit" parquet:"name=net_profit, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalAssets      *float64 `json:"total_assets" parquet:"name=total_assets, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalEquity      *float64 `json:"total_equity" parquet:"name=total_equity, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalLiabilities *float64 `json:"total_liabilities" parquet:"name=total_liabilities, type=DOUBLE, repetitiontype=OPTIONAL"`

	ROE          *float64 `json:"roe" parquet:"name=roe, type=DOUBLE, repetitiontype=OPTIONAL"`
	ROA          *float64 `json:"roa" parquet:"name=roa, type=DOUBLE, repetitiontype=OPTIONAL"`
	NetMargin    *float64 `json:"net_margin" parquet:"name=net_margin, type=DOUBLE, repetitiontype=OPTIONAL"`
	DebtToEquity *float64 `json:"debt_to_equity" parquet:"name=debt_to_equity, type=DOUBLE, repetitiontype=OPTIONAL"`
	ROETTM       *float64 `json:"roe_ttm" parquet:"name=roe_ttm, type=DOUBLE, repetitiontype=OPTIONAL"`

	RevenueYoY   *float64 `json:"revenue_yoy" parquet:"name=revenue_yoy, type=DOUBLE, repetitiontype=OPTIONAL"`
	NetProfitYoY *float64 `json:"net_profit_yoy" parquet:"name=net_profit_yoy, type=DOUBLE, repetitiontype=OPTIONAL"`
	TTMRevenue   *float64 `json:"ttm_revenue" parquet:"name=ttm_revenue, type=DOUBLE, repetitiontype=OPTIONAL"`
	TTMNetProfit *float64 `json:"ttm_net_profit" parquet:"name=ttm_net_profit, type=DOUBLE, repetitiontype=OPTIONAL"`

	AbsoluteJSON string `json:"absolute" parquet:"name=absolute_json, type=BYTE_ARRAY, convertedtype=UTF8"`
	RatiosJSON   string `json:"ratios" parquet:"name=ratios_json, type=BYTE_ARRAY, convertedtype=UTF8"`
	GrowthJSON   string `json:"growth" parquet:"name=growth_json, type=BYTE_ARRAY, convertedtype=UTF8"`

	ConfigHash string `json:"config_hash" parquet:"name=config_hash, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// ValuationRow is one sector_valuations row
type ValuationRow struct {
	SectorCode string `json:"sector_code" parquet:"name=sector_code, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Date       string `json:"date" parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`

	SectorPE *float64 `json:"sector_pe" parquet:"name=sector_pe, type=DOUBLE, repetitiontype=OPTIONAL"`
	SectorPB *float64 `json:"sector_pb" parquet:"name=sector_pb, type=DOUBLE, repetitiontype=OPTIONAL"`
	SectorPS *float64 `json:"sector_ps" parquet:"name=sector_ps, type=DOUBLE, repetitiontype=OPTIONAL"`

	PECount  int32    `json:"pe_count" parquet:"name=pe_count, type=INT32"`
	PEMedian *float64 `json:"pe_median" parquet:"name=pe_median, type=DOUBLE, repetitiontype=OPTIONAL"`
	PEMean   *float64 `json:"pe_mean" parquet:"name=pe_mean, type=DOUBLE, repetitiontype=OPTIONAL"`
	PEStdDev *float64 `json:"pe_std" parquet:"name=pe_std, type=DOUBLE, repetitiontype=OPTIONAL"`
	PEP25    *float64 `json:"pe_p25" parquet:"name=pe_p25, type=DOUBLE, repetitiontype=OPTIONAL"`
	PEP75    *float64 `json:"pe_p75" parquet:"name=pe_p75, type=DOUBLE, repetitiontype=OPTIONAL"`
	PEMin    *float64 `json:"pe_min" parquet:"name=pe_min, type=DOUBLE, repetitiontype=OPTIONAL"`
	PEMax    *float64 `json:"pe_max" parquet:"name=pe_max, type=DOUBLE, repetitiontype=OPTIONAL"`

	PBCount  int32    `json:"pb_count" parquet:"name=pb_count, type=INT32"`
	PBMedian *float64 `json:"pb_median" parquet:"name=pb_median, type=DOUBLE, repetitiontype=OPTIONAL"`
	PBMean   *float64 `json:"pb_mean" parquet:"name=pb_mean, type=DOUBLE, repetitiontype=OPTIONAL"`
	PBStdDev *float64 `json:"pb_std" parquet:"name=pb_std, type=DOUBLE, repetitiontype=OPTIONAL"`
	PBP25    *float64 `json:"pb_p25" parquet:"name=pb_p25, type=DOUBLE, repetitiontype=OPTIONAL"`
	PBP75    *float64 `json:"pb_p75" parquet:"name=pb_p75, type=DOUBLE, repetitiontype=OPTIONAL"`
	PBMin    *float64 `json:"pb_min" parquet:"name=pb_min, type=DOUBLE, repetitiontype=OPTIONAL"`
	PBMax    *float64 `json:"pb_max" parquet:"name=pb_max, type=DOUBLE, repetitiontype=OPTIONAL"`

	PSCount  int32    `json:"ps_count" parquet:"name=ps_count, type=INT32"`
	PSMedian *float64 `json:"ps_median" parquet:"name=ps_median, type=DOUBLE, repetitiontype=OPTIONAL"`
	PSMean   *float64 `json:"ps_mean" parquet:"name=ps_mean, type=DOUBLE, repetitiontype=OPTIONAL"`
	PSStdDev *float64 `json:"ps_std" parquet:"name=ps_std, type=DOUBLE, repetitiontype=OPTIONAL"`
	PSP25    *float64 `json:"ps_p25" parquet:"name=ps_p25, type=DOUBLE, repetitiontype=OPTIONAL"`
	PSP75    *float64 `json:"ps_p75" parquet:"name=ps_p75, type=DOUBLE, repetitiontype=OPTIONAL"`
	PSMin    *float64 `json:"ps_min" parquet:"name=ps_min, type=DOUBLE, repetitiontype=OPTIONAL"`
	PSMax    *float64 `json:"ps_max" parquet:"name=ps_max, type=DOUBLE, repetitiontype=OPTIONAL"`

	PEPercentile5Y *float64 `json:"pe_percentile_5y" parquet:"name=pe_percentile_5y, type=DOUBLE, repetitiontype=OPTIONAL"`
	PBPercentile5Y *float64 `json:"pb_percentile_5y" parquet:"name=pb_percentile_5y, type=DOUBLE, repetitiontype=OPTIONAL"`
	PSPercentile5Y *float64 `json:"ps_percentile_5y" parquet:"name=ps_percentile_5y, type=DOUBLE, repetitiontype=OPTIONAL"`

	TickerCount    int32   `json:"ticker_count" parquet:"name=ticker_count, type=INT32"`
	TotalMarketCap float64 `json:"total_market_cap" parquet:"name=total_market_cap, type=DOUBLE"`

	Return1M *float64 `json:"return_1m" parquet:"name=return_1m, type=DOUBLE, repetitiontype=OPTIONAL"`
	Return3M *float64 `json:"return_3m" parquet:"name=return_3m, type=DOUBLE, repetitiontype=OPTIONAL"`
	Breadth  *float64 `json:"breadth" parquet:"name=breadth, type=DOUBLE, repetitiontype=OPTIONAL"`

	ConfigHash string `json:"config_hash" parquet:"name=config_hash, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// SignalRow is one sector_signals row (ScoreRecord + Signal)
type SignalRow struct {
	SectorCode    string   `json:"sector_code" parquet:"name=sector_code, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Period        string   `json:"period" parquet:"name=period, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ValuationDate *string  `json:"valuation_date" parquet:"name=valuation_date, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	FATotalScore  *float64 `json:"fa_total_score" parquet:"name=fa_total_score, type=DOUBLE, repetitiontype=OPTIONAL"`
	TATotalScore  *float64 `json:"ta_total_score" parquet:"name=ta_total_score, type=DOUBLE, repetitiontype=OPTIONAL"`
	CombinedScore float64  `json:"combined_score" parquet:"name=combined_score, type=DOUBLE"`
	FAWeight      float64  `json:"fa_weight" parquet:"name=fa_weight, type=DOUBLE"`
	TAWeight      float64  `json:"ta_weight" parquet:"name=ta_weight, type=DOUBLE"`

	FAComponentsJSON string `json:"fa_components" parquet:"name=fa_components_json, type=BYTE_ARRAY, convertedtype=UTF8"`
	TAComponentsJSON string `json:"ta_components" parquet:"name=ta_components_json, type=BYTE_ARRAY, convertedtype=UTF8"`

	Signal         string `json:"signal" parquet:"name=signal, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SignalStrength int32  `json:"signal_strength" parquet:"name=signal_strength, type=INT32"`
	Rationale      string `json:"rationale" parquet:"name=rationale, type=BYTE_ARRAY, convertedtype=UTF8"`

	ConfigHash string `json:"config_hash" parquet:"name=config_hash, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// NewFundamentalRow flattens a fundamental record
func NewFundamentalRow(r *contracts.SectorFundamentalRecord, configHash string) (FundamentalRow, error) {
	absolute := make(map[string]float64, len(r.Absolute))
	for f, v := range r.Absolute {
		absolute[string(f)] = v
	}

	absJSON, err := encodeMap(absolute)
	if err != nil {
		return FundamentalRow{}, fmt.Errorf("absolute: %w", err)
	}
	ratiosJSON, err := encodeMap(r.Ratios)
	if err != nil {
		return FundamentalRow{}, fmt.Errorf("ratios: %w", err)
	}
	growthJSON, err := encodeMap(r.Growth)
	if err != nil {
		return FundamentalRow{}, fmt.Errorf("growth: %w", err)
	}

	types := make([]string, len(r.EntityTypes))
	for i, et := range r.EntityTypes {
		types[i] = string(et)
	}

	return FundamentalRow{
		SectorCode:       r.SectorCode,
		ReportDate:       r.ReportDate.Format(dateLayout),
		TickerCount:      int32(r.TickerCount),
		EntityTypes:      strings.Join(types, ","),
		DataQualityScore: r.DataQualityScore,

		Revenue:          field(r.Absolute, contracts.FieldRevenue),
		NetProfit:        field(r.Absolute, contracts.FieldNetProfit),
		TotalAssets:      field(r.Absolute, contracts.FieldTotalAssets),
		TotalEquity:      field(r.Absolute, contracts.FieldTotalEquity),
		TotalLiabilities: field(r.Absolute, contracts.FieldTotalLiabilities),

		ROE:          lookup(r.Ratios, contracts.RatioROE),
		ROA:          lookup(r.Ratios, contracts.RatioROA),
		NetMargin:    lookup(r.Ratios, contracts.RatioNetMargin),
		DebtToEquity: lookup(r.Ratios, contracts.RatioDebtToEquity),
		ROETTM:       lookup(r.Ratios, contracts.RatioROETTM),

		RevenueYoY:   lookup(r.Growth, contracts.GrowthRevenueYoY),
		NetProfitYoY: lookup(r.Growth, contracts.GrowthNetProfitYoY),
		TTMRevenue:   lookup(r.Growth, contracts.TTMRevenue),
		TTMNetProfit: lookup(r.Growth, contracts.TTMNetProfit),

		AbsoluteJSON: absJSON,
		RatiosJSON:   ratiosJSON,
		GrowthJSON:   growthJSON,
		ConfigHash:   configHash,
	}, nil
}

// NewValuationRow flattens a valuation record
func NewValuationRow(r *contracts.SectorValuationRecord, configHash string) ValuationRow {
	return ValuationRow{
		SectorCode: r.SectorCode,
		Date:       r.Date.Format(dateLayout),

		SectorPE: r.SectorPE,
		SectorPB: r.SectorPB,
		SectorPS: r.SectorPS,

		PECount:  int32(r.PEDistribution.Count),
		PEMedian: r.PEDistribution.Median,
		PEMean:   r.PEDistribution.Mean,
		PEStdDev: r.PEDistribution.StdDev,
		PEP25:    r.PEDistribution.P25,
		PEP75:    r.PEDistribution.P75,
		PEMin:    r.PEDistribution.Min,
		PEMax:    r.PEDistribution.Max,

		PBCount:  int32(r.PBDistribution.Count),
		PBMedian: r.PBDistribution.Median,
		PBMean:   r.PBDistribution.Mean,
		PBStdDev: r.PBDistribution.StdDev,
		PBP25:    r.PBDistribution.P25,
		PBP75:    r.PBDistribution.P75,
		PBMin:    r.PBDistribution.Min,
		PBMax:    r.PBDistribution.Max,

		PSCount:  int32(r.PSDistribution.Count),
		PSMedian: r.PSDistribution.Median,
		PSMean:   r.PSDistribution.Mean,
		PSStdDev: r.PSDistribution.StdDev,
		PSP25:    r.PSDistribution.P25,
		PSP75:    r.PSDistribution.P75,
		PSMin:    r.PSDistribution.Min,
		PSMax:    r.PSDistribution.Max,

		PEPercentile5Y: r.PEPercentile5Y,
		PBPercentile5Y: r.PBPercentile5Y,
		PSPercentile5Y: r.PSPercentile5Y,

		TickerCount:    int32(r.TickerCount),
		TotalMarketCap: r.TotalMarketCap,

		Return1M: r.Return1M,
		Return3M: r.Return3M,
		Breadth:  r.Breadth,

		ConfigHash: configHash,
	}
}

// NewSignalRow flattens a score record and its signal
func NewSignalRow(s *contracts.SectorSignal, configHash string) (SignalRow, error) {
	faJSON, err := encodeMap(s.Score.FAComponents)
	if err != nil {
		return SignalRow{}, fmt.Errorf("fa components: %w", err)
	}
	taJSON, err := encodeMap(s.Score.TAComponents)
	if err != nil {
		return SignalRow{}, fmt.Errorf("ta components: %w", err)
	}

	var valuationDate *string
	if s.Score.ValuationDate != nil {
		d := s.Score.ValuationDate.Format(dateLayout)
		valuationDate = &d
	}

	return SignalRow{
		SectorCode:       s.Score.SectorCode,
		Period:           s.Score.Period.Format(dateLayout),
		ValuationDate:    valuationDate,
		FATotalScore:     s.Score.FATotalScore,
		TATotalScore:     s.Score.TATotalScore,
		CombinedScore:    s.Score.CombinedScore,
		FAWeight:         s.Score.FAWeight,
		TAWeight:         s.Score.TAWeight,
		FAComponentsJSON: faJSON,
		TAComponentsJSON: taJSON,
		Signal:           string(s.Signal.Signal),
		SignalStrength:   int32(s.Signal.SignalStrength),
		Rationale:        s.Signal.Rationale,
		ConfigHash:       configHash,
	}, nil
}

// encodeMap renders a map as JSON; nil becomes "{}".
// encoding/json sorts map keys, so output is stable.
func encodeMap(m map[string]float64) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func lookup(m map[string]float64, key string) *float64 {
	if v, ok := m[key]; ok {
		return contracts.Float(v)
	}
	return nil
}

func field(m map[contracts.Field]float64, f contracts.Field) *float64 {
	if v, ok := m[f]; ok {
		return contracts.Float(v)
	}
	return nil
}
