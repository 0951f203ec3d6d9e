// Package fundamental aggregates canonical ticker records into sector fundamentals.
package fundamental

import (
	"sort"
	"time"

	"github.com/wonny/sectorlens/internal/contracts"
	"github.com/wonny/sectorlens/internal/entity"
	"github.com/wonny/sectorlens/internal/sector"
	"github.com/wonny/sectorlens/pkg/logger"
)

// Aggregator builds SectorFundamentalRecords
// ⭐ SSOT: 섹터 합산 → 비율/성장률 파생 (티커 비율 평균 금지)
type Aggregator struct {
	entities *entity.Registry
	sectors  *sector.Registry
	logger   *logger.Logger
}

// NewAggregator creates a new FA aggregator
func NewAggregator(entities *entity.Registry, sectors *sector.Registry, log *logger.Logger) *Aggregator {
	return &Aggregator{
		entities: entities,
		sectors:  sectors,
		logger:   log.WithComponent("fa_aggregator"),
	}
}

// Result is the output of one aggregation run
type Result struct {
	Records []contracts.SectorFundamentalRecord

	// Issues lists constituents excluded by the aggregator itself (unknown ticker, entity mismatch)
	Issues []contracts.MappingIssue

	// Violations holds one FrequencyViolation per sector whose TTM path was disabled
	Violations []error
}

type periodKey struct {
	sector string
	date   time.Time
}

// sectorPeriod is the working state of one (sector, report_date)
type sectorPeriod struct {
	date      time.Time
	records   []contracts.CanonicalRecord
	unmapped  int
	frequency contracts.Frequency
}

// Aggregate sums canonical records per (sector_code, report_date).
// mappingIssues are the adapter's dropped rows; they lower the quality score of the
// owning sector-period. Output is ordered by (sector_code, report_date).
func (a *Aggregator) Aggregate(records []contracts.CanonicalRecord, mappingIssues []contracts.MappingIssue) *Result {
	result := &Result{}
	periods := make(map[periodKey]*sectorPeriod)

	for _, rec := range records {
		code, ok := a.sectors.SectorOf(rec.Ticker)
		if !ok {
			result.Issues = append(result.Issues, contracts.MappingIssue{
				Kind:       contracts.IssueUnknownTicker,
				Ticker:     rec.Ticker,
				ReportDate: rec.ReportDate,
				Detail:     "no sector mapping",
			})
			continue
		}

		if registered, _ := a.sectors.EntityTypeOf(rec.Ticker); registered != rec.EntityType {
			result.Issues = append(result.Issues, contracts.MappingIssue{
				Kind:       contracts.IssueEntityMismatch,
				Ticker:     rec.Ticker,
				ReportDate: rec.ReportDate,
				Detail:     "statement " + string(rec.EntityType) + " vs registry " + string(registered),
			})
			// 버려진 값 하나당 매핑 실패 1건으로 품질 점수에 반영
			dropped := len(rec.Fields)
			if dropped == 0 {
				dropped = 1
			}
			periodFor(periods, code, rec.ReportDate).unmapped += dropped
			continue
		}

		p := periodFor(periods, code, rec.ReportDate)
		p.records = append(p.records, rec)
		if !rec.Frequency.IsQuarterly() {
			p.frequency = rec.Frequency
		}
	}

	// 매핑 실패 행은 해당 섹터-기간의 품질 점수 분모에 포함
	for _, is := range mappingIssues {
		if !is.Excludes() {
			continue
		}
		code, ok := a.sectors.SectorOf(is.Ticker)
		if !ok {
			continue
		}
		p := periodFor(periods, code, is.ReportDate)
		p.unmapped++
	}

	bySector := make(map[string][]*sectorPeriod)
	for key, p := range periods {
		bySector[key.sector] = append(bySector[key.sector], p)
	}

	codes := make([]string, 0, len(bySector))
	for code := range bySector {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		ps := bySector[code]
		sort.Slice(ps, func(i, j int) bool { return ps[i].date.Before(ps[j].date) })

		sectorRecords, violation := a.aggregateSector(code, ps)
		if violation != nil {
			result.Violations = append(result.Violations, violation)
		}
		result.Records = append(result.Records, sectorRecords...)
	}

	a.logger.WithFields(map[string]interface{}{
		"sectors":    len(codes),
		"records":    len(result.Records),
		"excluded":   len(result.Issues),
		"violations": len(result.Violations),
	}).Info("FA aggregation completed")

	return result
}

func periodFor(periods map[periodKey]*sectorPeriod, code string, date time.Time) *sectorPeriod {
	key := periodKey{sector: code, date: date}
	p, ok := periods[key]
	if !ok {
		p = &sectorPeriod{date: date}
		periods[key] = p
	}
	return p
}

// aggregateSector builds every period of one sector. Periods must be sorted by date.
func (a *Aggregator) aggregateSector(code string, periods []*sectorPeriod) ([]contracts.SectorFundamentalRecord, error) {
	out := make([]contracts.SectorFundamentalRecord, 0, len(periods))
	for _, p := range periods {
		// 매핑 실패 행만 있고 구성 종목 레코드가 없는 기간은 출력하지 않음
		if len(p.records) == 0 {
			continue
		}
		out = append(out, a.sumPeriod(code, p))
	}

	violation := a.applyTTM(code, periods, out)
	for i := range out {
		computeRatios(&out[i], a.logger)
	}
	applyGrowth(out)

	return out, violation
}

// sumPeriod sums the fields shared by every present entity type
func (a *Aggregator) sumPeriod(code string, p *sectorPeriod) contracts.SectorFundamentalRecord {
	types := make([]contracts.EntityType, 0, len(p.records))
	for _, r := range p.records {
		types = append(types, r.EntityType)
	}
	fields := a.entities.SharedFields(types)

	absolute := make(map[contracts.Field]float64)
	present := 0
	for _, f := range fields {
		var sum float64
		var seen bool
		for _, r := range p.records {
			if v, ok := r.Get(f); ok {
				sum += v
				seen = true
				present++
			}
		}
		// 존재하는 값만 합산, 0으로 채우지 않음
		if seen {
			absolute[f] = sum
		}
	}

	expected := len(p.records)*len(fields) + p.unmapped
	quality := 0.0
	if expected > 0 {
		quality = float64(present) / float64(expected)
	}

	return contracts.SectorFundamentalRecord{
		SectorCode:       code,
		ReportDate:       p.date,
		TickerCount:      len(p.records),
		EntityTypes:      distinctTypes(types),
		Absolute:         absolute,
		Ratios:           make(map[string]float64),
		Growth:           make(map[string]float64),
		DataQualityScore: quality,
	}
}

func distinctTypes(types []contracts.EntityType) []contracts.EntityType {
	seen := make(map[contracts.EntityType]bool)
	var out []contracts.EntityType
	for _, et := range contracts.AllEntityTypes() {
		for _, t := range types {
			if t == et && !seen[et] {
				seen[et] = true
				out = append(out, et)
			}
		}
	}
	return out
}

// applyTTM fills ttm_revenue / ttm_net_profit. Windows with a missing quarter stay null;
// a FrequencyViolation (non-quarterly row) disables TTM for the whole sector.
func (a *Aggregator) applyTTM(code string, periods []*sectorPeriod, records []contracts.SectorFundamentalRecord) error {
	freq := make(map[time.Time]contracts.Frequency, len(periods))
	for _, p := range periods {
		freq[p.date] = p.frequency
	}

	series := func(f contracts.Field) []entity.QuarterlyValue {
		var s []entity.QuarterlyValue
		for _, r := range records {
			if v, ok := r.Absolute[f]; ok {
				s = append(s, entity.QuarterlyValue{ReportDate: r.ReportDate, Frequency: freq[r.ReportDate], Value: v})
			}
		}
		return s
	}

	targets := []struct {
		name  string
		field contracts.Field
	}{
		{contracts.TTMRevenue, contracts.FieldRevenue},
		{contracts.TTMNetProfit, contracts.FieldNetProfit},
	}

	computed := make([]map[string]float64, len(records))
	for i := range computed {
		computed[i] = make(map[string]float64)
	}

	for _, t := range targets {
		s := series(t.field)
		for i, r := range records {
			if _, ok := r.Absolute[t.field]; !ok {
				continue
			}
			sum, ok, err := entity.TrailingSum(code, s, r.ReportDate, 4)
			if err != nil {
				a.logger.WithSector(code, time.Time{}).WithError(err).Warn("TTM disabled for sector")
				return err
			}
			if ok {
				computed[i][t.name] = sum
			}
		}
	}

	for i := range records {
		for k, v := range computed[i] {
			records[i].Growth[k] = v
		}
	}
	return nil
}
