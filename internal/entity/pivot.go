package entity

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wonny/sectorlens/internal/contracts"
)

type recordKey struct {
	ticker string
	date   time.Time
}

type recordBuild struct {
	record contracts.CanonicalRecord
	codes  map[contracts.Field]string
}

// Pivot turns long-format observations into one CanonicalRecord per (ticker, report_date).
// Rows are processed in input order; a repeated (ticker, date, field) keeps the last value.
// Unknown entity types and codes are dropped and reported as issues.
func (r *Registry) Pivot(observations []contracts.MetricObservation) ([]contracts.CanonicalRecord, []contracts.MappingIssue) {
	builds := make(map[recordKey]*recordBuild)
	var issues []contracts.MappingIssue

	for _, obs := range observations {
		adapter, ok := r.For(obs.EntityType)
		if !ok {
			issues = append(issues, contracts.MappingIssue{
				Kind:       contracts.IssueUnknownEntityType,
				Ticker:     obs.Ticker,
				MetricCode: obs.MetricCode,
				ReportDate: obs.ReportDate,
				Detail:     fmt.Sprintf("entity_type=%q", obs.EntityType),
			})
			continue
		}

		field, ok := adapter.Map(obs.MetricCode)
		if !ok {
			issues = append(issues, contracts.MappingIssue{
				Kind:       contracts.IssueUnknownMetric,
				Ticker:     obs.Ticker,
				MetricCode: obs.MetricCode,
				ReportDate: obs.ReportDate,
				Detail:     fmt.Sprintf("no %s mapping", obs.EntityType),
			})
			continue
		}

		if math.IsNaN(obs.Value) || math.IsInf(obs.Value, 0) {
			issues = append(issues, contracts.MappingIssue{
				Kind:       contracts.IssueUnknownMetric,
				Ticker:     obs.Ticker,
				MetricCode: obs.MetricCode,
				ReportDate: obs.ReportDate,
				Detail:     "non-finite value",
			})
			continue
		}

		key := recordKey{ticker: obs.Ticker, date: obs.ReportDate}
		b, exists := builds[key]
		if !exists {
			b = &recordBuild{
				record: contracts.CanonicalRecord{
					Ticker:     obs.Ticker,
					ReportDate: obs.ReportDate,
					EntityType: obs.EntityType,
					Frequency:  obs.Frequency,
					Fields:     make(map[contracts.Field]float64),
				},
				codes: make(map[contracts.Field]string),
			}
			builds[key] = b
		}

		if b.record.EntityType != obs.EntityType {
			issues = append(issues, contracts.MappingIssue{
				Kind:       contracts.IssueEntityMismatch,
				Ticker:     obs.Ticker,
				MetricCode: obs.MetricCode,
				ReportDate: obs.ReportDate,
				Detail:     fmt.Sprintf("%s row in %s record", obs.EntityType, b.record.EntityType),
			})
			continue
		}

		// 비분기 행이 하나라도 섞이면 레코드 전체를 비분기로 표시 (TTM 가드가 차단)
		if !obs.Frequency.IsQuarterly() {
			b.record.Frequency = obs.Frequency
		}

		if _, dup := b.codes[field]; dup {
			issues = append(issues, contracts.MappingIssue{
				Kind:       contracts.IssueDuplicateMetric,
				Ticker:     obs.Ticker,
				MetricCode: obs.MetricCode,
				ReportDate: obs.ReportDate,
				Detail:     fmt.Sprintf("%s repeated, last value wins", field),
			})
		}
		b.codes[field] = obs.MetricCode
		b.record.Fields[field] = NormalizeSign(field, obs.Value)
	}

	records := make([]contracts.CanonicalRecord, 0, len(builds))
	for _, b := range builds {
		records = append(records, b.record)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Ticker != records[j].Ticker {
			return records[i].Ticker < records[j].Ticker
		}
		return records[i].ReportDate.Before(records[j].ReportDate)
	})

	return records, issues
}

// NormalizeSign stores expense fields as negative amounts regardless of the source convention
func NormalizeSign(f contracts.Field, v float64) float64 {
	if f.IsExpense() {
		return -math.Abs(v)
	}
	return v
}
