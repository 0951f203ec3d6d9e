package processor

import (
	"sort"
	"time"

	"github.com/wonny/sectorlens/internal/contracts"
	"github.com/wonny/sectorlens/internal/sector"
)

func inWindow(d time.Time, rc RunConfig) bool {
	if !rc.StartDate.IsZero() && d.Before(rc.StartDate) {
		return false
	}
	if !rc.EndDate.IsZero() && d.After(rc.EndDate) {
		return false
	}
	return true
}

func matchesReportDate(d time.Time, rc RunConfig) bool {
	return rc.ReportDate.IsZero() || d.Equal(rc.ReportDate)
}

func filterFundamentals(records []contracts.SectorFundamentalRecord, rc RunConfig) []contracts.SectorFundamentalRecord {
	out := make([]contracts.SectorFundamentalRecord, 0, len(records))
	for _, r := range records {
		if inWindow(r.ReportDate, rc) && matchesReportDate(r.ReportDate, rc) {
			out = append(out, r)
		}
	}
	return out
}

// filterValuations applies start/end only; report_date is an FA concept
func filterValuations(records []contracts.SectorValuationRecord, rc RunConfig) []contracts.SectorValuationRecord {
	out := make([]contracts.SectorValuationRecord, 0, len(records))
	for _, r := range records {
		if inWindow(r.Date, rc) {
			out = append(out, r)
		}
	}
	return out
}

func filterSignals(signals []contracts.SectorSignal, rc RunConfig) []contracts.SectorSignal {
	out := make([]contracts.SectorSignal, 0, len(signals))
	for _, s := range signals {
		if inWindow(s.Score.Period, rc) && matchesReportDate(s.Score.Period, rc) {
			out = append(out, s)
		}
	}
	return out
}

// summarize builds the per-sector quality lines and the exclusion lists.
// The quality line of a sector describes its latest output report_date.
func (p *Processor) summarize(result *RunResult, sectors *sector.Registry) {
	latest := make(map[string]*contracts.SectorFundamentalRecord)
	for i := range result.Fundamentals {
		r := &result.Fundamentals[i]
		if cur, ok := latest[r.SectorCode]; !ok || r.ReportDate.After(cur.ReportDate) {
			latest[r.SectorCode] = r
		}
	}

	tickers := make(map[string]bool)
	metrics := make(map[string]bool)
	sectorMetrics := make(map[string]map[string]bool)
	for _, is := range result.Issues {
		if !is.Excludes() {
			continue
		}
		switch is.Kind {
		case contracts.IssueUnknownTicker, contracts.IssueEntityMismatch, contracts.IssueUnknownEntityType:
			tickers[is.Ticker] = true
		case contracts.IssueUnknownMetric:
			metrics[is.MetricCode] = true
			if code, ok := sectors.SectorOf(is.Ticker); ok {
				if sectorMetrics[code] == nil {
					sectorMetrics[code] = make(map[string]bool)
				}
				sectorMetrics[code][is.MetricCode] = true
			}
		}
	}
	result.ExcludedTickers = sortedSet(tickers)
	result.ExcludedMetrics = sortedSet(metrics)

	threshold := p.cfg.Quality.LowConfidenceThreshold
	for _, code := range sectors.Sectors() {
		r, ok := latest[code]
		if !ok {
			continue
		}
		q := contracts.SectorQuality{
			SectorCode:       code,
			LatestReportDate: r.ReportDate,
			DataQualityScore: r.DataQualityScore,
			TickerCount:      r.TickerCount,
			ExcludedMetrics:  sortedSet(sectorMetrics[code]),
		}
		result.Summary = append(result.Summary, q)

		if q.IsLowConfidence(threshold) {
			result.LowConfidence = append(result.LowConfidence, code)
			p.logger.WithFields(map[string]interface{}{
				"sector":             code,
				"data_quality_score": q.DataQualityScore,
				"threshold":          threshold,
			}).Warn("Low confidence sector")
		}
	}
}

func sortedSet(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
