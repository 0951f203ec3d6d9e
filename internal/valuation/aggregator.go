// Package valuation builds market-cap weighted sector multiples, their
// cross-sectional distribution, historical percentiles and price momentum.
package valuation

import (
	"sort"
	"time"

	"github.com/wonny/sectorlens/internal/contracts"
	"github.com/wonny/sectorlens/internal/scoringconfig"
	"github.com/wonny/sectorlens/internal/sector"
	"github.com/wonny/sectorlens/pkg/logger"
)

// Aggregator builds SectorValuationRecords
// ⭐ SSOT: 시총 가중 섹터 멀티플 = Σ시총 / Σ분모 (분모 ≤ 0 종목은 양쪽 합에서 제외)
type Aggregator struct {
	sectors  *sector.Registry
	settings scoringconfig.Valuation
	logger   *logger.Logger
}

// NewAggregator creates a new TA aggregator
func NewAggregator(sectors *sector.Registry, settings scoringconfig.Valuation, log *logger.Logger) *Aggregator {
	return &Aggregator{
		sectors:  sectors,
		settings: settings,
		logger:   log.WithComponent("ta_aggregator"),
	}
}

// Result is the output of one aggregation run
type Result struct {
	Records []contracts.SectorValuationRecord
	Issues  []contracts.MappingIssue
}

// tickerDay is the joined market + valuation row of one ticker-date
type tickerDay struct {
	ticker    string
	marketCap float64
	close     float64
	earnings  *float64
	book      *float64
	revenue   *float64
}

type dayKey struct {
	ticker string
	date   time.Time
}

// Aggregate joins market and valuation rows on (ticker, date) and aggregates per (sector, date).
// Output is ordered by sector_code, then date ascending.
func (a *Aggregator) Aggregate(market []contracts.MarketObservation, valuations []contracts.ValuationObservation) *Result {
	result := &Result{}

	vals := make(map[dayKey]contracts.ValuationObservation, len(valuations))
	for _, v := range valuations {
		vals[dayKey{v.Ticker, v.Date}] = v
	}

	unknown := make(map[string]bool)
	seen := make(map[dayKey]int)
	days := make(map[string]map[time.Time][]tickerDay) // sector → date → rows
	for _, m := range market {
		code, ok := a.sectors.SectorOf(m.Ticker)
		if !ok {
			if !unknown[m.Ticker] {
				unknown[m.Ticker] = true
				result.Issues = append(result.Issues, contracts.MappingIssue{
					Kind:       contracts.IssueUnknownTicker,
					Ticker:     m.Ticker,
					ReportDate: m.Date,
					Detail:     "market rows without sector mapping",
				})
			}
			continue
		}

		row := tickerDay{ticker: m.Ticker, marketCap: m.MarketCap, close: m.ClosePrice}
		if v, ok := vals[dayKey{m.Ticker, m.Date}]; ok {
			row.earnings, row.book, row.revenue = denominators(m.MarketCap, v)
		}

		if days[code] == nil {
			days[code] = make(map[time.Time][]tickerDay)
		}
		// 같은 (ticker, date) 중복 행은 마지막 값 사용
		if idx, dup := seen[dayKey{m.Ticker, m.Date}]; dup {
			days[code][m.Date][idx] = row
			continue
		}
		seen[dayKey{m.Ticker, m.Date}] = len(days[code][m.Date])
		days[code][m.Date] = append(days[code][m.Date], row)
	}

	codes := make([]string, 0, len(days))
	for code := range days {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		result.Records = append(result.Records, a.aggregateSector(code, days[code])...)
	}

	a.logger.WithFields(map[string]interface{}{
		"sectors":  len(codes),
		"records":  len(result.Records),
		"excluded": len(result.Issues),
	}).Info("TA aggregation completed")

	return result
}

// denominators resolves ttm earnings, book value and ttm revenue.
// A missing amount is derived from the reported multiple when both are positive.
func denominators(marketCap float64, v contracts.ValuationObservation) (earnings, book, revenue *float64) {
	earnings = v.TTMEarnings
	if earnings == nil && v.PE != nil && *v.PE > 0 && marketCap > 0 {
		earnings = contracts.Float(marketCap / *v.PE)
	}
	book = v.BookValue
	if book == nil && v.PB != nil && *v.PB > 0 && marketCap > 0 {
		book = contracts.Float(marketCap / *v.PB)
	}
	return earnings, book, v.TTMRevenue
}

func (a *Aggregator) aggregateSector(code string, byDate map[time.Time][]tickerDay) []contracts.SectorValuationRecord {
	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	records := make([]contracts.SectorValuationRecord, len(dates))
	var pePts, pbPts, psPts []Point

	for i, d := range dates {
		rows := byDate[d]
		sort.Slice(rows, func(x, y int) bool { return rows[x].ticker < rows[y].ticker })

		pe, peDist := weightedMultiple(rows, func(r tickerDay) *float64 { return r.earnings })
		pb, pbDist := weightedMultiple(rows, func(r tickerDay) *float64 { return r.book })
		ps, psDist := weightedMultiple(rows, func(r tickerDay) *float64 { return r.revenue })

		var totalCap float64
		for _, r := range rows {
			if r.marketCap > 0 {
				totalCap += r.marketCap
			}
		}

		records[i] = contracts.SectorValuationRecord{
			SectorCode:     code,
			Date:           d,
			SectorPE:       pe,
			SectorPB:       pb,
			SectorPS:       ps,
			PEDistribution: peDist,
			PBDistribution: pbDist,
			PSDistribution: psDist,
			TickerCount:    len(rows),
			TotalMarketCap: totalCap,
		}

		pePts = append(pePts, Point{Date: d, Value: pe})
		pbPts = append(pbPts, Point{Date: d, Value: pb})
		psPts = append(psPts, Point{Date: d, Value: ps})
	}

	years, minObs := a.settings.PercentileWindowYears, a.settings.MinObservations
	pePct := Percentiles(pePts, years, minObs)
	pbPct := Percentiles(pbPts, years, minObs)
	psPct := Percentiles(psPts, years, minObs)
	for i := range records {
		records[i].PEPercentile5Y = pePct[i]
		records[i].PBPercentile5Y = pbPct[i]
		records[i].PSPercentile5Y = psPct[i]
	}

	applyMomentum(records, dates, byDate, a.settings.MomentumShortDays, a.settings.MomentumLongDays)

	return records
}

// weightedMultiple returns Σ market_cap / Σ denominator over tickers with both > 0,
// plus the distribution of their per-ticker multiples
func weightedMultiple(rows []tickerDay, denom func(tickerDay) *float64) (*float64, contracts.Distribution) {
	var sumCap, sumDen float64
	var multiples []float64

	for _, r := range rows {
		d := denom(r)
		// 조건 불충족 종목은 분자/분모 모두에서 제외 (0으로 채우지 않음)
		if r.marketCap <= 0 || d == nil || *d <= 0 {
			continue
		}
		sumCap += r.marketCap
		sumDen += *d
		multiples = append(multiples, r.marketCap / *d)
	}

	if sumDen <= 0 {
		return nil, Distribute(nil)
	}
	return contracts.Float(sumCap / sumDen), Distribute(multiples)
}
