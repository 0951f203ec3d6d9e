package valuation

import (
	"time"

	"github.com/wonny/sectorlens/internal/contracts"
)

// applyMomentum fills Return1M/Return3M (cap-weighted price return over short/long
// trading-date lookbacks, weights = start-date market cap) and Breadth (share of
// constituents with a positive short-lookback return).
func applyMomentum(records []contracts.SectorValuationRecord, dates []time.Time, byDate map[time.Time][]tickerDay, short, long int) {
	for i := range records {
		if short > 0 && i >= short {
			ret, breadth := windowReturn(byDate[dates[i-short]], byDate[dates[i]])
			records[i].Return1M = ret
			records[i].Breadth = breadth
		}
		if long > 0 && i >= long {
			ret, _ := windowReturn(byDate[dates[i-long]], byDate[dates[i]])
			records[i].Return3M = ret
		}
	}
}

// windowReturn compares the tickers present on both dates with a positive start price
func windowReturn(start, end []tickerDay) (ret, breadth *float64) {
	endClose := make(map[string]float64, len(end))
	for _, r := range end {
		endClose[r.ticker] = r.close
	}

	var weighted, weights float64
	var counted, rising int
	for _, s := range start {
		e, ok := endClose[s.ticker]
		if !ok || s.close <= 0 || e <= 0 {
			continue
		}
		r := e/s.close - 1
		counted++
		if r > 0 {
			rising++
		}
		if s.marketCap > 0 {
			weighted += s.marketCap * r
			weights += s.marketCap
		}
	}

	if weights > 0 {
		ret = contracts.Float(weighted / weights)
	}
	if counted > 0 {
		breadth = contracts.Float(float64(rising) / float64(counted))
	}
	return ret, breadth
}
