package entity

import (
	"time"

	"github.com/wonny/sectorlens/internal/contracts"
)

// QuarterlyValue is one point of a series headed for a trailing sum
type QuarterlyValue struct {
	ReportDate time.Time
	Frequency  contracts.Frequency
	Value      float64
}

// TrailingSum sums the n consecutive quarters ending at the quarter of `at`.
//
//   - ok=false, err=nil: history does not reach back n quarters yet, or a
//     quarter inside the window is missing (only windows covering the gap are null)
//   - err=*FrequencyViolation: a non-quarterly row or a date off quarter end.
//     Never sums across such rows.
//
// ⭐ TTM 경로의 유일한 진입점
func TrailingSum(subject string, series []QuarterlyValue, at time.Time, n int) (float64, bool, error) {
	if n <= 0 {
		return 0, false, nil
	}

	end := contracts.QuarterIndex(at)
	start := end - n + 1

	byQuarter := make(map[int]QuarterlyValue, len(series))
	earliest := end + 1
	for _, p := range series {
		q := contracts.QuarterIndex(p.ReportDate)
		if q < start || q > end {
			if q < earliest {
				earliest = q
			}
			continue
		}
		if !p.Frequency.IsQuarterly() {
			return 0, false, &contracts.FrequencyViolation{
				SectorCode: subject,
				ReportDate: p.ReportDate,
				Frequency:  p.Frequency,
				Reason:     "non-quarterly row in trailing window",
			}
		}
		if !contracts.IsQuarterEnd(p.ReportDate) {
			return 0, false, &contracts.FrequencyViolation{
				SectorCode: subject,
				ReportDate: p.ReportDate,
				Frequency:  p.Frequency,
				Reason:     "report date is not a quarter end",
			}
		}
		if q < earliest {
			earliest = q
		}
		byQuarter[q] = p
	}

	// 이력이 n분기에 못 미치면 null (위반 아님)
	if earliest > start {
		return 0, false, nil
	}

	var sum float64
	for q := start; q <= end; q++ {
		p, ok := byQuarter[q]
		if !ok {
			// 분기 누락 = 오프셋 부재, 해당 윈도우만 null
			return 0, false, nil
		}
		sum += p.Value
	}

	return sum, true, nil
}
