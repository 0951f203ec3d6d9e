package contracts

import "time"

// QuarterIndex maps a date to a monotonically increasing quarter number
// (year*4 + quarter-1), used to align growth and TTM offsets
func QuarterIndex(t time.Time) int {
	return t.Year()*4 + (int(t.Month())-1)/3
}

// IsQuarterEnd reports whether t is the last day of a calendar quarter
func IsQuarterEnd(t time.Time) bool {
	switch t.Month() {
	case time.March, time.December:
		return t.Day() == 31
	case time.June, time.September:
		return t.Day() == 30
	}
	return false
}

// QuarterEnd returns the last day of the quarter containing t (UTC midnight)
func QuarterEnd(t time.Time) time.Time {
	endMonth := ((int(t.Month())-1)/3 + 1) * 3
	return time.Date(t.Year(), time.Month(endMonth+1), 0, 0, 0, 0, 0, time.UTC)
}
