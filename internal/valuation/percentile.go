package valuation

import (
	"sort"
	"time"
)

// Point is one dated observation of a sector multiple (nil = not computable)
type Point struct {
	Date  time.Time
	Value *float64
}

// window is a trailing calendar window kept as a sorted slice.
// Points enter in date order and leave once older than the cutoff.
type window struct {
	years  int
	queue  []Point // 날짜순 (유효 값만)
	sorted []float64
}

func (w *window) push(p Point) {
	w.queue = append(w.queue, p)
	v := *p.Value
	i := sort.SearchFloat64s(w.sorted, v)
	w.sorted = append(w.sorted, 0)
	copy(w.sorted[i+1:], w.sorted[i:])
	w.sorted[i] = v
}

// evict drops points dated on or before asOf minus the window length
func (w *window) evict(asOf time.Time) {
	cutoff := asOf.AddDate(-w.years, 0, 0)
	n := 0
	for n < len(w.queue) && !w.queue[n].Date.After(cutoff) {
		v := *w.queue[n].Value
		i := sort.SearchFloat64s(w.sorted, v)
		w.sorted = append(w.sorted[:i], w.sorted[i+1:]...)
		n++
	}
	w.queue = w.queue[n:]
}

// Percentiles ranks each point against the trailing window that ends at (and includes) it:
// count(strictly less) / (n-1) * 100. Null when the point is null or n < minObs.
// Points must be sorted by date ascending.
func Percentiles(points []Point, years, minObs int) []*float64 {
	out := make([]*float64, len(points))
	w := &window{years: years}

	for i, p := range points {
		if p.Value == nil {
			continue
		}
		w.evict(p.Date)
		w.push(p)

		n := len(w.sorted)
		if n < minObs || n < 2 {
			continue
		}
		less := sort.SearchFloat64s(w.sorted, *p.Value)
		pct := float64(less) / float64(n-1) * 100
		out[i] = &pct
	}
	return out
}
