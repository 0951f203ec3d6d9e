package valuation

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/sectorlens/internal/contracts"
)

// Distribute computes the cross-sectional spread of valid per-ticker multiples.
// Quantiles use the empirical (lower) definition; std is the sample std, null below two values.
func Distribute(values []float64) contracts.Distribution {
	d := contracts.Distribution{Count: len(values)}
	if len(values) == 0 {
		return d
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	d.Mean = contracts.Float(mean)
	if len(sorted) >= 2 {
		d.StdDev = contracts.Float(std)
	}

	d.Median = contracts.Float(stat.Quantile(0.5, stat.Empirical, sorted, nil))
	d.P25 = contracts.Float(stat.Quantile(0.25, stat.Empirical, sorted, nil))
	d.P75 = contracts.Float(stat.Quantile(0.75, stat.Empirical, sorted, nil))
	d.Min = contracts.Float(sorted[0])
	d.Max = contracts.Float(sorted[len(sorted)-1])

	return d
}
