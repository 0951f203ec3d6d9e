// Package loader reads the four input feeds from CSV files.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/wonny/sectorlens/internal/contracts"
	"github.com/wonny/sectorlens/pkg/logger"
)

// Input file names inside the input directory
const (
	MetricObservationsFile    = "metric_observations.csv"
	SectorMappingsFile        = "sector_mappings.csv"
	MarketObservationsFile    = "market_observations.csv"
	ValuationObservationsFile = "valuation_observations.csv"
)

// DateLayout is the date format of every date column
const DateLayout = "2006-01-02"

type metricRow struct {
	Ticker     string   `csv:"ticker"`
	ReportDate string   `csv:"report_date"`
	MetricCode string   `csv:"metric_code"`
	Value      *float64 `csv:"value,omitempty"`
	EntityType string   `csv:"entity_type"`
	Frequency  string   `csv:"frequency,omitempty"`
}

type mappingRow struct {
	Ticker     string `csv:"ticker"`
	SectorCode string `csv:"sector_code"`
	EntityType string `csv:"entity_type"`
}

type marketRow struct {
	Ticker     string   `csv:"ticker"`
	Date       string   `csv:"date"`
	ClosePrice *float64 `csv:"close_price,omitempty"`
	MarketCap  *float64 `csv:"market_cap,omitempty"`
	Volume     *float64 `csv:"volume,omitempty"`
}

type valuationRow struct {
	Ticker      string   `csv:"ticker"`
	Date        string   `csv:"date"`
	PE          *float64 `csv:"pe,omitempty"`
	PB          *float64 `csv:"pb,omitempty"`
	BookValue   *float64 `csv:"book_value,omitempty"`
	TTMEarnings *float64 `csv:"ttm_earnings,omitempty"`
	TTMRevenue  *float64 `csv:"ttm_revenue,omitempty"`
}

// CSVSource implements contracts.InputSource over a directory of CSV files
// ⭐ SSOT: 입력 CSV 파싱은 이 타입에서만
type CSVSource struct {
	dir    string
	logger *logger.Logger
}

// NewCSVSource creates a CSV input source rooted at dir
func NewCSVSource(dir string, log *logger.Logger) *CSVSource {
	return &CSVSource{
		dir:    dir,
		logger: log.WithComponent("csv_loader"),
	}
}

// LoadMetricObservations reads metric_observations.csv.
// Rows without a value are absent, not zero.
func (s *CSVSource) LoadMetricObservations(ctx context.Context) ([]contracts.MetricObservation, error) {
	rows, err := readTable[metricRow](ctx, s.path(MetricObservationsFile), "metric_observations")
	if err != nil {
		return nil, err
	}

	out := make([]contracts.MetricObservation, 0, len(rows))
	skipped := 0
	for i, r := range rows {
		if r.Value == nil {
			skipped++
			continue
		}
		date, err := parseDate(r.ReportDate)
		if err != nil {
			return nil, rowError("metric_observations", i, err)
		}
		if strings.TrimSpace(r.Ticker) == "" {
			return nil, rowError("metric_observations", i, fmt.Errorf("empty ticker"))
		}
		out = append(out, contracts.MetricObservation{
			Ticker:     strings.TrimSpace(r.Ticker),
			ReportDate: date,
			MetricCode: strings.TrimSpace(r.MetricCode),
			Value:      *r.Value,
			EntityType: contracts.EntityType(strings.ToLower(strings.TrimSpace(r.EntityType))),
			Frequency:  contracts.Frequency(strings.ToUpper(strings.TrimSpace(r.Frequency))),
		})
	}

	s.logger.WithFields(map[string]interface{}{
		"rows":    len(out),
		"skipped": skipped,
	}).Debug("Loaded metric observations")
	return out, nil
}

// LoadSectorMappings reads sector_mappings.csv.
// Registry validation happens in sector.NewRegistry.
func (s *CSVSource) LoadSectorMappings(ctx context.Context) ([]contracts.SectorMapping, error) {
	rows, err := readTable[mappingRow](ctx, s.path(SectorMappingsFile), "sector_mappings")
	if err != nil {
		return nil, err
	}

	out := make([]contracts.SectorMapping, 0, len(rows))
	for _, r := range rows {
		out = append(out, contracts.SectorMapping{
			Ticker:     r.Ticker,
			SectorCode: r.SectorCode,
			EntityType: contracts.EntityType(strings.ToLower(strings.TrimSpace(r.EntityType))),
		})
	}
	return out, nil
}

// LoadMarketObservations reads market_observations.csv within [from, to].
// A zero bound is open.
func (s *CSVSource) LoadMarketObservations(ctx context.Context, from, to time.Time) ([]contracts.MarketObservation, error) {
	rows, err := readTable[marketRow](ctx, s.path(MarketObservationsFile), "market_observations")
	if err != nil {
		return nil, err
	}

	out := make([]contracts.MarketObservation, 0, len(rows))
	for i, r := range rows {
		date, err := parseDate(r.Date)
		if err != nil {
			return nil, rowError("market_observations", i, err)
		}
		if !inRange(date, from, to) {
			continue
		}
		out = append(out, contracts.MarketObservation{
			Ticker:     strings.TrimSpace(r.Ticker),
			Date:       date,
			ClosePrice: valueOrZero(r.ClosePrice),
			MarketCap:  valueOrZero(r.MarketCap),
			Volume:     valueOrZero(r.Volume),
		})
	}

	s.logger.WithField("rows", len(out)).Debug("Loaded market observations")
	return out, nil
}

// LoadValuationObservations reads valuation_observations.csv within [from, to]
func (s *CSVSource) LoadValuationObservations(ctx context.Context, from, to time.Time) ([]contracts.ValuationObservation, error) {
	rows, err := readTable[valuationRow](ctx, s.path(ValuationObservationsFile), "valuation_observations")
	if err != nil {
		return nil, err
	}

	out := make([]contracts.ValuationObservation, 0, len(rows))
	for i, r := range rows {
		date, err := parseDate(r.Date)
		if err != nil {
			return nil, rowError("valuation_observations", i, err)
		}
		if !inRange(date, from, to) {
			continue
		}
		out = append(out, contracts.ValuationObservation{
			Ticker:      strings.TrimSpace(r.Ticker),
			Date:        date,
			PE:          r.PE,
			PB:          r.PB,
			BookValue:   r.BookValue,
			TTMEarnings: r.TTMEarnings,
			TTMRevenue:  r.TTMRevenue,
		})
	}

	s.logger.WithField("rows", len(out)).Debug("Loaded valuation observations")
	return out, nil
}

func (s *CSVSource) path(name string) string {
	return filepath.Join(s.dir, name)
}

// readTable decodes one CSV file into row structs
func readTable[T any](ctx context.Context, path, table string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, &contracts.DataLoadError{Table: table, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &contracts.DataLoadError{Table: table, Err: err}
	}

	rows := []T{}
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, &contracts.DataLoadError{Table: table, Err: fmt.Errorf("parse %s: %w", filepath.Base(path), err)}
	}
	return rows, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// rowError reports a bad row by its 1-based line number (header is line 1)
func rowError(table string, idx int, err error) error {
	return &contracts.DataLoadError{Table: table, Err: fmt.Errorf("line %d: %w", idx+2, err)}
}

func inRange(d, from, to time.Time) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
