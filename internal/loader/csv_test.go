package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sectorlens/internal/contracts"
	"github.com/wonny/sectorlens/pkg/logger"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func day(s string) time.Time {
	d, _ := time.Parse(DateLayout, s)
	return d
}

func TestLoadMetricObservations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, MetricObservationsFile,
		"ticker,report_date,metric_code,value,entity_type,frequency\n"+
			"AAA,2024-03-31,CIS_10,100,company,Q\n"+
			"AAA,2024-03-31,CIS_60,,company,Q\n"+
			"BNK,2024-03-31,BIS_PAT,7.5,BANK,\n")

	src := NewCSVSource(dir, logger.Nop())
	obs, err := src.LoadMetricObservations(context.Background())
	require.NoError(t, err)
	require.Len(t, obs, 2)

	assert.Equal(t, "AAA", obs[0].Ticker)
	assert.Equal(t, day("2024-03-31"), obs[0].ReportDate)
	assert.Equal(t, 100.0, obs[0].Value)
	assert.Equal(t, contracts.EntityCompany, obs[0].EntityType)
	assert.Equal(t, contracts.FrequencyQuarterly, obs[0].Frequency)

	assert.Equal(t, contracts.EntityBank, obs[1].EntityType)
	assert.True(t, obs[1].Frequency.IsQuarterly())
}

func TestLoadMetricObservations_BadDate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, MetricObservationsFile,
		"ticker,report_date,metric_code,value,entity_type\n"+
			"AAA,31/03/2024,CIS_10,100,company\n")

	_, err := NewCSVSource(dir, logger.Nop()).LoadMetricObservations(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrDataLoad))
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoad_MissingFile(t *testing.T) {
	src := NewCSVSource(t.TempDir(), logger.Nop())

	_, err := src.LoadSectorMappings(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrDataLoad))

	var loadErr *contracts.DataLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "sector_mappings", loadErr.Table)
}

func TestLoadSectorMappings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SectorMappingsFile,
		"ticker,sector_code,entity_type\n"+
			"AAA,TECH,company\n"+
			"BNK,BANK,bank\n")

	mappings, err := NewCSVSource(dir, logger.Nop()).LoadSectorMappings(context.Background())
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.Equal(t, contracts.SectorMapping{Ticker: "BNK", SectorCode: "BANK", EntityType: contracts.EntityBank}, mappings[1])
}

func TestLoadMarketObservations_DateRange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, MarketObservationsFile,
		"ticker,date,close_price,market_cap,volume\n"+
			"AAA,2024-01-02,10,1000,5\n"+
			"AAA,2024-02-01,11,1100,6\n"+
			"AAA,2024-03-01,12,1200,7\n")

	src := NewCSVSource(dir, logger.Nop())

	all, err := src.LoadMarketObservations(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ranged, err := src.LoadMarketObservations(context.Background(), day("2024-02-01"), day("2024-02-29"))
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, 1100.0, ranged[0].MarketCap)
}

func TestLoadValuationObservations_Nullable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ValuationObservationsFile,
		"ticker,date,pe,pb,book_value,ttm_earnings,ttm_revenue\n"+
			"AAA,2024-05-02,20,,,50,\n")

	obs, err := NewCSVSource(dir, logger.Nop()).LoadValuationObservations(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, obs, 1)

	require.NotNil(t, obs[0].PE)
	assert.Equal(t, 20.0, *obs[0].PE)
	assert.Nil(t, obs[0].PB)
	assert.Nil(t, obs[0].BookValue)
	require.NotNil(t, obs[0].TTMEarnings)
	assert.Equal(t, 50.0, *obs[0].TTMEarnings)
	assert.Nil(t, obs[0].TTMRevenue)
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVSource(t.TempDir(), logger.Nop()).LoadMetricObservations(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
