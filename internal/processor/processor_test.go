package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sectorlens/internal/contracts"
	"github.com/wonny/sectorlens/internal/entity"
	"github.com/wonny/sectorlens/internal/scoringconfig"
	"github.com/wonny/sectorlens/pkg/logger"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var (
	q4 = date(2023, 12, 31)
	q1 = date(2024, 3, 31)
)

type fakeSource struct {
	metrics    []contracts.MetricObservation
	mappings   []contracts.SectorMapping
	market     []contracts.MarketObservation
	valuations []contracts.ValuationObservation

	mappingErr error
	metricErr  error
	marketErr  error
}

func (f *fakeSource) LoadMetricObservations(context.Context) ([]contracts.MetricObservation, error) {
	return f.metrics, f.metricErr
}

func (f *fakeSource) LoadSectorMappings(context.Context) ([]contracts.SectorMapping, error) {
	return f.mappings, f.mappingErr
}

func (f *fakeSource) LoadMarketObservations(_ context.Context, _, _ time.Time) ([]contracts.MarketObservation, error) {
	return f.market, f.marketErr
}

func (f *fakeSource) LoadValuationObservations(_ context.Context, _, _ time.Time) ([]contracts.ValuationObservation, error) {
	return f.valuations, nil
}

type recordingSink struct {
	fundamentals []contracts.SectorFundamentalRecord
	valuations   []contracts.SectorValuationRecord
	signals      []contracts.SectorSignal
	calls        []string
}

func (s *recordingSink) SaveFundamentals(_ context.Context, r []contracts.SectorFundamentalRecord) error {
	s.calls = append(s.calls, "fundamentals")
	s.fundamentals = r
	return nil
}

func (s *recordingSink) SaveValuations(_ context.Context, r []contracts.SectorValuationRecord) error {
	s.calls = append(s.calls, "valuations")
	s.valuations = r
	return nil
}

func (s *recordingSink) SaveSignals(_ context.Context, r []contracts.SectorSignal) error {
	s.calls = append(s.calls, "signals")
	s.signals = r
	return nil
}

func companyRows(ticker string, d time.Time, revenue, profit float64) []contracts.MetricObservation {
	row := func(code string, v float64) contracts.MetricObservation {
		return contracts.MetricObservation{
			Ticker: ticker, ReportDate: d, MetricCode: code, Value: v,
			EntityType: contracts.EntityCompany, Frequency: contracts.FrequencyQuarterly,
		}
	}
	return []contracts.MetricObservation{
		row("CIS_10", revenue),
		row("CIS_60", profit),
		row("CBS_270", 1000),
		row("CBS_300", 400),
		row("CBS_400", 600),
	}
}

func newSource() *fakeSource {
	var metrics []contracts.MetricObservation
	for _, t := range []string{"AAA", "BBB"} {
		metrics = append(metrics, companyRows(t, q4, 100, 10)...)
		metrics = append(metrics, companyRows(t, q1, 120, 15)...)
	}

	d1, d2 := date(2024, 1, 15), date(2024, 4, 15)
	return &fakeSource{
		metrics: metrics,
		mappings: []contracts.SectorMapping{
			{Ticker: "AAA", SectorCode: "TECH", EntityType: contracts.EntityCompany},
			{Ticker: "BBB", SectorCode: "TECH", EntityType: contracts.EntityCompany},
		},
		market: []contracts.MarketObservation{
			{Ticker: "AAA", Date: d1, ClosePrice: 10, MarketCap: 1000},
			{Ticker: "BBB", Date: d1, ClosePrice: 20, MarketCap: 2000},
			{Ticker: "AAA", Date: d2, ClosePrice: 11, MarketCap: 1100},
			{Ticker: "BBB", Date: d2, ClosePrice: 22, MarketCap: 2200},
		},
		valuations: []contracts.ValuationObservation{
			{Ticker: "AAA", Date: d1, PE: contracts.Float(10)},
			{Ticker: "BBB", Date: d1, PE: contracts.Float(20)},
			{Ticker: "AAA", Date: d2, PE: contracts.Float(12)},
			{Ticker: "BBB", Date: d2, PE: contracts.Float(22)},
		},
	}
}

// testConfig shortens history requirements so two TA dates are scorable
func testConfig() *scoringconfig.Config {
	cfg := scoringconfig.Default()
	cfg.Valuation.MinObservations = 2
	cfg.Valuation.MomentumShortDays = 1
	cfg.Valuation.MomentumLongDays = 2
	return cfg
}

func newProcessor(src contracts.InputSource, sink contracts.OutputSink) *Processor {
	return New(src, sink, entity.DefaultRegistry(), testConfig(), logger.Nop())
}

func TestRun_AllStages(t *testing.T) {
	sink := &recordingSink{}
	res, err := newProcessor(newSource(), sink).Run(context.Background(), RunConfig{})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, contracts.AllStages(), res.CompletedStages)
	assert.Empty(t, res.StageErrors)
	assert.NotEmpty(t, res.ConfigHash)

	require.Len(t, res.Fundamentals, 2)
	assert.Equal(t, 240.0, res.Fundamentals[1].Absolute[contracts.FieldRevenue])
	require.Len(t, res.Valuations, 2)
	assert.InDelta(t, 3000.0/200.0, *res.Valuations[0].SectorPE, 1e-9)

	require.Len(t, res.Signals, 2)
	first, second := res.Signals[0], res.Signals[1]
	assert.Equal(t, q4, first.Score.Period)
	assert.Nil(t, first.Score.TATotalScore, "TA on 2024-01-15 has too little history")
	assert.Equal(t, 1.0, first.Score.FAWeight)

	assert.Equal(t, q1, second.Score.Period)
	require.NotNil(t, second.Score.TATotalScore)
	require.NotNil(t, second.Score.ValuationDate)
	assert.Equal(t, date(2024, 4, 15), *second.Score.ValuationDate)
	assert.Equal(t, 0.6, second.Score.FAWeight)

	assert.Equal(t, []string{"fundamentals", "valuations", "signals"}, sink.calls)
	assert.Equal(t, res.Signals, sink.signals)

	require.Len(t, res.Summary, 1)
	q := res.Summary[0]
	assert.Equal(t, "TECH", q.SectorCode)
	assert.Equal(t, q1, q.LatestReportDate)
	assert.Equal(t, 2, q.TickerCount)
	assert.InDelta(t, 10.0/28.0, q.DataQualityScore, 1e-9)
	assert.Equal(t, []string{"TECH"}, res.LowConfidence)
}

func TestRun_TABranchFailureIsolated(t *testing.T) {
	src := newSource()
	src.marketErr = &contracts.DataLoadError{Table: "market_observations", Err: errors.New("disk")}
	sink := &recordingSink{}

	res, err := newProcessor(src, sink).Run(context.Background(), RunConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrDataLoad))

	assert.False(t, res.Success)
	assert.Contains(t, res.StageErrors, contracts.StageTAAggregate)
	assert.Contains(t, res.CompletedStages, contracts.StageFAAggregate)
	assert.Contains(t, res.CompletedStages, contracts.StageFAScore)
	assert.NotContains(t, res.CompletedStages, contracts.StageTAScore)

	require.Len(t, res.Signals, 2)
	for _, s := range res.Signals {
		assert.Nil(t, s.Score.TATotalScore)
		assert.Equal(t, 1.0, s.Score.FAWeight)
	}
	assert.Equal(t, []string{"fundamentals", "signals"}, sink.calls)
}

func TestRun_BothBranchesFail(t *testing.T) {
	src := newSource()
	src.metricErr = &contracts.DataLoadError{Table: "metric_observations", Err: errors.New("missing")}
	src.marketErr = &contracts.DataLoadError{Table: "market_observations", Err: errors.New("missing")}
	sink := &recordingSink{}

	res, err := newProcessor(src, sink).Run(context.Background(), RunConfig{})
	require.Error(t, err)
	assert.Empty(t, res.Signals)
	assert.Empty(t, sink.calls)
}

func TestRun_MappingLoadIsFatal(t *testing.T) {
	src := newSource()
	src.mappingErr = &contracts.DataLoadError{Table: "sector_mappings", Err: errors.New("missing")}

	res, err := newProcessor(src, &recordingSink{}).Run(context.Background(), RunConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrDataLoad))
	assert.Empty(t, res.CompletedStages)
}

func TestRun_InvalidConfigIsFatal(t *testing.T) {
	cfg := testConfig()
	cfg.Weights.Split = scoringconfig.Split{FA: 0.7, TA: 0.7}
	sink := &recordingSink{}

	_, err := New(newSource(), sink, entity.DefaultRegistry(), cfg, logger.Nop()).Run(context.Background(), RunConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrConfiguration))
	assert.Empty(t, sink.calls)
}

func TestRun_InvalidDateRange(t *testing.T) {
	_, err := newProcessor(newSource(), nil).Run(context.Background(), RunConfig{
		StartDate: q1,
		EndDate:   q4,
	})
	assert.True(t, errors.Is(err, contracts.ErrConfiguration))
}

func TestRun_ExclusionsReported(t *testing.T) {
	src := newSource()
	src.metrics = append(src.metrics,
		contracts.MetricObservation{Ticker: "AAA", ReportDate: q1, MetricCode: "CIS_999", Value: 1, EntityType: contracts.EntityCompany},
		contracts.MetricObservation{Ticker: "ZZZ", ReportDate: q1, MetricCode: "CIS_10", Value: 1, EntityType: contracts.EntityCompany},
	)

	res, err := newProcessor(src, nil).Run(context.Background(), RunConfig{})
	require.NoError(t, err)

	assert.Equal(t, []string{"ZZZ"}, res.ExcludedTickers)
	assert.Equal(t, []string{"CIS_999"}, res.ExcludedMetrics)
	require.Len(t, res.Summary, 1)
	assert.Equal(t, []string{"CIS_999"}, res.Summary[0].ExcludedMetrics)
	// 매핑 실패 행이 품질 분모에 포함
	assert.InDelta(t, 10.0/29.0, res.Summary[0].DataQualityScore, 1e-9)
}

func TestRun_ReportDateFilter(t *testing.T) {
	res, err := newProcessor(newSource(), nil).Run(context.Background(), RunConfig{ReportDate: q1})
	require.NoError(t, err)

	require.Len(t, res.Fundamentals, 1)
	assert.Equal(t, q1, res.Fundamentals[0].ReportDate)
	require.Len(t, res.Signals, 1)
	assert.Equal(t, q1, res.Signals[0].Score.Period)
	// TA 스냅샷은 필터 전 전체 이력 기준
	assert.NotNil(t, res.Signals[0].Score.TATotalScore)
	assert.Len(t, res.Valuations, 2)
}

func TestRun_StartDateFilter(t *testing.T) {
	res, err := newProcessor(newSource(), nil).Run(context.Background(), RunConfig{StartDate: date(2024, 2, 1)})
	require.NoError(t, err)

	require.Len(t, res.Valuations, 1)
	assert.Equal(t, date(2024, 4, 15), res.Valuations[0].Date)
	require.Len(t, res.Fundamentals, 1)
	require.Len(t, res.Signals, 1)
}

func TestRun_NoSinkSkipsPersist(t *testing.T) {
	res, err := newProcessor(newSource(), nil).Run(context.Background(), RunConfig{})
	require.NoError(t, err)
	assert.NotContains(t, res.CompletedStages, contracts.StagePersist)
	assert.Len(t, res.StageResults, len(contracts.AllStages())-1)
}

func TestRun_Idempotent(t *testing.T) {
	p := newProcessor(newSource(), nil)

	first, err := p.Run(context.Background(), RunConfig{})
	require.NoError(t, err)
	second, err := p.Run(context.Background(), RunConfig{})
	require.NoError(t, err)

	assert.Equal(t, first.Fundamentals, second.Fundamentals)
	assert.Equal(t, first.Valuations, second.Valuations)
	assert.Equal(t, first.Signals, second.Signals)
	assert.Equal(t, first.ConfigHash, second.ConfigHash)
}
