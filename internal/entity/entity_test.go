package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sectorlens/internal/contracts"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDefaultRegistry_MapsEveryEntityType(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		name     string
		et       contracts.EntityType
		code     string
		expected contracts.Field
	}{
		{"company revenue", contracts.EntityCompany, "CIS_10", contracts.FieldRevenue},
		{"company equity", contracts.EntityCompany, "CBS_400", contracts.FieldTotalEquity},
		{"bank interest income", contracts.EntityBank, "BIS_1", contracts.FieldInterestIncome},
		{"bank net profit", contracts.EntityBank, "BIS_PAT", contracts.FieldNetProfit},
		{"securities margin loans", contracts.EntitySecurities, "SBS_MRG", contracts.FieldMarginLoans},
		{"insurer claims", contracts.EntityInsurer, "IIS_CLM", contracts.FieldClaimsExpense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := reg.Map(tt.et, tt.code)
			require.True(t, ok)
			assert.Equal(t, tt.expected, f)
		})
	}

	_, ok := reg.Map(contracts.EntityBank, "CIS_10")
	assert.False(t, ok, "company code must not resolve for a bank")
}

func TestDefaultRegistry_CommonFieldsForAll(t *testing.T) {
	reg := DefaultRegistry()
	for _, et := range contracts.AllEntityTypes() {
		fields := reg.CanonicalFields(et)
		for _, f := range contracts.CommonFields() {
			assert.Contains(t, fields, f, "%s must report %s", et, f)
		}
	}
}

func TestRegistry_SharedFields(t *testing.T) {
	reg := DefaultRegistry()

	shared := reg.SharedFields([]contracts.EntityType{contracts.EntityCompany, contracts.EntityBank})
	assert.Equal(t, contracts.CommonFields(), shared)

	homogeneous := reg.SharedFields([]contracts.EntityType{contracts.EntityBank, contracts.EntityBank})
	assert.Contains(t, homogeneous, contracts.FieldNetInterestIncome)
}

func TestNewTableAdapter_RejectsDoubleMapping(t *testing.T) {
	_, err := NewTableAdapter(contracts.EntityCompany, map[string]contracts.Field{
		"A": contracts.FieldRevenue,
		"B": contracts.FieldRevenue,
	})
	assert.Error(t, err)
}

func TestNewRegistry_RejectsDuplicateEntity(t *testing.T) {
	a, err := NewTableAdapter(contracts.EntityCompany, map[string]contracts.Field{"A": contracts.FieldRevenue})
	require.NoError(t, err)

	_, err = NewRegistry(a, a)
	assert.Error(t, err)
}

func TestPivot(t *testing.T) {
	reg := DefaultRegistry()
	q1 := date(2024, 3, 31)

	obs := []contracts.MetricObservation{
		{Ticker: "AAA", ReportDate: q1, MetricCode: "CIS_10", Value: 100, EntityType: contracts.EntityCompany},
		{Ticker: "AAA", ReportDate: q1, MetricCode: "CIS_11", Value: 60, EntityType: contracts.EntityCompany},
		{Ticker: "AAA", ReportDate: q1, MetricCode: "CIS_10", Value: 110, EntityType: contracts.EntityCompany},
		{Ticker: "AAA", ReportDate: q1, MetricCode: "XX_99", Value: 1, EntityType: contracts.EntityCompany},
		{Ticker: "BBB", ReportDate: q1, MetricCode: "BIS_PAT", Value: 20, EntityType: contracts.EntityBank},
		{Ticker: "CCC", ReportDate: q1, MetricCode: "CIS_10", Value: 5, EntityType: "fund"},
	}

	records, issues := reg.Pivot(obs)
	require.Len(t, records, 2)

	aaa := records[0]
	assert.Equal(t, "AAA", aaa.Ticker)
	rev, ok := aaa.Get(contracts.FieldRevenue)
	require.True(t, ok)
	assert.Equal(t, 110.0, rev, "last value wins")
	cogs, _ := aaa.Get(contracts.FieldCostOfGoodsSold)
	assert.Equal(t, -60.0, cogs, "expenses are stored negative")

	assert.Equal(t, "BBB", records[1].Ticker)

	kinds := make(map[contracts.IssueKind]int)
	for _, is := range issues {
		kinds[is.Kind]++
		assert.True(t, errors.Is(is, contracts.ErrMapping))
	}
	assert.Equal(t, 1, kinds[contracts.IssueDuplicateMetric])
	assert.Equal(t, 1, kinds[contracts.IssueUnknownMetric])
	assert.Equal(t, 1, kinds[contracts.IssueUnknownEntityType])
}

func TestPivot_NonQuarterlyRowMarksRecord(t *testing.T) {
	reg := DefaultRegistry()
	d := date(2024, 6, 30)

	records, _ := reg.Pivot([]contracts.MetricObservation{
		{Ticker: "AAA", ReportDate: d, MetricCode: "CIS_10", Value: 1, EntityType: contracts.EntityCompany},
		{Ticker: "AAA", ReportDate: d, MetricCode: "CIS_60", Value: 1, EntityType: contracts.EntityCompany, Frequency: contracts.FrequencySemiAnnual},
	})
	require.Len(t, records, 1)
	assert.Equal(t, contracts.FrequencySemiAnnual, records[0].Frequency)
}

func TestPivot_EntityMismatchDropped(t *testing.T) {
	reg := DefaultRegistry()
	d := date(2024, 6, 30)

	records, issues := reg.Pivot([]contracts.MetricObservation{
		{Ticker: "AAA", ReportDate: d, MetricCode: "CIS_10", Value: 1, EntityType: contracts.EntityCompany},
		{Ticker: "AAA", ReportDate: d, MetricCode: "BIS_PAT", Value: 9, EntityType: contracts.EntityBank},
	})
	require.Len(t, records, 1)
	_, ok := records[0].Get(contracts.FieldNetProfit)
	assert.False(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, contracts.IssueEntityMismatch, issues[0].Kind)
}

func TestNormalizeSign(t *testing.T) {
	assert.Equal(t, -5.0, NormalizeSign(contracts.FieldInterestExpense, 5))
	assert.Equal(t, -5.0, NormalizeSign(contracts.FieldInterestExpense, -5))
	assert.Equal(t, 5.0, NormalizeSign(contracts.FieldRevenue, 5))
	assert.Equal(t, -5.0, NormalizeSign(contracts.FieldNetProfit, -5), "losses keep their sign")
}

func TestTrailingSum(t *testing.T) {
	quarters := []time.Time{date(2023, 3, 31), date(2023, 6, 30), date(2023, 9, 30), date(2023, 12, 31), date(2024, 3, 31)}
	var series []QuarterlyValue
	for i, d := range quarters {
		series = append(series, QuarterlyValue{ReportDate: d, Frequency: contracts.FrequencyQuarterly, Value: float64(i + 1)})
	}

	t.Run("full window", func(t *testing.T) {
		sum, ok, err := TrailingSum("S", series, date(2024, 3, 31), 4)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 2.0+3+4+5, sum)
	})

	t.Run("not enough history", func(t *testing.T) {
		_, ok, err := TrailingSum("S", series, date(2023, 9, 30), 4)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("gap inside window is null, not a violation", func(t *testing.T) {
		gapped := append([]QuarterlyValue{}, series[0], series[1], series[3], series[4])
		_, ok, err := TrailingSum("S", gapped, date(2024, 3, 31), 4)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("window after gap sums again", func(t *testing.T) {
		gapped := append([]QuarterlyValue{}, series[0], series[2], series[3], series[4],
			QuarterlyValue{ReportDate: date(2024, 6, 30), Frequency: contracts.FrequencyQuarterly, Value: 6})
		sum, ok, err := TrailingSum("S", gapped, date(2024, 6, 30), 4)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 3.0+4+5+6, sum)
	})

	t.Run("non-quarterly row is a violation", func(t *testing.T) {
		bad := append([]QuarterlyValue{}, series...)
		bad[3].Frequency = contracts.FrequencyAnnual
		_, ok, err := TrailingSum("S", bad, date(2024, 3, 31), 4)
		assert.False(t, ok)

		var fv *contracts.FrequencyViolation
		require.True(t, errors.As(err, &fv))
		assert.Equal(t, "S", fv.SectorCode)
	})

	t.Run("off quarter-end date is a violation", func(t *testing.T) {
		bad := append([]QuarterlyValue{}, series...)
		bad[2].ReportDate = date(2023, 8, 15)
		_, _, err := TrailingSum("S", bad, date(2024, 3, 31), 4)
		assert.True(t, errors.Is(err, contracts.ErrFrequencyViolation))
	})
}
