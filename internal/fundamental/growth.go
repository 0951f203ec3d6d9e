package fundamental

import (
	"github.com/wonny/sectorlens/internal/contracts"
)

// growthDef is one growth metric on the sector's own series
type growthDef struct {
	name   string
	field  contracts.Field
	offset int // quarters back
}

var growthDefs = []growthDef{
	{contracts.GrowthRevenueYoY, contracts.FieldRevenue, 4},
	{contracts.GrowthRevenueQoQ, contracts.FieldRevenue, 1},
	{contracts.GrowthNetProfitYoY, contracts.FieldNetProfit, 4},
	{contracts.GrowthNetProfitQoQ, contracts.FieldNetProfit, 1},
	{contracts.GrowthTotalAssetsYoY, contracts.FieldTotalAssets, 4},
	{contracts.GrowthTotalEquityYoY, contracts.FieldTotalEquity, 4},
	{contracts.GrowthLoansYoY, contracts.FieldCustomerLoans, 4},
	{contracts.GrowthDepositsYoY, contracts.FieldCustomerDeposits, 4},
	{contracts.GrowthMarginLoansYoY, contracts.FieldMarginLoans, 4},
}

// applyGrowth computes growth on one sector's records, sorted by report_date.
// Periods are aligned by calendar quarter; a missing or non-positive base leaves growth null.
func applyGrowth(records []contracts.SectorFundamentalRecord) {
	byQuarter := make(map[int]int, len(records))
	for i, r := range records {
		// 같은 분기에 두 날짜가 있으면 나중 날짜가 기준
		byQuarter[contracts.QuarterIndex(r.ReportDate)] = i
	}

	for i := range records {
		cur := &records[i]
		q := contracts.QuarterIndex(cur.ReportDate)

		for _, g := range growthDefs {
			v, ok := cur.Absolute[g.field]
			if !ok {
				continue
			}
			j, ok := byQuarter[q-g.offset]
			if !ok {
				continue
			}
			base, ok := records[j].Absolute[g.field]
			if !ok || base <= 0 {
				continue
			}
			cur.Growth[g.name] = v/base - 1
		}
	}
}
