package fundamental

import (
	"github.com/wonny/sectorlens/internal/contracts"
	"github.com/wonny/sectorlens/pkg/logger"
)

// ratioDef derives one ratio from aggregated sums
type ratioDef struct {
	name string
	num  func(r *contracts.SectorFundamentalRecord) (float64, bool)
	den  func(r *contracts.SectorFundamentalRecord) (float64, bool)
}

func field(f contracts.Field) func(r *contracts.SectorFundamentalRecord) (float64, bool) {
	return func(r *contracts.SectorFundamentalRecord) (float64, bool) {
		v, ok := r.Absolute[f]
		return v, ok
	}
}

// negated reads an expense field (stored negative) as a positive amount
func negated(f contracts.Field) func(r *contracts.SectorFundamentalRecord) (float64, bool) {
	return func(r *contracts.SectorFundamentalRecord) (float64, bool) {
		v, ok := r.Absolute[f]
		return -v, ok
	}
}

func growthValue(name string) func(r *contracts.SectorFundamentalRecord) (float64, bool) {
	return func(r *contracts.SectorFundamentalRecord) (float64, bool) {
		v, ok := r.Growth[name]
		return v, ok
	}
}

// commonRatios apply to every sector (fields shared by all entity types)
var commonRatios = []ratioDef{
	{contracts.RatioROE, field(contracts.FieldNetProfit), field(contracts.FieldTotalEquity)},
	{contracts.RatioROA, field(contracts.FieldNetProfit), field(contracts.FieldTotalAssets)},
	{contracts.RatioNetMargin, field(contracts.FieldNetProfit), field(contracts.FieldRevenue)},
	{contracts.RatioDebtToEquity, field(contracts.FieldTotalLiabilities), field(contracts.FieldTotalEquity)},
	{contracts.RatioROETTM, growthValue(contracts.TTMNetProfit), field(contracts.FieldTotalEquity)},
}

// entityRatios apply only when every constituent has that entity type
var entityRatios = map[contracts.EntityType][]ratioDef{
	contracts.EntityCompany: {
		{contracts.RatioGrossMargin, field(contracts.FieldGrossProfit), field(contracts.FieldRevenue)},
		{contracts.RatioOperatingMargin, field(contracts.FieldOperatingProfit), field(contracts.FieldRevenue)},
		{contracts.RatioCurrentRatio, field(contracts.FieldCurrentAssets), field(contracts.FieldCurrentLiabilities)},
		{contracts.RatioAssetTurnover, growthValue(contracts.TTMRevenue), field(contracts.FieldTotalAssets)},
	},
	contracts.EntityBank: {
		{contracts.RatioNIM, field(contracts.FieldNetInterestIncome), field(contracts.FieldInterestEarningAssets)},
		{contracts.RatioNPL, field(contracts.FieldNonPerformingLoans), field(contracts.FieldCustomerLoans)},
		{contracts.RatioLDR, field(contracts.FieldCustomerLoans), field(contracts.FieldCustomerDeposits)},
		{contracts.RatioCASA, field(contracts.FieldCASADeposits), field(contracts.FieldCustomerDeposits)},
		{contracts.RatioCostOfRisk, negated(contracts.FieldProvisionExpense), field(contracts.FieldCustomerLoans)},
	},
	contracts.EntitySecurities: {
		{contracts.RatioLeverage, field(contracts.FieldTotalAssets), field(contracts.FieldTotalEquity)},
		{contracts.RatioMarginToEq, field(contracts.FieldMarginLoans), field(contracts.FieldTotalEquity)},
		{contracts.RatioMarginYield, field(contracts.FieldMarginLendingIncome), field(contracts.FieldMarginLoans)},
		{contracts.RatioInvestYield, field(contracts.FieldFVTPLIncome), field(contracts.FieldFVTPLAssets)},
	},
	contracts.EntityInsurer: {
		{contracts.RatioClaims, negated(contracts.FieldClaimsExpense), field(contracts.FieldNetPremium)},
		{contracts.RatioReserveToEquity, field(contracts.FieldTechnicalReserves), field(contracts.FieldTotalEquity)},
	},
}

// computeRatios derives ratios strictly from the record's sums.
// Missing inputs or a denominator <= 0 leave the ratio null.
func computeRatios(r *contracts.SectorFundamentalRecord, log *logger.Logger) {
	defs := commonRatios
	if r.IsHomogeneous() {
		defs = append(append([]ratioDef{}, commonRatios...), entityRatios[r.EntityTypes[0]]...)
	}

	for _, d := range defs {
		num, ok := d.num(r)
		if !ok {
			continue
		}
		den, ok := d.den(r)
		if !ok {
			continue
		}
		v, ok := safeDiv(num, den)
		if !ok {
			log.WithSector(r.SectorCode, r.ReportDate).WithFields(map[string]interface{}{
				"ratio":       d.name,
				"denominator": den,
			}).Debug("non-positive denominator, ratio is null")
			continue
		}
		r.Ratios[d.name] = v
	}
}

// safeDiv returns num/den, or false when den <= 0
func safeDiv(num, den float64) (float64, bool) {
	if den <= 0 {
		return 0, false
	}
	return num / den, true
}
