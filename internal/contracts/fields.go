package contracts

import "fmt"

// EntityType distinguishes statement layouts (일반기업/은행/증권/보험)
type EntityType string

const (
	EntityCompany    EntityType = "company"
	EntityBank       EntityType = "bank"
	EntitySecurities EntityType = "securities"
	EntityInsurer    EntityType = "insurer"
)

// AllEntityTypes returns entity types in canonical order
func AllEntityTypes() []EntityType {
	return []EntityType{EntityCompany, EntityBank, EntitySecurities, EntityInsurer}
}

// ParseEntityType validates a raw entity type string
func ParseEntityType(s string) (EntityType, error) {
	for _, et := range AllEntityTypes() {
		if string(et) == s {
			return et, nil
		}
	}
	return "", fmt.Errorf("%w: unknown entity type %q", ErrMapping, s)
}

// Frequency is the reporting frequency of an observation
type Frequency string

const (
	FrequencyQuarterly  Frequency = "Q"
	FrequencySemiAnnual Frequency = "H"
	FrequencyAnnual     Frequency = "Y"
)

// IsQuarterly reports whether rows of this frequency may feed TTM sums.
// An empty frequency is treated as quarterly.
func (f Frequency) IsQuarterly() bool {
	return f == "" || f == FrequencyQuarterly
}

// Field is a canonical semantic field produced by the entity metric adapters
type Field string

// Common fields (모든 업종 공통)
const (
	FieldRevenue          Field = "revenue"
	FieldNetProfit        Field = "net_profit"
	FieldTotalAssets      Field = "total_assets"
	FieldTotalEquity      Field = "total_equity"
	FieldTotalLiabilities Field = "total_liabilities"
)

// Company fields (일반기업)
const (
	FieldCostOfGoodsSold    Field = "cost_of_goods_sold"
	FieldGrossProfit        Field = "gross_profit"
	FieldSellingExpenses    Field = "selling_expenses"
	FieldAdminExpenses      Field = "admin_expenses"
	FieldOperatingProfit    Field = "operating_profit"
	FieldCurrentAssets      Field = "current_assets"
	FieldCurrentLiabilities Field = "current_liabilities"
	FieldInventory          Field = "inventory"
	FieldCash               Field = "cash"
)

// Bank fields (은행)
const (
	FieldInterestIncome        Field = "interest_income"
	FieldInterestExpense       Field = "interest_expense"
	FieldNetInterestIncome     Field = "net_interest_income"
	FieldInterestEarningAssets Field = "interest_earning_assets"
	FieldCustomerLoans         Field = "customer_loans"
	FieldCustomerDeposits      Field = "customer_deposits"
	FieldNonPerformingLoans    Field = "non_performing_loans"
	FieldCASADeposits          Field = "casa_deposits"
	FieldProvisionExpense      Field = "provision_expense"
)

// Securities fields (증권)
const (
	FieldMarginLoans         Field = "margin_loans"
	FieldFVTPLAssets         Field = "fvtpl_assets"
	FieldBrokerageRevenue    Field = "brokerage_revenue"
	FieldMarginLendingIncome Field = "margin_lending_income"
	FieldFVTPLIncome         Field = "fvtpl_income"
)

// Insurer fields (보험)
const (
	FieldNetPremium        Field = "net_premium"
	FieldClaimsExpense     Field = "claims_expense"
	FieldTechnicalReserves Field = "technical_reserves"
	FieldInvestmentIncome  Field = "investment_income"
)

// CommonFields are meaningful for every entity type
func CommonFields() []Field {
	return []Field{
		FieldRevenue,
		FieldNetProfit,
		FieldTotalAssets,
		FieldTotalEquity,
		FieldTotalLiabilities,
	}
}

// AllFields returns every canonical field in output column order
func AllFields() []Field {
	return []Field{
		FieldRevenue, FieldNetProfit, FieldTotalAssets, FieldTotalEquity, FieldTotalLiabilities,
		FieldCostOfGoodsSold, FieldGrossProfit, FieldSellingExpenses, FieldAdminExpenses,
		FieldOperatingProfit, FieldCurrentAssets, FieldCurrentLiabilities, FieldInventory, FieldCash,
		FieldInterestIncome, FieldInterestExpense, FieldNetInterestIncome, FieldInterestEarningAssets,
		FieldCustomerLoans, FieldCustomerDeposits, FieldNonPerformingLoans, FieldCASADeposits,
		FieldProvisionExpense,
		FieldMarginLoans, FieldFVTPLAssets, FieldBrokerageRevenue, FieldMarginLendingIncome,
		FieldFVTPLIncome,
		FieldNetPremium, FieldClaimsExpense, FieldTechnicalReserves, FieldInvestmentIncome,
	}
}

// IsExpense reports whether the field is stored with a negative sign.
// 비용 항목은 항상 음수로 저장하고 합산은 대수적 덧셈으로 수행
func (f Field) IsExpense() bool {
	switch f {
	case FieldCostOfGoodsSold, FieldSellingExpenses, FieldAdminExpenses,
		FieldInterestExpense, FieldProvisionExpense, FieldClaimsExpense:
		return true
	}
	return false
}

// Ratio names
const (
	RatioROE          = "roe"
	RatioROA          = "roa"
	RatioNetMargin    = "net_margin"
	RatioDebtToEquity = "debt_to_equity"
	RatioROETTM       = "roe_ttm"

	RatioGrossMargin     = "gross_margin"
	RatioOperatingMargin = "operating_margin"
	RatioCurrentRatio    = "current_ratio"
	RatioAssetTurnover   = "asset_turnover"

	RatioNIM         = "nim"
	RatioNPL         = "npl_ratio"
	RatioLDR         = "ldr"
	RatioCASA        = "casa_ratio"
	RatioCostOfRisk  = "cost_of_risk"
	RatioLeverage    = "leverage"
	RatioMarginToEq  = "margin_to_equity"
	RatioMarginYield = "margin_loan_yield"
	RatioInvestYield = "investment_yield"

	RatioClaims          = "claims_ratio"
	RatioReserveToEquity = "reserve_to_equity"
)

// AllRatios returns every ratio name in output column order
func AllRatios() []string {
	return []string{
		RatioROE, RatioROA, RatioNetMargin, RatioDebtToEquity, RatioROETTM,
		RatioGrossMargin, RatioOperatingMargin, RatioCurrentRatio, RatioAssetTurnover,
		RatioNIM, RatioNPL, RatioLDR, RatioCASA, RatioCostOfRisk,
		RatioLeverage, RatioMarginToEq, RatioMarginYield, RatioInvestYield,
		RatioClaims, RatioReserveToEquity,
	}
}

// Growth and TTM metric names
const (
	GrowthRevenueYoY     = "revenue_yoy"
	GrowthRevenueQoQ     = "revenue_qoq"
	GrowthNetProfitYoY   = "net_profit_yoy"
	GrowthNetProfitQoQ   = "net_profit_qoq"
	GrowthTotalAssetsYoY = "total_assets_yoy"
	GrowthTotalEquityYoY = "total_equity_yoy"
	GrowthLoansYoY       = "customer_loans_yoy"
	GrowthDepositsYoY    = "customer_deposits_yoy"
	GrowthMarginLoansYoY = "margin_loans_yoy"

	TTMRevenue   = "ttm_revenue"
	TTMNetProfit = "ttm_net_profit"
)

// AllGrowth returns every growth/TTM metric name in output column order
func AllGrowth() []string {
	return []string{
		GrowthRevenueYoY, GrowthRevenueQoQ, GrowthNetProfitYoY, GrowthNetProfitQoQ,
		GrowthTotalAssetsYoY, GrowthTotalEquityYoY,
		GrowthLoansYoY, GrowthDepositsYoY, GrowthMarginLoansYoY,
		TTMRevenue, TTMNetProfit,
	}
}
