package entity

import "github.com/wonny/sectorlens/internal/contracts"

// Raw statement codes per entity type.
// CIS/CBS = 일반기업 손익/재무상태표, BIS/BBS/BNT = 은행, SIS/SBS = 증권, IIS/IBS = 보험
var defaultTables = map[contracts.EntityType]map[string]contracts.Field{
	contracts.EntityCompany: {
		"CIS_10":  contracts.FieldRevenue,
		"CIS_11":  contracts.FieldCostOfGoodsSold,
		"CIS_20":  contracts.FieldGrossProfit,
		"CIS_25":  contracts.FieldSellingExpenses,
		"CIS_26":  contracts.FieldAdminExpenses,
		"CIS_30":  contracts.FieldOperatingProfit,
		"CIS_60":  contracts.FieldNetProfit,
		"CBS_100": contracts.FieldCurrentAssets,
		"CBS_110": contracts.FieldCash,
		"CBS_140": contracts.FieldInventory,
		"CBS_270": contracts.FieldTotalAssets,
		"CBS_300": contracts.FieldTotalLiabilities,
		"CBS_310": contracts.FieldCurrentLiabilities,
		"CBS_400": contracts.FieldTotalEquity,
	},
	contracts.EntityBank: {
		"BIS_1":    contracts.FieldInterestIncome,
		"BIS_2":    contracts.FieldInterestExpense,
		"BIS_3":    contracts.FieldNetInterestIncome,
		"BIS_TOI":  contracts.FieldRevenue,
		"BIS_PROV": contracts.FieldProvisionExpense,
		"BIS_PAT":  contracts.FieldNetProfit,
		"BBS_LOAN": contracts.FieldCustomerLoans,
		"BBS_DEP":  contracts.FieldCustomerDeposits,
		"BBS_TA":   contracts.FieldTotalAssets,
		"BBS_TL":   contracts.FieldTotalLiabilities,
		"BBS_EQ":   contracts.FieldTotalEquity,
		"BNT_IEA":  contracts.FieldInterestEarningAssets,
		"BNT_NPL":  contracts.FieldNonPerformingLoans,
		"BNT_CASA": contracts.FieldCASADeposits,
	},
	contracts.EntitySecurities: {
		"SIS_REV":   contracts.FieldRevenue,
		"SIS_BRK":   contracts.FieldBrokerageRevenue,
		"SIS_MLI":   contracts.FieldMarginLendingIncome,
		"SIS_FVTPL": contracts.FieldFVTPLIncome,
		"SIS_PAT":   contracts.FieldNetProfit,
		"SBS_MRG":   contracts.FieldMarginLoans,
		"SBS_FVTPL": contracts.FieldFVTPLAssets,
		"SBS_TA":    contracts.FieldTotalAssets,
		"SBS_TL":    contracts.FieldTotalLiabilities,
		"SBS_EQ":    contracts.FieldTotalEquity,
	},
	contracts.EntityInsurer: {
		"IIS_REV": contracts.FieldRevenue,
		"IIS_NP":  contracts.FieldNetPremium,
		"IIS_CLM": contracts.FieldClaimsExpense,
		"IIS_INV": contracts.FieldInvestmentIncome,
		"IIS_PAT": contracts.FieldNetProfit,
		"IBS_TR":  contracts.FieldTechnicalReserves,
		"IBS_TA":  contracts.FieldTotalAssets,
		"IBS_TL":  contracts.FieldTotalLiabilities,
		"IBS_EQ":  contracts.FieldTotalEquity,
	},
}
