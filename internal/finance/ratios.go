package finance

import "math"

// =============================================================================
// RATIO CALCULATION
// =============================================================================
// Four fixed ratio families. A ratio is nil exactly when its guarded
// denominator is absent or non-positive; it is never zeroed out and never
// raises. Displayed values are rounded to two decimals, days sales
// outstanding to a whole number of days.

// RatioSet groups the four ratio families computed from one Record.
type RatioSet struct {
	Liquidity     LiquidityRatios     `json:"liquidity"`
	Profitability ProfitabilityRatios `json:"profitability"`
	Solvency      SolvencyRatios      `json:"solvency"`
	Efficiency    EfficiencyRatios    `json:"efficiency"`
}

// LiquidityRatios measure the ability to meet short-term obligations.
// All three share the current_liabilities denominator guard.
type LiquidityRatios struct {
	CurrentRatio *float64 `json:"current_ratio"`
	QuickRatio   *float64 `json:"quick_ratio"`
	CashRatio    *float64 `json:"cash_ratio"`
}

// ProfitabilityRatios measure margin and return quality, in percent.
type ProfitabilityRatios struct {
	GrossProfitMargin     *float64 `json:"gross_profit_margin"`
	OperatingProfitMargin *float64 `json:"operating_profit_margin"`
	NetProfitMargin       *float64 `json:"net_profit_margin"`
	ROA                   *float64 `json:"roa"`
	ROE                   *float64 `json:"roe"`
}

// SolvencyRatios measure leverage and long-term stability.
type SolvencyRatios struct {
	DebtToEquity     *float64 `json:"debt_to_equity"`
	DebtToAssets     *float64 `json:"debt_to_assets"`
	EquityRatio      *float64 `json:"equity_ratio"`
	InterestCoverage *float64 `json:"interest_coverage"`
}

// EfficiencyRatios measure how productively assets generate revenue.
type EfficiencyRatios struct {
	AssetTurnover        *float64 `json:"asset_turnover"`
	InventoryTurnover    *float64 `json:"inventory_turnover"`
	ReceivablesTurnover  *float64 `json:"receivables_turnover"`
	DaysSalesOutstanding *float64 `json:"days_sales_outstanding"`
}

// Ratios computes every ratio family for one fiscal year.
func Ratios(rec Record) RatioSet {
	return RatioSet{
		Liquidity:     liquidityRatios(rec),
		Profitability: profitabilityRatios(rec),
		Solvency:      solvencyRatios(rec),
		Efficiency:    efficiencyRatios(rec),
	}
}

func liquidityRatios(rec Record) LiquidityRatios {
	var out LiquidityRatios
	liabilities := val(rec.CurrentLiabilities)
	if liabilities <= 0 {
		return out
	}
	assets := val(rec.CurrentAssets)
	out.CurrentRatio = round2p(assets / liabilities)
	out.QuickRatio = round2p((assets - val(rec.Inventory)) / liabilities)
	out.CashRatio = round2p(val(rec.Cash) / liabilities)
	return out
}

func profitabilityRatios(rec Record) ProfitabilityRatios {
	var out ProfitabilityRatios
	revenue := val(rec.Revenue)
	net := val(rec.NetIncome)
	if revenue > 0 {
		out.GrossProfitMargin = round2p((revenue - val(rec.CostOfGoodsSold)) / revenue * 100)
		out.OperatingProfitMargin = round2p(val(rec.OperatingIncome) / revenue * 100)
		out.NetProfitMargin = round2p(net / revenue * 100)
	}
	if assets := val(rec.TotalAssets); assets > 0 {
		out.ROA = round2p(net / assets * 100)
	}
	if equity := val(rec.TotalEquity); equity > 0 {
		out.ROE = round2p(net / equity * 100)
	}
	return out
}

func solvencyRatios(rec Record) SolvencyRatios {
	var out SolvencyRatios
	debt := val(rec.TotalDebt)
	equity := val(rec.TotalEquity)
	assets := val(rec.TotalAssets)
	if equity > 0 {
		out.DebtToEquity = round2p(debt / equity)
	}
	if assets > 0 {
		out.DebtToAssets = round2p(debt / assets)
		out.EquityRatio = round2p(equity / assets)
	}
	if interest := val(rec.InterestExpense); interest > 0 {
		out.InterestCoverage = round2p(val(rec.EBIT) / interest)
	}
	return out
}

func efficiencyRatios(rec Record) EfficiencyRatios {
	var out EfficiencyRatios
	revenue := val(rec.Revenue)
	if assets := val(rec.TotalAssets); assets > 0 {
		out.AssetTurnover = round2p(revenue / assets)
	}
	if inventory := val(rec.Inventory); inventory > 0 {
		out.InventoryTurnover = round2p(val(rec.CostOfGoodsSold) / inventory)
	}
	receivables := val(rec.AccountsReceivable)
	if receivables > 0 && revenue > 0 {
		// Days outstanding divides the unrounded turnover so a tiny
		// turnover cannot round to zero first.
		turnover := revenue / receivables
		out.ReceivablesTurnover = round2p(turnover)
		out.DaysSalesOutstanding = ptr(math.Round(365 / turnover))
	}
	return out
}
