// Package finance implements the pure financial metrics engine:
// ratio calculation, health scoring, credit assessment, trend analysis,
// peer comparison, and industry benchmarking for Romanian company data.
// Every function here is deterministic and does no I/O; callers fetch
// records and feed them in.
package finance

import "math"

// Record is one fiscal year of reported figures for a company.
// Fields are pointers because the registry omits anything a company did
// not file; an absent field is not the same as a reported zero. Ratio
// math treats absent numerators as zero but refuses to divide by an
// absent or non-positive denominator.
type Record struct {
	Year               int      `json:"year,omitempty"`
	Revenue            *float64 `json:"revenue,omitempty"`
	CostOfGoodsSold    *float64 `json:"cost_of_goods_sold,omitempty"`
	OperatingIncome    *float64 `json:"operating_income,omitempty"`
	NetIncome          *float64 `json:"net_income,omitempty"`
	EBIT               *float64 `json:"ebit,omitempty"`
	InterestExpense    *float64 `json:"interest_expense,omitempty"`
	CurrentAssets      *float64 `json:"current_assets,omitempty"`
	CurrentLiabilities *float64 `json:"current_liabilities,omitempty"`
	Inventory          *float64 `json:"inventory,omitempty"`
	Cash               *float64 `json:"cash,omitempty"`
	AccountsReceivable *float64 `json:"accounts_receivable,omitempty"`
	TotalAssets        *float64 `json:"total_assets,omitempty"`
	TotalEquity        *float64 `json:"total_equity,omitempty"`
	TotalDebt          *float64 `json:"total_debt,omitempty"`
}

// Latest returns the most recent fiscal year in records, preferring the
// highest Year value and falling back to the last element when no record
// carries a year. The second return is false for an empty slice.
func Latest(records []Record) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	best := records[0]
	for _, r := range records[1:] {
		if r.Year >= best.Year {
			best = r
		}
	}
	return best, true
}

// val reads an optional figure, coercing absent to zero.
func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// ptr boxes a float for optional fields.
func ptr(v float64) *float64 {
	return &v
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 rounds half away from zero to one decimal.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2p is round2 boxed for ratio fields.
func round2p(v float64) *float64 {
	return ptr(round2(v))
}
