// Package targetare implements the typed client for the Targetare company
// registry API, the primary upstream for Romanian company data. It layers
// identifier normalization, tolerant wire decoding, and a read-through
// response cache on top of the shared request executor.
//
// This file implements decoding of financial statement payloads. The API
// is loose about types: figures arrive as JSON numbers, numeric strings,
// or null, and the financial endpoint answers with either a single object
// or an array of per-year objects.
package targetare

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"fintel/internal/finance"
)

// ============================================================================
// TOLERANT SCALAR DECODING
// ============================================================================

// flexFloat decodes a figure that may arrive as a number, a numeric string,
// or null. Anything that does not parse as a number is treated as absent
// rather than failing the whole payload.
type flexFloat struct {
	v  float64
	ok bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	f.v, f.ok = 0, false
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f.v, f.ok = v, true
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	f.v, f.ok = v, true
	return nil
}

// ptr returns the decoded value boxed, or nil when absent.
func (f flexFloat) ptr() *float64 {
	if !f.ok {
		return nil
	}
	v := f.v
	return &v
}

// flexInt is flexFloat for integral fields such as the fiscal year.
type flexInt struct {
	v  int
	ok bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var inner flexFloat
	_ = inner.UnmarshalJSON(data)
	f.v, f.ok = int(inner.v), inner.ok
	return nil
}

// ============================================================================
// FINANCIAL RECORDS
// ============================================================================

// wireRecord mirrors one fiscal year as the API serializes it.
type wireRecord struct {
	Year               flexInt   `json:"year"`
	Revenue            flexFloat `json:"revenue"`
	CostOfGoodsSold    flexFloat `json:"cost_of_goods_sold"`
	OperatingIncome    flexFloat `json:"operating_income"`
	NetIncome          flexFloat `json:"net_income"`
	EBIT               flexFloat `json:"ebit"`
	InterestExpense    flexFloat `json:"interest_expense"`
	CurrentAssets      flexFloat `json:"current_assets"`
	CurrentLiabilities flexFloat `json:"current_liabilities"`
	Inventory          flexFloat `json:"inventory"`
	Cash               flexFloat `json:"cash"`
	AccountsReceivable flexFloat `json:"accounts_receivable"`
	TotalAssets        flexFloat `json:"total_assets"`
	TotalEquity        flexFloat `json:"total_equity"`
	TotalDebt          flexFloat `json:"total_debt"`
}

func (w wireRecord) toRecord() finance.Record {
	return finance.Record{
		Year:               w.Year.v,
		Revenue:            w.Revenue.ptr(),
		CostOfGoodsSold:    w.CostOfGoodsSold.ptr(),
		OperatingIncome:    w.OperatingIncome.ptr(),
		NetIncome:          w.NetIncome.ptr(),
		EBIT:               w.EBIT.ptr(),
		InterestExpense:    w.InterestExpense.ptr(),
		CurrentAssets:      w.CurrentAssets.ptr(),
		CurrentLiabilities: w.CurrentLiabilities.ptr(),
		Inventory:          w.Inventory.ptr(),
		Cash:               w.Cash.ptr(),
		AccountsReceivable: w.AccountsReceivable.ptr(),
		TotalAssets:        w.TotalAssets.ptr(),
		TotalEquity:        w.TotalEquity.ptr(),
		TotalDebt:          w.TotalDebt.ptr(),
	}
}

// decodeHistory normalizes a financial payload into records sorted by year
// ascending. The endpoint answers with an array of per-year objects for
// companies with filing history and a bare object for single-year data.
func decodeHistory(body []byte) ([]finance.Record, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, nil
	}

	var wires []wireRecord
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &wires); err != nil {
			return nil, err
		}
	} else {
		var single wireRecord
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, err
		}
		wires = []wireRecord{single}
	}

	records := make([]finance.Record, 0, len(wires))
	for _, w := range wires {
		records = append(records, w.toRecord())
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Year < records[j].Year
	})
	return records, nil
}
