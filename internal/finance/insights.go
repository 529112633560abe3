package finance

// RatioInsights is the qualitative read of a RatioSet: what stands out,
// what worries, and what to do about it. A ratio that could not be
// computed triggers neither praise nor concern.
type RatioInsights struct {
	Strengths       []string `json:"key_strengths"`
	Weaknesses      []string `json:"key_weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// Insights derives strengths, weaknesses, and recommendations from a
// computed RatioSet.
func Insights(rs RatioSet) RatioInsights {
	var strengths, weaknesses, recs []string

	if cr := rs.Liquidity.CurrentRatio; cr != nil {
		if *cr >= 1.5 {
			strengths = append(strengths, "Strong liquidity position")
		} else if *cr < 1.0 {
			weaknesses = append(weaknesses, "Weak liquidity - may struggle with short-term obligations")
			recs = append(recs, "Improve working capital management")
		}
	}

	if npm := rs.Profitability.NetProfitMargin; npm != nil {
		if *npm >= 10 {
			strengths = append(strengths, "Excellent profit margins")
		} else if *npm < 0 {
			weaknesses = append(weaknesses, "Negative profitability - operating at a loss")
		}
		if *npm < 5 {
			recs = append(recs, "Focus on cost reduction and margin improvement")
		}
	}

	if dte := rs.Solvency.DebtToEquity; dte != nil {
		if *dte <= 1.0 {
			strengths = append(strengths, "Conservative leverage")
		} else if *dte > 2.0 {
			weaknesses = append(weaknesses, "High leverage - elevated financial risk")
			recs = append(recs, "Consider debt reduction strategies")
		}
	}

	if len(strengths) == 0 {
		strengths = []string{"No significant strengths identified"}
	}
	if len(weaknesses) == 0 {
		weaknesses = []string{"No significant weaknesses identified"}
	}
	if len(recs) == 0 {
		recs = []string{"Maintain current financial discipline"}
	}

	return RatioInsights{
		Strengths:       strengths,
		Weaknesses:      weaknesses,
		Recommendations: recs,
	}
}
