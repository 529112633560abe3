package finance

// =============================================================================
// CREDIT RISK ASSESSMENT
// =============================================================================
// Lending-oriented rubric over five ratios, deliberately separate from the
// health score: it weighs solvency harder and attaches named risk factors
// to critical shortfalls. The score is a raw sum out of 100 with no
// renormalization; a ratio that cannot be computed simply earns nothing.

// CreditAssessment is the composite lending risk verdict.
type CreditAssessment struct {
	Score              int           `json:"credit_score"`
	Rating             string        `json:"credit_rating"`
	RiskLevel          string        `json:"risk_level"`
	DefaultProbability string        `json:"default_probability"`
	InvestmentGrade    bool          `json:"investment_grade"`
	KeyMetrics         CreditMetrics `json:"key_metrics"`
	RiskFactors        []string      `json:"risk_factors"`
	Recommendations    []string      `json:"recommendations"`
}

// CreditMetrics echoes the ratios the rubric scored, nil where uncomputable.
type CreditMetrics struct {
	CurrentRatio     *float64 `json:"current_ratio"`
	NetProfitMargin  *float64 `json:"net_profit_margin"`
	DebtToEquity     *float64 `json:"debt_to_equity"`
	InterestCoverage *float64 `json:"interest_coverage"`
	ROA              *float64 `json:"roa"`
}

// creditGrade maps a minimum score to its letter, risk level, and
// default-probability band.
type creditGrade struct {
	minScore    int
	letter      string
	riskLevel   string
	defaultProb string
}

// Ten-band ordinal scale, best first.
var creditGrades = []creditGrade{
	{90, "AAA", "Minimal", "< 0.5%"},
	{80, "AA", "Very Low", "0.5-1%"},
	{70, "A", "Low", "1-2%"},
	{60, "BBB", "Moderate", "2-5%"},
	{50, "BB", "Elevated", "5-10%"},
	{40, "B", "High", "10-20%"},
	{30, "CCC", "Very High", "20-35%"},
	{20, "CC", "Substantial", "35-50%"},
	{10, "C", "Extremely High", "50-75%"},
	{0, "D", "Default Imminent", "> 75%"},
}

// investmentGradeFloor is the BBB cutoff.
const investmentGradeFloor = 60

// Credit assesses lending risk from a RatioSet.
func Credit(rs RatioSet) CreditAssessment {
	metrics := CreditMetrics{
		CurrentRatio:     rs.Liquidity.CurrentRatio,
		NetProfitMargin:  rs.Profitability.NetProfitMargin,
		DebtToEquity:     rs.Solvency.DebtToEquity,
		InterestCoverage: rs.Solvency.InterestCoverage,
		ROA:              rs.Profitability.ROA,
	}

	score := 0
	var riskFactors []string

	if cr := metrics.CurrentRatio; cr != nil {
		switch {
		case *cr >= 2.0:
			score += 25
		case *cr >= 1.5:
			score += 20
		case *cr >= 1.0:
			score += 15
		case *cr >= 0.75:
			score += 10
		default:
			score += 5
			riskFactors = append(riskFactors, "Critical liquidity shortage")
		}
	}

	if npm := metrics.NetProfitMargin; npm != nil {
		switch {
		case *npm >= 10:
			score += 20
		case *npm >= 5:
			score += 15
		case *npm >= 2:
			score += 10
		case *npm >= 0:
			score += 5
		default:
			riskFactors = append(riskFactors, "Operating losses detected")
		}
	}

	if dte := metrics.DebtToEquity; dte != nil {
		switch {
		case *dte <= 0.5:
			score += 20
		case *dte <= 1.0:
			score += 15
		case *dte <= 2.0:
			score += 10
		case *dte <= 3.0:
			score += 5
		default:
			riskFactors = append(riskFactors, "Excessive leverage")
		}
	}

	if ic := metrics.InterestCoverage; ic != nil {
		switch {
		case *ic >= 5:
			score += 15
		case *ic >= 3:
			score += 12
		case *ic >= 2:
			score += 8
		case *ic >= 1:
			score += 4
		default:
			riskFactors = append(riskFactors, "Insufficient interest coverage")
		}
	}

	if roa := metrics.ROA; roa != nil {
		switch {
		case *roa >= 15:
			score += 20
		case *roa >= 10:
			score += 15
		case *roa >= 5:
			score += 10
		case *roa >= 0:
			score += 5
		}
	}

	grade := gradeFor(score)
	if len(riskFactors) == 0 {
		riskFactors = []string{"No significant risk factors identified"}
	}

	return CreditAssessment{
		Score:              score,
		Rating:             grade.letter,
		RiskLevel:          grade.riskLevel,
		DefaultProbability: grade.defaultProb,
		InvestmentGrade:    score >= investmentGradeFloor,
		KeyMetrics:         metrics,
		RiskFactors:        riskFactors,
		Recommendations:    creditRecommendations(score, metrics),
	}
}

func gradeFor(score int) creditGrade {
	for _, g := range creditGrades {
		if score >= g.minScore {
			return g
		}
	}
	return creditGrades[len(creditGrades)-1]
}

func creditRecommendations(score int, m CreditMetrics) []string {
	var recs []string
	if score < investmentGradeFloor {
		recs = append(recs, "Consider requiring additional collateral or guarantees")
	}
	if m.CurrentRatio != nil && *m.CurrentRatio < 1.0 {
		recs = append(recs, "Monitor cash flow closely - liquidity concerns")
	}
	if m.DebtToEquity != nil && *m.DebtToEquity > 2.0 {
		recs = append(recs, "High leverage - recommend debt restructuring")
	}
	if len(recs) == 0 {
		recs = append(recs, "Creditworthy - acceptable risk profile")
	}
	return recs
}
