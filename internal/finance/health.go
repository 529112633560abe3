package finance

import "math"

// =============================================================================
// FINANCIAL HEALTH SCORE
// =============================================================================
// Weighted band rubric over six ratios. Each band only participates when
// its ratio is computable: a nil ratio contributes nothing and its weight
// is removed from the achievable maximum, so a company with no interest
// expense is not penalized for an uncomputable coverage ratio. The final
// score is earned/achievable normalized to 0-100.

// Rating labels for the 0-100 health score.
const (
	RatingExcellent = "Excellent"
	RatingGood      = "Good"
	RatingFair      = "Fair"
	RatingPoor      = "Poor"
	RatingCritical  = "Critical"
)

// HealthScore is the composite 0-100 soundness summary.
type HealthScore struct {
	Score          int              `json:"score"`
	Rating         string           `json:"rating"`
	Interpretation string           `json:"interpretation"`
	Components     []ScoreComponent `json:"components"`
}

// ScoreComponent records how one ratio band contributed to the score.
type ScoreComponent struct {
	Name       string   `json:"name"`
	Ratio      *float64 `json:"ratio"`
	Earned     int      `json:"earned"`
	Achievable int      `json:"achievable"`
}

// healthBand is one step in a descending threshold table.
type healthBand struct {
	limit  float64
	points int
}

// Threshold tables are fixed business rules, not tunables.
var (
	currentRatioBands = []healthBand{{2.0, 25}, {1.5, 20}, {1.0, 15}, {0.5, 10}}
	netMarginBands    = []healthBand{{15, 20}, {10, 15}, {5, 10}, {0, 5}}
	roeBands          = []healthBand{{20, 10}, {15, 8}, {10, 6}, {5, 4}, {0, 2}}
	debtToEquityBands = []healthBand{{0.5, 15}, {1.0, 12}, {2.0, 8}, {3.0, 4}}
	coverageBands     = []healthBand{{5, 10}, {3, 8}, {2, 6}, {1, 4}}
	assetTurnoverBand = []healthBand{{2.0, 20}, {1.5, 15}, {1.0, 10}, {0.5, 5}}
)

// bandPoints walks a descending at-least table: first threshold the value
// meets wins, otherwise the floor.
func bandPoints(value float64, bands []healthBand, floor int) int {
	for _, b := range bands {
		if value >= b.limit {
			return b.points
		}
	}
	return floor
}

// bandPointsInverted walks an ascending at-most table for ratios where
// lower is better.
func bandPointsInverted(value float64, bands []healthBand, floor int) int {
	for _, b := range bands {
		if value <= b.limit {
			return b.points
		}
	}
	return floor
}

// Health scores a RatioSet on the 0-100 scale. A record where no ratio is
// computable scores 0 and rates Critical.
func Health(rs RatioSet) HealthScore {
	components := []ScoreComponent{
		healthComponent("current_ratio", rs.Liquidity.CurrentRatio, 25, func(v float64) int {
			return bandPoints(v, currentRatioBands, 5)
		}),
		healthComponent("net_profit_margin", rs.Profitability.NetProfitMargin, 20, func(v float64) int {
			return bandPoints(v, netMarginBands, 0)
		}),
		healthComponent("roe", rs.Profitability.ROE, 10, func(v float64) int {
			return bandPoints(v, roeBands, 0)
		}),
		healthComponent("debt_to_equity", rs.Solvency.DebtToEquity, 15, func(v float64) int {
			return bandPointsInverted(v, debtToEquityBands, 0)
		}),
		healthComponent("interest_coverage", rs.Solvency.InterestCoverage, 10, func(v float64) int {
			return bandPoints(v, coverageBands, 0)
		}),
		healthComponent("asset_turnover", rs.Efficiency.AssetTurnover, 20, func(v float64) int {
			return bandPoints(v, assetTurnoverBand, 0)
		}),
	}

	earned, achievable := 0, 0
	for _, c := range components {
		earned += c.Earned
		achievable += c.Achievable
	}

	score := 0
	if achievable > 0 {
		score = int(math.Round(float64(earned) / float64(achievable) * 100))
	}
	rating := healthRating(score)

	return HealthScore{
		Score:          score,
		Rating:         rating,
		Interpretation: healthInterpretation(rating),
		Components:     components,
	}
}

func healthComponent(name string, ratio *float64, weight int, score func(float64) int) ScoreComponent {
	c := ScoreComponent{Name: name, Ratio: ratio}
	if ratio == nil {
		return c
	}
	c.Earned = score(*ratio)
	c.Achievable = weight
	return c
}

func healthRating(score int) string {
	switch {
	case score >= 80:
		return RatingExcellent
	case score >= 65:
		return RatingGood
	case score >= 50:
		return RatingFair
	case score >= 35:
		return RatingPoor
	default:
		return RatingCritical
	}
}

func healthInterpretation(rating string) string {
	switch rating {
	case RatingExcellent:
		return "Excellent - Very strong financial position"
	case RatingGood:
		return "Good - Solid financial health"
	case RatingFair:
		return "Fair - Adequate but room for improvement"
	case RatingPoor:
		return "Poor - Concerning financial weakness"
	default:
		return "Critical - Severe financial distress"
	}
}
