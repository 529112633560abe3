package finance

import "testing"

// ratioSetWith builds a RatioSet holding only the six scored ratios.
// A nil pointer leaves that band out of the achievable maximum.
func ratioSetWith(cr, npm, roe, dte, ic, at *float64) RatioSet {
	return RatioSet{
		Liquidity:     LiquidityRatios{CurrentRatio: cr},
		Profitability: ProfitabilityRatios{NetProfitMargin: npm, ROE: roe},
		Solvency:      SolvencyRatios{DebtToEquity: dte, InterestCoverage: ic},
		Efficiency:    EfficiencyRatios{AssetTurnover: at},
	}
}

func TestHealth_AllNilScoresZeroCritical(t *testing.T) {
	got := Health(RatioSet{})

	if got.Score != 0 {
		t.Errorf("score = %d, want 0", got.Score)
	}
	if got.Rating != RatingCritical {
		t.Errorf("rating = %q, want %q", got.Rating, RatingCritical)
	}
	if got.Interpretation != "Critical - Severe financial distress" {
		t.Errorf("interpretation = %q", got.Interpretation)
	}
	for _, c := range got.Components {
		if c.Earned != 0 || c.Achievable != 0 {
			t.Errorf("component %s: earned %d achievable %d, want 0/0", c.Name, c.Earned, c.Achievable)
		}
	}
}

func TestHealth_TopOfEveryBand(t *testing.T) {
	got := Health(ratioSetWith(ptr(2.5), ptr(16), ptr(22), ptr(0.4), ptr(6), ptr(2.1)))

	if got.Score != 100 {
		t.Errorf("score = %d, want 100", got.Score)
	}
	if got.Rating != RatingExcellent {
		t.Errorf("rating = %q, want %q", got.Rating, RatingExcellent)
	}
}

func TestHealth_NilBandsExcludedFromAchievable(t *testing.T) {
	// Only the current ratio is computable: 25 of 25 achievable points.
	got := Health(ratioSetWith(ptr(2.0), nil, nil, nil, nil, nil))
	if got.Score != 100 {
		t.Errorf("score with lone perfect liquidity = %d, want 100", got.Score)
	}

	// Same shape at the bottom band: 5 of 25.
	got = Health(ratioSetWith(ptr(0.4), nil, nil, nil, nil, nil))
	if got.Score != 20 {
		t.Errorf("score with lone weak liquidity = %d, want 20", got.Score)
	}
	if got.Rating != RatingCritical {
		t.Errorf("rating = %q, want %q", got.Rating, RatingCritical)
	}
}

func TestHealth_PresentZeroIsEvaluated(t *testing.T) {
	// A computed 0.0 ratio lands in the floor band; it is not treated as
	// absent.
	got := Health(ratioSetWith(ptr(0.0), nil, nil, nil, nil, nil))
	if got.Score != 20 {
		t.Errorf("score = %d, want 20 (5 of 25 achievable)", got.Score)
	}
}

func TestHealth_MixedNormalizationRounds(t *testing.T) {
	// current_ratio 1.0 earns 15/25, net margin 5 earns 10/20:
	// 25/45 = 55.55...% rounds to 56.
	got := Health(ratioSetWith(ptr(1.0), ptr(5), nil, nil, nil, nil))
	if got.Score != 56 {
		t.Errorf("score = %d, want 56", got.Score)
	}
	if got.Rating != RatingFair {
		t.Errorf("rating = %q, want %q", got.Rating, RatingFair)
	}
}

func TestHealth_BandPoints(t *testing.T) {
	tests := []struct {
		name string
		rs   RatioSet
		want int
	}{
		{"current ratio at 1.5 boundary", ratioSetWith(ptr(1.5), nil, nil, nil, nil, nil), 80},
		{"current ratio just under 0.5", ratioSetWith(ptr(0.49), nil, nil, nil, nil, nil), 20},
		{"net margin exactly 0", ratioSetWith(nil, ptr(0.0), nil, nil, nil, nil), 25},
		{"negative margin earns nothing", ratioSetWith(nil, ptr(-4), nil, nil, nil, nil), 0},
		{"roe at 5 boundary", ratioSetWith(nil, nil, ptr(5.0), nil, nil, nil), 40},
		{"leverage at 3.0 boundary", ratioSetWith(nil, nil, nil, ptr(3.0), nil, nil), 27},
		{"leverage above 3.0", ratioSetWith(nil, nil, nil, ptr(3.01), nil, nil), 0},
		{"coverage at 1 boundary", ratioSetWith(nil, nil, nil, nil, ptr(1.0), nil), 40},
		{"asset turnover below 0.5", ratioSetWith(nil, nil, nil, nil, nil, ptr(0.49)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Health(tt.rs); got.Score != tt.want {
				t.Errorf("Health().Score = %d, want %d", got.Score, tt.want)
			}
		})
	}
}

func TestHealth_ScoreAlwaysWithinRange(t *testing.T) {
	sets := []RatioSet{
		{},
		ratioSetWith(ptr(-10), ptr(-90), ptr(-50), ptr(99), ptr(-3), ptr(0)),
		ratioSetWith(ptr(900), ptr(900), ptr(900), ptr(0), ptr(900), ptr(900)),
		Ratios(fullRecord()),
	}
	for i, rs := range sets {
		got := Health(rs)
		if got.Score < 0 || got.Score > 100 {
			t.Errorf("set %d: score %d outside [0,100]", i, got.Score)
		}
	}
}

func TestHealthRatingBands(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, RatingExcellent},
		{80, RatingExcellent},
		{79, RatingGood},
		{65, RatingGood},
		{64, RatingFair},
		{50, RatingFair},
		{49, RatingPoor},
		{35, RatingPoor},
		{34, RatingCritical},
		{0, RatingCritical},
	}
	for _, tt := range tests {
		if got := healthRating(tt.score); got != tt.want {
			t.Errorf("healthRating(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
