package location

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHaversine(t *testing.T) {
	bucharest := LatLng{Lat: 44.4268, Lng: 26.1025}

	if got := Haversine(bucharest, bucharest); got != 0 {
		t.Errorf("distance to self = %v, want 0", got)
	}

	// One degree of longitude on the equator is R * pi/180 km.
	got := Haversine(LatLng{Lat: 0, Lng: 0}, LatLng{Lat: 0, Lng: 1})
	if want := EarthRadiusKM * math.Pi / 180; math.Abs(got-want) > 0.01 {
		t.Errorf("equator degree = %v, want %v", got, want)
	}

	cluj := LatLng{Lat: 46.7712, Lng: 23.6236}
	if got := Haversine(bucharest, cluj); math.Abs(got-324.2) > 1 {
		t.Errorf("Bucharest-Cluj = %v km, want about 324", got)
	}
	if got, rev := Haversine(bucharest, cluj), Haversine(cluj, bucharest); got != rev {
		t.Errorf("distance is not symmetric: %v vs %v", got, rev)
	}
}

func TestSaturationLevel(t *testing.T) {
	tests := []struct {
		count    int
		radiusKM float64
		want     string
	}{
		{30, 2, "Very High"},
		{20, 2, "High"},
		{10, 2, "Moderate"},
		{5, 2, "Low"},
		{0, 2, "Low"},
		{7, 1, "Very High"},
		{3, 1, "Moderate"},
	}
	for _, tt := range tests {
		if got := SaturationLevel(tt.count, tt.radiusKM); got != tt.want {
			t.Errorf("SaturationLevel(%d, %v) = %q, want %q", tt.count, tt.radiusKM, got, tt.want)
		}
	}
}

func TestViabilityScore(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 100},
		{5, 75},
		{19, 5},
		{20, 0},
		{30, 0},
	}
	for _, tt := range tests {
		if got := ViabilityScore(tt.count); got != tt.want {
			t.Errorf("ViabilityScore(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestAnalyzeDensity(t *testing.T) {
	center := LatLng{Lat: 44.4268, Lng: 26.1025}
	rating := func(v float64) *float64 { return &v }

	// Latitude offsets of 0.009 and 0.018 degrees are almost exactly 1 km
	// and 2 km along a meridian.
	competitors := []Place{
		{Name: "Cafe B", Rating: rating(4.0), Vicinity: "Strada B 2", Location: center},
		{Name: "Cafe A", Rating: rating(4.5), Vicinity: "Strada A 1", Location: LatLng{Lat: center.Lat + 0.009, Lng: center.Lng}},
		{Name: "Cafe C", Vicinity: "Strada C 3", Location: LatLng{Lat: center.Lat + 0.018, Lng: center.Lng}},
	}

	got := AnalyzeDensity(center, "cafe", 2, competitors)
	want := DensityReport{
		Location:        center,
		BusinessType:    "cafe",
		RadiusKM:        2,
		CompetitorCount: 3,
		SaturationLevel: "Low",
		ViabilityScore:  85,
		Metrics: DensityMetrics{
			AverageRating:       4.25,
			MedianRating:        4.25,
			TotalWithRatings:    2,
			AvgDistanceKM:       1.0,
			ClosestCompetitorKM: 0,
		},
		TopCompetitors: []Competitor{
			{Name: "Cafe A", Rating: 4.5, Address: "Strada A 1"},
			{Name: "Cafe B", Rating: 4.0, Address: "Strada B 2"},
			{Name: "Cafe C", Rating: 0, Address: "Strada C 3"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeDensityNoCompetitors(t *testing.T) {
	center := LatLng{Lat: 44.4268, Lng: 26.1025}

	got := AnalyzeDensity(center, "bakery", 2, nil)
	want := DensityReport{
		Location:        center,
		BusinessType:    "bakery",
		RadiusKM:        2,
		SaturationLevel: "Low",
		ViabilityScore:  100,
		TopCompetitors:  []Competitor{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("empty report mismatch (-want +got):\n%s", diff)
	}
}

func TestTopByRatingCapAndTies(t *testing.T) {
	rating := func(v float64) *float64 { return &v }
	competitors := []Place{
		{Name: "Alpha", Rating: rating(4.9)},
		{Name: "Bravo", Rating: rating(3.0)},
		{Name: "Gamma", Rating: rating(4.9)},
		{Name: "Delta"},
		{Name: "Echo", Rating: rating(4.2)},
		{Name: "Foxtrot", Rating: rating(5.0)},
		{Name: "Golf", Rating: rating(1.0)},
	}

	top := topByRating(competitors, 5)
	wantNames := []string{"Foxtrot", "Alpha", "Gamma", "Echo", "Bravo"}
	if len(top) != len(wantNames) {
		t.Fatalf("got %d competitors, want %d", len(top), len(wantNames))
	}
	for i, want := range wantNames {
		if top[i].Name != want {
			t.Errorf("top[%d] = %q, want %q", i, top[i].Name, want)
		}
	}
}

func TestScoreAccessibility(t *testing.T) {
	got := ScoreAccessibility([]AmenityCount{
		{Type: "transit_station", Count: 3},
		{Type: "parking", Count: 0},
		{Type: "supermarket", Count: 6},
		{Type: "bank", Count: 1},
		{Type: "pharmacy", Count: 2},
	})

	want := Accessibility{
		Score:  44.0,
		Rating: "Moderate",
		Amenities: map[string]AmenityScore{
			"transit_station": {Count: 3, Score: 6, Available: true},
			"parking":         {Count: 0, Score: 0, Available: false},
			"supermarket":     {Count: 6, Score: 10, Available: true},
			"bank":            {Count: 1, Score: 2, Available: true},
			"pharmacy":        {Count: 2, Score: 4, Available: true},
		},
		Summary: AccessibilitySummary{TotalFound: 12, TypesAvailable: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("accessibility mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreAccessibilityEmpty(t *testing.T) {
	got := ScoreAccessibility(nil)
	want := Accessibility{Rating: "Poor", Amenities: map[string]AmenityScore{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("empty accessibility mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreAccessibilityBands(t *testing.T) {
	// Per-type score saturates at 10, so these count mixes pin the score
	// exactly on each band edge.
	tests := []struct {
		counts    []int
		wantScore float64
		wantBand  string
	}{
		{[]int{5, 5, 5, 5, 5}, 100, "Excellent"},
		{[]int{5, 5, 5, 1}, 80, "Excellent"},
		{[]int{5, 5, 2, 0}, 60, "Good"},
		{[]int{5, 1, 1, 1}, 40, "Moderate"},
		{[]int{5, 1, 1, 0}, 35, "Poor"},
	}
	for _, tt := range tests {
		counts := make([]AmenityCount, len(tt.counts))
		for i, n := range tt.counts {
			counts[i] = AmenityCount{Type: fmt.Sprintf("type%d", i), Count: n}
		}
		got := ScoreAccessibility(counts)
		if got.Score != tt.wantScore || got.Rating != tt.wantBand {
			t.Errorf("ScoreAccessibility(%v) = %v %q, want %v %q",
				tt.counts, got.Score, got.Rating, tt.wantScore, tt.wantBand)
		}
	}
}

func TestRankByDistance(t *testing.T) {
	origin := LatLng{Lat: 44.4268, Lng: 26.1025}
	open := true
	places := []Place{
		{Name: "Far", Location: LatLng{Lat: origin.Lat + 0.018, Lng: origin.Lng}},
		{Name: "Near", OpenNow: &open, Location: LatLng{Lat: origin.Lat + 0.0045, Lng: origin.Lng}},
		{Name: "Mid", Location: LatLng{Lat: origin.Lat + 0.009, Lng: origin.Lng}},
	}

	ranked := RankByDistance(origin, places, 0)
	if len(ranked) != 3 {
		t.Fatalf("got %d amenities, want 3", len(ranked))
	}
	wantOrder := []string{"Near", "Mid", "Far"}
	wantDist := []float64{0.5, 1.0, 2.0}
	for i := range ranked {
		if ranked[i].Name != wantOrder[i] {
			t.Errorf("ranked[%d] = %q, want %q", i, ranked[i].Name, wantOrder[i])
		}
		if ranked[i].DistanceKM != wantDist[i] {
			t.Errorf("ranked[%d].DistanceKM = %v, want %v", i, ranked[i].DistanceKM, wantDist[i])
		}
	}
	if ranked[0].OpenNow == nil || !*ranked[0].OpenNow {
		t.Errorf("OpenNow not carried through: %+v", ranked[0])
	}

	capped := RankByDistance(origin, places, 2)
	if len(capped) != 2 || capped[0].Name != "Near" || capped[1].Name != "Mid" {
		t.Errorf("capped ranking = %+v", capped)
	}
}

func TestMedianOf(t *testing.T) {
	tests := []struct {
		vals []float64
		want float64
	}{
		{[]float64{7}, 7},
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		if got := medianOf(tt.vals); got != tt.want {
			t.Errorf("medianOf(%v) = %v, want %v", tt.vals, got, tt.want)
		}
	}
}
