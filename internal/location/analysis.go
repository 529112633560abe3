package location

import (
	"math"
	"sort"
)

// This file implements the pure site-analysis calculations. Everything
// here works on already-fetched places; no I/O.

// EarthRadiusKM is the haversine sphere radius.
const EarthRadiusKM = 6371

// DefaultAmenityTypes are the amenity categories scored when the caller
// does not choose their own.
var DefaultAmenityTypes = []string{"transit_station", "parking", "supermarket", "bank", "pharmacy"}

// Haversine returns the great-circle distance between two points in
// kilometers.
func Haversine(a, b LatLng) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dlat := radians(b.Lat - a.Lat)
	dlng := radians(b.Lng - a.Lng)

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return EarthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// SaturationLevel bands competitor density (competitors per square km)
// into a market saturation label.
func SaturationLevel(count int, radiusKM float64) string {
	density := float64(count) / (math.Pi * radiusKM * radiusKM)
	switch {
	case density > 2:
		return "Very High"
	case density > 1:
		return "High"
	case density > 0.5:
		return "Moderate"
	default:
		return "Low"
	}
}

// ViabilityScore rates a site 0-100 by competitor pressure alone: five
// points off per competitor in range.
func ViabilityScore(competitorCount int) int {
	score := 100 - competitorCount*5
	if score < 0 {
		return 0
	}
	return score
}

// ============================================================================
// COMPETITOR DENSITY
// ============================================================================

// DensityMetrics aggregates the competitor population around a site.
// Rating figures cover only competitors that have ratings.
type DensityMetrics struct {
	AverageRating       float64 `json:"average_rating"`
	MedianRating        float64 `json:"median_rating"`
	TotalWithRatings    int     `json:"total_with_ratings"`
	AvgDistanceKM       float64 `json:"avg_distance_km"`
	ClosestCompetitorKM float64 `json:"closest_competitor_km"`
}

// Competitor is one ranked entry in the density report.
type Competitor struct {
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"`
	Address string  `json:"address"`
}

// DensityReport is the full competitor-density analysis for one site.
type DensityReport struct {
	Location        LatLng         `json:"location"`
	BusinessType    string         `json:"business_type"`
	RadiusKM        float64        `json:"radius_km"`
	CompetitorCount int            `json:"competitor_count"`
	SaturationLevel string         `json:"saturation_level"`
	ViabilityScore  int            `json:"viability_score"`
	Metrics         DensityMetrics `json:"metrics"`
	TopCompetitors  []Competitor   `json:"top_competitors"`
}

// AnalyzeDensity scores the competitive landscape around center from the
// fetched competitor set.
func AnalyzeDensity(center LatLng, businessType string, radiusKM float64, competitors []Place) DensityReport {
	var ratings []float64
	var distances []float64
	for _, p := range competitors {
		if p.Rating != nil {
			ratings = append(ratings, *p.Rating)
		}
		distances = append(distances, Haversine(center, p.Location))
	}

	metrics := DensityMetrics{TotalWithRatings: len(ratings)}
	if len(ratings) > 0 {
		metrics.AverageRating = round2(meanOf(ratings))
		metrics.MedianRating = round2(medianOf(ratings))
	}
	if len(distances) > 0 {
		metrics.AvgDistanceKM = round2(meanOf(distances))
		closest := distances[0]
		for _, d := range distances[1:] {
			if d < closest {
				closest = d
			}
		}
		metrics.ClosestCompetitorKM = round2(closest)
	}

	return DensityReport{
		Location:        center,
		BusinessType:    businessType,
		RadiusKM:        radiusKM,
		CompetitorCount: len(competitors),
		SaturationLevel: SaturationLevel(len(competitors), radiusKM),
		ViabilityScore:  ViabilityScore(len(competitors)),
		Metrics:         metrics,
		TopCompetitors:  topByRating(competitors, 5),
	}
}

// topByRating keeps the n best-rated competitors, input order breaking
// rating ties.
func topByRating(competitors []Place, n int) []Competitor {
	ranked := make([]Place, len(competitors))
	copy(ranked, competitors)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ratingOf(ranked[i]) > ratingOf(ranked[j])
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	top := make([]Competitor, 0, len(ranked))
	for _, p := range ranked {
		top = append(top, Competitor{Name: p.Name, Rating: ratingOf(p), Address: p.Vicinity})
	}
	return top
}

func ratingOf(p Place) float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// ============================================================================
// ACCESSIBILITY
// ============================================================================

// AmenityCount is the fetched count for one amenity type, in the order
// the caller asked for them.
type AmenityCount struct {
	Type  string
	Count int
}

// AmenityScore is the per-type contribution to the accessibility score.
type AmenityScore struct {
	Count     int  `json:"count"`
	Score     int  `json:"score"`
	Available bool `json:"available"`
}

// AccessibilitySummary totals the amenity findings.
type AccessibilitySummary struct {
	TotalFound     int `json:"total_amenities_found"`
	TypesAvailable int `json:"types_available"`
}

// Accessibility is the scored accessibility profile of a site.
type Accessibility struct {
	Score     float64                 `json:"accessibility_score"`
	Rating    string                  `json:"rating"`
	Amenities map[string]AmenityScore `json:"amenities_analyzed"`
	Summary   AccessibilitySummary    `json:"summary"`
}

// ScoreAccessibility turns per-type amenity counts into a 0-100 score.
// Each type earns min(count x 2, 10) of 10 achievable points; the score
// is the earned percentage.
func ScoreAccessibility(counts []AmenityCount) Accessibility {
	acc := Accessibility{
		Amenities: make(map[string]AmenityScore, len(counts)),
	}
	if len(counts) == 0 {
		acc.Rating = accessibilityRating(0)
		return acc
	}

	total := 0
	for _, ac := range counts {
		score := ac.Count * 2
		if score > 10 {
			score = 10
		}
		total += score
		acc.Amenities[ac.Type] = AmenityScore{
			Count:     ac.Count,
			Score:     score,
			Available: ac.Count > 0,
		}
		acc.Summary.TotalFound += ac.Count
		if ac.Count > 0 {
			acc.Summary.TypesAvailable++
		}
	}

	maxScore := len(counts) * 10
	acc.Score = round1(float64(total) / float64(maxScore) * 100)
	acc.Rating = accessibilityRating(acc.Score)
	return acc
}

func accessibilityRating(score float64) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Moderate"
	default:
		return "Poor"
	}
}

// ============================================================================
// NEARBY RANKING
// ============================================================================

// Amenity is one nearby place with its distance from the search origin.
type Amenity struct {
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Rating       float64 `json:"rating"`
	TotalRatings int     `json:"total_ratings"`
	DistanceKM   float64 `json:"distance_km"`
	PlaceID      string  `json:"place_id"`
	OpenNow      *bool   `json:"open_now,omitempty"`
	Location     LatLng  `json:"location"`
}

// RankByDistance orders places by distance from origin, closest first,
// keeping at most max entries.
func RankByDistance(origin LatLng, places []Place, max int) []Amenity {
	amenities := make([]Amenity, 0, len(places))
	for _, p := range places {
		amenities = append(amenities, Amenity{
			Name:         p.Name,
			Address:      p.Vicinity,
			Rating:       ratingOf(p),
			TotalRatings: p.TotalRatings,
			DistanceKM:   round2(Haversine(origin, p.Location)),
			PlaceID:      p.PlaceID,
			OpenNow:      p.OpenNow,
			Location:     p.Location,
		})
	}
	sort.SliceStable(amenities, func(i, j int) bool {
		return amenities[i].DistanceKM < amenities[j].DistanceKM
	})
	if max > 0 && len(amenities) > max {
		amenities = amenities[:max]
	}
	return amenities
}

// ============================================================================
// SMALL MATH
// ============================================================================

func meanOf(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func medianOf(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
