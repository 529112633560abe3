package intel

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"fintel/internal/errs"
	"fintel/internal/location"
	"fintel/internal/logging"
)

const (
	// DefaultCityRadiusKM bounds a city-wide business search around the
	// geocoded city center.
	DefaultCityRadiusKM = 5.0

	// DefaultNearbyRadiusM is the walking-scale radius for amenity lookups.
	DefaultNearbyRadiusM = 1000

	// DefaultDensityRadiusKM is the catchment radius for competitor
	// density analysis.
	DefaultDensityRadiusKM = 2.0

	// cityResultLimit caps how many ranked locations a city search returns.
	cityResultLimit = 20
)

func validCoords(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return errs.Validationf("latitude must be between -90 and 90, got %g", lat)
	}
	if lng < -180 || lng > 180 {
		return errs.Validationf("longitude must be between -180 and 180, got %g", lng)
	}
	return nil
}

func formatCoords(at location.LatLng) string {
	return strconv.FormatFloat(at.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(at.Lng, 'f', -1, 64)
}

// =============================================================================
// GEOCODING AND TRAVEL PASS-THROUGHS
// =============================================================================

// Geocode resolves a free-form address to its best geocoder match.
func (s *Service) Geocode(ctx context.Context, address string) (location.GeocodeResult, error) {
	results, err := s.maps.Geocode(ctx, address)
	if err != nil {
		return location.GeocodeResult{}, err
	}
	if len(results) == 0 {
		return location.GeocodeResult{}, &errs.NotFoundError{Resource: "address", ID: strings.TrimSpace(address)}
	}
	return results[0], nil
}

// ReverseGeocode resolves coordinates to their best address match.
func (s *Service) ReverseGeocode(ctx context.Context, lat, lng float64) (location.GeocodeResult, error) {
	if err := validCoords(lat, lng); err != nil {
		return location.GeocodeResult{}, err
	}
	at := location.LatLng{Lat: lat, Lng: lng}
	results, err := s.maps.ReverseGeocode(ctx, at)
	if err != nil {
		return location.GeocodeResult{}, err
	}
	if len(results) == 0 {
		return location.GeocodeResult{}, &errs.NotFoundError{Resource: "location", ID: formatCoords(at)}
	}
	return results[0], nil
}

// TravelMatrix computes travel distances and durations between every
// origin-destination pair.
func (s *Service) TravelMatrix(ctx context.Context, origins, destinations []string, mode string) (*location.Matrix, error) {
	return s.maps.DistanceMatrix(ctx, origins, destinations, mode)
}

// =============================================================================
// SITE ANALYSIS
// =============================================================================

// CitySearch lists businesses around a geocoded city center, closest first.
type CitySearch struct {
	City         string             `json:"city"`
	BusinessType string             `json:"business_type,omitempty"`
	Center       location.LatLng    `json:"center"`
	RadiusKM     float64            `json:"radius_km"`
	TotalFound   int                `json:"total_found"`
	Locations    []location.Amenity `json:"locations"`
}

// SearchCity geocodes "<city>, Romania" and searches for businesses around
// the center. An empty business type returns whatever the places index
// considers prominent there.
func (s *Service) SearchCity(ctx context.Context, city, businessType string) (CitySearch, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return CitySearch{}, errs.Validationf("city is required")
	}

	matches, err := s.maps.Geocode(ctx, city+", Romania")
	if err != nil {
		return CitySearch{}, err
	}
	if len(matches) == 0 {
		return CitySearch{}, &errs.NotFoundError{Resource: "city", ID: city}
	}
	center := matches[0].Location

	places, err := s.maps.PlacesNearby(ctx, location.NearbyQuery{
		Center:       center,
		RadiusMeters: int(DefaultCityRadiusKM * 1000),
		Keyword:      strings.TrimSpace(businessType),
	})
	if err != nil {
		return CitySearch{}, err
	}
	logging.Location("City search %q (%s): %d places", city, businessType, len(places))

	return CitySearch{
		City:         city,
		BusinessType: strings.TrimSpace(businessType),
		Center:       center,
		RadiusKM:     DefaultCityRadiusKM,
		TotalFound:   len(places),
		Locations:    location.RankByDistance(center, places, cityResultLimit),
	}, nil
}

// NearbyAmenities lists amenities around a point, closest first.
type NearbyAmenities struct {
	Center       location.LatLng    `json:"center"`
	RadiusMeters int                `json:"radius_meters"`
	AmenityType  string             `json:"amenity_type,omitempty"`
	TotalFound   int                `json:"total_found"`
	Amenities    []location.Amenity `json:"amenities"`
}

// FindNearbyAmenities searches around a point, optionally narrowed to one
// places type. A non-positive radius falls back to the walking-scale
// default.
func (s *Service) FindNearbyAmenities(ctx context.Context, lat, lng float64, radiusMeters int, amenityType string) (NearbyAmenities, error) {
	if err := validCoords(lat, lng); err != nil {
		return NearbyAmenities{}, err
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultNearbyRadiusM
	}

	center := location.LatLng{Lat: lat, Lng: lng}
	places, err := s.maps.PlacesNearby(ctx, location.NearbyQuery{
		Center:       center,
		RadiusMeters: radiusMeters,
		Type:         strings.TrimSpace(amenityType),
	})
	if err != nil {
		return NearbyAmenities{}, err
	}

	return NearbyAmenities{
		Center:       center,
		RadiusMeters: radiusMeters,
		AmenityType:  strings.TrimSpace(amenityType),
		TotalFound:   len(places),
		Amenities:    location.RankByDistance(center, places, 0),
	}, nil
}

// CompetitorDensity analyzes the competitive landscape for one business
// type around a point. A non-positive radius falls back to the catchment
// default.
func (s *Service) CompetitorDensity(ctx context.Context, lat, lng float64, businessType string, radiusKM float64) (location.DensityReport, error) {
	if err := validCoords(lat, lng); err != nil {
		return location.DensityReport{}, err
	}
	businessType = strings.TrimSpace(businessType)
	if businessType == "" {
		return location.DensityReport{}, errs.Validationf("business type is required")
	}
	if radiusKM <= 0 {
		radiusKM = DefaultDensityRadiusKM
	}

	center := location.LatLng{Lat: lat, Lng: lng}
	competitors, err := s.maps.PlacesNearby(ctx, location.NearbyQuery{
		Center:       center,
		RadiusMeters: int(radiusKM * 1000),
		Keyword:      businessType,
	})
	if err != nil {
		return location.DensityReport{}, err
	}

	report := location.AnalyzeDensity(center, businessType, radiusKM, competitors)
	logging.Location("Density at %s: %d %s competitors, %s saturation",
		formatCoords(center), report.CompetitorCount, businessType, report.SaturationLevel)
	return report, nil
}

// AccessibilityScore rates a site by the amenities reachable around it.
// Every amenity type is counted in parallel; the first lookup failure
// fails the whole score.
func (s *Service) AccessibilityScore(ctx context.Context, lat, lng float64) (location.Accessibility, error) {
	if err := validCoords(lat, lng); err != nil {
		return location.Accessibility{}, err
	}
	center := location.LatLng{Lat: lat, Lng: lng}

	var (
		g         errgroup.Group
		counts    = make([]location.AmenityCount, len(location.DefaultAmenityTypes))
		fetchErrs = make([]error, len(location.DefaultAmenityTypes))
	)
	for i, amenityType := range location.DefaultAmenityTypes {
		g.Go(func() error {
			places, err := s.maps.PlacesNearby(ctx, location.NearbyQuery{
				Center:       center,
				RadiusMeters: DefaultNearbyRadiusM,
				Type:         amenityType,
			})
			if err != nil {
				fetchErrs[i] = err
				return nil
			}
			counts[i] = location.AmenityCount{Type: amenityType, Count: len(places)}
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range fetchErrs {
		if err != nil {
			return location.Accessibility{}, err
		}
	}

	score := location.ScoreAccessibility(counts)
	logging.Location("Accessibility at %s: %g%% (%s)", formatCoords(center), score.Score, score.Rating)
	return score, nil
}
