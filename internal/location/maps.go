// Package location provides location intelligence for site analysis: a
// typed client for the Maps Platform web services plus pure scoring
// helpers (competitor saturation, accessibility, viability) that work on
// fetched places without further I/O.
package location

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintel/internal/config"
	"fintel/internal/errs"
	"fintel/internal/logging"
	"fintel/internal/upstream"
)

// DefaultBaseURL is the Maps Platform web service root.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api"

// Maps service status codes the client treats specially. Every other
// status is a request failure.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// ErrNotConfigured is returned when no Maps API key is present. Location
// intelligence is an optional capability.
var ErrNotConfigured = errors.New("maps not configured: set maps.api_key")

// TravelModes are the accepted distance matrix travel modes.
var TravelModes = []string{"driving", "walking", "bicycling", "transit"}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (l LatLng) param() string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

// Client calls the Maps Platform web services through the shared
// executor, one HTTP call per logical operation.
type Client struct {
	exec    *upstream.Executor
	base    string
	key     string
	timeout time.Duration
}

// NewClient wires a Maps client. With an empty API key every operation
// fails with ErrNotConfigured.
func NewClient(exec *upstream.Executor, cfg config.MapsConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{exec: exec, base: base, key: cfg.APIKey, timeout: cfg.RequestTimeout()}
}

// Configured reports whether the client can reach the Maps services. A nil
// client counts as unconfigured.
func (c *Client) Configured() bool {
	return c != nil && c.key != ""
}

// ============================================================================
// GEOCODING
// ============================================================================

// AddressComponent is one structured piece of a geocoded address.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// GeocodeResult is one geocoder match.
type GeocodeResult struct {
	FormattedAddress  string             `json:"formatted_address"`
	Location          LatLng             `json:"location"`
	LocationType      string             `json:"location_type,omitempty"`
	PlaceID           string             `json:"place_id,omitempty"`
	Types             []string           `json:"types,omitempty"`
	AddressComponents []AddressComponent `json:"address_components,omitempty"`
}

type geocodeWire struct {
	FormattedAddress  string             `json:"formatted_address"`
	PlaceID           string             `json:"place_id"`
	Types             []string           `json:"types"`
	AddressComponents []AddressComponent `json:"address_components"`
	Geometry          struct {
		Location     LatLng `json:"location"`
		LocationType string `json:"location_type"`
	} `json:"geometry"`
}

func (w geocodeWire) toResult() GeocodeResult {
	return GeocodeResult{
		FormattedAddress:  w.FormattedAddress,
		Location:          w.Geometry.Location,
		LocationType:      w.Geometry.LocationType,
		PlaceID:           w.PlaceID,
		Types:             w.Types,
		AddressComponents: w.AddressComponents,
	}
}

type geocodeResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []geocodeWire `json:"results"`
}

// Geocode resolves an address to coordinates. ZERO_RESULTS yields an
// empty slice and no error.
func (c *Client) Geocode(ctx context.Context, address string) ([]GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, errs.Validationf("address is required")
	}
	return c.geocode(ctx, url.Values{"address": {address}})
}

// ReverseGeocode resolves coordinates to addresses.
func (c *Client) ReverseGeocode(ctx context.Context, at LatLng) ([]GeocodeResult, error) {
	return c.geocode(ctx, url.Values{"latlng": {at.param()}})
}

func (c *Client) geocode(ctx context.Context, query url.Values) ([]GeocodeResult, error) {
	var resp geocodeResponse
	if err := c.call(ctx, "/geocode/json", query, &resp); err != nil {
		return nil, err
	}
	if err := statusErr("/geocode/json", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	results := make([]GeocodeResult, 0, len(resp.Results))
	for _, w := range resp.Results {
		results = append(results, w.toResult())
	}
	return results, nil
}

// ============================================================================
// PLACES
// ============================================================================

// Place is one places-search hit, reduced to the fields site analysis
// consumes.
type Place struct {
	Name         string   `json:"name"`
	Vicinity     string   `json:"address,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	TotalRatings int      `json:"total_ratings,omitempty"`
	PlaceID      string   `json:"place_id,omitempty"`
	Location     LatLng   `json:"location"`
	OpenNow      *bool    `json:"open_now,omitempty"`
	Types        []string `json:"types,omitempty"`
}

type placeWire struct {
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PlaceID          string   `json:"place_id"`
	Types            []string `json:"types"`
	Geometry         struct {
		Location LatLng `json:"location"`
	} `json:"geometry"`
	OpeningHours struct {
		OpenNow *bool `json:"open_now"`
	} `json:"opening_hours"`
}

func (w placeWire) toPlace() Place {
	address := w.Vicinity
	if address == "" {
		address = w.FormattedAddress
	}
	return Place{
		Name:         w.Name,
		Vicinity:     address,
		Rating:       w.Rating,
		TotalRatings: w.UserRatingsTotal,
		PlaceID:      w.PlaceID,
		Location:     w.Geometry.Location,
		OpenNow:      w.OpeningHours.OpenNow,
		Types:        w.Types,
	}
}

type placesResponse struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
	Results      []placeWire `json:"results"`
}

// NearbyQuery describes a nearby-places search. Type restricts to a place
// category; Keyword free-text matches (the two are mutually independent,
// either may be empty).
type NearbyQuery struct {
	Center       LatLng
	RadiusMeters int
	Type         string
	Keyword      string
}

// PlacesNearby searches around a point. ZERO_RESULTS yields an empty
// slice and no error.
func (c *Client) PlacesNearby(ctx context.Context, q NearbyQuery) ([]Place, error) {
	if q.RadiusMeters <= 0 {
		return nil, errs.Validationf("radius must be positive, got %d", q.RadiusMeters)
	}

	query := url.Values{
		"location": {q.Center.param()},
		"radius":   {strconv.Itoa(q.RadiusMeters)},
	}
	if q.Type != "" {
		query.Set("type", q.Type)
	}
	if q.Keyword != "" {
		query.Set("keyword", q.Keyword)
	}
	return c.places(ctx, "/place/nearbysearch/json", query)
}

// TextSearch runs a free-text places query.
func (c *Client) TextSearch(ctx context.Context, text string) ([]Place, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errs.Validationf("search text is required")
	}
	return c.places(ctx, "/place/textsearch/json", url.Values{"query": {text}})
}

func (c *Client) places(ctx context.Context, path string, query url.Values) ([]Place, error) {
	var resp placesResponse
	if err := c.call(ctx, path, query, &resp); err != nil {
		return nil, err
	}
	if err := statusErr(path, resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(resp.Results))
	for _, w := range resp.Results {
		places = append(places, w.toPlace())
	}
	return places, nil
}

// ============================================================================
// DISTANCE MATRIX
// ============================================================================

// ValueText pairs a numeric quantity with its human-readable rendering.
type ValueText struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

// MatrixElement is one origin-destination cell. Distance and Duration are
// meaningful only when Status is OK.
type MatrixElement struct {
	Status   string    `json:"status"`
	Distance ValueText `json:"distance"`
	Duration ValueText `json:"duration"`
}

// Matrix is a decoded distance matrix: Rows[i][j] relates Origins[i] to
// Destinations[j].
type Matrix struct {
	Origins      []string          `json:"origins"`
	Destinations []string          `json:"destinations"`
	Mode         string            `json:"mode"`
	Rows         [][]MatrixElement `json:"rows"`
}

type matrixResponse struct {
	Status               string   `json:"status"`
	ErrorMessage         string   `json:"error_message"`
	OriginAddresses      []string `json:"origin_addresses"`
	DestinationAddresses []string `json:"destination_addresses"`
	Rows                 []struct {
		Elements []MatrixElement `json:"elements"`
	} `json:"rows"`
}

// DistanceMatrix computes travel distance and time between every origin
// and destination. mode defaults to driving.
func (c *Client) DistanceMatrix(ctx context.Context, origins, destinations []string, mode string) (*Matrix, error) {
	if len(origins) == 0 || len(destinations) == 0 {
		return nil, errs.Validationf("at least one origin and one destination are required")
	}
	mode, err := normalizeMode(mode)
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"origins":      {strings.Join(origins, "|")},
		"destinations": {strings.Join(destinations, "|")},
		"mode":         {mode},
	}
	var resp matrixResponse
	if err := c.call(ctx, "/distancematrix/json", query, &resp); err != nil {
		return nil, err
	}
	if err := statusErr("/distancematrix/json", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	m := &Matrix{
		Origins:      resp.OriginAddresses,
		Destinations: resp.DestinationAddresses,
		Mode:         mode,
		Rows:         make([][]MatrixElement, 0, len(resp.Rows)),
	}
	for _, row := range resp.Rows {
		m.Rows = append(m.Rows, row.Elements)
	}
	return m, nil
}

func normalizeMode(mode string) (string, error) {
	if mode == "" {
		return "driving", nil
	}
	mode = strings.ToLower(strings.TrimSpace(mode))
	for _, m := range TravelModes {
		if mode == m {
			return mode, nil
		}
	}
	return "", errs.Validationf("unknown travel mode %q (valid: %s)", mode, strings.Join(TravelModes, ", "))
}

// ============================================================================
// ELEVATION AND TIMEZONE
// ============================================================================

// ElevationResult is one sampled elevation.
type ElevationResult struct {
	Elevation  float64 `json:"elevation"`
	Resolution float64 `json:"resolution"`
	Location   LatLng  `json:"location"`
}

type elevationResponse struct {
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message"`
	Results      []ElevationResult `json:"results"`
}

// Elevation samples terrain elevation at a point.
func (c *Client) Elevation(ctx context.Context, at LatLng) (*ElevationResult, error) {
	var resp elevationResponse
	if err := c.call(ctx, "/elevation/json", url.Values{"locations": {at.param()}}, &resp); err != nil {
		return nil, err
	}
	if err := statusErr("/elevation/json", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

// TimezoneInfo describes the timezone governing a point at a moment.
type TimezoneInfo struct {
	TimezoneID   string `json:"timezone_id"`
	TimezoneName string `json:"timezone_name"`
	RawOffset    int    `json:"raw_offset_seconds"`
	DSTOffset    int    `json:"dst_offset_seconds"`
}

type timezoneResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	TimeZoneID   string `json:"timeZoneId"`
	TimeZoneName string `json:"timeZoneName"`
	RawOffset    int    `json:"rawOffset"`
	DSTOffset    int    `json:"dstOffset"`
}

// Timezone resolves the timezone at a point for the given moment.
func (c *Client) Timezone(ctx context.Context, at LatLng, when time.Time) (*TimezoneInfo, error) {
	query := url.Values{
		"location":  {at.param()},
		"timestamp": {strconv.FormatInt(when.Unix(), 10)},
	}
	var resp timezoneResponse
	if err := c.call(ctx, "/timezone/json", query, &resp); err != nil {
		return nil, err
	}
	if err := statusErr("/timezone/json", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	if resp.Status == StatusZeroResults {
		return nil, nil
	}
	return &TimezoneInfo{
		TimezoneID:   resp.TimeZoneID,
		TimezoneName: resp.TimeZoneName,
		RawOffset:    resp.RawOffset,
		DSTOffset:    resp.DSTOffset,
	}, nil
}

// ============================================================================
// PLUMBING
// ============================================================================

func (c *Client) call(ctx context.Context, path string, query url.Values, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	query.Set("key", c.key)

	logging.LocationDebug("Maps call %s", path)
	return c.exec.DoJSON(ctx, upstream.RequestSpec{
		URL:      c.base + path,
		Query:    query,
		Endpoint: path,
		Timeout:  c.timeout,
	}, out)
}

// statusErr maps a Maps service status to the error taxonomy. OK and
// ZERO_RESULTS are success; ZERO_RESULTS callers see empty results.
func statusErr(endpoint, status, errorMessage string) error {
	switch status {
	case StatusOK, StatusZeroResults:
		return nil
	case "OVER_QUERY_LIMIT":
		return &errs.RateLimitExceededError{Endpoint: endpoint, Attempts: 1}
	}
	if errorMessage != "" {
		return &errs.RequestFailedError{
			Endpoint: endpoint,
			Cause:    fmt.Errorf("maps status %s: %s", status, errorMessage),
		}
	}
	return &errs.RequestFailedError{
		Endpoint: endpoint,
		Cause:    fmt.Errorf("maps status %s", status),
	}
}
