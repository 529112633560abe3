package location

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"fintel/internal/config"
	"fintel/internal/errs"
	"fintel/internal/upstream"
)

func newTestMaps(t *testing.T, baseURL string) *Client {
	t.Helper()
	m := upstream.NewManager(upstream.PoolSettings{
		MaxSessions:  10,
		MaxPerHost:   5,
		IdleTTL:      time.Minute,
		Timeout:      5 * time.Second,
		ReleaseGrace: 5 * time.Millisecond,
	})
	t.Cleanup(func() { m.Release(context.Background()) })
	exec := upstream.NewExecutor(m, upstream.ExecutorSettings{
		MaxRetries:    3,
		BackoffFactor: 2.0,
		BackoffUnit:   time.Millisecond,
	})
	return NewClient(exec, config.MapsConfig{APIKey: "maps-key", BaseURL: baseURL})
}

type mapsRecorder struct {
	path  string
	query url.Values
	calls atomic.Int64
}

// mapsServer answers every request with body and records the last
// path and query.
func mapsServer(t *testing.T, body string) (*httptest.Server, *mapsRecorder) {
	t.Helper()
	rec := &mapsRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.calls.Add(1)
		rec.path = r.URL.Path
		rec.query = r.URL.Query()
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestGeocodeRequestAndDecode(t *testing.T) {
	srv, rec := mapsServer(t, `{
		"status": "OK",
		"results": [{
			"formatted_address": "Bulevardul Unirii 1, Bucuresti, Romania",
			"place_id": "ChIJT60U9mr",
			"types": ["street_address"],
			"address_components": [
				{"long_name": "Bucuresti", "short_name": "B", "types": ["locality"]}
			],
			"geometry": {
				"location": {"lat": 44.4268, "lng": 26.1025},
				"location_type": "ROOFTOP"
			}
		}]
	}`)
	c := newTestMaps(t, srv.URL)

	results, err := c.Geocode(context.Background(), "Bulevardul Unirii 1, Bucuresti")
	if err != nil {
		t.Fatalf("Geocode failed: %v", err)
	}

	if rec.path != "/geocode/json" {
		t.Errorf("path = %q, want %q", rec.path, "/geocode/json")
	}
	if got := rec.query.Get("address"); got != "Bulevardul Unirii 1, Bucuresti" {
		t.Errorf("address = %q", got)
	}
	if got := rec.query.Get("key"); got != "maps-key" {
		t.Errorf("key = %q", got)
	}

	want := []GeocodeResult{{
		FormattedAddress: "Bulevardul Unirii 1, Bucuresti, Romania",
		Location:         LatLng{Lat: 44.4268, Lng: 26.1025},
		LocationType:     "ROOFTOP",
		PlaceID:          "ChIJT60U9mr",
		Types:            []string{"street_address"},
		AddressComponents: []AddressComponent{
			{LongName: "Bucuresti", ShortName: "B", Types: []string{"locality"}},
		},
	}}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestGeocodeZeroResultsIsSoft(t *testing.T) {
	srv, _ := mapsServer(t, `{"status": "ZERO_RESULTS", "results": []}`)
	c := newTestMaps(t, srv.URL)

	results, err := c.Geocode(context.Background(), "Strada Inexistenta 999")
	if err != nil {
		t.Fatalf("ZERO_RESULTS must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestGeocodeErrorStatuses(t *testing.T) {
	t.Run("request denied", func(t *testing.T) {
		srv, _ := mapsServer(t, `{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`)
		c := newTestMaps(t, srv.URL)

		_, err := c.Geocode(context.Background(), "Bucuresti")
		if !errs.IsRequestFailed(err) {
			t.Fatalf("expected RequestFailedError, got %v", err)
		}
		if !strings.Contains(err.Error(), "/geocode/json") {
			t.Errorf("error should name the endpoint: %v", err)
		}
	})

	t.Run("over query limit", func(t *testing.T) {
		srv, _ := mapsServer(t, `{"status": "OVER_QUERY_LIMIT"}`)
		c := newTestMaps(t, srv.URL)

		_, err := c.Geocode(context.Background(), "Bucuresti")
		if !errs.IsRateLimited(err) {
			t.Fatalf("expected RateLimitExceededError, got %v", err)
		}
	})
}

func TestGeocodeValidatesAddress(t *testing.T) {
	srv, rec := mapsServer(t, `{"status": "OK", "results": []}`)
	c := newTestMaps(t, srv.URL)

	if _, err := c.Geocode(context.Background(), "   "); !errs.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if rec.calls.Load() != 0 {
		t.Errorf("blank address must not reach the wire; saw %d calls", rec.calls.Load())
	}
}

func TestReverseGeocodeParam(t *testing.T) {
	srv, rec := mapsServer(t, `{"status": "OK", "results": [{"formatted_address": "Piata Unirii, Bucuresti"}]}`)
	c := newTestMaps(t, srv.URL)

	results, err := c.ReverseGeocode(context.Background(), LatLng{Lat: 44.4268, Lng: 26.1025})
	if err != nil {
		t.Fatalf("ReverseGeocode failed: %v", err)
	}
	if got := rec.query.Get("latlng"); got != "44.4268,26.1025" {
		t.Errorf("latlng = %q, want %q", got, "44.4268,26.1025")
	}
	if len(results) != 1 || results[0].FormattedAddress != "Piata Unirii, Bucuresti" {
		t.Errorf("results = %+v", results)
	}
}

func TestPlacesNearbyQueryAndDecode(t *testing.T) {
	srv, rec := mapsServer(t, `{
		"status": "OK",
		"results": [
			{
				"name": "Cafe Central",
				"vicinity": "Strada Lipscani 5",
				"rating": 4.5,
				"user_ratings_total": 230,
				"place_id": "pid-1",
				"geometry": {"location": {"lat": 44.43, "lng": 26.1}},
				"opening_hours": {"open_now": true}
			},
			{
				"name": "Cafe Nou",
				"vicinity": "Strada Smardan 9",
				"place_id": "pid-2",
				"geometry": {"location": {"lat": 44.44, "lng": 26.11}}
			}
		]
	}`)
	c := newTestMaps(t, srv.URL)

	places, err := c.PlacesNearby(context.Background(), NearbyQuery{
		Center:       LatLng{Lat: 44.4268, Lng: 26.1025},
		RadiusMeters: 2000,
		Keyword:      "cafe",
	})
	if err != nil {
		t.Fatalf("PlacesNearby failed: %v", err)
	}

	if rec.path != "/place/nearbysearch/json" {
		t.Errorf("path = %q", rec.path)
	}
	if got := rec.query.Get("location"); got != "44.4268,26.1025" {
		t.Errorf("location = %q", got)
	}
	if got := rec.query.Get("radius"); got != "2000" {
		t.Errorf("radius = %q", got)
	}
	if got := rec.query.Get("keyword"); got != "cafe" {
		t.Errorf("keyword = %q", got)
	}
	if rec.query.Has("type") {
		t.Error("empty type must not be sent")
	}

	if len(places) != 2 {
		t.Fatalf("got %d places, want 2", len(places))
	}
	first := places[0]
	if first.Rating == nil || *first.Rating != 4.5 {
		t.Errorf("Rating = %v, want 4.5", first.Rating)
	}
	if first.OpenNow == nil || !*first.OpenNow {
		t.Errorf("OpenNow = %v, want true", first.OpenNow)
	}
	if first.TotalRatings != 230 || first.Vicinity != "Strada Lipscani 5" {
		t.Errorf("place = %+v", first)
	}
	if places[1].Rating != nil {
		t.Errorf("absent rating must stay nil, got %v", *places[1].Rating)
	}
	if places[1].OpenNow != nil {
		t.Errorf("absent open_now must stay nil, got %v", *places[1].OpenNow)
	}
}

func TestPlacesNearbyValidatesRadius(t *testing.T) {
	srv, rec := mapsServer(t, `{"status": "OK", "results": []}`)
	c := newTestMaps(t, srv.URL)

	_, err := c.PlacesNearby(context.Background(), NearbyQuery{Center: LatLng{Lat: 44, Lng: 26}})
	if !errs.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if rec.calls.Load() != 0 {
		t.Errorf("invalid radius must not reach the wire; saw %d calls", rec.calls.Load())
	}
}

func TestTextSearchFormattedAddressFallback(t *testing.T) {
	srv, rec := mapsServer(t, `{
		"status": "OK",
		"results": [{
			"name": "Farmacia Tei",
			"formatted_address": "Bulevardul Lacul Tei 1, Bucuresti",
			"geometry": {"location": {"lat": 44.46, "lng": 26.11}}
		}]
	}`)
	c := newTestMaps(t, srv.URL)

	places, err := c.TextSearch(context.Background(), "farmacie Tei Bucuresti")
	if err != nil {
		t.Fatalf("TextSearch failed: %v", err)
	}
	if rec.path != "/place/textsearch/json" {
		t.Errorf("path = %q", rec.path)
	}
	if got := rec.query.Get("query"); got != "farmacie Tei Bucuresti" {
		t.Errorf("query = %q", got)
	}
	if len(places) != 1 || places[0].Vicinity != "Bulevardul Lacul Tei 1, Bucuresti" {
		t.Errorf("formatted_address should fill the address field: %+v", places)
	}
}

func TestDistanceMatrix(t *testing.T) {
	srv, rec := mapsServer(t, `{
		"status": "OK",
		"origin_addresses": ["Bucuresti, Romania"],
		"destination_addresses": ["Cluj-Napoca, Romania", "Narnia"],
		"rows": [{
			"elements": [
				{
					"status": "OK",
					"distance": {"value": 451000, "text": "451 km"},
					"duration": {"value": 18000, "text": "5 hours 0 mins"}
				},
				{"status": "NOT_FOUND"}
			]
		}]
	}`)
	c := newTestMaps(t, srv.URL)

	m, err := c.DistanceMatrix(context.Background(), []string{"Bucuresti"}, []string{"Cluj-Napoca", "Narnia"}, "")
	if err != nil {
		t.Fatalf("DistanceMatrix failed: %v", err)
	}

	if got := rec.query.Get("origins"); got != "Bucuresti" {
		t.Errorf("origins = %q", got)
	}
	if got := rec.query.Get("destinations"); got != "Cluj-Napoca|Narnia" {
		t.Errorf("destinations = %q", got)
	}
	if got := rec.query.Get("mode"); got != "driving" {
		t.Errorf("mode = %q, want default driving", got)
	}

	if m.Mode != "driving" || len(m.Rows) != 1 || len(m.Rows[0]) != 2 {
		t.Fatalf("matrix shape = %+v", m)
	}
	ok := m.Rows[0][0]
	if ok.Status != "OK" || ok.Distance.Value != 451000 || ok.Duration.Text != "5 hours 0 mins" {
		t.Errorf("element = %+v", ok)
	}
	if m.Rows[0][1].Status != "NOT_FOUND" {
		t.Errorf("failed element status = %q", m.Rows[0][1].Status)
	}
}

func TestDistanceMatrixModeHandling(t *testing.T) {
	srv, rec := mapsServer(t, `{"status": "OK", "rows": []}`)
	c := newTestMaps(t, srv.URL)

	if _, err := c.DistanceMatrix(context.Background(), []string{"A"}, []string{"B"}, "TRANSIT"); err != nil {
		t.Fatalf("uppercase mode should normalize: %v", err)
	}
	if got := rec.query.Get("mode"); got != "transit" {
		t.Errorf("mode = %q, want %q", got, "transit")
	}

	_, err := c.DistanceMatrix(context.Background(), []string{"A"}, []string{"B"}, "flying")
	if !errs.IsValidation(err) {
		t.Fatalf("expected ValidationError for unknown mode, got %v", err)
	}
	if !strings.Contains(err.Error(), "driving, walking, bicycling, transit") {
		t.Errorf("error should list valid modes: %v", err)
	}

	if _, err := c.DistanceMatrix(context.Background(), nil, []string{"B"}, ""); !errs.IsValidation(err) {
		t.Errorf("expected ValidationError for empty origins, got %v", err)
	}
}

func TestElevation(t *testing.T) {
	srv, rec := mapsServer(t, `{
		"status": "OK",
		"results": [{"elevation": 85.3, "resolution": 9.5, "location": {"lat": 44.4268, "lng": 26.1025}}]
	}`)
	c := newTestMaps(t, srv.URL)

	result, err := c.Elevation(context.Background(), LatLng{Lat: 44.4268, Lng: 26.1025})
	if err != nil {
		t.Fatalf("Elevation failed: %v", err)
	}
	if got := rec.query.Get("locations"); got != "44.4268,26.1025" {
		t.Errorf("locations = %q", got)
	}
	if result == nil || result.Elevation != 85.3 {
		t.Errorf("result = %+v", result)
	}
}

func TestTimezone(t *testing.T) {
	srv, rec := mapsServer(t, `{
		"status": "OK",
		"timeZoneId": "Europe/Bucharest",
		"timeZoneName": "Eastern European Summer Time",
		"rawOffset": 7200,
		"dstOffset": 3600
	}`)
	c := newTestMaps(t, srv.URL)

	when := time.Unix(1710000000, 0)
	info, err := c.Timezone(context.Background(), LatLng{Lat: 44.4268, Lng: 26.1025}, when)
	if err != nil {
		t.Fatalf("Timezone failed: %v", err)
	}
	if got := rec.query.Get("timestamp"); got != "1710000000" {
		t.Errorf("timestamp = %q", got)
	}

	want := &TimezoneInfo{
		TimezoneID:   "Europe/Bucharest",
		TimezoneName: "Eastern European Summer Time",
		RawOffset:    7200,
		DSTOffset:    3600,
	}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Errorf("timezone mismatch (-want +got):\n%s", diff)
	}
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(nil, config.MapsConfig{})
	if c.Configured() {
		t.Fatal("empty key must not report configured")
	}
	_, err := c.Geocode(context.Background(), "Bucuresti")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
