package trip

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"teaw/internal/category"
	"teaw/internal/config"
	"teaw/internal/geo"
	mapsapi "teaw/internal/maps"
	"teaw/internal/place"
)

type fakeMaps struct {
	route        *mapsapi.Route
	directionsErr error
	nearby       map[string][]place.Place // keyed by place type
	nearbyCalls  []string
	detailCalls  int
}

func (f *fakeMaps) Directions(_ context.Context, origin, destination, mode string) (*mapsapi.Route, error) {
	if f.directionsErr != nil {
		return nil, f.directionsErr
	}
	r := *f.route
	r.Summary.Origin = origin
	r.Summary.Destination = destination
	r.Summary.Mode = mode
	return &r, nil
}

func (f *fakeMaps) NearbySearch(_ context.Context, p geo.LatLng, _ int, placeType string) ([]place.Place, error) {
	f.nearbyCalls = append(f.nearbyCalls, fmt.Sprintf("%.2f/%s", p.Lat, placeType))
	return f.nearby[placeType], nil
}

func (f *fakeMaps) PlaceDetails(_ context.Context, p *place.Place) error {
	f.detailCalls++
	return nil
}

type fakeWeather struct{}

func (fakeWeather) Get(context.Context, float64, float64) *place.Weather {
	return &place.Weather{Condition: "แจ่มใส", TempC: 31}
}

func testConfig() config.SearchConfig {
	return config.SearchConfig{
		RadiusM:       2000,
		PerPoint:      5,
		SamplePoints:  15,
		MaxDetourKm:   15,
		EnrichWorkers: 2,
	}
}

func routeAlong(lats ...float64) *mapsapi.Route {
	r := &mapsapi.Route{
		Summary: place.RouteSummary{DistanceText: "100 กม.", DurationText: "2 ชั่วโมง"},
	}
	for _, lat := range lats {
		r.Points = append(r.Points, geo.LatLng{Lat: lat, Lng: 100.0})
	}
	return r
}

func TestSuggest_DedupAcrossWaypoints(t *testing.T) {
	shared := place.Place{Name: "คาเฟ่กลางทาง", PlaceID: "dup", Types: []string{"cafe"},
		Location: geo.LatLng{Lat: 13.0, Lng: 100.0}, Rating: 4.5, UserRatingsTotal: 10}
	fm := &fakeMaps{
		route:  routeAlong(13.0, 13.01, 13.02),
		nearby: map[string][]place.Place{"cafe": {shared}},
	}
	svc := NewService(fm, fakeWeather{}, testConfig())

	res, err := svc.Suggest(context.Background(), "กรุงเทพ", "ชลบุรี", []category.Category{category.Cafe}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Stops) != 1 {
		t.Fatalf("got %d stops, want 1 after dedup", len(res.Stops))
	}
	if fm.detailCalls != 1 {
		t.Errorf("enriched %d candidates, want 1 (dedup before enrichment)", fm.detailCalls)
	}
	if res.Stops[0].Weather == nil {
		t.Error("expected weather enrichment")
	}
	if res.Stops[0].DetourMinutes == nil {
		t.Error("expected a detour estimate in route mode")
	}
}

func TestSuggest_DirectionsErrorPassesThrough(t *testing.T) {
	fm := &fakeMaps{directionsErr: &mapsapi.DirectionsError{Status: "NOT_FOUND"}}
	svc := NewService(fm, nil, testConfig())

	_, err := svc.Suggest(context.Background(), "ก", "ข", nil, "")
	var dirErr *mapsapi.DirectionsError
	if !errors.As(err, &dirErr) || dirErr.Status != "NOT_FOUND" {
		t.Fatalf("want DirectionsError NOT_FOUND, got %v", err)
	}
}

func TestSuggest_NoMapsClientIsConfigError(t *testing.T) {
	svc := NewService(nil, nil, testConfig())
	_, err := svc.Suggest(context.Background(), "ก", "ข", nil, "")
	if err != mapsapi.ErrNoAPIKey {
		t.Fatalf("want ErrNoAPIKey, got %v", err)
	}
}

func TestSuggest_EmptyEndpointsRejected(t *testing.T) {
	fm := &fakeMaps{route: routeAlong(13.0)}
	svc := NewService(fm, nil, testConfig())
	if _, err := svc.Suggest(context.Background(), " ", "ข", nil, ""); err != ErrBadRequest {
		t.Fatalf("want ErrBadRequest, got %v", err)
	}
}

func TestSuggest_DefaultTypeFilters(t *testing.T) {
	fm := &fakeMaps{route: routeAlong(13.0), nearby: map[string][]place.Place{}}
	svc := NewService(fm, nil, testConfig())

	if _, err := svc.Suggest(context.Background(), "ก", "ข", nil, ""); err != nil {
		t.Fatal(err)
	}
	// No categories: the broad default set, bounded to 3 type codes.
	want := []string{"13.00/tourist_attraction", "13.00/cafe", "13.00/restaurant"}
	if len(fm.nearbyCalls) != len(want) {
		t.Fatalf("nearby calls = %v, want %v", fm.nearbyCalls, want)
	}
	for i := range want {
		if fm.nearbyCalls[i] != want[i] {
			t.Fatalf("nearby calls = %v, want %v", fm.nearbyCalls, want)
		}
	}
}

func TestSamplePoints(t *testing.T) {
	var points []geo.LatLng
	for i := 0; i < 60; i++ {
		points = append(points, geo.LatLng{Lat: float64(i)})
	}

	got := SamplePoints(points, 15)
	if len(got) < 15 || len(got) > 16 {
		t.Errorf("sampled %d points from 60, want ~15", len(got))
	}

	// Fewer points than requested: keep them all.
	if got := SamplePoints(points[:4], 15); len(got) != 4 {
		t.Errorf("sampled %d points from 4, want 4", len(got))
	}

	if SamplePoints(nil, 15) != nil {
		t.Error("no points to sample should stay nil")
	}
}

func TestEnsureCountryHint(t *testing.T) {
	tests := []struct{ in, want string }{
		{"กรุงเทพ", "กรุงเทพ, ประเทศไทย"},
		{"เชียงใหม่ ประเทศไทย", "เชียงใหม่ ประเทศไทย"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := EnsureCountryHint(tt.in); got != tt.want {
			t.Errorf("EnsureCountryHint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	// Idempotent.
	once := EnsureCountryHint("ระยอง")
	if EnsureCountryHint(once) != once {
		t.Error("EnsureCountryHint is not idempotent")
	}
}
