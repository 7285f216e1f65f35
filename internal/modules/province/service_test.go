package province

import (
	"context"
	"testing"

	"teaw/internal/category"
	"teaw/internal/config"
	"teaw/internal/geo"
	mapsapi "teaw/internal/maps"
	"teaw/internal/place"
)

type fakeMaps struct {
	results     []place.Place
	lastQuery   string
	detailCalls int
}

func (f *fakeMaps) TextSearch(_ context.Context, query string) ([]place.Place, error) {
	f.lastQuery = query
	out := make([]place.Place, len(f.results))
	copy(out, f.results)
	return out, nil
}

func (f *fakeMaps) PlaceDetails(_ context.Context, p *place.Place) error {
	f.detailCalls++
	return nil
}

func testConfig() config.SearchConfig {
	return config.SearchConfig{ProvinceLimit: 20, EnrichWorkers: 2}
}

func TestSearch_QueryShapeAndRanking(t *testing.T) {
	fm := &fakeMaps{results: []place.Place{
		{Name: "วัดเล็ก", PlaceID: "1", Types: []string{"place_of_worship"}, Rating: 4.9, UserRatingsTotal: 20,
			Location: geo.LatLng{Lat: 14, Lng: 101}},
		{Name: "วัดดัง", PlaceID: "2", Types: []string{"place_of_worship"}, Rating: 4.5, UserRatingsTotal: 5000,
			Location: geo.LatLng{Lat: 14, Lng: 101}},
	}}
	svc := NewService(fm, nil, testConfig())

	res, err := svc.Search(context.Background(), "นครนายก", nil)
	if err != nil {
		t.Fatal(err)
	}
	if fm.lastQuery != "สถานที่ท่องเที่ยว นครนายก ประเทศไทย" {
		t.Errorf("query = %q", fm.lastQuery)
	}
	if len(res.Items) != 2 || res.Items[0].Name != "วัดดัง" {
		t.Errorf("ranking by review count failed: %+v", res.Items)
	}
	if res.Province != "นครนายก" {
		t.Errorf("province = %q", res.Province)
	}
}

func TestSearch_PreFilterSavesEnrichment(t *testing.T) {
	fm := &fakeMaps{results: []place.Place{
		{Name: "คาเฟ่ริมน้ำ", PlaceID: "1", Types: []string{"cafe"}},
		{Name: "วัดใหญ่", PlaceID: "2", Types: []string{"place_of_worship"}},
		{Name: "โรงแรมเฉยๆ", PlaceID: "3", Types: []string{"lodging"}},
	}}
	svc := NewService(fm, nil, testConfig())

	res, err := svc.Search(context.Background(), "เชียงใหม่", []category.Category{category.Cafe})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 1 || res.Items[0].Name != "คาเฟ่ริมน้ำ" {
		t.Fatalf("items = %+v", res.Items)
	}
	if fm.detailCalls != 1 {
		t.Errorf("enriched %d items, want 1 (pre-filter before enrichment)", fm.detailCalls)
	}
}

func TestSearch_FilterCanEliminateEverything(t *testing.T) {
	fm := &fakeMaps{results: []place.Place{
		{Name: "วัดใหญ่", PlaceID: "2", Types: []string{"place_of_worship"}},
	}}
	svc := NewService(fm, nil, testConfig())

	res, err := svc.Search(context.Background(), "ภูเก็ต", []category.Category{category.Cafe})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 0 {
		t.Errorf("want empty result, got %+v", res.Items)
	}
}

func TestSearch_ConfigAndInputErrors(t *testing.T) {
	svc := NewService(nil, nil, testConfig())
	if _, err := svc.Search(context.Background(), "ตรัง", nil); err != mapsapi.ErrNoAPIKey {
		t.Errorf("want ErrNoAPIKey, got %v", err)
	}

	svc = NewService(&fakeMaps{}, nil, testConfig())
	if _, err := svc.Search(context.Background(), "  ", nil); err != ErrBadRequest {
		t.Errorf("want ErrBadRequest, got %v", err)
	}
}
