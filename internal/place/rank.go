package place

import (
	"math"
	"sort"

	"teaw/internal/category"
	"teaw/internal/geo"
)

// RankOptions controls the dedup → classify → filter → bound → sort → truncate
// pipeline. RoutePoints and MaxDetourKm apply to route mode only.
type RankOptions struct {
	Categories  []category.Category
	RoutePoints []geo.LatLng
	MaxDetourKm float64
	Limit       int
}

// Rank applies the full candidate pipeline and returns the surviving places
// in ranked order. An empty result is a valid outcome, not an error: the
// caller renders the "try different categories" message.
func Rank(candidates []Place, opts RankOptions) []Place {
	seen := make(map[string]struct{}, len(candidates))
	kept := make([]Place, 0, len(candidates))

	for _, p := range candidates {
		// Dedup by provider id, first occurrence wins. Waypoint fan-out
		// surfaces the same place more than once.
		if p.PlaceID != "" {
			if _, dup := seen[p.PlaceID]; dup {
				continue
			}
			seen[p.PlaceID] = struct{}{}
		}

		if len(p.Categories) == 0 {
			p.Categories = category.Classify(p.Types, p.Name)
		}

		if len(opts.Categories) > 0 && !category.Intersects(p.Categories, opts.Categories) {
			continue
		}

		if len(opts.RoutePoints) > 0 && opts.MaxDetourKm > 0 {
			if geo.MinDistanceKm(opts.RoutePoints, p.Location) > opts.MaxDetourKm {
				continue
			}
			if min, ok := geo.EstimateDetourMinutes(opts.RoutePoints, p.Location); ok {
				p.DetourMinutes = &min
			}
		}

		kept = append(kept, p)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.UserRatingsTotal != b.UserRatingsTotal {
			return a.UserRatingsTotal > b.UserRatingsTotal
		}
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return detourKey(a) < detourKey(b)
	})

	if opts.Limit > 0 && len(kept) > opts.Limit {
		kept = kept[:opts.Limit]
	}
	return kept
}

func detourKey(p Place) float64 {
	if p.DetourMinutes == nil {
		return math.Inf(1)
	}
	return float64(*p.DetourMinutes)
}
