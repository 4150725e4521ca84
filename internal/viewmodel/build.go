// Package viewmodel turns the stop table, a query and an optional origin
// into the ordered list a renderer displays
package viewmodel

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/randytsao24/textmystop/internal/location"
	"github.com/randytsao24/textmystop/internal/models"
	"github.com/randytsao24/textmystop/internal/search"
)

// Options controls how a view model is built. The zero value ranks every
// match by distance with no radius, no limit and no grouping.
type Options struct {
	GroupByDirection bool
	// RadiusMeters excludes stops farther than this from the origin
	RadiusMeters float64
	// RadiusTiers are tried in order and the first tier with any stop
	// wins. Takes precedence over RadiusMeters.
	RadiusTiers []float64
	Limit       int
}

// Build filters records by term, then ranks the matches by distance from
// origin. Without a valid origin the view is degraded: matches keep
// insertion order, distances are unknown and no radius is applied.
// Groups follow the order in which directions first appear in records.
func Build(records []models.StopRecord, term string, origin models.Coordinate, opts Options) models.ViewModel {
	vm := models.ViewModel{
		Query: search.Normalize(term),
	}

	filtered := search.Filter(records, vm.Query)

	var ranked []models.RankedStop
	if origin.Valid {
		o := origin
		vm.Origin = &o

		switch {
		case len(opts.RadiusTiers) > 0:
			ranked, vm.RadiusMeters = NearestTiered(filtered, origin, opts.RadiusTiers)
		case opts.RadiusMeters > 0:
			ranked = location.RankWithin(filtered, origin, opts.RadiusMeters)
			vm.RadiusMeters = opts.RadiusMeters
		default:
			ranked = location.RankByProximity(filtered, origin)
		}
	} else {
		vm.Degraded = true
		ranked = location.RankByProximity(filtered, models.Coordinate{})
	}

	if opts.Limit > 0 && len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}
	vm.Stops = ranked

	if opts.GroupByDirection {
		vm.Groups = GroupByDirection(ranked, directionOrder(records))
	}

	return vm
}

// NearestTiered applies each radius in turn and returns the first
// non-empty result with the radius that produced it. When every tier is
// empty it returns an empty slice and the last tier.
func NearestTiered(records []models.StopRecord, origin models.Coordinate, tiers []float64) ([]models.RankedStop, float64) {
	var radius float64
	for _, tier := range tiers {
		radius = tier
		if ranked := location.RankWithin(records, origin, tier); len(ranked) > 0 {
			return ranked, tier
		}
	}
	return []models.RankedStop{}, radius
}

// GroupByDirection partitions stops by direction. Groups come out in the
// order given; directions missing from order are appended as first seen
// in stops. Each group keeps the order of stops. Empty groups are omitted.
func GroupByDirection(stops []models.RankedStop, order []string) []models.DirectionGroup {
	byDirection := make(map[string][]models.RankedStop)
	for _, stop := range stops {
		byDirection[stop.Direction] = append(byDirection[stop.Direction], stop)
	}

	seen := make(map[string]bool, len(order))
	groups := make([]models.DirectionGroup, 0, len(byDirection))
	add := func(direction string) {
		if seen[direction] {
			return
		}
		seen[direction] = true
		if members, ok := byDirection[direction]; ok {
			groups = append(groups, models.DirectionGroup{Direction: direction, Stops: members})
		}
	}

	for _, direction := range order {
		add(direction)
	}
	for _, stop := range stops {
		add(stop.Direction)
	}
	return groups
}

func directionOrder(records []models.StopRecord) []string {
	seen := make(map[string]bool)
	var order []string
	for _, record := range records {
		if !seen[record.Direction] {
			seen[record.Direction] = true
			order = append(order, record.Direction)
		}
	}
	return order
}

// ValidRadius reports whether r is a usable radius: finite and positive
func ValidRadius(r float64) bool {
	return !math.IsNaN(r) && !math.IsInf(r, 0) && r > 0
}

// ParseRadiusTiers parses a comma-separated list of radii in meters,
// e.g. "500,750,1000"
func ParseRadiusTiers(value string) ([]float64, error) {
	var tiers []float64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r, err := strconv.ParseFloat(part, 64)
		if err != nil || !ValidRadius(r) {
			return nil, fmt.Errorf("invalid radius %q", part)
		}
		tiers = append(tiers, r)
	}
	return tiers, nil
}
