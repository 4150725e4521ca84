package location

import (
	"sort"

	"github.com/randytsao24/textmystop/internal/models"
)

// RankByProximity pairs each record with its distance from origin and
// sorts ascending. Records with an unknown distance go last and keep
// their original relative order. An invalid origin leaves every
// distance unknown, so the input order is returned unchanged.
func RankByProximity(records []models.StopRecord, origin models.Coordinate) []models.RankedStop {
	results := make([]models.RankedStop, 0, len(records))
	for _, record := range records {
		results = append(results, models.RankedStop{
			StopRecord: record,
			Distance:   Distance(origin, record.Position),
		})
	}

	sortByDistance(results)
	return results
}

// RankWithin returns the records within radiusMeters of origin, nearest
// first. Records with unknown distance are excluded. The result is empty,
// not nil, when nothing is in range.
func RankWithin(records []models.StopRecord, origin models.Coordinate, radiusMeters float64) []models.RankedStop {
	results := make([]models.RankedStop, 0)
	for _, record := range records {
		dist := Distance(origin, record.Position)
		meters, ok := dist.Meters()
		if !ok || meters > radiusMeters {
			continue
		}
		results = append(results, models.RankedStop{StopRecord: record, Distance: dist})
	}

	sortByDistance(results)
	return results
}

func sortByDistance(stops []models.RankedStop) {
	sort.SliceStable(stops, func(i, j int) bool {
		return stops[i].Distance.Less(stops[j].Distance)
	})
}
