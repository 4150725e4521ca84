// Package search narrows stop records by a free-text query
package search

import (
	"strings"

	"github.com/randytsao24/textmystop/internal/models"
)

// Normalize trims and case-folds a raw query string
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Filter returns the records whose name, route/intersection text or
// direction contains term, ignoring case. Stop ids, codes and coordinates
// are never searched. An empty term matches every record. Input order is
// preserved and the input slice is not modified.
func Filter(records []models.StopRecord, term string) []models.StopRecord {
	term = Normalize(term)

	results := make([]models.StopRecord, 0, len(records))
	for _, record := range records {
		if term == "" || Matches(record, term) {
			results = append(results, record)
		}
	}
	return results
}

// Matches reports whether a record matches an already normalized term
func Matches(record models.StopRecord, term string) bool {
	for _, field := range searchableFields(record) {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func searchableFields(record models.StopRecord) []string {
	return []string{record.Name, record.IntersectionOrRoutes, record.Direction}
}
