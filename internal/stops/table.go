// Package stops loads the stop table and holds it as an immutable value
package stops

import (
	"slices"
	"time"

	"github.com/randytsao24/textmystop/internal/models"
)

// Table is the parsed stop table. It is never modified after Parse
// returns, so it can be shared freely between goroutines. A nil *Table
// behaves as an empty one.
type Table struct {
	records       []models.StopRecord
	index         map[string]int
	directions    []string
	skipped       int
	invalidCoords int
	source        string
	loadedAt      time.Time
}

// Records returns a copy of the records in source order
func (t *Table) Records() []models.StopRecord {
	if t == nil {
		return nil
	}
	return slices.Clone(t.records)
}

// Get returns a record by its stop id
func (t *Table) Get(id string) (models.StopRecord, bool) {
	if t == nil {
		return models.StopRecord{}, false
	}
	i, ok := t.index[id]
	if !ok {
		return models.StopRecord{}, false
	}
	return t.records[i], true
}

// Len returns the number of records
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Skipped returns the number of dropped data rows
func (t *Table) Skipped() int {
	if t == nil {
		return 0
	}
	return t.skipped
}

// InvalidCoordinates returns how many kept records have no usable position
func (t *Table) InvalidCoordinates() int {
	if t == nil {
		return 0
	}
	return t.invalidCoords
}

// Directions returns the distinct directions in first-seen order
func (t *Table) Directions() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.directions)
}

// Source returns where the table was loaded from
func (t *Table) Source() string {
	if t == nil {
		return ""
	}
	return t.source
}

// LoadedAt returns when the table was parsed
func (t *Table) LoadedAt() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.loadedAt
}
