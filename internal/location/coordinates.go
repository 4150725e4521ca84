package location

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/randytsao24/textmystop/internal/models"
)

// CoordinateError describes a latitude or longitude that cannot be used
type CoordinateError struct {
	Field   string
	Value   string
	Message string
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%s: %s (value: %q)", e.Field, e.Message, e.Value)
}

// NewCoordinate validates a lat/lng pair. The returned coordinate is
// marked invalid when err is non-nil.
func NewCoordinate(lat, lng float64) (models.Coordinate, error) {
	if err := validateAxis("latitude", lat, 90); err != nil {
		return models.Coordinate{}, err
	}
	if err := validateAxis("longitude", lng, 180); err != nil {
		return models.Coordinate{}, err
	}
	return models.Coordinate{Latitude: lat, Longitude: lng, Valid: true}, nil
}

// ParseCoordinate parses decimal-degree strings permissively: surrounding
// whitespace is ignored and a decimal comma is accepted.
func ParseCoordinate(latStr, lngStr string) (models.Coordinate, error) {
	lat, err := parseAxis("latitude", latStr)
	if err != nil {
		return models.Coordinate{}, err
	}
	lng, err := parseAxis("longitude", lngStr)
	if err != nil {
		return models.Coordinate{}, err
	}
	return NewCoordinate(lat, lng)
}

func parseAxis(field, raw string) (float64, error) {
	val := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if val == "" {
		return 0, &CoordinateError{Field: field, Value: raw, Message: "empty value"}
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, &CoordinateError{Field: field, Value: raw, Message: "not a number"}
	}
	return f, nil
}

func validateAxis(field string, v, limit float64) error {
	raw := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &CoordinateError{Field: field, Value: raw, Message: "must be finite"}
	}
	if v < -limit || v > limit {
		return &CoordinateError{Field: field, Value: raw, Message: fmt.Sprintf("must be between %g and %g", -limit, limit)}
	}
	return nil
}
