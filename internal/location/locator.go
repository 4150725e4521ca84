// Package location handles coordinates, distances, proximity ranking and
// resolving the user's position
package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/randytsao24/textmystop/internal/models"
)

// ErrLocationUnavailable is returned when a position cannot be resolved,
// either because it was denied or because no source is configured
var ErrLocationUnavailable = errors.New("location unavailable")

// Locator resolves the reference position used for proximity ranking
type Locator interface {
	Locate(ctx context.Context) (models.Coordinate, error)
}

// StaticLocator always resolves to a fixed coordinate
type StaticLocator struct {
	Coordinate models.Coordinate
}

// Locate returns the fixed coordinate, or ErrLocationUnavailable when it
// is invalid
func (l StaticLocator) Locate(ctx context.Context) (models.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinate{}, err
	}
	if !l.Coordinate.Valid {
		return models.Coordinate{}, ErrLocationUnavailable
	}
	return l.Coordinate, nil
}

// PostalLocator resolves the centroid of a postal code
type PostalLocator struct {
	Codes *PostalCodeService
	Code  string
}

func (l PostalLocator) Locate(ctx context.Context) (models.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinate{}, err
	}
	if l.Codes == nil || !l.Codes.IsLoaded() {
		return models.Coordinate{}, ErrLocationUnavailable
	}
	pc, ok := l.Codes.Get(l.Code)
	if !ok {
		return models.Coordinate{}, fmt.Errorf("postal code %q: %w", l.Code, ErrLocationUnavailable)
	}
	coord, err := NewCoordinate(pc.Lat, pc.Lng)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("postal code %q: %w", l.Code, err)
	}
	return coord, nil
}

// UnavailableLocator never resolves. It stands in when the user gave no
// position at all.
type UnavailableLocator struct{}

func (UnavailableLocator) Locate(ctx context.Context) (models.Coordinate, error) {
	return models.Coordinate{}, ErrLocationUnavailable
}
