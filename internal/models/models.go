// Package models defines shared data types
package models

import (
	"encoding/json"
	"strings"
)

// StopType is the kind of vehicle serving a stop. Values read from the
// source table are kept verbatim, so it may hold strings outside the
// known constants.
type StopType string

const (
	StopTypeStreetcar StopType = "Streetcar"
	StopTypeBus       StopType = "Bus"
	StopTypeAll       StopType = "All"
	StopTypeSubway    StopType = "Subway"
	StopTypeRail      StopType = "Rail"
	StopTypeUnknown   StopType = "Unknown"
)

// Kind maps the raw value onto the known set, falling back to Unknown
func (t StopType) Kind() StopType {
	for _, known := range []StopType{StopTypeStreetcar, StopTypeBus, StopTypeAll, StopTypeSubway, StopTypeRail} {
		if strings.EqualFold(string(t), string(known)) {
			return known
		}
	}
	return StopTypeUnknown
}

// Coordinate is a latitude/longitude pair. Valid is false when the
// source value could not be parsed or was out of range.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Valid     bool    `json:"-"`
}

// MarshalJSON writes null for invalid coordinates
func (c Coordinate) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lng"`
	}{c.Latitude, c.Longitude})
}

// StopRecord represents one transit stop from the source table
type StopRecord struct {
	ID                   string     `json:"stop_id"`
	Code                 string     `json:"stop_code"`
	Name                 string     `json:"stop_name"`
	IntersectionOrRoutes string     `json:"routes"`
	Direction            string     `json:"direction"`
	Type                 StopType   `json:"type"`
	Position             Coordinate `json:"position"`
	Accessible           bool       `json:"accessible"`
}

// Distance is a distance in meters that may be unknown. The zero value
// is unknown.
type Distance struct {
	meters float64
	known  bool
}

// KnownDistance wraps a measured distance
func KnownDistance(meters float64) Distance {
	return Distance{meters: meters, known: true}
}

// UnknownDistance is the distance of a stop with no usable coordinates
func UnknownDistance() Distance {
	return Distance{}
}

// Meters returns the distance and whether it is known
func (d Distance) Meters() (float64, bool) {
	return d.meters, d.known
}

// Known reports whether the distance was measured
func (d Distance) Known() bool {
	return d.known
}

// Less orders known distances ascending and puts unknown ones last.
// Two unknown distances are equal.
func (d Distance) Less(other Distance) bool {
	switch {
	case d.known && other.known:
		return d.meters < other.meters
	case d.known:
		return true
	default:
		return false
	}
}

func (d Distance) MarshalJSON() ([]byte, error) {
	if !d.known {
		return []byte(`"unknown"`), nil
	}
	return json.Marshal(d.meters)
}

func (d *Distance) UnmarshalJSON(data []byte) error {
	if string(data) == `"unknown"` || string(data) == "null" {
		*d = UnknownDistance()
		return nil
	}
	var m float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*d = KnownDistance(m)
	return nil
}

// RankedStop is a StopRecord with its distance from a reference point
type RankedStop struct {
	StopRecord
	Distance Distance `json:"distance_meters"`
}

// DirectionGroup holds the stops sharing a direction, in view order
type DirectionGroup struct {
	Direction string       `json:"direction"`
	Stops     []RankedStop `json:"stops"`
}

// ViewModel is the ordered, render-ready result of a search
type ViewModel struct {
	Query        string           `json:"query"`
	Origin       *Coordinate      `json:"origin,omitempty"`
	Degraded     bool             `json:"degraded"`
	RadiusMeters float64          `json:"radius_meters,omitempty"`
	Stops        []RankedStop     `json:"stops"`
	Groups       []DirectionGroup `json:"groups,omitempty"`
}

// PostalCode is a postal area (Canadian FSA) with its centroid
type PostalCode struct {
	Code         string  `json:"code"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	City         string  `json:"city"`
	Neighborhood string  `json:"neighborhood"`
}
