package stops

import "strings"

// ColumnMap ties each StopRecord field to the header names it may appear
// under in a source table. Header matching ignores case and surrounding
// whitespace; the first alias present in the header wins.
type ColumnMap struct {
	ID         []string `yaml:"id" validate:"omitempty,dive,required"`
	Code       []string `yaml:"code" validate:"omitempty,dive,required"`
	Name       []string `yaml:"name" validate:"omitempty,dive,required"`
	Routes     []string `yaml:"routes" validate:"omitempty,dive,required"`
	Direction  []string `yaml:"direction" validate:"omitempty,dive,required"`
	Type       []string `yaml:"type" validate:"omitempty,dive,required"`
	Latitude   []string `yaml:"latitude" validate:"omitempty,dive,required"`
	Longitude  []string `yaml:"longitude" validate:"omitempty,dive,required"`
	Accessible []string `yaml:"accessible" validate:"omitempty,dive,required"`
}

// DefaultColumns accepts both the GTFS-derived layout
// (stop_id,stop_code,stop_name,stop_lat,stop_lon,Routes,Direction,Accessibility,Type)
// and the older hand-made layout (Stop ID,Stop Name,Intersection,Going Towards).
func DefaultColumns() ColumnMap {
	return ColumnMap{
		ID:         []string{"stop_id", "Stop ID", "id"},
		Code:       []string{"stop_code", "Stop Code", "code"},
		Name:       []string{"stop_name", "Stop Name", "name"},
		Routes:     []string{"Routes", "Intersection", "route"},
		Direction:  []string{"Direction", "Going Towards"},
		Type:       []string{"Type", "stop_type"},
		Latitude:   []string{"stop_lat", "lat", "latitude"},
		Longitude:  []string{"stop_lon", "lon", "lng", "longitude"},
		Accessible: []string{"Accessibility", "wheelchair_boarding", "accessible"},
	}
}

// WithDefaults fills every field left empty with the default aliases
func (m ColumnMap) WithDefaults() ColumnMap {
	def := DefaultColumns()
	fill := func(dst *[]string, src []string) {
		if len(*dst) == 0 {
			*dst = src
		}
	}
	fill(&m.ID, def.ID)
	fill(&m.Code, def.Code)
	fill(&m.Name, def.Name)
	fill(&m.Routes, def.Routes)
	fill(&m.Direction, def.Direction)
	fill(&m.Type, def.Type)
	fill(&m.Latitude, def.Latitude)
	fill(&m.Longitude, def.Longitude)
	fill(&m.Accessible, def.Accessible)
	return m
}

// columnIndex holds resolved header positions; -1 means absent
type columnIndex struct {
	id, code, name, routes, direction, stopType, lat, lng, accessible int
}

func (m ColumnMap) resolve(header []string) columnIndex {
	find := func(aliases []string) int {
		for _, alias := range aliases {
			for i, h := range header {
				if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(alias)) {
					return i
				}
			}
		}
		return -1
	}
	return columnIndex{
		id:         find(m.ID),
		code:       find(m.Code),
		name:       find(m.Name),
		routes:     find(m.Routes),
		direction:  find(m.Direction),
		stopType:   find(m.Type),
		lat:        find(m.Latitude),
		lng:        find(m.Longitude),
		accessible: find(m.Accessible),
	}
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
