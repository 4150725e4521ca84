package gtfsimport

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/randytsao24/textmystop/internal/models"
)

// Header is the column layout of the generated stop table
var Header = []string{"stop_id", "stop_code", "stop_name", "stop_lat", "stop_lon", "Routes", "Direction", "Accessibility", "Type"}

var requiredFiles = []string{"stops.txt", "routes.txt", "trips.txt", "stop_times.txt"}

// routeTypes maps GTFS route_type to the stop type written to the table
var routeTypes = map[string]models.StopType{
	"0": models.StopTypeStreetcar,
	"1": models.StopTypeSubway,
	"2": models.StopTypeRail,
	"3": models.StopTypeBus,
}

// StopRow is one row of the generated stop table
type StopRow struct {
	StopID        string
	StopCode      string
	StopName      string
	StopLat       string
	StopLon       string
	Routes        string
	Direction     string
	Accessibility string
	Type          models.StopType
}

func (r StopRow) record() []string {
	return []string{r.StopID, r.StopCode, r.StopName, r.StopLat, r.StopLon, r.Routes, r.Direction, r.Accessibility, string(r.Type)}
}

type route struct {
	shortName string
	stopType  models.StopType
}

type trip struct {
	routeID  string
	headsign string
}

// stopInfo accumulates what the stop_times join learns about one stop
type stopInfo struct {
	routes    map[string]bool
	stopType  models.StopType
	headsigns map[string]bool
}

// Build reads a GTFS zip and returns one row per stop with a stop code,
// in stops.txt order
func Build(r io.ReaderAt, size int64) ([]StopRow, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("gtfs import: open zip: %w", err)
	}

	files := make(map[string]*zip.File)
	for _, f := range zr.File {
		files[strings.ToLower(f.Name)] = f
	}
	for _, name := range requiredFiles {
		if files[name] == nil {
			return nil, fmt.Errorf("gtfs import: %s missing from archive (need %v)", name, requiredFiles)
		}
	}

	stops, err := readStops(files["stops.txt"])
	if err != nil {
		return nil, err
	}
	routes, err := readRoutes(files["routes.txt"])
	if err != nil {
		return nil, err
	}
	trips, err := readTrips(files["trips.txt"])
	if err != nil {
		return nil, err
	}
	info, err := joinStopTimes(files["stop_times.txt"], trips, routes)
	if err != nil {
		return nil, err
	}

	for i := range stops {
		si, ok := info[stops[i].StopID]
		if !ok {
			stops[i].Type = models.StopTypeBus
			continue
		}
		stops[i].Routes = strings.Join(sortedKeys(si.routes), " | ")
		stops[i].Direction = GuessDirection(sortedKeys(si.headsigns))
		stops[i].Type = si.stopType
	}
	return stops, nil
}

// BuildFromSource loads a GTFS zip from a local path or an http(s) URL
func BuildFromSource(ctx context.Context, source string, client *http.Client) ([]StopRow, error) {
	data, err := download(ctx, source, client)
	if err != nil {
		return nil, fmt.Errorf("gtfs import: %w", err)
	}
	return Build(bytes.NewReader(data), int64(len(data)))
}

// GuessDirection guesses a cardinal direction from trip headsigns, e.g.
// "Line 1 towards Finch" stays Unknown while "504 King Eastbound" gives
// Eastbound
func GuessDirection(headsigns []string) string {
	text := strings.ToUpper(strings.Join(headsigns, " "))
	switch {
	case strings.Contains(text, "NORTH"):
		return "Northbound"
	case strings.Contains(text, "SOUTH"):
		return "Southbound"
	case strings.Contains(text, "EAST"):
		return "Eastbound"
	case strings.Contains(text, "WEST"):
		return "Westbound"
	default:
		return "Unknown"
	}
}

// WriteCSV writes the rows with Header as the first line
func WriteCSV(w io.Writer, rows []StopRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readStops(f *zip.File) ([]StopRow, error) {
	var rows []StopRow
	err := eachRecord(f, func(idx map[string]int, rec []string) {
		code := normalizeCode(safeField(rec, idx, "stop_code"))
		if code == "" {
			return
		}
		rows = append(rows, StopRow{
			StopID:        safeField(rec, idx, "stop_id"),
			StopCode:      code,
			StopName:      safeField(rec, idx, "stop_name"),
			StopLat:       safeField(rec, idx, "stop_lat"),
			StopLon:       safeField(rec, idx, "stop_lon"),
			Accessibility: safeField(rec, idx, "wheelchair_boarding"),
		})
	})
	return rows, err
}

func readRoutes(f *zip.File) (map[string]route, error) {
	routes := make(map[string]route)
	err := eachRecord(f, func(idx map[string]int, rec []string) {
		stopType, ok := routeTypes[safeField(rec, idx, "route_type")]
		if !ok {
			stopType = models.StopTypeBus
		}
		routes[safeField(rec, idx, "route_id")] = route{
			shortName: safeField(rec, idx, "route_short_name"),
			stopType:  stopType,
		}
	})
	return routes, err
}

func readTrips(f *zip.File) (map[string]trip, error) {
	trips := make(map[string]trip)
	err := eachRecord(f, func(idx map[string]int, rec []string) {
		trips[safeField(rec, idx, "trip_id")] = trip{
			routeID:  safeField(rec, idx, "route_id"),
			headsign: safeField(rec, idx, "trip_headsign"),
		}
	})
	return trips, err
}

func joinStopTimes(f *zip.File, trips map[string]trip, routes map[string]route) (map[string]*stopInfo, error) {
	info := make(map[string]*stopInfo)
	seen := make(map[[2]string]bool)

	err := eachRecord(f, func(idx map[string]int, rec []string) {
		tripID := safeField(rec, idx, "trip_id")
		stopID := safeField(rec, idx, "stop_id")
		key := [2]string{tripID, stopID}
		if seen[key] {
			return
		}
		seen[key] = true

		t, ok := trips[tripID]
		if !ok {
			return
		}
		r, ok := routes[t.routeID]
		if !ok {
			return
		}

		si := info[stopID]
		if si == nil {
			si = &stopInfo{
				routes:    make(map[string]bool),
				stopType:  r.stopType,
				headsigns: make(map[string]bool),
			}
			info[stopID] = si
		}
		si.routes[r.shortName] = true
		if t.headsign != "" {
			si.headsigns[t.headsign] = true
		}
	})
	return info, err
}

// eachRecord streams the data rows of a CSV file inside the zip
func eachRecord(f *zip.File, fn func(idx map[string]int, rec []string)) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("gtfs import: open %s: %w", f.Name, err)
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("gtfs import: read %s header: %w", f.Name, err)
	}
	idx := headerIndex(header)

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gtfs import: read %s: %w", f.Name, err)
		}
		fn(idx, rec)
	}
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func safeField(record []string, idx map[string]int, key string) string {
	if i, ok := idx[key]; ok && i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

// normalizeCode writes numeric stop codes without a fractional part
func normalizeCode(code string) string {
	if f, err := strconv.ParseFloat(code, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return code
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func download(ctx context.Context, source string, client *http.Client) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.ReadFile(source)
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", source, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, source)
	}
	return io.ReadAll(resp.Body)
}
