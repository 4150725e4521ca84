package stops

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/randytsao24/textmystop/internal/location"
	"github.com/randytsao24/textmystop/internal/models"
)

// Parse reads a delimited stop table. The first line is the header; each
// following line is tied to it positionally and read on its own, so a
// malformed line only drops itself. Rows whose column count differs from
// the header's, rows without an id and rows repeating an earlier id are
// dropped and counted in Table.Skipped. Bad coordinates never fail a row:
// the record is kept with an invalid Position.
func Parse(text string, cols ColumnMap) (*Table, error) {
	lines := splitLines(strings.TrimPrefix(text, "\ufeff"))
	if len(lines) == 0 {
		return nil, &ParseError{Reason: "empty input", Err: ErrNoHeader}
	}

	header, err := readLine(lines[0])
	if err != nil {
		return nil, &ParseError{Reason: "reading header", Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	idx := cols.WithDefaults().resolve(header)
	if idx.id < 0 {
		return nil, &ParseError{Reason: fmt.Sprintf("no stop id column in header %v", header)}
	}
	if idx.name < 0 {
		return nil, &ParseError{Reason: fmt.Sprintf("no stop name column in header %v", header)}
	}

	t := &Table{
		index:    make(map[string]int),
		loadedAt: time.Now(),
	}
	seenDirections := make(map[string]bool)

	for _, line := range lines[1:] {
		row, err := readLine(line)
		if err != nil || len(row) != len(header) {
			t.skipped++
			continue
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}

		record, ok := buildRecord(row, idx)
		if !ok {
			t.skipped++
			continue
		}
		if _, dup := t.index[record.ID]; dup {
			t.skipped++
			continue
		}
		if !record.Position.Valid {
			t.invalidCoords++
		}

		t.index[record.ID] = len(t.records)
		t.records = append(t.records, record)

		if !seenDirections[record.Direction] {
			seenDirections[record.Direction] = true
			t.directions = append(t.directions, record.Direction)
		}
	}

	return t, nil
}

// splitLines breaks text on \n or \r\n and drops blank lines
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// readLine splits one line into fields. A quote left open at the end of
// the line ends the last field there.
func readLine(line string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	row, err := reader.Read()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	return row, err
}

func buildRecord(row []string, idx columnIndex) (models.StopRecord, bool) {
	id := field(row, idx.id)
	if id == "" {
		return models.StopRecord{}, false
	}

	code := field(row, idx.code)
	if code == "" {
		code = id
	}

	stopType := models.StopType(field(row, idx.stopType))
	if stopType == "" {
		stopType = models.StopTypeUnknown
	}

	var position models.Coordinate
	if idx.lat >= 0 && idx.lng >= 0 {
		// Invalid values leave the zero Coordinate, which is marked invalid
		position, _ = location.ParseCoordinate(field(row, idx.lat), field(row, idx.lng))
	}

	return models.StopRecord{
		ID:                   id,
		Code:                 code,
		Name:                 field(row, idx.name),
		IntersectionOrRoutes: field(row, idx.routes),
		Direction:            field(row, idx.direction),
		Type:                 stopType,
		Position:             position,
		Accessible:           field(row, idx.accessible) == "1",
	}, true
}
