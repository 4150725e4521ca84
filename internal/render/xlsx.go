package render

import (
	"fmt"
	"io"
	"os"

	"github.com/randytsao24/textmystop/internal/models"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Stops"

var xlsxHeaders = []interface{}{
	"Stop ID", "Stop Code", "Stop Name", "Routes", "Direction", "Type",
	"Accessible", "Latitude", "Longitude", "Distance (m)", "SMS",
}

// WriteXLSX writes the stops of a view model to a single-sheet workbook
func WriteXLSX(w io.Writer, vm models.ViewModel, recipient string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	// Stream writer requires rows in ascending order
	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}
	if err := sw.SetRow("A1", xlsxHeaders); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, stop := range vm.Stops {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, xlsxRow(stop, recipient)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func xlsxRow(stop models.RankedStop, recipient string) []interface{} {
	var lat, lng, dist interface{} = "", "", "unknown"
	if stop.Position.Valid {
		lat, lng = stop.Position.Latitude, stop.Position.Longitude
	}
	if meters, ok := stop.Distance.Meters(); ok {
		dist = int(meters + 0.5)
	}
	return []interface{}{
		stop.ID,
		stop.Code,
		stop.Name,
		stop.IntersectionOrRoutes,
		stop.Direction,
		string(stop.Type),
		stop.Accessible,
		lat,
		lng,
		dist,
		SMSLink(recipient, stop.Code),
	}
}

// XLSXRenderer writes every view model it receives to Path, replacing
// the previous file. The last write error is kept in Err.
type XLSXRenderer struct {
	Path      string
	Recipient string
	Err       error
}

func (r *XLSXRenderer) Render(vm models.ViewModel) {
	file, err := os.Create(r.Path)
	if err != nil {
		r.Err = fmt.Errorf("creating %s: %w", r.Path, err)
		return
	}
	defer file.Close()

	r.Err = WriteXLSX(file, vm, recipient(r.Recipient))
}

func recipient(r string) string {
	if r == "" {
		return DefaultSMSRecipient
	}
	return r
}
