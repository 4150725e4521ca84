package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/randytsao24/textmystop/internal/models"
)

// TextRenderer prints view models as aligned columns
type TextRenderer struct {
	W         io.Writer
	Recipient string
}

const degradedNote = "(location unavailable: stops shown in source order)"

func (r *TextRenderer) Render(vm models.ViewModel) {
	switch {
	case len(vm.Stops) == 0:
		fmt.Fprintln(r.W, "No stops found.")
	case len(vm.Groups) > 0:
		for _, group := range vm.Groups {
			heading := group.Direction
			if heading == "" {
				heading = "(no direction)"
			}
			fmt.Fprintf(r.W, "== %s ==\n", heading)
			r.table(group.Stops)
		}
	default:
		r.table(vm.Stops)
	}

	if vm.Degraded {
		fmt.Fprintln(r.W, degradedNote)
	}
}

func (r *TextRenderer) table(stops []models.RankedStop) {
	tw := tabwriter.NewWriter(r.W, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tDETAIL\tDIRECTION\tDISTANCE\tTEXT")
	for _, stop := range stops {
		dist := FormatDistance(stop.Distance)
		if dist == "" {
			dist = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			stop.Code,
			stop.Name,
			stop.IntersectionOrRoutes,
			stop.Direction,
			dist,
			SMSLink(recipient(r.Recipient), stop.Code),
		)
	}
	_ = tw.Flush()
}
