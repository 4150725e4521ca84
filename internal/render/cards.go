package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/randytsao24/textmystop/internal/location"
	"github.com/randytsao24/textmystop/internal/models"
)

// Card is the presentation of one ranked stop
type Card struct {
	StopID       string            `json:"stop_id"`
	Code         string            `json:"stop_code"`
	Name         string            `json:"name"`
	Detail       string            `json:"detail,omitempty"`
	Direction    string            `json:"direction,omitempty"`
	Heading      string            `json:"heading,omitempty"`
	Type         models.StopType   `json:"type"`
	Kind         models.StopType   `json:"kind"`
	Accessible   bool              `json:"accessible"`
	Position     models.Coordinate `json:"position"`
	Distance     models.Distance   `json:"distance_meters"`
	DistanceText string            `json:"distance_text,omitempty"`
	SMSLink      string            `json:"sms_link"`
}

// CardGroup is a direction heading with its cards
type CardGroup struct {
	Direction string `json:"direction"`
	Cards     []Card `json:"cards"`
}

// CardView is the JSON shape of a view model
type CardView struct {
	Query        string             `json:"query"`
	Degraded     bool               `json:"degraded"`
	Origin       *models.Coordinate `json:"origin,omitempty"`
	RadiusMeters float64            `json:"radius_meters,omitempty"`
	Count        int                `json:"count"`
	Cards        []Card             `json:"cards"`
	Groups       []CardGroup        `json:"groups,omitempty"`
}

// NewCard renders one stop; to is the SMS destination, DefaultSMSRecipient
// when empty
func NewCard(stop models.RankedStop, to string) Card {
	card := Card{
		StopID:       stop.ID,
		Code:         stop.Code,
		Name:         stop.Name,
		Detail:       stop.IntersectionOrRoutes,
		Direction:    stop.Direction,
		Type:         stop.Type,
		Kind:         stop.Type.Kind(),
		Accessible:   stop.Accessible,
		Position:     stop.Position,
		Distance:     stop.Distance,
		DistanceText: FormatDistance(stop.Distance),
		SMSLink:      SMSLink(recipient(to), stop.Code),
	}
	if stop.Direction != "" {
		card.Heading = "Going " + stop.Direction
	}
	return card
}

// Cards renders a whole view model
func Cards(vm models.ViewModel, to string) CardView {
	view := CardView{
		Query:        vm.Query,
		Degraded:     vm.Degraded,
		Origin:       vm.Origin,
		RadiusMeters: vm.RadiusMeters,
		Count:        len(vm.Stops),
		Cards:        make([]Card, 0, len(vm.Stops)),
	}
	for _, stop := range vm.Stops {
		view.Cards = append(view.Cards, NewCard(stop, to))
	}
	for _, group := range vm.Groups {
		cg := CardGroup{Direction: group.Direction, Cards: make([]Card, 0, len(group.Stops))}
		for _, stop := range group.Stops {
			cg.Cards = append(cg.Cards, NewCard(stop, to))
		}
		view.Groups = append(view.Groups, cg)
	}
	return view
}

// FormatDistance prints meters under a kilometer and kilometers above.
// Unknown distances print as an empty string.
func FormatDistance(d models.Distance) string {
	meters, ok := d.Meters()
	if !ok {
		return ""
	}
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f km", location.MetersToKilometers(meters))
}

// JSONRenderer writes each view model as one JSON document
type JSONRenderer struct {
	W         io.Writer
	Recipient string
}

func (r *JSONRenderer) Render(vm models.ViewModel) {
	enc := json.NewEncoder(r.W)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Cards(vm, recipient(r.Recipient))); err != nil {
		fmt.Fprintf(r.W, "error encoding view: %v\n", err)
	}
}
