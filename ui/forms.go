package ui

import(
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/skypies/util/widget"

	"github.com/skypies/flytau"
)

// {{{ FormValueCandidate

// ?origin=TLV&destination=JFK&departure=2026-03-01T09:00:00Z
// (or &epoch=1772355600 instead of departure)

func FormValueCandidate(r *http.Request) (flytau.Candidate, error) {
	c := flytau.Candidate{
		Origin: flytau.NewAirport(r.FormValue("origin")),
		Destination: flytau.NewAirport(r.FormValue("destination")),
	}

	if s := r.FormValue("departure"); s != "" {
		t,err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c, fmt.Errorf("departure: %v", err)
		}
		c.DepartureUTC = t.UTC()
	} else if r.FormValue("epoch") != "" {
		c.DepartureUTC = widget.FormValueEpochTime(r, "epoch").UTC()
	}

	if c.Origin.IsZero() || c.Destination.IsZero() || c.DepartureUTC.IsZero() {
		return c, fmt.Errorf("need origin, destination and departure")
	}
	return c, nil
}

// }}}
// {{{ FormValueResourceKind, FormValueResourceRef, FormValueFlightID

func FormValueResourceKind(r *http.Request) (flytau.ResourceKind, error) {
	return flytau.ParseResourceKind(r.FormValue("kind"))
}

// ?resource=pilot:P17
func FormValueResourceRef(r *http.Request) (flytau.ResourceRef, error) {
	return flytau.ParseResourceRef(r.FormValue("resource"))
}

func FormValueFlightID(r *http.Request) (int64, error) {
	s := r.FormValue("flight")
	if s == "" { return 0, fmt.Errorf("need flight") }
	id,err := strconv.ParseInt(s, 10, 64)
	if err != nil { return 0, fmt.Errorf("flight: %v", err) }
	return id, nil
}

// }}}
// {{{ FormValueCrew

// ?pilots=P1,P2,P3&attendants=A1,A2
func FormValueCrew(r *http.Request) ([]string, []string) {
	return widget.FormValueCommaSepStrings(r, "pilots"), widget.FormValueCommaSepStrings(r, "attendants")
}

// }}}
