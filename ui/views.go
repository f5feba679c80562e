package ui

import(
	"time"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/sched"
)

// The JSON shapes returned by the API. Times are always UTC.

type PriorView struct {
	HomeBase   bool             `json:"home_base"`
	Location   string           `json:"location"`
	FlightID   int64            `json:"flight_id,omitempty"`
	Origin     string           `json:"origin,omitempty"`
	ArrivalUTC *time.Time       `json:"arrival_utc,omitempty"`
	Text       string           `json:"text"`
}

type AvailabilityView struct {
	Resource    string    `json:"resource"`
	Kind        string    `json:"kind"`
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Capability  string    `json:"capability"`
	Prior       PriorView `json:"prior"`
}

type LegView struct {
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	DepartureUTC time.Time `json:"departure_utc"`
	ArrivalUTC   time.Time `json:"arrival_utc"`
	Minutes      int       `json:"minutes"`
	Class        string    `json:"class"`
}

type RosterView struct {
	Leg        LegView            `json:"leg"`
	Pilots     int                `json:"pilots_needed"`
	Attendants int                `json:"attendants_needed"`
	Staffable  bool               `json:"staffable"`
	Available  map[string][]AvailabilityView `json:"available"`
}

type FlightView struct {
	ID           int64     `json:"id"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	DepartureUTC time.Time `json:"departure_utc"`
	Status       string    `json:"status"`
	Aircraft     string    `json:"aircraft"`
	Assigned   []string    `json:"assigned"`
	CreatedBy    string    `json:"created_by"`
}

type IntervalView struct {
	FlightID     int64     `json:"flight_id"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	DepartureUTC time.Time `json:"departure_utc"`
	ArrivalUTC   time.Time `json:"arrival_utc"`
}

type ErrorView struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func NewAvailabilityViews(avail []sched.Availability) []AvailabilityView {
	ret := []AvailabilityView{}
	for _,a := range avail {
		v := AvailabilityView{
			Resource: a.ResourceRef.String(),
			Kind: a.Kind.String(),
			ID: a.ID,
			DisplayName: a.DisplayName,
			Capability: a.Capability(),
			Prior: PriorView{
				HomeBase: a.Prior.HomeBase,
				Location: string(a.Prior.Location),
				FlightID: a.Prior.FlightID,
				Origin: string(a.Prior.Origin),
				Text: a.Prior.String(),
			},
		}
		if !a.Prior.HomeBase {
			t := a.Prior.ArrivalUTC.UTC()
			v.Prior.ArrivalUTC = &t
		}
		ret = append(ret, v)
	}
	return ret
}

func NewLegView(l sched.Leg) LegView {
	return LegView{
		Origin: string(l.Origin),
		Destination: string(l.Destination),
		DepartureUTC: l.DepartureUTC.UTC(),
		ArrivalUTC: l.ArrivalUTC.UTC(),
		Minutes: l.Minutes,
		Class: l.Class.String(),
	}
}

func NewRosterView(r *sched.Roster) RosterView {
	v := RosterView{
		Leg: NewLegView(r.Leg),
		Pilots: r.Crew.Pilots,
		Attendants: r.Crew.Attendants,
		Staffable: r.Staffable(),
		Available: map[string][]AvailabilityView{},
	}
	for _,k := range flytau.AllResourceKinds {
		v.Available[k.String()] = NewAvailabilityViews(r.Of(k))
	}
	return v
}

func NewFlightView(f flytau.Flight) FlightView {
	v := FlightView{
		ID: f.ID,
		Origin: string(f.Origin),
		Destination: string(f.Destination),
		DepartureUTC: f.DepartureUTC.UTC(),
		Status: f.Status.String(),
		Aircraft: f.AircraftID,
		Assigned: []string{},
		CreatedBy: f.CreatedBy,
	}
	for _,ref := range f.Assigned {
		v.Assigned = append(v.Assigned, ref.String())
	}
	return v
}

func NewTimelineView(tl sched.Timeline) []IntervalView {
	ret := []IntervalView{}
	for _,i := range tl {
		ret = append(ret, IntervalView{
			FlightID: i.FlightID,
			Origin: string(i.Origin),
			Destination: string(i.Destination),
			DepartureUTC: i.DepartureUTC.UTC(),
			ArrivalUTC: i.ArrivalUTC.UTC(),
		})
	}
	return ret
}
