package db

import(
	"fmt"
	"time"

	"github.com/skypies/flytau"
)

// The structs in this file are what actually gets stored. They use plain strings and ints so
// the datastore console stays readable.

type resourceEntity struct {
	Kind        string
	ID          string
	DisplayName string
	Size        string `datastore:",noindex"`
	Cert        string `datastore:",noindex"`
	Producer    string `datastore:",noindex"`
	Seats       int    `datastore:",noindex"`
	StartDate   time.Time `datastore:",noindex"`
}

func newResourceEntity(r flytau.Resource) resourceEntity {
	return resourceEntity{
		Kind: r.Kind.String(),
		ID: r.ID,
		DisplayName: r.DisplayName,
		Size: r.Size.String(),
		Cert: r.Cert.String(),
		Producer: r.Producer,
		Seats: r.Seats,
		StartDate: r.StartDate,
	}
}

func (e resourceEntity)toResource() (flytau.Resource, error) {
	kind,err := flytau.ParseResourceKind(e.Kind)
	if err != nil { return flytau.Resource{}, err }
	r := flytau.Resource{
		ResourceRef: flytau.ResourceRef{Kind:kind, ID:e.ID},
		DisplayName: e.DisplayName,
		Producer: e.Producer,
		Seats: e.Seats,
		StartDate: e.StartDate,
	}
	if kind == flytau.Aircraft {
		if r.Size,err = flytau.ParseSizeClass(e.Size); err != nil { return r, err }
	} else {
		if r.Cert,err = flytau.ParseCertification(e.Cert); err != nil { return r, err }
	}
	return r, nil
}

type commitmentEntity struct {
	FlightID     int64
	DepartureUTC time.Time
	Origin       string `datastore:",noindex"`
	Destination  string `datastore:",noindex"`
}

func newCommitmentEntity(c flytau.Commitment) commitmentEntity {
	return commitmentEntity{
		FlightID: c.FlightID,
		DepartureUTC: c.DepartureUTC.UTC(),
		Origin: string(c.Origin),
		Destination: string(c.Destination),
	}
}

func (e commitmentEntity)toCommitment(ref flytau.ResourceRef) flytau.Commitment {
	return flytau.Commitment{
		Resource: ref,
		FlightID: e.FlightID,
		DepartureUTC: e.DepartureUTC.UTC(),
		Origin: flytau.Airport(e.Origin),
		Destination: flytau.Airport(e.Destination),
	}
}

type flightEntity struct {
	Origin       string
	Destination  string
	DepartureUTC time.Time
	Status       int
	AircraftID   string
	Assigned   []string `datastore:",noindex"`
	CreatedBy    string `datastore:",noindex"`
	CreatedUTC   time.Time `datastore:",noindex"`
}

func newFlightEntity(f flytau.Flight) flightEntity {
	e := flightEntity{
		Origin: string(f.Origin),
		Destination: string(f.Destination),
		DepartureUTC: f.DepartureUTC.UTC(),
		Status: int(f.Status),
		AircraftID: f.AircraftID,
		CreatedBy: f.CreatedBy,
		CreatedUTC: f.CreatedUTC.UTC(),
	}
	for _,ref := range f.Assigned {
		e.Assigned = append(e.Assigned, ref.String())
	}
	return e
}

func (e flightEntity)toFlight(id int64) (flytau.Flight, error) {
	f := flytau.Flight{
		ID: id,
		Candidate: flytau.Candidate{
			Origin: flytau.Airport(e.Origin),
			Destination: flytau.Airport(e.Destination),
			DepartureUTC: e.DepartureUTC.UTC(),
		},
		Status: flytau.FlightStatus(e.Status),
		AircraftID: e.AircraftID,
		CreatedBy: e.CreatedBy,
		CreatedUTC: e.CreatedUTC.UTC(),
	}
	for _,s := range e.Assigned {
		ref,err := flytau.ParseResourceRef(s)
		if err != nil { return f, fmt.Errorf("flight %d: %v", id, err) }
		f.Assigned = append(f.Assigned, ref)
	}
	return f, nil
}

// assign records the refs on the flight, setting AircraftID if one of them is an aircraft.
func assign(f *flytau.Flight, refs []flytau.ResourceRef) {
	for _,ref := range refs {
		if f.IsAssigned(ref) { continue }
		f.Assigned = append(f.Assigned, ref)
		if ref.Kind == flytau.Aircraft { f.AircraftID = ref.ID }
	}
}

type routeEntity struct {
	Origin      string
	Destination string
	Minutes     int `datastore:",noindex"`
}

func (e routeEntity)toRoute() flytau.Route {
	return flytau.Route{Origin:flytau.Airport(e.Origin), Destination:flytau.Airport(e.Destination), Minutes:e.Minutes}
}
