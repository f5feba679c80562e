// Package db is the persistence layer for flights, resources, routes and the commitments
// that tie them together. The scheduler only reads through it; the write path is where
// concurrent bookings get serialized.
package db

import(
	"fmt"

	"golang.org/x/net/context"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/sched"
)

/*

  import "github.com/skypies/flytau/db"

	p,err := db.NewCloudDSProvider(ctx, "projname")  // Or db.NewMemProvider(), for tests & tools

	id,err := p.CreateFlight(ctx, flytau.Flight{Candidate:cand})

	// The guard runs inside the transaction, against the freshest commitments
	err = p.WriteCommitments(ctx, id, refs, func(ref flytau.ResourceRef, existing []flytau.Commitment) error {
		...
	})

 */

// Guard is run for each resource inside the write's serializing section, with that resource's
// current commitments. Returning an error aborts the entire write.
type Guard func(ref flytau.ResourceRef, existing []flytau.Commitment) error

type Provider interface {
	sched.ResourceSource

	LookupRoute(ctx context.Context, origin, destination flytau.Airport) (minutes int, ok bool, err error)
	ListRoutes(ctx context.Context) ([]flytau.Route, error)
	PersistRoute(ctx context.Context, r flytau.Route) error
	DeleteRoute(ctx context.Context, origin, destination flytau.Airport) error

	LookupResource(ctx context.Context, ref flytau.ResourceRef) (flytau.Resource, error)
	PersistResource(ctx context.Context, r flytau.Resource) error

	LookupFlight(ctx context.Context, id int64) (flytau.Flight, error)
	ListFlights(ctx context.Context) ([]flytau.Flight, error)
	CreateFlight(ctx context.Context, f flytau.Flight) (int64, error)
	DeleteFlight(ctx context.Context, id int64) error
	SetFlightStatus(ctx context.Context, id int64, status flytau.FlightStatus) error

	// WriteCommitments atomically commits all the refs to the flight, or none of them. Each
	// ref's existing commitments are passed to the guard first. A flight only ever gets one
	// write per resource kind; a second one fails with sched.ErrAllocationConflict.
	WriteCommitments(ctx context.Context, flightID int64, refs []flytau.ResourceRef, guard Guard) error

	// RetractCommitments atomically removes all the flight's commitments and marks it
	// Cancelled.
	RetractCommitments(ctx context.Context, flightID int64) error
}

// Functions in this file work on top of any implementation of the Provider interface

// {{{ PersistResources

func PersistResources(ctx context.Context, p Provider, resources []flytau.Resource) error {
	for _,r := range resources {
		if err := p.PersistResource(ctx, r); err != nil { return err }
	}
	return nil
}

// }}}
// {{{ PersistRoutes

func PersistRoutes(ctx context.Context, p Provider, routes []flytau.Route) error {
	for _,r := range routes {
		if err := p.PersistRoute(ctx, r); err != nil { return err }
	}
	return nil
}

// }}}
// {{{ checkUnassigned

// checkUnassigned is run against the freshly read flight inside the write's serializing
// section. Two crews racing for the same flight will both pass their read-time checks, so the
// loser has to be caught here.
func checkUnassigned(flightID int64, f flytau.Flight, refs []flytau.ResourceRef) error {
	for _,ref := range refs {
		if already := f.AssignedOfKind(ref.Kind); len(already) > 0 {
			return fmt.Errorf("%w: flight %d already has %s assigned (%s)", sched.ErrAllocationConflict,
				flightID, ref.Kind, already[0])
		}
	}
	return nil
}

// }}}
// {{{ ListAllResources

func ListAllResources(ctx context.Context, p Provider) ([]flytau.Resource, error) {
	ret := []flytau.Resource{}
	for _,k := range flytau.AllResourceKinds {
		rs,err := p.ListResources(ctx, k)
		if err != nil { return nil, err }
		ret = append(ret, rs...)
	}
	return ret, nil
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
