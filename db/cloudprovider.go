package db

// https://godoc.org/cloud.google.com/go/datastore

import(
	"errors"
	"fmt"
	"time"

	"golang.org/x/net/context"
	"cloud.google.com/go/datastore"
	"google.golang.org/api/option"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/sched"
)

// CloudDSProvider implements the Provider interface using the cloud datastore API. Each
// resource is its own entity group, so a guarded write is a transaction over the groups of
// the resources being committed (plus the flight).
type CloudDSProvider struct {
	Project string
	Client *datastore.Client
}

func NewCloudDSProvider(ctx context.Context, project string, opts ...option.ClientOption) (*CloudDSProvider, error) {
	client,err := datastore.NewClient(ctx, project, opts...)
	if err != nil { return nil, fmt.Errorf("NewCloudDSProvider: %v", err) }
	return &CloudDSProvider{Project:project, Client:client}, nil
}

func (p *CloudDSProvider)Close() error { return p.Client.Close() }

// {{{ flattenQuery

func (p *CloudDSProvider)flattenQuery(in *Query) *datastore.Query {
	out := datastore.NewQuery(in.Kind)
	if in.AncestorKeyer != nil { out = out.Ancestor(in.AncestorKeyer.(*datastore.Key)) }
	for _,filter := range in.Filters {
		out = out.Filter(filter.Field, filter.Value)
	}
	if in.OrderStr != "" { out = out.Order(in.OrderStr) }
	return out
}

// }}}

// {{{ Routes

func (p *CloudDSProvider)LookupRoute(ctx context.Context, origin, destination flytau.Airport) (int, bool, error) {
	e := routeEntity{}
	if err := p.Client.Get(ctx, routeKey(origin, destination), &e); err == datastore.ErrNoSuchEntity {
		return 0, false, nil
	} else if err != nil {
		return 0, false, fmt.Errorf("LookupRoute: %v", err)
	}
	return e.Minutes, e.Minutes > 0, nil
}

func (p *CloudDSProvider)ListRoutes(ctx context.Context) ([]flytau.Route, error) {
	entities := []routeEntity{}
	if _,err := p.Client.GetAll(ctx, p.flattenQuery(NewRouteQuery()), &entities); err != nil {
		return nil, fmt.Errorf("ListRoutes: %v", err)
	}
	ret := []flytau.Route{}
	for _,e := range entities { ret = append(ret, e.toRoute()) }
	return ret, nil
}

func (p *CloudDSProvider)PersistRoute(ctx context.Context, r flytau.Route) error {
	if err := r.Validate(); err != nil { return err }
	e := routeEntity{Origin:string(r.Origin), Destination:string(r.Destination), Minutes:r.Minutes}
	if _,err := p.Client.Put(ctx, routeKey(r.Origin, r.Destination), &e); err != nil {
		return fmt.Errorf("PersistRoute: %v", err)
	}
	return nil
}

func (p *CloudDSProvider)DeleteRoute(ctx context.Context, origin, destination flytau.Airport) error {
	if err := p.Client.Delete(ctx, routeKey(origin, destination)); err != nil {
		return fmt.Errorf("DeleteRoute: %v", err)
	}
	return nil
}

// }}}
// {{{ Resources

func (p *CloudDSProvider)ListResources(ctx context.Context, kind flytau.ResourceKind) ([]flytau.Resource, error) {
	entities := []resourceEntity{}
	if _,err := p.Client.GetAll(ctx, p.flattenQuery(NewResourceQuery(kind)), &entities); err != nil {
		return nil, fmt.Errorf("ListResources: %v", err)
	}
	ret := []flytau.Resource{}
	for _,e := range entities {
		r,err := e.toResource()
		if err != nil { return nil, fmt.Errorf("ListResources: %v", err) }
		ret = append(ret, r)
	}
	return ret, nil
}

func (p *CloudDSProvider)LookupResource(ctx context.Context, ref flytau.ResourceRef) (flytau.Resource, error) {
	e := resourceEntity{}
	if err := p.Client.Get(ctx, resourceKey(ref), &e); err == datastore.ErrNoSuchEntity {
		return flytau.Resource{}, notFound("resource", ref)
	} else if err != nil {
		return flytau.Resource{}, fmt.Errorf("LookupResource: %v", err)
	}
	return e.toResource()
}

func (p *CloudDSProvider)PersistResource(ctx context.Context, r flytau.Resource) error {
	if err := r.Validate(); err != nil { return err }
	e := newResourceEntity(r)
	if _,err := p.Client.Put(ctx, resourceKey(r.Ref()), &e); err != nil {
		return fmt.Errorf("PersistResource: %v", err)
	}
	return nil
}

func (p *CloudDSProvider)ListCommitments(ctx context.Context, ref flytau.ResourceRef) ([]flytau.Commitment, error) {
	entities := []commitmentEntity{}
	// Ancestor queries are strongly consistent, so we read our own writes.
	if _,err := p.Client.GetAll(ctx, p.flattenQuery(NewCommitmentQuery(ref)), &entities); err != nil {
		return nil, fmt.Errorf("ListCommitments: %v", err)
	}
	ret := []flytau.Commitment{}
	for _,e := range entities { ret = append(ret, e.toCommitment(ref)) }
	return ret, nil
}

// }}}
// {{{ Flights

func (p *CloudDSProvider)LookupFlight(ctx context.Context, id int64) (flytau.Flight, error) {
	e := flightEntity{}
	if err := p.Client.Get(ctx, flightKey(id), &e); err == datastore.ErrNoSuchEntity {
		return flytau.Flight{}, notFound("flight", id)
	} else if err != nil {
		return flytau.Flight{}, fmt.Errorf("LookupFlight: %v", err)
	}
	return e.toFlight(id)
}

func (p *CloudDSProvider)ListFlights(ctx context.Context) ([]flytau.Flight, error) {
	entities := []flightEntity{}
	keys,err := p.Client.GetAll(ctx, p.flattenQuery(NewFlightQuery()), &entities)
	if err != nil { return nil, fmt.Errorf("ListFlights: %v", err) }
	ret := []flytau.Flight{}
	for i,e := range entities {
		f,err := e.toFlight(keys[i].ID)
		if err != nil { return nil, err }
		ret = append(ret, f)
	}
	return ret, nil
}

// CreateFlight stores a new flight record with no commitments; use WriteCommitments to
// assign resources to it.
func (p *CloudDSProvider)CreateFlight(ctx context.Context, f flytau.Flight) (int64, error) {
	keys,err := p.Client.AllocateIDs(ctx, []*datastore.Key{datastore.IncompleteKey(kFlightKind, nil)})
	if err != nil { return 0, fmt.Errorf("CreateFlight: %v", err) }

	f.ID = keys[0].ID
	f.Assigned = nil
	f.AircraftID = ""
	if f.CreatedUTC.IsZero() { f.CreatedUTC = time.Now() }
	e := newFlightEntity(f)
	if _,err := p.Client.Put(ctx, keys[0], &e); err != nil {
		return 0, fmt.Errorf("CreateFlight: %v", err)
	}
	return f.ID, nil
}

// DeleteFlight removes a flight record that has no commitments.
func (p *CloudDSProvider)DeleteFlight(ctx context.Context, id int64) error {
	_,err := p.Client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		e := flightEntity{}
		if err := tx.Get(flightKey(id), &e); err == datastore.ErrNoSuchEntity {
			return notFound("flight", id)
		} else if err != nil {
			return err
		}
		if len(e.Assigned) > 0 {
			return fmt.Errorf("%w: flight %d still has %d commitments", ErrBadStatus, id, len(e.Assigned))
		}
		return tx.Delete(flightKey(id))
	})
	return p.txErr("DeleteFlight", err)
}

func (p *CloudDSProvider)SetFlightStatus(ctx context.Context, id int64, status flytau.FlightStatus) error {
	_,err := p.Client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		e := flightEntity{}
		if err := tx.Get(flightKey(id), &e); err == datastore.ErrNoSuchEntity {
			return notFound("flight", id)
		} else if err != nil {
			return err
		}
		e.Status = int(status)
		_,err := tx.Put(flightKey(id), &e)
		return err
	})
	return p.txErr("SetFlightStatus", err)
}

// }}}
// {{{ WriteCommitments

func (p *CloudDSProvider)WriteCommitments(ctx context.Context, flightID int64, refs []flytau.ResourceRef, guard Guard) error {
	_,err := p.Client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		fe := flightEntity{}
		if err := tx.Get(flightKey(flightID), &fe); err == datastore.ErrNoSuchEntity {
			return notFound("flight", flightID)
		} else if err != nil {
			return err
		}
		f,err := fe.toFlight(flightID)
		if err != nil { return err }
		if f.Status != flytau.Scheduled {
			return fmt.Errorf("%w: flight %d is %s", ErrBadStatus, flightID, f.Status)
		}
		// A retried transaction re-reads the flight, so a crew that committed first is seen here
		if err := checkUnassigned(flightID, f, refs); err != nil { return err }

		for _,ref := range refs {
			// Reading the commitments inside the transaction means a concurrent write to the
			// same resource will make one of us fail and retry.
			entities := []commitmentEntity{}
			q := p.flattenQuery(NewCommitmentQuery(ref)).Transaction(tx)
			if _,err := p.Client.GetAll(ctx, q, &entities); err != nil { return err }

			existing := []flytau.Commitment{}
			for _,e := range entities { existing = append(existing, e.toCommitment(ref)) }
			if guard != nil {
				if err := guard(ref, existing); err != nil { return err }
			}
		}

		for _,ref := range refs {
			e := newCommitmentEntity(f.CommitmentFor(ref))
			if _,err := tx.Put(commitmentKey(ref, flightID), &e); err != nil { return err }
		}

		assign(&f, refs)
		fe = newFlightEntity(f)
		_,err = tx.Put(flightKey(flightID), &fe)
		return err
	})
	return p.txErr("WriteCommitments", err)
}

// }}}
// {{{ RetractCommitments

func (p *CloudDSProvider)RetractCommitments(ctx context.Context, flightID int64) error {
	_,err := p.Client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		fe := flightEntity{}
		if err := tx.Get(flightKey(flightID), &fe); err == datastore.ErrNoSuchEntity {
			return notFound("flight", flightID)
		} else if err != nil {
			return err
		}
		f,err := fe.toFlight(flightID)
		if err != nil { return err }

		keys := []*datastore.Key{}
		for _,ref := range f.Assigned {
			keys = append(keys, commitmentKey(ref, flightID))
		}
		if len(keys) > 0 {
			if err := tx.DeleteMulti(keys); err != nil { return err }
		}

		f.Assigned = nil
		f.Status = flytau.Cancelled
		fe = newFlightEntity(f)
		_,err = tx.Put(flightKey(flightID), &fe)
		return err
	})
	return p.txErr("RetractCommitments", err)
}

// }}}
// {{{ txErr

// A transaction that kept colliding has lost a race; that's retryable, not fatal. Errors the
// callbacks returned themselves are passed through so errors.Is keeps working.
func (p *CloudDSProvider)txErr(op string, err error) error {
	if err == nil {
		return nil
	} else if errors.Is(err, datastore.ErrConcurrentTransaction) {
		return fmt.Errorf("%s: %w", op, sched.ErrAllocationConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
