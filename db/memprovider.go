package db

import(
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/net/context"
	"github.com/brunoga/deep"

	"github.com/skypies/flytau"
)

// MemProvider implements the Provider interface in memory, for tests and command line tools.
// A single mutex is the serializing section for every write. Everything handed out is a deep
// copy, so callers can't reach in and mutate stored state.
type MemProvider struct {
	sync.Mutex
	routes      map[string]flytau.Route
	resources   map[flytau.ResourceRef]flytau.Resource
	flights     map[int64]flytau.Flight
	commitments map[flytau.ResourceRef]map[int64]flytau.Commitment
	nextID      int64

	// If set, called just before the guard runs in WriteCommitments, with the lock not held.
	// Lets tests line up racing writers.
	BeforeGuard func()
}

func NewMemProvider() *MemProvider {
	return &MemProvider{
		routes: map[string]flytau.Route{},
		resources: map[flytau.ResourceRef]flytau.Resource{},
		flights: map[int64]flytau.Flight{},
		commitments: map[flytau.ResourceRef]map[int64]flytau.Commitment{},
		nextID: 1000,
	}
}

// {{{ Routes

func (p *MemProvider)LookupRoute(ctx context.Context, origin, destination flytau.Airport) (int, bool, error) {
	p.Lock()
	defer p.Unlock()
	r,exists := p.routes[flytau.RouteKey(origin, destination)]
	return r.Minutes, exists, nil
}

func (p *MemProvider)ListRoutes(ctx context.Context) ([]flytau.Route, error) {
	p.Lock()
	defer p.Unlock()
	ret := []flytau.Route{}
	for _,r := range p.routes { ret = append(ret, r) }
	sort.Slice(ret, func(i,j int) bool { return ret[i].Key() < ret[j].Key() })
	return ret, nil
}

func (p *MemProvider)PersistRoute(ctx context.Context, r flytau.Route) error {
	if err := r.Validate(); err != nil { return err }
	p.Lock()
	defer p.Unlock()
	p.routes[r.Key()] = r
	return nil
}

func (p *MemProvider)DeleteRoute(ctx context.Context, origin, destination flytau.Airport) error {
	p.Lock()
	defer p.Unlock()
	delete(p.routes, flytau.RouteKey(origin, destination))
	return nil
}

// }}}
// {{{ Resources

func (p *MemProvider)ListResources(ctx context.Context, kind flytau.ResourceKind) ([]flytau.Resource, error) {
	p.Lock()
	defer p.Unlock()
	ret := []flytau.Resource{}
	for _,r := range p.resources {
		if r.Kind == kind { ret = append(ret, r) }
	}
	// Map order is random; the scheduler sorts, but tools print this directly
	sort.Slice(ret, func(i,j int) bool { return ret[i].ID < ret[j].ID })
	return ret, nil
}

func (p *MemProvider)LookupResource(ctx context.Context, ref flytau.ResourceRef) (flytau.Resource, error) {
	p.Lock()
	defer p.Unlock()
	if r,exists := p.resources[ref]; exists {
		return r, nil
	}
	return flytau.Resource{}, notFound("resource", ref)
}

func (p *MemProvider)PersistResource(ctx context.Context, r flytau.Resource) error {
	if err := r.Validate(); err != nil { return err }
	p.Lock()
	defer p.Unlock()
	p.resources[r.Ref()] = r
	return nil
}

func (p *MemProvider)ListCommitments(ctx context.Context, ref flytau.ResourceRef) ([]flytau.Commitment, error) {
	p.Lock()
	defer p.Unlock()
	return p.listCommitments(ref), nil
}

func (p *MemProvider)listCommitments(ref flytau.ResourceRef) []flytau.Commitment {
	ret := []flytau.Commitment{}
	for _,c := range p.commitments[ref] { ret = append(ret, c) }
	sort.Slice(ret, func(i,j int) bool { return ret[i].DepartureUTC.Before(ret[j].DepartureUTC) })
	return ret
}

// }}}
// {{{ Flights

func (p *MemProvider)LookupFlight(ctx context.Context, id int64) (flytau.Flight, error) {
	p.Lock()
	defer p.Unlock()
	if f,exists := p.flights[id]; exists {
		return deep.MustCopy(f), nil
	}
	return flytau.Flight{}, notFound("flight", id)
}

func (p *MemProvider)ListFlights(ctx context.Context) ([]flytau.Flight, error) {
	p.Lock()
	defer p.Unlock()
	ret := []flytau.Flight{}
	for _,f := range p.flights { ret = append(ret, f) }
	sort.Slice(ret, func(i,j int) bool { return ret[i].ID < ret[j].ID })
	return deep.MustCopy(ret), nil
}

func (p *MemProvider)CreateFlight(ctx context.Context, f flytau.Flight) (int64, error) {
	p.Lock()
	defer p.Unlock()
	p.nextID++
	f.ID = p.nextID
	f.Assigned = nil
	f.AircraftID = ""
	if f.CreatedUTC.IsZero() { f.CreatedUTC = time.Now() }
	p.flights[f.ID] = f
	return f.ID, nil
}

func (p *MemProvider)DeleteFlight(ctx context.Context, id int64) error {
	p.Lock()
	defer p.Unlock()
	f,exists := p.flights[id]
	if !exists {
		return notFound("flight", id)
	} else if len(f.Assigned) > 0 {
		return fmt.Errorf("DeleteFlight: %w: flight %d still has %d commitments", ErrBadStatus, id,
			len(f.Assigned))
	}
	delete(p.flights, id)
	return nil
}

func (p *MemProvider)SetFlightStatus(ctx context.Context, id int64, status flytau.FlightStatus) error {
	p.Lock()
	defer p.Unlock()
	f,exists := p.flights[id]
	if !exists { return notFound("flight", id) }
	f.Status = status
	p.flights[id] = f
	return nil
}

// }}}
// {{{ WriteCommitments

func (p *MemProvider)WriteCommitments(ctx context.Context, flightID int64, refs []flytau.ResourceRef, guard Guard) error {
	if p.BeforeGuard != nil { p.BeforeGuard() }

	p.Lock()
	defer p.Unlock()

	f,exists := p.flights[flightID]
	if !exists {
		return notFound("flight", flightID)
	} else if f.Status != flytau.Scheduled {
		return fmt.Errorf("WriteCommitments: %w: flight %d is %s", ErrBadStatus, flightID, f.Status)
	}
	if err := checkUnassigned(flightID, f, refs); err != nil {
		return fmt.Errorf("WriteCommitments: %w", err)
	}

	for _,ref := range refs {
		if guard == nil { break }
		if err := guard(ref, p.listCommitments(ref)); err != nil {
			return fmt.Errorf("WriteCommitments: %w", err)
		}
	}

	for _,ref := range refs {
		if p.commitments[ref] == nil { p.commitments[ref] = map[int64]flytau.Commitment{} }
		p.commitments[ref][flightID] = f.CommitmentFor(ref)
	}

	f = deep.MustCopy(f)
	assign(&f, refs)
	p.flights[flightID] = f
	return nil
}

// }}}
// {{{ RetractCommitments

func (p *MemProvider)RetractCommitments(ctx context.Context, flightID int64) error {
	p.Lock()
	defer p.Unlock()

	f,exists := p.flights[flightID]
	if !exists { return notFound("flight", flightID) }

	for _,ref := range f.Assigned {
		delete(p.commitments[ref], flightID)
	}
	f.Assigned = nil
	f.Status = flytau.Cancelled
	p.flights[flightID] = f
	return nil
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
