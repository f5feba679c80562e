// Package booking is the flight booking workflow: create a flight with an aircraft, staff it
// with crew, cancel it. Every step re-checks availability inside the storage layer's guarded
// write, so two operators racing for the same pilot can't both win.
package booking

import(
	"errors"
	"fmt"

	"golang.org/x/net/context"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/db"
	"github.com/skypies/flytau/log"
	"github.com/skypies/flytau/ref"
	"github.com/skypies/flytau/sched"
)

type Desk struct {
	Provider  db.Provider
	Routes   *ref.Loader
	HomeBase  flytau.Airport
	Log      *log.Logger
}

func NewDesk(p db.Provider, routes *ref.Loader, homebase flytau.Airport, l *log.Logger) *Desk {
	return &Desk{Provider:p, Routes:routes, HomeBase:homebase, Log:l}
}

func (d *Desk)logger(req Request) *log.Logger {
	return d.Log.With("request", req.RequestID, "operator", req.Operator)
}

// {{{ d.Scheduler

// Scheduler builds a scheduler for this request, over the current route table.
func (d *Desk)Scheduler(ctx context.Context, req Request) (*sched.Scheduler, error) {
	rt,err := d.Routes.Load(ctx)
	if err != nil {
		d.logger(req).Errorf("Scheduler: %v", err)
		return nil, err
	}
	return &sched.Scheduler{
		Routes: rt,
		Source: d.Provider,
		HomeBase: d.HomeBase,
		Log: d.logger(req),
		Decisions: req.Decisions,
	}, nil
}

// }}}
// {{{ d.Available, d.Roster, d.Timeline

func (d *Desk)Available(ctx context.Context, req Request, kind flytau.ResourceKind, cand flytau.Candidate) ([]sched.Availability, error) {
	s,err := d.Scheduler(ctx, req)
	if err != nil { return nil, err }
	return s.Available(ctx, kind, cand)
}

func (d *Desk)Roster(ctx context.Context, req Request, cand flytau.Candidate) (*sched.Roster, error) {
	s,err := d.Scheduler(ctx, req)
	if err != nil { return nil, err }
	return s.Roster(ctx, cand)
}

func (d *Desk)Timeline(ctx context.Context, req Request, ref flytau.ResourceRef) (sched.Timeline, error) {
	s,err := d.Scheduler(ctx, req)
	if err != nil { return nil, err }
	return s.Timeline(ctx, ref)
}

// }}}

// {{{ d.check

// check is the read-time check for explicitly requested resources. It turns exclusions into
// errors the caller can act on.
func (d *Desk)check(ctx context.Context, s *sched.Scheduler, leg sched.Leg, ref flytau.ResourceRef, kind flytau.ResourceKind) (flytau.Resource, error) {
	if ref.Kind != kind {
		return flytau.Resource{}, fmt.Errorf("%w: %s is not a %s", ErrWrongKind, ref, kind)
	}
	r,err := d.Provider.LookupResource(ctx, ref)
	if err != nil { return r, err }

	tl,err := s.Timeline(ctx, ref)
	if err != nil { return r, err }

	if v := s.Evaluate(r, tl, leg); !v.OK() {
		return r, &sched.ConflictError{Resource:ref, Verdict:v}
	}
	return r, nil
}

// }}}
// {{{ d.guard

// guard re-runs the same evaluation inside the write, against the freshest commitments. If it
// fails now, after the read-time check passed, someone else got there first.
func (d *Desk)guard(s *sched.Scheduler, leg sched.Leg, flightID int64, resources map[flytau.ResourceRef]flytau.Resource) db.Guard {
	return func(ref flytau.ResourceRef, existing []flytau.Commitment) error {
		for _,c := range existing {
			if c.FlightID == flightID {
				return fmt.Errorf("%w: %s is already on flight %d", sched.ErrAllocationConflict, ref, flightID)
			}
		}
		tl := sched.BuildTimeline(s.Routes, existing)
		if v := s.Evaluate(resources[ref], tl, leg); !v.OK() {
			return fmt.Errorf("%w: %v", sched.ErrAllocationConflict, &sched.ConflictError{Resource:ref, Verdict:v})
		}
		return nil
	}
}

// }}}
// {{{ d.CreateFlight

// CreateFlight creates a Scheduled flight with the given aircraft committed to it.
func (d *Desk)CreateFlight(ctx context.Context, req Request, cand flytau.Candidate, aircraftID string) (flytau.Flight, error) {
	l := d.logger(req)
	if err := cand.Validate(); err != nil {
		if cand.Origin == cand.Destination && !cand.Origin.IsZero() {
			return flytau.Flight{}, fmt.Errorf("%w (%s-%s)", sched.ErrUnroutable, cand.Origin, cand.Destination)
		}
		return flytau.Flight{}, err
	}
	if !cand.DepartureUTC.After(req.now()) {
		return flytau.Flight{}, fmt.Errorf("%w: %s", ErrDepartureInPast, cand)
	}

	s,err := d.Scheduler(ctx, req)
	if err != nil { return flytau.Flight{}, err }

	leg,err := sched.Resolve(s.Routes, cand)
	if err != nil {
		l.Errorf("CreateFlight %s: %v", cand, err)
		return flytau.Flight{}, err
	}

	acRef := flytau.ResourceRef{Kind:flytau.Aircraft, ID:aircraftID}
	ac,err := d.check(ctx, s, leg, acRef, flytau.Aircraft)
	if err != nil { return flytau.Flight{}, err }

	f := flytau.Flight{
		Candidate: cand,
		Status: flytau.Scheduled,
		CreatedBy: req.Operator,
		CreatedUTC: req.now(),
	}
	id,err := d.Provider.CreateFlight(ctx, f)
	if err != nil {
		l.Errorf("CreateFlight %s: %v", cand, err)
		return flytau.Flight{}, err
	}

	resources := map[flytau.ResourceRef]flytau.Resource{acRef: ac}
	if err := d.Provider.WriteCommitments(ctx, id, []flytau.ResourceRef{acRef}, d.guard(s, leg, id, resources)); err != nil {
		if sched.IsRetryable(err) {
			l.Infof("CreateFlight %s: lost race for %s: %v", cand, acRef, err)
		} else {
			l.Errorf("CreateFlight %s: %v", cand, err)
		}
		if derr := d.Provider.DeleteFlight(ctx, id); derr != nil {
			l.Errorf("CreateFlight: could not remove flight %d: %v", id, derr)
		}
		return flytau.Flight{}, err
	}

	l.Infof("created flight %d %s with %s", id, cand, acRef)
	return d.Provider.LookupFlight(ctx, id)
}

// }}}
// {{{ d.AssignCrew

// AssignCrew staffs a flight. The crew counts must exactly match what the route requires; all
// the crew are committed together, or none are.
func (d *Desk)AssignCrew(ctx context.Context, req Request, flightID int64, pilotIDs, attendantIDs []string) (flytau.Flight, error) {
	l := d.logger(req)

	f,err := d.Provider.LookupFlight(ctx, flightID)
	if err != nil { return f, err }
	if f.Status != flytau.Scheduled {
		return f, fmt.Errorf("%w: flight %d is %s", db.ErrBadStatus, flightID, f.Status)
	} else if f.AircraftID == "" {
		return f, fmt.Errorf("%w: %d", ErrNoAircraft, flightID)
	} else if len(f.AssignedOfKind(flytau.Pilot)) > 0 || len(f.AssignedOfKind(flytau.Attendant)) > 0 {
		return f, fmt.Errorf("%w: %d", ErrCrewAlreadyAssigned, flightID)
	}

	s,err := d.Scheduler(ctx, req)
	if err != nil { return f, err }

	leg,err := sched.Resolve(s.Routes, f.Candidate)
	if err != nil {
		l.Errorf("AssignCrew %d: %v", flightID, err)
		return f, err
	}

	need := sched.RequiredCrew(leg.Minutes)
	pilots,attendants := dedupe(pilotIDs), dedupe(attendantIDs)
	if len(pilots) != need.Pilots || len(attendants) != need.Attendants {
		return f, fmt.Errorf("%w: %s flight needs %s, got %d pilots, %d attendants", ErrCrewCount,
			leg.Class, need, len(pilots), len(attendants))
	}

	refs := []flytau.ResourceRef{}
	resources := map[flytau.ResourceRef]flytau.Resource{}
	crew := []struct{
		kind flytau.ResourceKind
		ids  []string
	}{{flytau.Pilot, pilots}, {flytau.Attendant, attendants}}
	for _,c := range crew {
		for _,id := range c.ids {
			ref := flytau.ResourceRef{Kind:c.kind, ID:id}
			r,err := d.check(ctx, s, leg, ref, c.kind)
			if err != nil { return f, err }
			resources[ref] = r
			refs = append(refs, ref)
		}
	}
	sortRefs(refs)

	if err := d.Provider.WriteCommitments(ctx, flightID, refs, d.guard(s, leg, flightID, resources)); err != nil {
		if sched.IsRetryable(err) {
			l.Infof("AssignCrew %d: lost race: %v", flightID, err)
		} else {
			l.Errorf("AssignCrew %d: %v", flightID, err)
		}
		return f, err
	}

	l.Infof("crewed flight %d with %d pilots, %d attendants", flightID, len(pilots), len(attendants))
	return d.Provider.LookupFlight(ctx, flightID)
}

// }}}
// {{{ d.CancelFlight

// CancelFlight frees every resource committed to the flight. Only possible while departure is
// at least 72 hours away.
func (d *Desk)CancelFlight(ctx context.Context, req Request, flightID int64) error {
	f,err := d.Provider.LookupFlight(ctx, flightID)
	if err != nil { return err }

	if f.Status != flytau.Scheduled {
		return fmt.Errorf("%w: flight %d is %s", db.ErrBadStatus, flightID, f.Status)
	} else if !f.CanCancel(req.now()) {
		return fmt.Errorf("%w (flight %d departs %s)", ErrTooLateToCancel, flightID,
			f.DepartureUTC.Format("2006-01-02 15:04Z"))
	}

	if err := d.Provider.RetractCommitments(ctx, flightID); err != nil {
		d.logger(req).Errorf("CancelFlight %d: %v", flightID, err)
		return err
	}
	d.logger(req).Infof("cancelled flight %d, freed %d resources", flightID, len(f.Assigned))
	return nil
}

// }}}
// {{{ d.MarkOccurred

// MarkOccurred records that a flight flew. Its commitments stay in place.
func (d *Desk)MarkOccurred(ctx context.Context, req Request, flightID int64) error {
	f,err := d.Provider.LookupFlight(ctx, flightID)
	if err != nil { return err }

	if f.Status != flytau.Scheduled {
		return fmt.Errorf("%w: flight %d is %s", db.ErrBadStatus, flightID, f.Status)
	} else if f.DepartureUTC.After(req.now()) {
		return fmt.Errorf("%w: %d", ErrNotDeparted, flightID)
	}
	return d.Provider.SetFlightStatus(ctx, flightID, flytau.Occurred)
}

// SweepOccurred marks every Scheduled flight that has departed as Occurred, returning how many
// were updated.
func (d *Desk)SweepOccurred(ctx context.Context, req Request) (int, error) {
	flights,err := d.Provider.ListFlights(ctx)
	if err != nil { return 0, err }

	n := 0
	for _,f := range flights {
		if f.Status != flytau.Scheduled || f.DepartureUTC.After(req.now()) { continue }
		if err := d.MarkOccurred(ctx, req, f.ID); err != nil && !errors.Is(err, db.ErrBadStatus) {
			return n, err
		}
		n++
	}
	if n > 0 { d.logger(req).Infof("SweepOccurred: %d flights", n) }
	return n, nil
}

// }}}
