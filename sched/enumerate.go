package sched

import(
	"fmt"
	"sort"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/log"
)

// Scheduler runs availability queries. All fields except Routes and Source are optional.
type Scheduler struct {
	Routes     RouteLookup
	Source     ResourceSource
	HomeBase   flytau.Airport
	Log       *log.Logger
	Decisions  DecisionSink
}

// PriorCommitment summarizes where a resource will be coming from. If HomeBase is set, the
// resource has no earlier commitment and the flight fields are empty.
type PriorCommitment struct {
	HomeBase     bool
	Location     flytau.Airport
	FlightID     int64
	Origin       flytau.Airport
	ArrivalUTC   time.Time
}

func (p PriorCommitment)String() string {
	if p.HomeBase {
		return fmt.Sprintf("Home Base (%s), no prior commitment", p.Location)
	}
	return fmt.Sprintf("F%d %s-%s, arrives %s", p.FlightID, p.Origin, p.Location,
		p.ArrivalUTC.UTC().Format("2006-01-02 15:04Z"))
}

type Availability struct {
	flytau.Resource
	Prior PriorCommitment
}

// Roster is everything needed to staff a candidate flight.
type Roster struct {
	Leg
	Crew        CrewRequirement
	Aircraft  []Availability
	Pilots    []Availability
	Attendants []Availability
}

func (r Roster)Of(kind flytau.ResourceKind) []Availability {
	switch kind {
	case flytau.Aircraft:  return r.Aircraft
	case flytau.Pilot:     return r.Pilots
	case flytau.Attendant: return r.Attendants
	}
	return nil
}

// Staffable is true if there are enough available resources of every kind.
func (r Roster)Staffable() bool {
	for _,k := range flytau.AllResourceKinds {
		if len(r.Of(k)) < r.Crew.Count(k) { return false }
	}
	return true
}

func (s *Scheduler)Checker() Checker {
	return Checker{Routes:s.Routes, HomeBase:s.homeBase()}
}

func (s *Scheduler)homeBase() flytau.Airport {
	if s.HomeBase.IsZero() { return flytau.DefaultHomeBase }
	return s.HomeBase
}

// {{{ s.Timeline

func (s *Scheduler)Timeline(ctx context.Context, ref flytau.ResourceRef) (Timeline, error) {
	commitments,err := s.Source.ListCommitments(ctx, ref)
	if err != nil {
		s.Log.Errorf("Timeline[%s]: %v", ref, err)
		return nil, fmt.Errorf("Timeline[%s]: %v", ref, err)
	}
	return BuildTimeline(s.Routes, commitments), nil
}

// }}}
// {{{ s.Evaluate

// Evaluate applies the capability filter and the timeline check to one resource. It is what
// the enumerator runs per resource, and what the write path re-runs as its guard.
func (s *Scheduler)Evaluate(r flytau.Resource, tl Timeline, leg Leg) Verdict {
	if !Qualifies(r, leg.Class) {
		return Verdict{Reason:Capability, Detail:fmt.Sprintf("%s %s can't serve a %s flight",
			r.Kind, r.Capability(), leg.Class)}
	}
	return s.Checker().CheckLeg(tl, leg)
}

// }}}
// {{{ s.Available

// Available lists the resources of the given kind that can legally be assigned to the
// candidate, ordered by display name then ID. If the candidate has no route, the result is
// empty and the error wraps ErrUnroutable.
func (s *Scheduler)Available(ctx context.Context, kind flytau.ResourceKind, cand flytau.Candidate) ([]Availability, error) {
	leg,err := Resolve(s.Routes, cand)
	if err != nil {
		s.Log.Errorf("Available[%s,%s]: %v", kind, cand, err)
		return nil, err
	}
	return s.availableForLeg(ctx, kind, leg)
}

func (s *Scheduler)availableForLeg(ctx context.Context, kind flytau.ResourceKind, leg Leg) ([]Availability, error) {
	resources,err := s.Source.ListResources(ctx, kind)
	if err != nil {
		s.Log.Errorf("Available[%s,%s]: %v", kind, leg.Candidate, err)
		return nil, fmt.Errorf("Available[%s]: %v", kind, err)
	}

	ret := []Availability{}
	for _,r := range resources {
		if err := ctx.Err(); err != nil { return nil, err }

		var tl Timeline
		var v Verdict
		if !Qualifies(r, leg.Class) {
			// Skip the commitment read for resources that can't serve anyway
			v = s.Evaluate(r, nil, leg)
		} else {
			if tl,err = s.Timeline(ctx, r.Ref()); err != nil { return nil, err }
			v = s.Evaluate(r, tl, leg)
		}

		s.record(r, leg, v)
		if !v.OK() { continue }

		ret = append(ret, Availability{Resource:r, Prior:s.prior(tl, leg.DepartureUTC)})
	}

	SortAvailability(ret)
	return ret, nil
}

func (s *Scheduler)record(r flytau.Resource, leg Leg, v Verdict) {
	s.Log.Debugf("%s %s: %s", leg.Candidate, r.Ref(), v)
	if s.Decisions != nil {
		s.Decisions.Record(Decision{
			Resource: r.Ref(),
			DisplayName: r.DisplayName,
			Candidate: leg.Candidate,
			Class: leg.Class,
			Verdict: v,
		})
	}
}

func (s *Scheduler)prior(tl Timeline, dep time.Time) PriorCommitment {
	if prev,ok := tl.Before(dep); ok {
		return PriorCommitment{
			Location: prev.Destination,
			FlightID: prev.FlightID,
			Origin: prev.Origin,
			ArrivalUTC: prev.ArrivalUTC,
		}
	}
	return PriorCommitment{HomeBase:true, Location:s.homeBase()}
}

// SortAvailability puts results in display order: display name, then ID.
func SortAvailability(a []Availability) {
	sort.SliceStable(a, func(i,j int) bool {
		if a[i].DisplayName != a[j].DisplayName { return a[i].DisplayName < a[j].DisplayName }
		return a[i].ID < a[j].ID
	})
}

// }}}
// {{{ s.Roster

// Roster runs the three availability queries in parallel.
func (s *Scheduler)Roster(ctx context.Context, cand flytau.Candidate) (*Roster, error) {
	leg,err := Resolve(s.Routes, cand)
	if err != nil {
		s.Log.Errorf("Roster[%s]: %v", cand, err)
		return nil, err
	}

	r := Roster{Leg:leg, Crew:RequiredCrew(leg.Minutes)}
	dsts := map[flytau.ResourceKind]*[]Availability{
		flytau.Aircraft: &r.Aircraft,
		flytau.Pilot: &r.Pilots,
		flytau.Attendant: &r.Attendants,
	}

	g,gctx := errgroup.WithContext(ctx)
	for _,kind := range flytau.AllResourceKinds {
		kind,dst := kind, dsts[kind]
		g.Go(func() error {
			avail,err := s.availableForLeg(gctx, kind, leg)
			if err != nil { return err }
			*dst = avail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &r, nil
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
