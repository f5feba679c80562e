// Package sched decides which aircraft and crew can legally be assigned to a candidate flight.
// It reads reference data and commitments through the small interfaces below, holds no state
// of its own, and recomputes everything on each call.
package sched

import(
	"golang.org/x/net/context"

	"github.com/skypies/flytau"
)

/*

	s := sched.Scheduler{Routes:table, Source:provider, HomeBase:"TLV"}
	cand := flytau.Candidate{Origin:"TLV", Destination:"JFK", DepartureUTC:time.Date(2026,3,1,8,0,0,0,time.UTC)}

	avail,err := s.Available(ctx, flytau.Pilot, cand)

*/

// RouteLookup answers the route table question. ok is false when the pair is unserved; a
// served pair always has a positive duration.
type RouteLookup interface {
	DurationMinutes(origin, destination flytau.Airport) (minutes int, ok bool)
}

// ResourceSource is the read side of the persistence layer. ListCommitments returns only the
// commitments of flights that still hold their resources (i.e. not cancelled).
type ResourceSource interface {
	ListResources(ctx context.Context, kind flytau.ResourceKind) ([]flytau.Resource, error)
	ListCommitments(ctx context.Context, ref flytau.ResourceRef) ([]flytau.Commitment, error)
}

// RouteMap is the simplest RouteLookup, mostly for tests and fixtures.
type RouteMap map[string]int

func NewRouteMap(routes ...flytau.Route) RouteMap {
	m := RouteMap{}
	for _,r := range routes { m[r.Key()] = r.Minutes }
	return m
}

func (m RouteMap)DurationMinutes(origin, destination flytau.Airport) (int, bool) {
	mins,exists := m[flytau.RouteKey(origin, destination)]
	return mins, exists && mins > 0
}
