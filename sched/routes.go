package sched

import(
	"time"

	"github.com/skypies/flytau"
)

// Leg is a candidate flight resolved against the route table.
type Leg struct {
	flytau.Candidate
	Minutes     int
	ArrivalUTC  time.Time
	Class       flytau.DurationClass
}

func (l Leg)Duration() time.Duration { return time.Duration(l.Minutes) * time.Minute }

// Resolve computes the candidate's arrival. An unserved pair is an error; flight duration
// never falls back to zero.
func Resolve(routes RouteLookup, c flytau.Candidate) (Leg, error) {
	mins,ok := routes.DurationMinutes(c.Origin, c.Destination)
	if !ok || c.Origin == c.Destination {
		return Leg{}, unroutable(c.Origin, c.Destination)
	}
	return Leg{
		Candidate: c,
		Minutes: mins,
		ArrivalUTC: c.DepartureUTC.Add(time.Duration(mins) * time.Minute),
		Class: flytau.ClassifyMinutes(mins),
	}, nil
}

// TransferBuffer is the minimum gap a resource needs to reposition between two airports. It is
// zero when the resource is already there, and also zero when the pair is unserved.
func TransferBuffer(routes RouteLookup, from, to flytau.Airport) time.Duration {
	if from == to { return 0 }
	if mins,ok := routes.DurationMinutes(from, to); ok {
		return time.Duration(mins) * time.Minute
	}
	return 0
}

// arrivalOf is used for historical commitments, where the route may since have vanished; in
// that case the interval collapses to zero length.
func arrivalOf(routes RouteLookup, c flytau.Commitment) time.Time {
	if mins,ok := routes.DurationMinutes(c.Origin, c.Destination); ok {
		return c.DepartureUTC.Add(time.Duration(mins) * time.Minute)
	}
	return c.DepartureUTC
}
