package sched

import(
	"fmt"
	"sort"
	"time"

	"github.com/skypies/flytau"
)

// Interval is a commitment with its arrival filled in. The occupied span is the half-open
// interval [DepartureUTC, ArrivalUTC).
type Interval struct {
	flytau.Commitment
	ArrivalUTC time.Time
}

func (i Interval)String() string {
	return fmt.Sprintf("F%d %s-%s [%s,%s)", i.FlightID, i.Origin, i.Destination,
		i.DepartureUTC.UTC().Format("01/02 15:04"), i.ArrivalUTC.UTC().Format("01/02 15:04"))
}

// Overlaps uses strict inequalities, so intervals that touch do not overlap.
func (i Interval)Overlaps(dep, arr time.Time) bool {
	return i.DepartureUTC.Before(arr) && i.ArrivalUTC.After(dep)
}

// Timeline is a resource's committed intervals, ordered by departure.
type Timeline []Interval

// BuildTimeline derives arrivals from the route table and sorts. Commitments on routes that
// are no longer served get zero duration.
func BuildTimeline(routes RouteLookup, commitments []flytau.Commitment) Timeline {
	tl := make(Timeline, 0, len(commitments))
	for _,c := range commitments {
		tl = append(tl, Interval{Commitment:c, ArrivalUTC:arrivalOf(routes, c)})
	}
	sort.SliceStable(tl, func(i,j int) bool {
		if tl[i].DepartureUTC.Equal(tl[j].DepartureUTC) { return tl[i].FlightID < tl[j].FlightID }
		return tl[i].DepartureUTC.Before(tl[j].DepartureUTC)
	})
	return tl
}

// Validate checks the timeline's intervals are pairwise non-overlapping. Timelines built
// purely via the checker always pass.
func (tl Timeline)Validate() error {
	for i:=1; i<len(tl); i++ {
		if tl[i-1].ArrivalUTC.After(tl[i].DepartureUTC) {
			return fmt.Errorf("timeline: %s overlaps %s", tl[i-1], tl[i])
		}
	}
	return nil
}

// Before returns the interval with the latest arrival among those arriving at or before t.
func (tl Timeline)Before(t time.Time) (Interval, bool) {
	var best Interval
	found := false
	for _,i := range tl {
		if i.ArrivalUTC.After(t) { continue }
		if !found || i.ArrivalUTC.After(best.ArrivalUTC) {
			best,found = i,true
		}
	}
	return best, found
}

// After returns the interval with the earliest departure among those departing at or after t.
func (tl Timeline)After(t time.Time) (Interval, bool) {
	var best Interval
	found := false
	for _,i := range tl {
		if i.DepartureUTC.Before(t) { continue }
		if !found || i.DepartureUTC.Before(best.DepartureUTC) {
			best,found = i,true
		}
	}
	return best, found
}

// Location is where the resource is at time t, going by its last arrival.
func (tl Timeline)Location(t time.Time, homebase flytau.Airport) flytau.Airport {
	if prev,ok := tl.Before(t); ok {
		return prev.Destination
	}
	return homebase
}
