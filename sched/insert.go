package sched

import(
	"fmt"
	"time"

	"github.com/skypies/flytau"
)

// Reason says why a resource was accepted or excluded for a candidate.
type Reason int
const(
	Accepted Reason = iota
	Overlap       // an existing commitment overlaps the candidate
	PreTransfer   // can't get from the previous arrival airport to the origin in time
	PostTransfer  // can't get from the destination to the next departure airport in time
	Unroutable    // the candidate itself has no route
	Capability    // wrong size class or certification
)

func (r Reason)String() string {
	switch r {
	case Accepted:     return "accepted"
	case Overlap:      return "overlap"
	case PreTransfer:  return "pre-transfer"
	case PostTransfer: return "post-transfer"
	case Unroutable:   return "unroutable"
	case Capability:   return "capability"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Verdict is the auditable outcome of a single check.
type Verdict struct {
	Reason
	Conflict  *Interval     // the interval that caused a temporal rejection, if any
	Buffer    time.Duration // the transfer buffer that applied (or was computed, for Home Base)
	From      flytau.Airport
	Detail    string
}

func (v Verdict)OK() bool { return v.Reason == Accepted }

func (v Verdict)String() string {
	if v.Detail != "" { return v.Reason.String() + ": " + v.Detail }
	return v.Reason.String()
}

// Checker decides whether a candidate can be inserted into a timeline, preserving the
// non-overlap and transfer-buffer invariants.
type Checker struct {
	Routes    RouteLookup
	HomeBase  flytau.Airport
}

func (c Checker)homeBase() flytau.Airport {
	if c.HomeBase.IsZero() { return flytau.DefaultHomeBase }
	return c.HomeBase
}

// CanInsert is Check reduced to a bool.
func (c Checker)CanInsert(tl Timeline, cand flytau.Candidate) bool {
	return c.Check(tl, cand).OK()
}

func (c Checker)Check(tl Timeline, cand flytau.Candidate) Verdict {
	leg,err := Resolve(c.Routes, cand)
	if err != nil {
		return Verdict{Reason:Unroutable, Detail:err.Error()}
	}
	return c.CheckLeg(tl, leg)
}

// CheckLeg runs the temporal checks for an already resolved candidate.
func (c Checker)CheckLeg(tl Timeline, leg Leg) Verdict {
	dep,arr := leg.DepartureUTC, leg.ArrivalUTC

	for i := range tl {
		if tl[i].Overlaps(dep, arr) {
			conflict := tl[i]
			return Verdict{Reason:Overlap, Conflict:&conflict, Detail:fmt.Sprintf("overlaps %s", conflict)}
		}
	}

	v := Verdict{Reason:Accepted}

	if before,ok := tl.Before(dep); ok {
		buf := TransferBuffer(c.Routes, before.Destination, leg.Origin)
		v.Buffer, v.From = buf, before.Destination
		if before.ArrivalUTC.Add(buf).After(dep) {
			return Verdict{Reason:PreTransfer, Conflict:&before, Buffer:buf, From:before.Destination,
				Detail:fmt.Sprintf("arrives %s at %s, needs %s to reach %s", before.Destination,
					before.ArrivalUTC.UTC().Format("15:04"), buf, leg.Origin)}
		}
	} else {
		// Parked at Home Base. The repositioning time is noted but imposes no constraint.
		v.From = c.homeBase()
		v.Buffer = TransferBuffer(c.Routes, v.From, leg.Origin)
	}

	if after,ok := tl.After(arr); ok {
		buf := TransferBuffer(c.Routes, leg.Destination, after.Origin)
		if arr.Add(buf).After(after.DepartureUTC) {
			return Verdict{Reason:PostTransfer, Conflict:&after, Buffer:buf, From:leg.Destination,
				Detail:fmt.Sprintf("needs %s to reach %s for F%d at %s", buf, after.Origin,
					after.FlightID, after.DepartureUTC.UTC().Format("15:04"))}
		}
	}

	return v
}
