package flytau

import(
	"fmt"
	"time"
)

// DurationClass is derived from the route duration; it drives capability and crew sizing.
type DurationClass int
const(
	Short DurationClass = iota
	Long
)

func (c DurationClass)String() string {
	if c == Long { return "long" }
	return "short"
}

// The threshold is exclusive on the short side: exactly 360 minutes is still Short.
func ClassifyMinutes(minutes int) DurationClass {
	if minutes > LongHaulThresholdMinutes { return Long }
	return Short
}

type FlightStatus int
const(
	Scheduled FlightStatus = iota
	Occurred
	Cancelled
)

func (s FlightStatus)String() string {
	switch s {
	case Scheduled: return "Scheduled"
	case Occurred:  return "Occurred"
	case Cancelled: return "Cancelled"
	}
	return fmt.Sprintf("FlightStatus(%d)", int(s))
}

// Active flights hold their resources; cancelled ones do not.
func (s FlightStatus)Active() bool { return s == Scheduled || s == Occurred }

// Candidate describes a flight that someone would like to create. It has no arrival time;
// that is derived from the route table.
type Candidate struct {
	Origin       Airport
	Destination  Airport
	DepartureUTC time.Time
}

func (c Candidate)String() string {
	return fmt.Sprintf("%s-%s@%s", c.Origin, c.Destination, c.DepartureUTC.UTC().Format("2006-01-02T15:04Z"))
}

func (c Candidate)Validate() error {
	if c.Origin.IsZero() || c.Destination.IsZero() {
		return fmt.Errorf("candidate %s: missing airport", c)
	} else if c.Origin == c.Destination {
		return fmt.Errorf("candidate %s: origin and destination are the same", c)
	} else if c.DepartureUTC.IsZero() {
		return fmt.Errorf("candidate %s: missing departure time", c)
	}
	return nil
}

// Flight is the persisted record of a created flight.
type Flight struct {
	ID           int64
	Candidate    // embedded
	Status       FlightStatus
	AircraftID   string

	Assigned   []ResourceRef // everything currently committed to this flight, aircraft included
	CreatedBy    string
	CreatedUTC   time.Time
}

func (f Flight)String() string {
	return fmt.Sprintf("F%d %s [%s] ac=%s crew=%d", f.ID, f.Candidate, f.Status, f.AircraftID,
		len(f.Assigned))
}

func (f Flight)IsAssigned(ref ResourceRef) bool {
	for _,a := range f.Assigned {
		if a == ref { return true }
	}
	return false
}

func (f Flight)AssignedOfKind(k ResourceKind) []ResourceRef {
	ret := []ResourceRef{}
	for _,a := range f.Assigned {
		if a.Kind == k { ret = append(ret, a) }
	}
	return ret
}

// CanCancel reports whether the flight is far enough from departure to be cancelled.
func (f Flight)CanCancel(now time.Time) bool {
	return f.DepartureUTC.Sub(now) >= CancellationNotice
}

// Commitment records that a resource is assigned to a flight. It carries a denormalized copy
// of the flight's endpoints and departure, so a resource's timeline can be built from its
// commitments alone. Arrival is never stored; it is derived from the route table.
type Commitment struct {
	Resource     ResourceRef
	FlightID     int64
	DepartureUTC time.Time
	Origin       Airport
	Destination  Airport
}

func (c Commitment)String() string {
	return fmt.Sprintf("%s F%d %s-%s@%s", c.Resource, c.FlightID, c.Origin, c.Destination,
		c.DepartureUTC.UTC().Format("2006-01-02T15:04Z"))
}

func (f Flight)CommitmentFor(ref ResourceRef) Commitment {
	return Commitment{
		Resource: ref,
		FlightID: f.ID,
		DepartureUTC: f.DepartureUTC,
		Origin: f.Origin,
		Destination: f.Destination,
	}
}
