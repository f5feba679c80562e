package flytau

import(
	"fmt"
	"strings"
	"time"
)

// An Airport is an IATA style code, e.g. TLV, JFK
type Airport string

func NewAirport(s string) Airport { return Airport(strings.ToUpper(strings.TrimSpace(s))) }

func (a Airport)String() string { return string(a) }
func (a Airport)IsZero() bool   { return a == "" }

// A Route is an entry in the route table: a directional, scheduled transit time between two
// airports. A pair with no Route is unserved; that is not the same as zero minutes.
type Route struct {
	Origin      Airport
	Destination Airport
	Minutes     int
}

func (r Route)Duration() time.Duration { return time.Duration(r.Minutes) * time.Minute }

func (r Route)String() string {
	return fmt.Sprintf("%s-%s:%dm", r.Origin, r.Destination, r.Minutes)
}

// Key is the name used to store the route; it is unique per direction.
func (r Route)Key() string { return RouteKey(r.Origin, r.Destination) }

func RouteKey(origin, destination Airport) string {
	return string(origin) + "-" + string(destination)
}

func (r Route)Validate() error {
	if r.Origin.IsZero() || r.Destination.IsZero() {
		return fmt.Errorf("route %s: missing airport", r)
	} else if r.Origin == r.Destination {
		return fmt.Errorf("route %s: origin and destination are the same", r)
	} else if r.Minutes <= 0 {
		return fmt.Errorf("route %s: duration must be positive", r)
	}
	return nil
}
