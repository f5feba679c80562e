package sched

import(
	"fmt"

	"github.com/skypies/flytau"
)

type CrewRequirement struct {
	Attendants int
	Pilots     int
}

func (c CrewRequirement)String() string {
	return fmt.Sprintf("%d pilots, %d attendants", c.Pilots, c.Attendants)
}

func (c CrewRequirement)Count(kind flytau.ResourceKind) int {
	switch kind {
	case flytau.Pilot:     return c.Pilots
	case flytau.Attendant: return c.Attendants
	case flytau.Aircraft:  return 1
	}
	return 0
}

// RequiredCrew sizes the crew from the route duration.
func RequiredCrew(minutes int) CrewRequirement {
	if flytau.ClassifyMinutes(minutes) == flytau.Long {
		return CrewRequirement{Attendants:6, Pilots:3}
	}
	return CrewRequirement{Attendants:3, Pilots:2}
}
