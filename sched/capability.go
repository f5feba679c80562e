package sched

import "github.com/skypies/flytau"

// Qualifies is the capability filter. Long flights need Large aircraft and LongCapable crew;
// short flights take anything.
func Qualifies(r flytau.Resource, class flytau.DurationClass) bool {
	if class != flytau.Long { return true }
	switch r.Kind {
	case flytau.Aircraft:
		return r.Size == flytau.Large
	case flytau.Pilot, flytau.Attendant:
		return r.Cert == flytau.LongCapable
	}
	return false
}
