package sched

import(
	"errors"
	"fmt"

	"github.com/skypies/flytau"
)

var(
	// The candidate's origin/destination pair has no route; no flight can be created.
	ErrUnroutable = errors.New("cannot create flight, no route")

	// A resource that passed the read-time check was taken by a concurrent booking before the
	// write landed. Callers may re-run the query and try again.
	ErrAllocationConflict = errors.New("resource no longer available")

	// An explicitly requested resource can't serve the flight's duration class.
	ErrInsufficientCapability = errors.New("resource not qualified for this flight")
)

// ConflictError is returned when an explicitly requested resource fails the timeline check.
type ConflictError struct {
	Resource flytau.ResourceRef
	Verdict
}

func (e *ConflictError)Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Verdict)
}

// Unwrap lets errors.Is match a capability rejection against ErrInsufficientCapability.
func (e *ConflictError)Unwrap() error {
	if e.Reason == Capability { return ErrInsufficientCapability }
	return nil
}

// IsRetryable is true for errors where re-running the availability query and resubmitting
// can succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrAllocationConflict)
}

func unroutable(origin, destination flytau.Airport) error {
	return fmt.Errorf("%w (%s-%s)", ErrUnroutable, origin, destination)
}
