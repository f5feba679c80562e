package booking

import(
	"errors"
	"fmt"

	"github.com/skypies/flytau/sched"
)

var(
	ErrCrewCount           = errors.New("wrong number of crew")
	ErrCrewAlreadyAssigned = errors.New("flight already has its crew")
	ErrNoAircraft          = errors.New("flight has no aircraft")
	ErrTooLateToCancel     = errors.New("too late to cancel, departure is less than 72 hours away")
	ErrDepartureInPast     = errors.New("departure is in the past")
	ErrNotDeparted         = errors.New("flight has not departed yet")
	ErrWrongKind           = errors.New("resource is the wrong kind")
)

// WithRetry runs f up to attempts times, for as long as it fails with a retryable error.
func WithRetry(attempts int, f func() error) error {
	var err error
	for i:=0; i<attempts; i++ {
		if err = f(); err == nil || !sched.IsRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
}
