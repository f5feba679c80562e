package booking

import(
	"fmt"
	"math/rand"
	"time"

	"github.com/skypies/flytau/sched"
)

// Request carries everything request-scoped into a workflow: who is asking, a correlation ID
// for the logs and audit rows, the clock, and where per-resource decisions should go.
type Request struct {
	Operator  string
	RequestID string
	Now       time.Time
	Decisions sched.DecisionSink // may be nil
}

func NewRequest(operator string) Request {
	now := time.Now().UTC()
	return Request{
		Operator: operator,
		RequestID: fmt.Sprintf("%s-%06x", now.Format("20060102T150405"), rand.Intn(1<<24)),
		Now: now,
	}
}

// WithDecisionLog attaches a fresh in-memory decision log, and returns it.
func (r *Request)WithDecisionLog() *sched.DecisionLog {
	dl := &sched.DecisionLog{}
	r.Decisions = dl
	return dl
}

func (r Request)now() time.Time {
	if r.Now.IsZero() { return time.Now().UTC() }
	return r.Now
}

func (r Request)String() string { return fmt.Sprintf("[%s by %s]", r.RequestID, r.Operator) }
