package sched

import(
	"fmt"
	"sync"

	"github.com/skypies/flytau"
)

// Decision is one per-resource outcome from the enumerator.
type Decision struct {
	Resource     flytau.ResourceRef
	DisplayName  string
	flytau.Candidate
	Class        flytau.DurationClass
	Verdict
}

func (d Decision)String() string {
	return fmt.Sprintf("%s %s %s", d.Candidate, d.Resource, d.Verdict)
}

type DecisionSink interface {
	Record(Decision)
}

// DecisionLog accumulates decisions in memory; it is safe for concurrent use.
type DecisionLog struct {
	sync.Mutex
	decisions []Decision
}

func (dl *DecisionLog)Record(d Decision) {
	dl.Lock()
	defer dl.Unlock()
	dl.decisions = append(dl.decisions, d)
}

func (dl *DecisionLog)Decisions() []Decision {
	dl.Lock()
	defer dl.Unlock()
	return append([]Decision{}, dl.decisions...)
}

func (dl *DecisionLog)Len() int {
	dl.Lock()
	defer dl.Unlock()
	return len(dl.decisions)
}
