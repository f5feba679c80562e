package audit

import(
	"sync"

	"golang.org/x/net/context"
)

// MemPublisher keeps everything it's given; for tests and the command line tool.
type MemPublisher struct {
	sync.Mutex
	Rows []DecisionForBigQuery
}

func (m *MemPublisher)Publish(ctx context.Context, rows []DecisionForBigQuery) error {
	m.Lock()
	defer m.Unlock()
	m.Rows = append(m.Rows, rows...)
	return nil
}
