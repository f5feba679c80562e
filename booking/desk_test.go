package booking

import(
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/net/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/db"
	"github.com/skypies/flytau/ref"
	"github.com/skypies/flytau/sched"
)

const deskFixture = `{
  "routes": [
    {"origin":"TLV", "destination":"JFK", "minutes":600},
    {"origin":"JFK", "destination":"TLV", "minutes":600},
    {"origin":"JFK", "destination":"ATH", "minutes":540},
    {"origin":"ATH", "destination":"TLV", "minutes":120},
    {"origin":"TLV", "destination":"ATH", "minutes":120}
  ],
  "aircraft": [
    {"id":"4X-EKA", "producer":"Boeing", "model":"787", "size":"large", "seats":294},
    {"id":"4X-ABA", "producer":"Airbus", "model":"A320", "size":"small", "seats":180}
  ],
  "pilots": [
    {"id":"P", "first":"Pat", "last":"Long", "training":"long"},
    {"id":"P2", "first":"Avi", "last":"Cohen", "training":"long"},
    {"id":"P3", "first":"Dana", "last":"Levi", "training":"long"},
    {"id":"P4", "first":"Shira", "last":"Short", "training":"short"}
  ],
  "attendants": [
    {"id":"A1", "first":"Noa", "last":"A", "training":"both"},
    {"id":"A2", "first":"Noa", "last":"B", "training":"both"},
    {"id":"A3", "first":"Noa", "last":"C", "training":"both"},
    {"id":"A4", "first":"Noa", "last":"D", "training":"both"},
    {"id":"A5", "first":"Noa", "last":"E", "training":"both"},
    {"id":"A6", "first":"Noa", "last":"F", "training":"short"}
  ]
}`

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time { return jan1.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

func newTestDesk(t *testing.T) (*Desk, *db.MemProvider) {
	t.Helper()
	p := db.NewMemProvider()
	require.NoError(t, db.LoadFixture(context.Background(), p, deskFixture))
	return NewDesk(p, ref.NewLoader(p, time.Minute), "TLV", nil), p
}

func testRequest(now time.Time) Request {
	return Request{Operator:"tester", RequestID:"req-1", Now:now}
}

func cand(o, d string, t time.Time) flytau.Candidate {
	return flytau.Candidate{Origin:flytau.Airport(o), Destination:flytau.Airport(d), DepartureUTC:t}
}

func availableIDs(t *testing.T, d *Desk, kind flytau.ResourceKind, c flytau.Candidate) []string {
	t.Helper()
	avail,err := d.Available(context.Background(), testRequest(jan1.AddDate(0,-1,0)), kind, c)
	require.NoError(t, err)
	ids := []string{}
	for _,a := range avail { ids = append(ids, a.ID) }
	return ids
}

// commitPilot puts P on a TLV-JFK flight at 08:00, arriving 18:00.
func commitPilot(t *testing.T, p *db.MemProvider) int64 {
	ctx := context.Background()
	id,err := p.CreateFlight(ctx, flytau.Flight{Candidate:cand("TLV","JFK", at(8,0))})
	require.NoError(t, err)
	require.NoError(t, p.WriteCommitments(ctx, id, []flytau.ResourceRef{{Kind:flytau.Pilot, ID:"P"}}, nil))
	return id
}

func TestEndToEndScenario(t *testing.T) {
	d,p := newTestDesk(t)
	commitPilot(t, p)

	tests := []struct{
		flytau.Candidate
		Available bool
	}{
		{cand("JFK","TLV", at(19,30)), true},
		{cand("JFK","TLV", at(18,0)),  true},  // touching, and the buffer JFK->JFK is zero
		{cand("JFK","TLV", at(17,59)), false}, // overlaps
		{cand("ATH","TLV", at(27,0)),  true},  // arrival 18:00 + 540m JFK->ATH
		{cand("ATH","TLV", at(26,59)), false},
		{cand("TLV","ATH", at(4,0)),   true},  // arrives 06:00, 120m back to TLV for 08:00
		{cand("TLV","ATH", at(4,1)),   false},
		{cand("TLV","ATH", at(6,1)),   false}, // arrives 08:01
	}

	for _,test := range tests {
		ids := availableIDs(t, d, flytau.Pilot, test.Candidate)
		assert.Equal(t, test.Available, contains(ids, "P"), "%s: %v", test.Candidate, ids)
	}

	// The prior commitment summary points at the TLV-JFK flight
	avail,err := d.Available(context.Background(), testRequest(jan1), flytau.Pilot, cand("JFK","TLV", at(19,30)))
	require.NoError(t, err)
	for _,a := range avail {
		if a.ID == "P" {
			assert.False(t, a.Prior.HomeBase)
			assert.Equal(t, flytau.Airport("JFK"), a.Prior.Location)
			assert.True(t, a.Prior.ArrivalUTC.Equal(at(18,0)))
		} else {
			assert.True(t, a.Prior.HomeBase)
		}
	}
}

func contains(ss []string, s string) bool {
	for _,x := range ss { if x == s { return true } }
	return false
}

func TestAvailableOrdering(t *testing.T) {
	d,_ := newTestDesk(t)
	// Display names are "Noa A" .. "Noa F"; A6 is short only
	ids := availableIDs(t, d, flytau.Attendant, cand("TLV","JFK", at(8,0)))
	assert.Equal(t, []string{"A1", "A2", "A3", "A4", "A5"}, ids)

	ids = availableIDs(t, d, flytau.Aircraft, cand("TLV","ATH", at(8,0)))
	assert.Equal(t, []string{"4X-ABA", "4X-EKA"}, ids) // "Airbus A320" < "Boeing 787"
}

func TestCancelFreesCapacity(t *testing.T) {
	ctx := context.Background()
	d,_ := newTestDesk(t)
	req := testRequest(jan1.AddDate(0,-1,0))
	req.WithDecisionLog()

	f,err := d.CreateFlight(ctx, req, cand("TLV","JFK", at(8,0)), "4X-EKA")
	require.NoError(t, err)
	assert.Equal(t, "4X-EKA", f.AircraftID)

	f,err = d.AssignCrew(ctx, req, f.ID, []string{"P","P2","P3"}, []string{"A1","A2","A3","A4","A5","A1"})
	assert.True(t, errors.Is(err, ErrCrewCount), "got %v", err)

	// A6 is short-haul only
	_,err = d.AssignCrew(ctx, req, f.ID, []string{"P","P2","P3"}, []string{"A1","A2","A3","A4","A5","A6"})
	assert.True(t, errors.Is(err, sched.ErrInsufficientCapability), "got %v", err)
	ce := &sched.ConflictError{}
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "A6", ce.Resource.ID)

	// Add a sixth long-haul attendant, and go again
	p := d.Provider
	require.NoError(t, p.PersistResource(ctx, flytau.Resource{ResourceRef:flytau.ResourceRef{Kind:flytau.Attendant, ID:"A7"},
		DisplayName:"Noa G", Cert:flytau.LongCapable}))
	f,err = d.AssignCrew(ctx, req, f.ID, []string{"P","P2","P3"}, []string{"A1","A2","A3","A4","A5","A7"})
	require.NoError(t, err)
	assert.Len(t, f.Assigned, 10)

	_,err = d.AssignCrew(ctx, req, f.ID, []string{"P","P2","P3"}, []string{"A1","A2","A3","A4","A5","A7"})
	assert.True(t, errors.Is(err, ErrCrewAlreadyAssigned))

	// Everyone is busy on an overlapping flight
	overlapping := cand("TLV","ATH", at(10,0))
	assert.NotContains(t, availableIDs(t, d, flytau.Pilot, overlapping), "P")
	assert.NotContains(t, availableIDs(t, d, flytau.Aircraft, overlapping), "4X-EKA")

	require.NoError(t, d.CancelFlight(ctx, req, f.ID))

	assert.Contains(t, availableIDs(t, d, flytau.Pilot, overlapping), "P")
	assert.Contains(t, availableIDs(t, d, flytau.Aircraft, overlapping), "4X-EKA")
	assert.Contains(t, availableIDs(t, d, flytau.Attendant, overlapping), "A7")

	f,err = p.LookupFlight(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, flytau.Cancelled, f.Status)

	assert.True(t, errors.Is(d.CancelFlight(ctx, req, f.ID), db.ErrBadStatus))
}

func TestCancelTooLate(t *testing.T) {
	ctx := context.Background()
	d,_ := newTestDesk(t)
	dep := at(8,0)

	f,err := d.CreateFlight(ctx, testRequest(dep.Add(-100*time.Hour)), cand("TLV","ATH", dep), "4X-ABA")
	require.NoError(t, err)

	err = d.CancelFlight(ctx, testRequest(dep.Add(-71*time.Hour)), f.ID)
	assert.True(t, errors.Is(err, ErrTooLateToCancel), "got %v", err)

	assert.NoError(t, d.CancelFlight(ctx, testRequest(dep.Add(-72*time.Hour)), f.ID))
}

func TestCreateFlightErrors(t *testing.T) {
	ctx := context.Background()
	d,p := newTestDesk(t)
	req := testRequest(jan1.AddDate(0,-1,0))

	_,err := d.CreateFlight(ctx, req, cand("ATH","JFK", at(8,0)), "4X-EKA")
	assert.True(t, errors.Is(err, sched.ErrUnroutable), "got %v", err)

	_,err = d.CreateFlight(ctx, req, cand("TLV","TLV", at(8,0)), "4X-EKA")
	assert.True(t, errors.Is(err, sched.ErrUnroutable), "got %v", err)

	_,err = d.CreateFlight(ctx, req, cand("TLV","JFK", at(8,0)), "4X-ABA")
	assert.True(t, errors.Is(err, sched.ErrInsufficientCapability), "got %v", err)

	_,err = d.CreateFlight(ctx, req, cand("TLV","JFK", at(8,0)), "4X-NOPE")
	assert.True(t, errors.Is(err, db.ErrNotFound), "got %v", err)

	_,err = d.CreateFlight(ctx, testRequest(at(9,0)), cand("TLV","JFK", at(8,0)), "4X-EKA")
	assert.True(t, errors.Is(err, ErrDepartureInPast), "got %v", err)

	// Nothing should have been left behind
	flights,_ := p.ListFlights(ctx)
	assert.Empty(t, flights)

	_,err = d.CreateFlight(ctx, req, cand("TLV","JFK", at(8,0)), "4X-EKA")
	require.NoError(t, err)
	_,err = d.CreateFlight(ctx, req, cand("TLV","ATH", at(12,0)), "4X-EKA")
	ce := &sched.ConflictError{}
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, sched.Overlap, ce.Reason)
	assert.False(t, sched.IsRetryable(err))
}

func TestConcurrentCreateFlight(t *testing.T) {
	ctx := context.Background()
	d,p := newTestDesk(t)
	req := testRequest(jan1.AddDate(0,-1,0))

	// Both callers pass the read-time check before either writes
	var arrived sync.WaitGroup
	arrived.Add(2)
	p.BeforeGuard = func() { arrived.Done(); arrived.Wait() }

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i,c := range []flytau.Candidate{cand("TLV","JFK", at(8,0)), cand("TLV","ATH", at(9,0))} {
		wg.Add(1)
		go func(i int, c flytau.Candidate) {
			defer wg.Done()
			_,errs[i] = d.CreateFlight(ctx, req, c, "4X-EKA")
		}(i, c)
	}
	wg.Wait()
	p.BeforeGuard = nil

	failed := 0
	for _,err := range errs {
		if err != nil {
			failed++
			assert.True(t, sched.IsRetryable(err), "got %v", err)
		}
	}
	assert.Equal(t, 1, failed)

	flights,_ := p.ListFlights(ctx)
	assert.Len(t, flights, 1, "the loser's flight record should be removed")
}

func TestConcurrentAssignCrew(t *testing.T) {
	ctx := context.Background()
	d,p := newTestDesk(t)
	req := testRequest(jan1.AddDate(0,-1,0))

	f,err := d.CreateFlight(ctx, req, cand("TLV","ATH", at(8,0)), "4X-ABA")
	require.NoError(t, err)

	// Two disjoint crews, both free, both pass the read-time checks before either writes
	var arrived sync.WaitGroup
	arrived.Add(2)
	p.BeforeGuard = func() { arrived.Done(); arrived.Wait() }

	crews := [][2][]string{
		{{"P","P2"}, {"A1","A2","A3"}},
		{{"P3","P4"}, {"A4","A5","A6"}},
	}
	errs := make([]error, len(crews))
	var wg sync.WaitGroup
	for i,c := range crews {
		wg.Add(1)
		go func(i int, pilots, attendants []string) {
			defer wg.Done()
			_,errs[i] = d.AssignCrew(ctx, req, f.ID, pilots, attendants)
		}(i, c[0], c[1])
	}
	wg.Wait()
	p.BeforeGuard = nil

	failed := 0
	for _,err := range errs {
		if err != nil {
			failed++
			assert.True(t, sched.IsRetryable(err), "got %v", err)
		}
	}
	assert.Equal(t, 1, failed)

	f,err = p.LookupFlight(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, f.AssignedOfKind(flytau.Pilot), 2, "%v", f.Assigned)
	assert.Len(t, f.AssignedOfKind(flytau.Attendant), 3, "%v", f.Assigned)

	// Only the winning crew holds commitments
	held := 0
	for _,id := range []string{"P","P2","P3","P4"} {
		commits,_ := p.ListCommitments(ctx, flytau.ResourceRef{Kind:flytau.Pilot, ID:id})
		held += len(commits)
	}
	assert.Equal(t, 2, held)

	// Once crewed, the read-time check catches a third attempt
	_,err = d.AssignCrew(ctx, req, f.ID, []string{"P","P2"}, []string{"A1","A2","A3"})
	assert.True(t, errors.Is(err, ErrCrewAlreadyAssigned), "got %v", err)
}

func TestAssignCrewReportsPilotsFirst(t *testing.T) {
	ctx := context.Background()
	d,_ := newTestDesk(t)
	req := testRequest(jan1.AddDate(0,-1,0))

	f,err := d.CreateFlight(ctx, req, cand("TLV","JFK", at(8,0)), "4X-EKA")
	require.NoError(t, err)

	// P4 and A6 are both short-haul only; the pilot is always the one reported
	for i:=0; i<20; i++ {
		_,err = d.AssignCrew(ctx, req, f.ID, []string{"P","P2","P4"},
			[]string{"A1","A2","A3","A4","A5","A6"})
		ce := &sched.ConflictError{}
		require.True(t, errors.As(err, &ce), "got %v", err)
		assert.Equal(t, flytau.ResourceRef{Kind:flytau.Pilot, ID:"P4"}, ce.Resource)
	}
}

func TestMarkOccurred(t *testing.T) {
	ctx := context.Background()
	d,p := newTestDesk(t)

	f,err := d.CreateFlight(ctx, testRequest(jan1.AddDate(0,-1,0)), cand("TLV","ATH", at(8,0)), "4X-ABA")
	require.NoError(t, err)

	assert.True(t, errors.Is(d.MarkOccurred(ctx, testRequest(at(7,0)), f.ID), ErrNotDeparted))

	n,err := d.SweepOccurred(ctx, testRequest(at(9,0)))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f,_ = p.LookupFlight(ctx, f.ID)
	assert.Equal(t, flytau.Occurred, f.Status)

	// Occurred flights keep holding their aircraft
	commits,_ := p.ListCommitments(ctx, flytau.ResourceRef{Kind:flytau.Aircraft, ID:"4X-ABA"})
	assert.Len(t, commits, 1)
}

func TestWithRetry(t *testing.T) {
	n := 0
	err := WithRetry(3, func() error {
		n++
		if n < 3 { return fmt.Errorf("x: %w", sched.ErrAllocationConflict) }
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	n = 0
	err = WithRetry(5, func() error { n++; return fmt.Errorf("fatal") })
	assert.Error(t, err)
	assert.Equal(t, 1, n)

	err = WithRetry(2, func() error { return sched.ErrAllocationConflict })
	assert.True(t, sched.IsRetryable(err))
}
