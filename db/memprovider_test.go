package db

import(
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/net/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/sched"
)

var(
	p1 = flytau.ResourceRef{Kind:flytau.Pilot, ID:"P1"}
	p2 = flytau.ResourceRef{Kind:flytau.Pilot, ID:"P2"}
	ekA = flytau.ResourceRef{Kind:flytau.Aircraft, ID:"4X-EKA"}
	abA = flytau.ResourceRef{Kind:flytau.Aircraft, ID:"4X-ABA"}
)

func loadTestFixture(t *testing.T) *MemProvider {
	t.Helper()
	p := NewMemProvider()
	require.NoError(t, LoadFixtureFile(context.Background(), p, "testdata/fixture.json"))
	return p
}

// onlyIfFree is the simplest possible guard
func onlyIfFree(ref flytau.ResourceRef, existing []flytau.Commitment) error {
	if len(existing) > 0 {
		return sched.ErrAllocationConflict
	}
	return nil
}

func TestLoadFixture(t *testing.T) {
	ctx := context.Background()
	p := loadTestFixture(t)

	mins,ok,err := p.LookupRoute(ctx, "TLV", "JFK")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 660, mins)

	_,ok,_ = p.LookupRoute(ctx, "LCA", "JFK")
	assert.False(t, ok)

	pilots,err := p.ListResources(ctx, flytau.Pilot)
	require.NoError(t, err)
	require.Len(t, pilots, 2)
	assert.Equal(t, "Avi Cohen", pilots[0].DisplayName)
	assert.Equal(t, flytau.LongCapable, pilots[0].Cert)

	ac,err := p.LookupResource(ctx, abA)
	require.NoError(t, err)
	assert.Equal(t, flytau.Small, ac.Size)
	assert.Equal(t, 180, ac.Seats)
	assert.Equal(t, "Airbus A320", ac.DisplayName)

	// The occurred flight keeps its commitments; the cancelled one doesn't
	commits,err := p.ListCommitments(ctx, abA)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, flytau.Airport("ATH"), commits[0].Destination)

	flights,err := p.ListFlights(ctx)
	require.NoError(t, err)
	require.Len(t, flights, 2)
	assert.Equal(t, flytau.Occurred, flights[0].Status)
	assert.Equal(t, "4X-ABA", flights[0].AircraftID)
	assert.Equal(t, flytau.Cancelled, flights[1].Status)
	assert.Empty(t, flights[1].Assigned)
}

func TestLoadFixtureBad(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, LoadFixture(ctx, NewMemProvider(), `{"routes": [`))
	assert.Error(t, LoadFixture(ctx, NewMemProvider(), `{"pilots":[{"id":"P1","training":"sometimes"}]}`))
	assert.Error(t, LoadFixture(ctx, NewMemProvider(), `{"routes":[{"origin":"TLV","destination":"TLV","minutes":5}]}`))
}

func TestWriteCommitmentsIsAtomic(t *testing.T) {
	ctx := context.Background()
	p := loadTestFixture(t)

	id,err := p.CreateFlight(ctx, flytau.Flight{Candidate:flytau.Candidate{Origin:"TLV", Destination:"ATH", DepartureUTC:time.Now()}})
	require.NoError(t, err)

	// P2 is already committed, so the whole write should fail, and P1 must not be written
	err = p.WriteCommitments(ctx, id, []flytau.ResourceRef{p1, p2}, onlyIfFree)
	assert.True(t, errors.Is(err, sched.ErrAllocationConflict))

	commits,_ := p.ListCommitments(ctx, p1)
	assert.Empty(t, commits)
	f,_ := p.LookupFlight(ctx, id)
	assert.Empty(t, f.Assigned)

	require.NoError(t, p.WriteCommitments(ctx, id, []flytau.ResourceRef{ekA, p1}, onlyIfFree))
	f,_ = p.LookupFlight(ctx, id)
	assert.Equal(t, "4X-EKA", f.AircraftID)
	assert.Equal(t, []flytau.ResourceRef{ekA, p1}, f.Assigned)

	assert.Error(t, p.DeleteFlight(ctx, id), "flight with commitments can't be deleted")
}

func TestWriteCommitmentsOncePerKind(t *testing.T) {
	ctx := context.Background()
	p := loadTestFixture(t)

	id,err := p.CreateFlight(ctx, flytau.Flight{Candidate:flytau.Candidate{Origin:"TLV", Destination:"ATH", DepartureUTC:time.Now()}})
	require.NoError(t, err)
	require.NoError(t, p.WriteCommitments(ctx, id, []flytau.ResourceRef{abA}, nil))
	require.NoError(t, p.WriteCommitments(ctx, id, []flytau.ResourceRef{p1}, onlyIfFree))

	// A second crew write to the same flight has lost a race, whatever its guard says
	err = p.WriteCommitments(ctx, id, []flytau.ResourceRef{p2}, nil)
	assert.True(t, errors.Is(err, sched.ErrAllocationConflict), "got %v", err)
	err = p.WriteCommitments(ctx, id, []flytau.ResourceRef{ekA}, nil)
	assert.True(t, errors.Is(err, sched.ErrAllocationConflict), "got %v", err)

	f,_ := p.LookupFlight(ctx, id)
	assert.Equal(t, []flytau.ResourceRef{abA, p1}, f.Assigned)
	assert.Equal(t, "4X-ABA", f.AircraftID)
}

func TestConcurrentDoubleBooking(t *testing.T) {
	ctx := context.Background()
	p := loadTestFixture(t)

	ids := []int64{}
	for i:=0; i<8; i++ {
		id,err := p.CreateFlight(ctx, flytau.Flight{Candidate:flytau.Candidate{Origin:"TLV", Destination:"JFK", DepartureUTC:time.Now()}})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	// Hold everyone at the starting line, so they all pass any read-time check together
	start := make(chan struct{})
	p.BeforeGuard = func() { <-start }

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i,id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			errs[i] = p.WriteCommitments(ctx, id, []flytau.ResourceRef{p1}, onlyIfFree)
		}(i, id)
	}
	close(start)
	wg.Wait()

	won := 0
	for _,err := range errs {
		if err == nil {
			won++
		} else {
			assert.True(t, sched.IsRetryable(err), "unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)

	commits,_ := p.ListCommitments(ctx, p1)
	assert.Len(t, commits, 1)
}

func TestRetractCommitments(t *testing.T) {
	ctx := context.Background()
	p := loadTestFixture(t)

	id,err := p.CreateFlight(ctx, flytau.Flight{Candidate:flytau.Candidate{Origin:"TLV", Destination:"JFK", DepartureUTC:time.Now()}})
	require.NoError(t, err)
	require.NoError(t, p.WriteCommitments(ctx, id, []flytau.ResourceRef{ekA, p1}, nil))

	require.NoError(t, p.RetractCommitments(ctx, id))
	for _,ref := range []flytau.ResourceRef{ekA, p1} {
		commits,_ := p.ListCommitments(ctx, ref)
		assert.Empty(t, commits, "%s", ref)
	}
	f,_ := p.LookupFlight(ctx, id)
	assert.Equal(t, flytau.Cancelled, f.Status)

	// Can't commit anything to a cancelled flight
	err = p.WriteCommitments(ctx, id, []flytau.ResourceRef{p1}, nil)
	assert.True(t, errors.Is(err, ErrBadStatus))

	_,err = p.LookupFlight(ctx, 99999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemProviderCopies(t *testing.T) {
	ctx := context.Background()
	p := loadTestFixture(t)

	flights,_ := p.ListFlights(ctx)
	flights[0].Assigned[0] = flytau.ResourceRef{Kind:flytau.Pilot, ID:"HACKED"}

	f,_ := p.LookupFlight(ctx, flights[0].ID)
	assert.Equal(t, abA, f.Assigned[0])
}

func TestQueryString(t *testing.T) {
	q := NewFlightQuery()
	assert.Equal(t, "NewQuery(\"flight\")\n  .Order(\"DepartureUTC\")\n", q.String())

	q = NewResourceQuery(flytau.Pilot)
	assert.Equal(t, "NewQuery(\"resource\")\n  .Filter(\"Kind =\", pilot)\n", q.String())

	// Sorted by the timeline builder instead; an ancestor query with an order needs an index
	q = NewCommitmentQuery(p1)
	assert.NotNil(t, q.AncestorKeyer)
	assert.Empty(t, q.OrderStr)
	assert.NotContains(t, q.String(), ".Order")
}
