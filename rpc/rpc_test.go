package rpc

import(
	"net"
	"testing"
	"time"

	"golang.org/x/net/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/booking"
	"github.com/skypies/flytau/db"
	"github.com/skypies/flytau/ref"
)

const rpcFixture = `{
  "routes": [
    {"origin":"TLV", "destination":"JFK", "minutes":660},
    {"origin":"TLV", "destination":"ATH", "minutes":120}
  ],
  "aircraft": [
    {"id":"4X-EKA", "producer":"Boeing", "model":"787-9", "size":"large", "seats":294},
    {"id":"4X-ABA", "producer":"Airbus", "model":"A320", "size":"small", "seats":180}
  ],
  "pilots": [
    {"id":"P1", "first":"Avi", "last":"Cohen", "training":"long"},
    {"id":"P2", "first":"Dana", "last":"Levi", "training":"short"}
  ],
  "attendants": [
    {"id":"A1", "first":"Noa", "last":"Bar", "training":"both"}
  ]
}`

var dep = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T) (*Client, *grpc.ClientConn) {
	t.Helper()
	p := db.NewMemProvider()
	require.NoError(t, db.LoadFixture(context.Background(), p, rpcFixture))
	d := booking.NewDesk(p, ref.NewLoader(p, time.Minute), "TLV", nil)

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(d)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	c,err := Dial("passthrough:///bufnet", grpc.WithContextDialer(dialer))
	require.NoError(t, err)
	c.Operator = "tester"
	t.Cleanup(func(){ c.Close() })
	return c, c.conn
}

func TestAvailable(t *testing.T) {
	c,_ := newTestClient(t)
	ctx := context.Background()

	avail,err := c.Available(ctx, flytau.Pilot, flytau.Candidate{Origin:"TLV", Destination:"JFK", DepartureUTC:dep})
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, "pilot:P1", avail[0]["resource"])
	assert.Equal(t, true, avail[0]["home_base"])
	assert.Equal(t, "TLV", avail[0]["location"])

	avail,err = c.Available(ctx, flytau.Aircraft, flytau.Candidate{Origin:"TLV", Destination:"ATH", DepartureUTC:dep})
	require.NoError(t, err)
	assert.Len(t, avail, 2)
}

func TestRoster(t *testing.T) {
	c,_ := newTestClient(t)

	r,err := c.Roster(context.Background(), flytau.Candidate{Origin:"TLV", Destination:"JFK", DepartureUTC:dep})
	require.NoError(t, err)
	assert.Equal(t, "long", r["class"])
	assert.Equal(t, float64(3), r["pilots_needed"])
	assert.Equal(t, float64(6), r["attendants_needed"])
	assert.Equal(t, false, r["staffable"])
	assert.Len(t, r["aircraft"], 1)
}

func TestErrors(t *testing.T) {
	c,_ := newTestClient(t)
	ctx := context.Background()

	_,err := c.Available(ctx, flytau.Pilot, flytau.Candidate{Origin:"TLV", Destination:"LHR", DepartureUTC:dep})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_,err = c.Roster(ctx, flytau.Candidate{Origin:"TLV", Destination:"", DepartureUTC:dep})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_,err = c.Roster(ctx, flytau.Candidate{Origin:"TLV", Destination:"ATH"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealth(t *testing.T) {
	_,conn := newTestClient(t)

	resp,err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service:ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
