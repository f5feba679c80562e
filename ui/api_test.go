package ui

import(
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	hw "github.com/skypies/util/handlerware"

	"github.com/skypies/flytau/audit"
	"github.com/skypies/flytau/booking"
	"github.com/skypies/flytau/db"
	"github.com/skypies/flytau/ref"
)

const apiFixture = `{
  "routes": [
    {"origin":"TLV", "destination":"JFK", "minutes":660},
    {"origin":"TLV", "destination":"ATH", "minutes":120},
    {"origin":"ATH", "destination":"TLV", "minutes":120}
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
    {"id":"A1", "first":"Noa", "last":"Bar", "training":"both"},
    {"id":"A2", "first":"Tal", "last":"Gil", "training":"short"},
    {"id":"A3", "first":"Roni", "last":"Oz", "training":"short"}
  ]
}`

// Far enough out that cancellation is always allowed.
var departure = time.Now().UTC().AddDate(0, 0, 30).Truncate(time.Hour)

func newTestServer(t *testing.T, pub audit.Publisher) *httptest.Server {
	t.Helper()
	p := db.NewMemProvider()
	require.NoError(t, db.LoadFixture(context.Background(), p, apiFixture))
	d := booking.NewDesk(p, ref.NewLoader(p, time.Minute), "TLV", nil)

	hw.CtxMakerCallback = func(r *http.Request) context.Context { return r.Context() }
	mux := http.NewServeMux()
	AddHandlers(mux, d, pub)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func candArgs(o, d string) url.Values {
	return url.Values{
		"origin": {o},
		"destination": {d},
		"departure": {departure.Format(time.RFC3339)},
	}
}

func get(t *testing.T, srv *httptest.Server, path string, v url.Values) *http.Response {
	t.Helper()
	resp,err := http.Get(srv.URL + path + "?" + v.Encode())
	require.NoError(t, err)
	t.Cleanup(func(){ resp.Body.Close() })
	return resp
}

func post(t *testing.T, srv *httptest.Server, path string, v url.Values) *http.Response {
	t.Helper()
	req,err := http.NewRequest(http.MethodPost, srv.URL+path, strings.NewReader(v.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(OperatorHeader, "ops@example.com")
	resp,err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func(){ resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAvailableHandler(t *testing.T) {
	srv := newTestServer(t, nil)

	v := candArgs("TLV", "JFK")
	v.Set("kind", "pilot")
	resp := get(t, srv, "/api/available", v)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	avail := []AvailabilityView{}
	decode(t, resp, &avail)
	require.Len(t, avail, 1)
	assert.Equal(t, "P1", avail[0].ID)
	assert.Equal(t, "Avi Cohen", avail[0].DisplayName)
	assert.True(t, avail[0].Prior.HomeBase)
	assert.Equal(t, "TLV", avail[0].Prior.Location)
}

func TestAvailableHandlerErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct{
		Args   url.Values
		Status int
	}{
		{url.Values{"kind":{"pilot"}, "origin":{"TLV"}, "destination":{"LHR"},
			"departure":{departure.Format(time.RFC3339)}}, http.StatusUnprocessableEntity},
		{url.Values{"kind":{"pilot"}, "origin":{"TLV"}, "destination":{"ATH"}}, http.StatusBadRequest},
		{url.Values{"kind":{"captain"}, "origin":{"TLV"}, "destination":{"ATH"},
			"departure":{departure.Format(time.RFC3339)}}, http.StatusBadRequest},
		{url.Values{"kind":{"pilot"}, "origin":{"TLV"}, "destination":{"ATH"},
			"departure":{"tomorrow"}}, http.StatusBadRequest},
	}

	for i,test := range tests {
		resp := get(t, srv, "/api/available", test.Args)
		assert.Equal(t, test.Status, resp.StatusCode, "test %d: %v", i, test.Args)
	}
}

func TestRosterHandler(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := get(t, srv, "/api/roster", candArgs("TLV", "ATH"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rv := RosterView{}
	decode(t, resp, &rv)
	assert.Equal(t, "short", rv.Leg.Class)
	assert.Equal(t, 120, rv.Leg.Minutes)
	assert.Equal(t, 2, rv.Pilots)
	assert.Equal(t, 3, rv.Attendants)
	assert.True(t, rv.Staffable)
	assert.Len(t, rv.Available["aircraft"], 2)
	assert.Len(t, rv.Available["attendant"], 3)
}

func TestBookingFlow(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := get(t, srv, "/api/flight/create", candArgs("TLV", "ATH"))
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	args := candArgs("TLV", "ATH")
	args.Set("aircraft", "4X-ABA")
	resp = post(t, srv, "/api/flight/create", args)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	f := FlightView{}
	decode(t, resp, &f)
	assert.Equal(t, "Scheduled", f.Status)
	assert.Equal(t, "4X-ABA", f.Aircraft)
	assert.Equal(t, "ops@example.com", f.CreatedBy)

	// Same aircraft, same slot
	resp = post(t, srv, "/api/flight/create", args)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	ev := ErrorView{}
	decode(t, resp, &ev)
	assert.Equal(t, "overlap", ev.Reason)
	assert.False(t, ev.Retryable)

	flight := url.Values{"flight": {jsonID(f.ID)}}

	// Short flights want two pilots
	crew := url.Values{"flight":flight["flight"], "pilots":{"P1"}, "attendants":{"A1,A2,A3"}}
	resp = post(t, srv, "/api/flight/crew", crew)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	crew.Set("pilots", "P1,P2")
	resp = post(t, srv, "/api/flight/crew", crew)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &f)
	assert.Len(t, f.Assigned, 6)

	resp = get(t, srv, "/api/timeline", url.Values{"resource": {"pilot:P2"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tl := map[string][]IntervalView{}
	decode(t, resp, &tl)
	require.Len(t, tl["pilot:P2"], 1)
	assert.True(t, departure.Add(2*time.Hour).Equal(tl["pilot:P2"][0].ArrivalUTC))

	resp = post(t, srv, "/api/flight/cancel", flight)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &f)
	assert.Equal(t, "Cancelled", f.Status)

	resp = post(t, srv, "/api/flight/cancel", flight)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = get(t, srv, "/api/flight/lookup", url.Values{"flight": {"999999"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTimelinePdf(t *testing.T) {
	srv := newTestServer(t, nil)

	v := candArgs("TLV", "ATH")
	v.Set("resource", "pilot:P1,pilot:P2")
	v.Set("pdf", "1")
	resp := get(t, srv, "/api/timeline", v)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	buf := make([]byte, 4)
	_,err := resp.Body.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(buf))
}

func TestAuditPublish(t *testing.T) {
	pub := &audit.MemPublisher{}
	srv := newTestServer(t, pub)

	v := candArgs("TLV", "JFK")
	v.Set("kind", "pilot")
	resp := get(t, srv, "/api/available", v)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	pub.Lock()
	defer pub.Unlock()
	require.Len(t, pub.Rows, 2) // one per pilot, accepted or not
	for _,row := range pub.Rows {
		assert.Equal(t, "anonymous", row.Operator)
	}
}

func jsonID(id int64) string {
	b,_ := json.Marshal(id)
	return string(b)
}
