package ref

import(
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skypies/flytau"
)

var testRoutes = []flytau.Route{
	{Origin:"TLV", Destination:"JFK", Minutes:660},
	{Origin:"JFK", Destination:"TLV", Minutes:630},
	{Origin:"TLV", Destination:"ATH", Minutes:120},
}

type countingSource struct {
	n      int
	routes []flytau.Route
	err    error
}

func (c *countingSource)ListRoutes(ctx context.Context) ([]flytau.Route, error) {
	c.n++
	return c.routes, c.err
}

func TestRouteTable(t *testing.T) {
	rt := NewRouteTable(testRoutes)

	mins,ok := rt.DurationMinutes("TLV", "JFK")
	assert.True(t, ok)
	assert.Equal(t, 660, mins)

	// Directional
	_,ok = rt.DurationMinutes("ATH", "TLV")
	assert.False(t, ok)

	assert.Equal(t, []flytau.Airport{"ATH", "JFK", "TLV"}, rt.Airports())
	assert.Equal(t, "JFK-TLV", rt.Routes()[0].Key())
	assert.Contains(t, rt.String(), "TLV-ATH:120m")
}

func TestLoaderCaches(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{routes:testRoutes}
	l := NewLoader(src, time.Hour)

	for i:=0; i<3; i++ {
		rt,err := l.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, rt.Len())
	}
	assert.Equal(t, 1, src.n)

	src.routes = append(src.routes, flytau.Route{Origin:"ATH", Destination:"TLV", Minutes:120})
	l.Invalidate()
	rt,err := l.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, rt.Len())
	assert.Equal(t, 2, src.n)
}

func TestLoaderExpires(t *testing.T) {
	src := &countingSource{routes:testRoutes}
	l := NewLoader(src, 10*time.Millisecond)

	_,err := l.Load(context.Background())
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_,err = l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.n)
}

func TestLoaderError(t *testing.T) {
	l := NewLoader(&countingSource{err:fmt.Errorf("nope")}, time.Hour)
	_,err := l.Load(context.Background())
	assert.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	rt := NewRouteTable(testRoutes)

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, rt))

	rt2,err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.Equal(t, rt.Routes(), rt2.Routes())
	assert.True(t, rt.LastUpdated.Equal(rt2.LastUpdated))

	_,err = ReadSnapshot(strings.NewReader("definitely not zstd"))
	assert.Error(t, err)
}

func TestFileSnapshotStore(t *testing.T) {
	ctx := context.Background()
	fs := FileSnapshotStore{Dir:t.TempDir()}

	require.NoError(t, fs.Save(ctx, "20260301", NewRouteTable(testRoutes)))
	require.NoError(t, fs.Save(ctx, "20260215", NewRouteTable(testRoutes[:1])))

	names,err := fs.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20260215", "20260301"}, names)

	rt,err := fs.Load(ctx, "20260215")
	require.NoError(t, err)
	assert.Equal(t, 1, rt.Len())
}

func TestRoutesCSV(t *testing.T) {
	in := "origin,destination,minutes\nTLV,JFK,660\n\njfk, tlv, 630\n"
	routes,err := ReadRoutesCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, flytau.Route{Origin:"JFK", Destination:"TLV", Minutes:630}, routes[1])

	var buf bytes.Buffer
	require.NoError(t, WriteRoutesCSV(&buf, routes))
	assert.Equal(t, "origin,destination,minutes\nTLV,JFK,660\nJFK,TLV,630\n", buf.String())

	bad := []string{
		"TLV,JFK\n",
		"TLV,JFK,soon\n",
		"TLV,TLV,10\n",
		"TLV,JFK,0\n",
	}
	for _,b := range bad {
		_,err := ReadRoutesCSV(strings.NewReader(b))
		assert.Error(t, err, "%q", b)
	}
}
