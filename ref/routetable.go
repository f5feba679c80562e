// Package ref contains reference lookups: the route table, how it's cached, and how it's
// snapshotted.
package ref

import(
	"fmt"
	"sort"
	"time"

	"github.com/skypies/flytau"
)

// RouteTable is an immutable-once-loaded copy of the route reference data. It implements
// sched.RouteLookup.
type RouteTable struct {
	LastUpdated time.Time
	Map map[string]flytau.Route
}

func BlankRouteTable() *RouteTable {
	return &RouteTable{Map: map[string]flytau.Route{}}
}

func NewRouteTable(routes []flytau.Route) *RouteTable {
	rt := BlankRouteTable()
	for _,r := range routes { rt.Set(r) }
	rt.LastUpdated = time.Now()
	return rt
}

func (rt RouteTable)String() string {
	str := fmt.Sprintf("--- route table (%d entries, age %s) ---\n", len(rt.Map),
		time.Since(rt.LastUpdated).Round(time.Second))
	for _,r := range rt.Routes() {
		str += fmt.Sprintf(" %s\n", r)
	}
	return str
}

func (rt *RouteTable)Get(origin, destination flytau.Airport) (flytau.Route, bool) {
	r,exists := rt.Map[flytau.RouteKey(origin, destination)]
	return r, exists
}

func (rt *RouteTable)Set(r flytau.Route) { rt.Map[r.Key()] = r }

func (rt *RouteTable)Len() int { return len(rt.Map) }

// DurationMinutes is the sched.RouteLookup interface
func (rt *RouteTable)DurationMinutes(origin, destination flytau.Airport) (int, bool) {
	r,exists := rt.Get(origin, destination)
	return r.Minutes, exists && r.Minutes > 0
}

// Routes returns the table's contents, sorted by key.
func (rt *RouteTable)Routes() []flytau.Route {
	ret := []flytau.Route{}
	for _,r := range rt.Map { ret = append(ret, r) }
	sort.Slice(ret, func(i,j int) bool { return ret[i].Key() < ret[j].Key() })
	return ret
}

// Airports lists every airport that appears in the table.
func (rt *RouteTable)Airports() []flytau.Airport {
	m := map[flytau.Airport]bool{}
	for _,r := range rt.Map { m[r.Origin],m[r.Destination] = true,true }
	ret := []flytau.Airport{}
	for a := range m { ret = append(ret, a) }
	sort.Slice(ret, func(i,j int) bool { return ret[i] < ret[j] })
	return ret
}
