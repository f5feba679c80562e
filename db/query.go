package db

import(
	"fmt"

	"github.com/skypies/flytau"
)

// Query is a thin skin over the datastore query API. It provides for a textual dump of the
// query, and lets the in-memory provider and tools build queries without a client.
type Query struct {
	Kind          string
	AncestorKeyer Keyer
	Filters     []Filter
	OrderStr      string
}

type Filter struct {
	Field string
	Value interface{}
}

func (q *Query)String() string {
	str := fmt.Sprintf("NewQuery(%q)\n", q.Kind)
	if q.AncestorKeyer != nil { str += fmt.Sprintf("  .Ancestor(%v)\n", q.AncestorKeyer) }
	for _,f := range q.Filters {
		str += fmt.Sprintf("  .Filter(%q, %v)\n", f.Field, f.Value)
	}
	if q.OrderStr != "" { str += fmt.Sprintf("  .Order(%q)\n", q.OrderStr) }
	return str
}

func NewQuery(kind string) *Query { return &Query{Kind:kind} }

func (q *Query)Filter(field string, val interface{}) *Query {
	q.Filters = append(q.Filters, Filter{field, val})
	return q
}

func (q *Query)Order(o string) *Query {
	q.OrderStr = o
	return q
}

func (q *Query)Ancestor(keyer Keyer) *Query {
	q.AncestorKeyer = keyer
	return q
}

// Some canned queries

func NewResourceQuery(kind flytau.ResourceKind) *Query {
	return NewQuery(kResourceKind).Filter("Kind =", kind.String())
}

// No sort order: ancestor queries with a sort need a composite index, and the timeline
// builder sorts anyway.
func NewCommitmentQuery(ref flytau.ResourceRef) *Query {
	return NewQuery(kCommitmentKind).Ancestor(resourceKey(ref))
}

func NewRouteQuery() *Query { return NewQuery(kRouteKind) }

func NewFlightQuery() *Query { return NewQuery(kFlightKind).Order("DepartureUTC") }
