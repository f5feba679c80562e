package ref

import(
	"fmt"
	"time"

	"golang.org/x/net/context"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/skypies/flytau"
)

const kRouteTableCacheKey = "routes"

// RouteSource is where route tables get loaded from; db.Provider satisfies it.
type RouteSource interface {
	ListRoutes(ctx context.Context) ([]flytau.Route, error)
}

// Loader keeps the most recently loaded route table for a while, so that the per-request
// scheduler doesn't hit the datastore for every query. Route edits should call Invalidate.
type Loader struct {
	Source RouteSource
	cache *expirable.LRU[string, *RouteTable]
}

func NewLoader(src RouteSource, ttl time.Duration) *Loader {
	return &Loader{
		Source: src,
		cache: expirable.NewLRU[string, *RouteTable](4, nil, ttl),
	}
}

func (l *Loader)Load(ctx context.Context) (*RouteTable, error) {
	if rt,ok := l.cache.Get(kRouteTableCacheKey); ok {
		return rt, nil
	}

	routes,err := l.Source.ListRoutes(ctx)
	if err != nil { return nil, fmt.Errorf("ref.Load: %v", err) }

	rt := NewRouteTable(routes)
	l.cache.Add(kRouteTableCacheKey, rt)
	return rt, nil
}

func (l *Loader)Invalidate() { l.cache.Purge() }
