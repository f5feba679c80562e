package db

import(
	"cloud.google.com/go/datastore"

	"github.com/skypies/flytau"
)

// Keyer is a very thin wrapper over datastore keys, so that queries can be dumped and built
// without a client.
type Keyer interface {
	Encode() string
}

const(
	kResourceKind   = "resource"
	kCommitmentKind = "commitment"
	kFlightKind     = "flight"
	kRouteKind      = "route"
)

// Each resource is the root of its own entity group; its commitments are children, so that
// the guarded write can run an ancestor query inside the transaction.
func resourceKey(ref flytau.ResourceRef) *datastore.Key {
	return datastore.NameKey(kResourceKind, ref.String(), nil)
}

func commitmentKey(ref flytau.ResourceRef, flightID int64) *datastore.Key {
	return datastore.IDKey(kCommitmentKind, flightID, resourceKey(ref))
}

func flightKey(id int64) *datastore.Key {
	return datastore.IDKey(kFlightKind, id, nil)
}

func routeKey(origin, destination flytau.Airport) *datastore.Key {
	return datastore.NameKey(kRouteKind, flytau.RouteKey(origin, destination), nil)
}
