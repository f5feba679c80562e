package db

import(
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/net/context"
	"github.com/tidwall/gjson"

	"github.com/skypies/flytau"
)

/* A fixture is a JSON document that seeds a provider; see testdata/fixture.json.

{
  "routes": [ {"origin":"TLV", "destination":"JFK", "minutes":660}, ... ],
  "aircraft": [ {"id":"4X-EKA", "producer":"Boeing", "model":"787-9", "size":"large", "seats":294} ],
  "pilots": [ {"id":"P1", "first":"Avi", "last":"Cohen", "training":"long", "start":"2015-06-01"} ],
  "attendants": [ ... same as pilots ... ],
  "flights": [ {"origin":"TLV", "destination":"ATH", "departure":"2026-03-01T08:00:00Z",
                "assign":["aircraft:4X-EKA", "pilot:P1"], "status":"Occurred"} ]
}

 */

func LoadFixtureFile(ctx context.Context, p Provider, filename string) error {
	b,err := os.ReadFile(filename)
	if err != nil { return fmt.Errorf("LoadFixtureFile: %v", err) }
	return LoadFixture(ctx, p, string(b))
}

// LoadFixture stores everything in the JSON document. Flights are written without a guard;
// the fixture is trusted.
func LoadFixture(ctx context.Context, p Provider, doc string) error {
	if !gjson.Valid(doc) {
		return fmt.Errorf("LoadFixture: invalid JSON")
	}
	root := gjson.Parse(doc)

	var err error
	root.Get("routes").ForEach(func(_, v gjson.Result) bool {
		r := flytau.Route{
			Origin: flytau.NewAirport(v.Get("origin").String()),
			Destination: flytau.NewAirport(v.Get("destination").String()),
			Minutes: int(v.Get("minutes").Int()),
		}
		err = p.PersistRoute(ctx, r)
		return err == nil
	})
	if err != nil { return fmt.Errorf("LoadFixture routes: %v", err) }

	root.Get("aircraft").ForEach(func(_, v gjson.Result) bool {
		r := flytau.Resource{
			ResourceRef: flytau.ResourceRef{Kind:flytau.Aircraft, ID:v.Get("id").String()},
			Producer: v.Get("producer").String(),
			Seats: int(v.Get("seats").Int()),
		}
		r.DisplayName = strings.TrimSpace(r.Producer + " " + v.Get("model").String())
		if r.Size,err = flytau.ParseSizeClass(v.Get("size").String()); err != nil { return false }
		err = p.PersistResource(ctx, r)
		return err == nil
	})
	if err != nil { return fmt.Errorf("LoadFixture aircraft: %v", err) }

	for _,kind := range []flytau.ResourceKind{flytau.Pilot, flytau.Attendant} {
		root.Get(kind.String()+"s").ForEach(func(_, v gjson.Result) bool {
			var r flytau.Resource
			if r,err = crewFromJSON(kind, v); err != nil { return false }
			err = p.PersistResource(ctx, r)
			return err == nil
		})
		if err != nil { return fmt.Errorf("LoadFixture %ss: %v", kind, err) }
	}

	root.Get("flights").ForEach(func(_, v gjson.Result) bool {
		err = loadFixtureFlight(ctx, p, v)
		return err == nil
	})
	if err != nil { return fmt.Errorf("LoadFixture flights: %v", err) }

	return nil
}

func crewFromJSON(kind flytau.ResourceKind, v gjson.Result) (flytau.Resource, error) {
	r := flytau.Resource{
		ResourceRef: flytau.ResourceRef{Kind:kind, ID:v.Get("id").String()},
		DisplayName: strings.TrimSpace(v.Get("first").String() + " " + v.Get("last").String()),
	}
	var err error
	if r.Cert,err = flytau.ParseCertification(v.Get("training").String()); err != nil {
		return r, err
	}
	if s := v.Get("start").String(); s != "" {
		if r.StartDate,err = time.Parse("2006-01-02", s); err != nil { return r, err }
	}
	return r, nil
}

func loadFixtureFlight(ctx context.Context, p Provider, v gjson.Result) error {
	dep,err := time.Parse(time.RFC3339, v.Get("departure").String())
	if err != nil { return err }

	f := flytau.Flight{
		Candidate: flytau.Candidate{
			Origin: flytau.NewAirport(v.Get("origin").String()),
			Destination: flytau.NewAirport(v.Get("destination").String()),
			DepartureUTC: dep.UTC(),
		},
		CreatedBy: "fixture",
	}
	if err := f.Candidate.Validate(); err != nil { return err }

	id,err := p.CreateFlight(ctx, f)
	if err != nil { return err }

	refs := []flytau.ResourceRef{}
	for _,s := range v.Get("assign").Array() {
		ref,err := flytau.ParseResourceRef(s.String())
		if err != nil { return err }
		refs = append(refs, ref)
	}
	if len(refs) > 0 {
		if err := p.WriteCommitments(ctx, id, refs, nil); err != nil { return err }
	}

	switch strings.ToLower(v.Get("status").String()) {
	case "", "scheduled":
	case "occurred":
		return p.SetFlightStatus(ctx, id, flytau.Occurred)
	case "cancelled":
		return p.RetractCommitments(ctx, id)
	default:
		return fmt.Errorf("flight %d: unknown status %q", id, v.Get("status").String())
	}
	return nil
}
