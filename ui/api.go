package ui

import(
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/net/context"

	"github.com/skypies/util/widget"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/audit"
	"github.com/skypies/flytau/booking"
	"github.com/skypies/flytau/db"
	"github.com/skypies/flytau/fpdf"
	"github.com/skypies/flytau/sched"
)

// AddHandlers registers the API on the mux. pub may be nil, in which case no decisions are
// published. Set hw.CtxMakerCallback before serving.
func AddHandlers(mux *http.ServeMux, d *booking.Desk, pub audit.Publisher) {
	mux.HandleFunc("/api/available",     WithDeskCtxAudit(d, pub, AvailableHandler))
	mux.HandleFunc("/api/roster",        WithDeskCtxAudit(d, pub, RosterHandler))
	mux.HandleFunc("/api/timeline",      WithDeskCtx(d, TimelineHandler))
	mux.HandleFunc("/api/flight/lookup", WithDeskCtx(d, FlightLookupHandler))
	mux.HandleFunc("/api/flight/create", WithDeskCtxAudit(d, pub, CreateFlightHandler))
	mux.HandleFunc("/api/flight/crew",   WithDeskCtxAudit(d, pub, AssignCrewHandler))
	mux.HandleFunc("/api/flight/cancel", WithDeskCtx(d, CancelFlightHandler))
	mux.HandleFunc("/api/sweep",         WithDeskCtx(d, SweepHandler))
}

// {{{ StatusFor, writeJSON, writeErr

// StatusFor maps workflow errors onto HTTP status codes.
func StatusFor(err error) int {
	var ce *sched.ConflictError
	switch {
	case errors.Is(err, sched.ErrUnroutable):      return http.StatusUnprocessableEntity
	case sched.IsRetryable(err):                   return http.StatusConflict
	case errors.As(err, &ce):                      return http.StatusConflict
	case errors.Is(err, booking.ErrTooLateToCancel),
		errors.Is(err, db.ErrBadStatus),
		errors.Is(err, booking.ErrCrewAlreadyAssigned): return http.StatusConflict
	case errors.Is(err, db.ErrNotFound):           return http.StatusNotFound
	case errors.Is(err, booking.ErrCrewCount),
		errors.Is(err, booking.ErrWrongKind),
		errors.Is(err, booking.ErrNoAircraft),
		errors.Is(err, booking.ErrDepartureInPast),
		errors.Is(err, booking.ErrNotDeparted):     return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	jsonBytes,err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonBytes)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	ev := ErrorView{Error: err.Error(), Retryable: sched.IsRetryable(err)}
	var ce *sched.ConflictError
	if errors.As(err, &ce) {
		ev.Reason = ce.Reason.String()
	}
	writeJSON(w, status, ev)
}

func badRequest(w http.ResponseWriter, err error) { writeErr(w, http.StatusBadRequest, err) }

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("%s wants a POST", r.URL.Path))
		return false
	}
	return true
}

// }}}

// {{{ AvailableHandler

// ?kind=pilot&origin=TLV&destination=JFK&departure=2026-03-01T09:00:00Z

func AvailableHandler(ctx context.Context, d *booking.Desk, req booking.Request, w http.ResponseWriter, r *http.Request) {
	kind,err := FormValueResourceKind(r)
	if err != nil { badRequest(w, err); return }
	cand,err := FormValueCandidate(r)
	if err != nil { badRequest(w, err); return }

	avail,err := d.Available(ctx, req, kind, cand)
	if err != nil {
		writeErr(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, NewAvailabilityViews(avail))
}

// }}}
// {{{ RosterHandler

// ?origin=TLV&destination=JFK&departure=2026-03-01T09:00:00Z

func RosterHandler(ctx context.Context, d *booking.Desk, req booking.Request, w http.ResponseWriter, r *http.Request) {
	cand,err := FormValueCandidate(r)
	if err != nil { badRequest(w, err); return }

	roster,err := d.Roster(ctx, req, cand)
	if err != nil {
		writeErr(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, NewRosterView(roster))
}

// }}}
// {{{ TimelineHandler

// ?resource=pilot:P1[,pilot:P2,...]
// &pdf=1                    (render a Gantt chart instead of JSON)
// &origin=..&destination=..&departure=..   (overlay a candidate on the chart)

func TimelineHandler(ctx context.Context, d *booking.Desk, req booking.Request, w http.ResponseWriter, r *http.Request) {
	refs := []flytau.ResourceRef{}
	for _,s := range widget.FormValueCommaSepStrings(r, "resource") {
		ref,err := flytau.ParseResourceRef(s)
		if err != nil { badRequest(w, err); return }
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		badRequest(w, fmt.Errorf("need at least one resource"))
		return
	}

	var leg *sched.Leg
	if r.FormValue("origin") != "" {
		cand,err := FormValueCandidate(r)
		if err != nil { badRequest(w, err); return }
		s,err := d.Scheduler(ctx, req)
		if err != nil { writeErr(w, StatusFor(err), err); return }
		l,err := sched.Resolve(s.Routes, cand)
		if err != nil { writeErr(w, StatusFor(err), err); return }
		leg = &l
	}

	rows := []fpdf.SheetRow{}
	views := map[string][]IntervalView{}
	for _,ref := range refs {
		tl,err := d.Timeline(ctx, req, ref)
		if err != nil {
			writeErr(w, StatusFor(err), err)
			return
		}
		rows = append(rows, fpdf.SheetRow{Label:ref.String(), Timeline:tl, Candidate:leg})
		views[ref.String()] = NewTimelineView(tl)
	}

	if !widget.FormValueCheckbox(r, "pdf") {
		writeJSON(w, http.StatusOK, views)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	if err := fpdf.WriteTimelineSheet(w, "Resource timelines", rows); err != nil {
		d.Log.Errorf("TimelineHandler %s: %v", req, err)
	}
}

// }}}
// {{{ FlightLookupHandler

// ?flight=1001

func FlightLookupHandler(ctx context.Context, d *booking.Desk, req booking.Request, w http.ResponseWriter, r *http.Request) {
	id,err := FormValueFlightID(r)
	if err != nil { badRequest(w, err); return }

	f,err := d.Provider.LookupFlight(ctx, id)
	if err != nil {
		writeErr(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, NewFlightView(f))
}

// }}}
// {{{ CreateFlightHandler

// POST origin=TLV&destination=JFK&departure=2026-03-01T09:00:00Z&aircraft=4X-EKA

func CreateFlightHandler(ctx context.Context, d *booking.Desk, req booking.Request, w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) { return }
	cand,err := FormValueCandidate(r)
	if err != nil { badRequest(w, err); return }
	aircraft := r.FormValue("aircraft")
	if aircraft == "" { badRequest(w, fmt.Errorf("need aircraft")); return }

	f,err := d.CreateFlight(ctx, req, cand, aircraft)
	if err != nil {
		writeErr(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, NewFlightView(f))
}

// }}}
// {{{ AssignCrewHandler

// POST flight=1001&pilots=P1,P2,P3&attendants=A1,A2,A3,A4,A5,A6

func AssignCrewHandler(ctx context.Context, d *booking.Desk, req booking.Request, w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) { return }
	id,err := FormValueFlightID(r)
	if err != nil { badRequest(w, err); return }
	pilots,attendants := FormValueCrew(r)

	f,err := d.AssignCrew(ctx, req, id, pilots, attendants)
	if err != nil {
		writeErr(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, NewFlightView(f))
}

// }}}
// {{{ CancelFlightHandler

// POST flight=1001

func CancelFlightHandler(ctx context.Context, d *booking.Desk, req booking.Request, w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) { return }
	id,err := FormValueFlightID(r)
	if err != nil { badRequest(w, err); return }

	if err := d.CancelFlight(ctx, req, id); err != nil {
		writeErr(w, StatusFor(err), err)
		return
	}
	f,err := d.Provider.LookupFlight(ctx, id)
	if err != nil {
		writeErr(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, NewFlightView(f))
}

// }}}
// {{{ SweepHandler

// Meant to be hit by cron; marks departed flights as Occurred.
func SweepHandler(ctx context.Context, d *booking.Desk, req booking.Request, w http.ResponseWriter, r *http.Request) {
	n,err := d.SweepOccurred(ctx, req)
	if err != nil {
		writeErr(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"occurred": n})
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
