package ui

import(
	"net/http"
	"strings"

	"golang.org/x/net/context"

	hw "github.com/skypies/util/handlerware"

	"github.com/skypies/flytau/audit"
	"github.com/skypies/flytau/booking"
	"github.com/skypies/flytau/log"
)

// Some convenience combos. The context comes from hw.CtxMakerCallback, which the app's main
// sets up.
func WithDeskCtx(d *booking.Desk, dh DeskHandler) http.HandlerFunc {
	return http.HandlerFunc(hw.WithCtx(WithRequest(WithDesk(d, dh))))
}
func WithDeskCtxAudit(d *booking.Desk, pub audit.Publisher, dh DeskHandler) http.HandlerFunc {
	return http.HandlerFunc(hw.WithCtx(WithRequest(WithAudit(pub, d.Log, WithDesk(d, dh)))))
}

// To prevent other libs colliding with us in the context.Value keyspace, use these private keys
type contextKey int
const(
	requestKey contextKey = iota
)

// The operator is whoever the frontend says it is; there is no login.
const OperatorHeader = "X-Flytau-Operator"

// Rather than stash/retrieve the desk from the context, pass it directly to a new handler
// type, that we'll use throughout ui/.
type DeskHandler func(context.Context, *booking.Desk, booking.Request, http.ResponseWriter, *http.Request)

func WithDesk(d *booking.Desk, dh DeskHandler) hw.ContextHandler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		req,_ := GetRequest(ctx)
		dh(ctx, d, req, w, r)
	}
}

// WithRequest builds the booking.Request for this HTTP request, and stashes it in the context.
func WithRequest(ch hw.ContextHandler) hw.ContextHandler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		r.ParseForm()

		operator := strings.TrimSpace(r.Header.Get(OperatorHeader))
		if operator == "" { operator = r.FormValue("operator") }
		if operator == "" { operator = "anonymous" }

		req := booking.NewRequest(operator)
		ctx = context.WithValue(ctx, requestKey, req)
		ch(ctx, w, r)
	}
}

// WithAudit attaches a decision log to the request, and publishes whatever the handler
// recorded once it returns. Publishing failures are logged, never shown to the caller.
func WithAudit(pub audit.Publisher, l *log.Logger, ch hw.ContextHandler) hw.ContextHandler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		req,ok := GetRequest(ctx)
		if pub == nil || !ok {
			ch(ctx, w, r)
			return
		}

		dl := req.WithDecisionLog()
		ctx = context.WithValue(ctx, requestKey, req)
		ch(ctx, w, r)

		if dl.Len() == 0 { return }
		rows := audit.Rows(req.RequestID, req.Operator, req.Now, dl.Decisions())
		if err := pub.Publish(ctx, rows); err != nil {
			l.Errorf("audit publish %s: %v", req, err)
		}
	}
}

// Underlying handlers can call this to get their request object
func GetRequest(ctx context.Context) (booking.Request,bool) {
	req, ok := ctx.Value(requestKey).(booking.Request)
	return req, ok
}
