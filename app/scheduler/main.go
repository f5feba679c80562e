package main

import(
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/context"
	hw "github.com/skypies/util/handlerware"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/audit"
	"github.com/skypies/flytau/booking"
	"github.com/skypies/flytau/config"
	"github.com/skypies/flytau/db"
	flog "github.com/skypies/flytau/log"
	"github.com/skypies/flytau/ref"
	"github.com/skypies/flytau/ui"
)

var(
	GoogleCloudProjectId = "flytau-prod"
)

func init() {
	if p := config.Get("datastore.project"); p != "" {
		GoogleCloudProjectId = p
	}
}

// newDesk builds the one desk the webapp uses; the datastore client is safe for concurrent
// use, so all requests share it.
func newDesk(ctx context.Context) (*booking.Desk, error) {
	p,err := db.NewCloudDSProvider(ctx, GoogleCloudProjectId)
	if err != nil {
		return nil, fmt.Errorf("NewDB: could not get a clouddsprovider (projectId=%s): %v", GoogleCloudProjectId, err)
	}

	homebase := flytau.NewAirport(config.Get("homebase"))
	if homebase.IsZero() { homebase = flytau.DefaultHomeBase }

	l := flog.New(config.Get("log.level"), config.Get("log.dir"))
	return booking.NewDesk(p, ref.NewLoader(p, config.GetDuration("routes.ttl")), homebase, l), nil
}

func main() {
	ctx := context.Background()

	d,err := newDesk(ctx)
	if err != nil {
		log.Fatal(err)
	}

	// Decisions are streamed to BigQuery, if there's somewhere to put them
	var pub audit.Publisher
	if project := config.Get("audit.project"); project != "" {
		bq,err := audit.NewBigQueryPublisher(ctx, project, config.Get("audit.dataset"), config.Get("audit.table"))
		if err != nil {
			log.Fatal(err)
		}
		bq.Log = d.Log
		pub = bq
	}

	// Requests are bounded by the timeout handler below, which cancels r.Context()
	hw.CtxMakerCallback = func(r *http.Request) context.Context { return r.Context() }
	ui.AddHandlers(http.DefaultServeMux, d, pub)

	port := os.Getenv("PORT")
	if port == "" {
		port = config.Get("http.port")
	}

	log.Printf("Listening on port %s [flytau/app/scheduler]", port)
	h := http.TimeoutHandler(http.DefaultServeMux, 55 * time.Second, "request timed out")
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%s", port), h))
}
