// flytau is the operator's command line tool: availability queries, booking, route table
// maintenance, and a local server.
/*

	flytau --fixture=db/testdata/fixture.json available pilot TLV JFK 2026-03-05T09:00:00Z
	flytau roster TLV ATH 2026-03-05T09:00:00Z
	flytau book TLV ATH 2026-03-05T09:00:00Z 4X-ABA
	flytau crew 1001 --pilots=P1,P2 --attendants=A1,A2,A3
	flytau timeline pilot:P1 pilot:P2 --pdf=out.pdf
	flytau routes import routes.csv
	flytau routes snapshot save 2026-03-01
	flytau serve

*/
package main

import(
	"fmt"
	"os"
	"time"

	"golang.org/x/net/context"
	"github.com/fatih/color"
	"github.com/goforj/godump"
	"github.com/spf13/cobra"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/booking"
	"github.com/skypies/flytau/config"
	"github.com/skypies/flytau/db"
	"github.com/skypies/flytau/log"
	"github.com/skypies/flytau/ref"
)

var(
	fConfig    string
	fFixture   string
	fProject   string
	fOperator  string
	fHomeBase  string
	fLogLevel  string
	fDebug     bool
	fDecisions bool
	fAudit     bool
	fAuditFile string
)

var(
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flytau",
		Short: "Flight and crew scheduling",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if fConfig != "" {
				b,err := os.ReadFile(fConfig)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", red("config"), err)
					os.Exit(1)
				}
				config.Set(string(b))
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&fConfig, "config", "", "JSON config file (overrides FLYTAU_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&fFixture, "fixture", "", "run against an in-memory DB loaded from this JSON fixture")
	rootCmd.PersistentFlags().StringVar(&fProject, "project", "", "datastore project (default from config)")
	rootCmd.PersistentFlags().StringVar(&fOperator, "operator", os.Getenv("USER"), "who is making the request")
	rootCmd.PersistentFlags().StringVar(&fHomeBase, "homebase", "", "home base airport (default from config)")
	rootCmd.PersistentFlags().StringVar(&fLogLevel, "log-level", "", "debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&fDebug, "debug", false, "dump the raw results")
	rootCmd.PersistentFlags().BoolVar(&fDecisions, "decisions", false, "print every per-resource decision")
	rootCmd.PersistentFlags().BoolVar(&fAudit, "audit", false, "publish decisions to BigQuery")
	rootCmd.PersistentFlags().StringVar(&fAuditFile, "audit-file", "", "append decisions to this NDJSON file")

	rootCmd.AddCommand(availableCmd())
	rootCmd.AddCommand(rosterCmd())
	rootCmd.AddCommand(timelineCmd())
	rootCmd.AddCommand(bookCmd())
	rootCmd.AddCommand(crewCmd())
	rootCmd.AddCommand(cancelCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(flightCmd())
	rootCmd.AddCommand(routesCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// {{{ env

// env is everything a subcommand needs.
type env struct {
	ctx      context.Context
	Provider db.Provider
	Desk    *booking.Desk
	Log     *log.Logger
	close    func()
}

func newEnv() (*env, error) {
	ctx := context.Background()

	level := fLogLevel
	if level == "" { level = config.Get("log.level") }
	l := log.New(level, config.Get("log.dir"))

	e := &env{ctx:ctx, Log:l, close:func(){}}

	if fFixture != "" {
		p := db.NewMemProvider()
		if err := db.LoadFixtureFile(ctx, p, fFixture); err != nil { return nil, err }
		e.Provider = p
	} else {
		project := fProject
		if project == "" { project = config.Get("datastore.project") }
		if project == "" {
			return nil, fmt.Errorf("no datastore project; set datastore.project, or use --fixture")
		}
		p,err := db.NewCloudDSProvider(ctx, project)
		if err != nil { return nil, err }
		e.Provider = p
		e.close = func(){ p.Close() }
	}

	homebase := fHomeBase
	if homebase == "" { homebase = config.Get("homebase") }
	if homebase == "" { homebase = string(flytau.DefaultHomeBase) }

	ttl := config.GetDuration("routes.ttl")
	e.Desk = booking.NewDesk(e.Provider, ref.NewLoader(e.Provider, ttl), flytau.NewAirport(homebase), l)
	return e, nil
}

func (e *env)Close() { e.close() }

func (e *env)request() booking.Request {
	operator := fOperator
	if operator == "" { operator = "cli" }
	return booking.NewRequest(operator)
}

func debugDump(v interface{}) {
	if fDebug { godump.Dump(v) }
}

// }}}
// {{{ parseCandidate

func parseCandidate(origin, destination, departure string) (flytau.Candidate, error) {
	t,err := time.Parse(time.RFC3339, departure)
	if err != nil {
		// Let operators skip the seconds and the zone; it's always UTC
		if t,err = time.Parse("2006-01-02T15:04", departure); err != nil {
			return flytau.Candidate{}, fmt.Errorf("departure %q: want RFC3339 or 2006-01-02T15:04", departure)
		}
	}
	c := flytau.Candidate{
		Origin: flytau.NewAirport(origin),
		Destination: flytau.NewAirport(destination),
		DepartureUTC: t.UTC(),
	}
	return c, nil
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
