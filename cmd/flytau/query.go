package main

import(
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/audit"
	"github.com/skypies/flytau/booking"
	"github.com/skypies/flytau/config"
	"github.com/skypies/flytau/fpdf"
	"github.com/skypies/flytau/sched"
)

// {{{ availableCmd

func availableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "available KIND ORIGIN DESTINATION DEPARTURE",
		Short: "List the aircraft, pilots or attendants that could serve a flight",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind,err := flytau.ParseResourceKind(args[0])
			if err != nil { return err }
			cand,err := parseCandidate(args[1], args[2], args[3])
			if err != nil { return err }

			e,err := newEnv()
			if err != nil { return err }
			defer e.Close()

			req := e.request()
			dl := req.WithDecisionLog()
			avail,err := e.Desk.Available(e.ctx, req, kind, cand)
			if err != nil { return err }

			fmt.Printf("%s %s for %s\n", bold(len(avail)), kind, cand)
			printAvailability(avail)
			debugDump(avail)
			return finishDecisions(e, req, dl)
		},
	}
}

// }}}
// {{{ rosterCmd

func rosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roster ORIGIN DESTINATION DEPARTURE",
		Short: "Everything available to staff a flight, and the crew it needs",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cand,err := parseCandidate(args[0], args[1], args[2])
			if err != nil { return err }

			e,err := newEnv()
			if err != nil { return err }
			defer e.Close()

			req := e.request()
			dl := req.WithDecisionLog()
			r,err := e.Desk.Roster(e.ctx, req, cand)
			if err != nil { return err }

			fmt.Printf("%s, %d minutes, arrives %s (%s haul)\n", cand, r.Minutes,
				r.ArrivalUTC.Format("2006-01-02 15:04Z"), r.Class)
			fmt.Printf("needs 1 aircraft, %s\n", r.Crew)
			for _,kind := range flytau.AllResourceKinds {
				fmt.Printf("\n%s (%d)\n", bold(kind), len(r.Of(kind)))
				printAvailability(r.Of(kind))
			}
			if r.Staffable() {
				fmt.Printf("\n%s\n", green("staffable"))
			} else {
				fmt.Printf("\n%s\n", red("not staffable"))
			}
			debugDump(r)
			return finishDecisions(e, req, dl)
		},
	}
}

// }}}
// {{{ timelineCmd

func timelineCmd() *cobra.Command {
	var fPdf, fWith string

	cmd := &cobra.Command{
		Use:   "timeline RESOURCE...",
		Short: "Show the commitments of one or more resources (e.g. pilot:P1)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e,err := newEnv()
			if err != nil { return err }
			defer e.Close()
			req := e.request()

			var leg *sched.Leg
			if fWith != "" {
				bits := strings.Split(fWith, ",")
				if len(bits) != 3 { return fmt.Errorf("--with wants ORIGIN,DESTINATION,DEPARTURE") }
				cand,err := parseCandidate(bits[0], bits[1], bits[2])
				if err != nil { return err }
				s,err := e.Desk.Scheduler(e.ctx, req)
				if err != nil { return err }
				l,err := sched.Resolve(s.Routes, cand)
				if err != nil { return err }
				leg = &l
			}

			rows := []fpdf.SheetRow{}
			for _,arg := range args {
				r,err := flytau.ParseResourceRef(arg)
				if err != nil { return err }
				tl,err := e.Desk.Timeline(e.ctx, req, r)
				if err != nil { return err }

				fmt.Printf("%s\n", bold(r))
				for _,i := range tl {
					line := fmt.Sprintf("  %s", i)
					if !i.ArrivalUTC.After(i.DepartureUTC) {
						line += " " + yellow("(route no longer in table)")
					}
					fmt.Println(line)
				}
				if len(tl) == 0 { fmt.Printf("  %s\n", dim("no commitments")) }
				rows = append(rows, fpdf.SheetRow{Label:r.String(), Timeline:tl, Candidate:leg})
			}

			if fPdf == "" { return nil }
			f,err := os.Create(fPdf)
			if err != nil { return err }
			if err := fpdf.WriteTimelineSheet(f, "Resource timelines", rows); err != nil {
				f.Close()
				return err
			}
			fmt.Printf("wrote %s\n", fPdf)
			return f.Close()
		},
	}

	cmd.Flags().StringVar(&fPdf, "pdf", "", "also render a Gantt chart to this file")
	cmd.Flags().StringVar(&fWith, "with", "", "overlay a candidate ORIGIN,DESTINATION,DEPARTURE on the chart")
	return cmd
}

// }}}

// {{{ printAvailability

func printAvailability(avail []sched.Availability) {
	for _,a := range avail {
		fmt.Printf("  %-22s %-24s %-6s %s\n", a.ResourceRef, a.DisplayName, a.Capability(),
			dim(a.Prior.String()))
	}
}

// }}}
// {{{ finishDecisions

// finishDecisions prints and/or publishes the decisions made during a query.
func finishDecisions(e *env, req booking.Request, dl *sched.DecisionLog) error {
	decisions := dl.Decisions()

	if fDecisions {
		fmt.Printf("\n%s\n", bold("decisions"))
		for _,d := range decisions {
			verdict := green(d.Verdict.String())
			if !d.OK() { verdict = red(d.Verdict.String()) }
			fmt.Printf("  %-22s %s\n", d.Resource, verdict)
		}
	}

	if len(decisions) == 0 { return nil }
	rows := audit.Rows(req.RequestID, req.Operator, req.Now, decisions)

	if fAuditFile != "" {
		f,err := os.OpenFile(fAuditFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil { return err }
		if _,err := audit.WriteNDJSON(f, rows); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil { return err }
	}

	if !fAudit { return nil }

	project := config.Get("audit.project")
	if project == "" { project = config.Get("datastore.project") }
	pub,err := audit.NewBigQueryPublisher(e.ctx, project, config.Get("audit.dataset"),
		config.Get("audit.table"))
	if err != nil { return err }
	defer pub.Close()
	pub.Log = e.Log

	if err := pub.Publish(e.ctx, rows); err != nil { return err }
	fmt.Printf("%s\n", dim(fmt.Sprintf("published %d decisions to %s.%s", len(rows), pub.Dataset, pub.Table)))
	return nil
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
