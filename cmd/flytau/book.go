package main

import(
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/skypies/flytau"
	"github.com/skypies/flytau/booking"
	"github.com/skypies/flytau/sched"
)

const kRetries = 3

func parseFlightID(s string) (int64, error) {
	id,err := strconv.ParseInt(s, 10, 64)
	if err != nil { return 0, fmt.Errorf("flight id %q: %v", s, err) }
	return id, nil
}

func printFlight(f flytau.Flight) {
	fmt.Printf("%s %s  %s  aircraft %s\n", bold(fmt.Sprintf("F%d", f.ID)), f.Candidate, f.Status, f.AircraftID)
	for _,r := range f.Assigned {
		if r.Kind.IsCrew() { fmt.Printf("  %s\n", r) }
	}
	debugDump(f)
}

// explain adds a hint for the errors an operator can do something about.
func explain(err error) error {
	if sched.IsRetryable(err) {
		return fmt.Errorf("%v\n%s", err, yellow("someone else booked it first; re-run the query and try again"))
	}
	return err
}

// {{{ bookCmd

func bookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "book ORIGIN DESTINATION DEPARTURE AIRCRAFT",
		Short: "Create a flight, with its aircraft",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cand,err := parseCandidate(args[0], args[1], args[2])
			if err != nil { return err }

			e,err := newEnv()
			if err != nil { return err }
			defer e.Close()

			req := e.request()
			dl := req.WithDecisionLog()
			f,err := e.Desk.CreateFlight(e.ctx, req, cand, args[3])
			if err != nil { return explain(err) }

			fmt.Printf("%s ", green("created"))
			printFlight(f)
			return finishDecisions(e, req, dl)
		},
	}
}

// }}}
// {{{ crewCmd

func crewCmd() *cobra.Command {
	var pilots, attendants []string

	cmd := &cobra.Command{
		Use:   "crew FLIGHTID",
		Short: "Assign the full crew to a flight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id,err := parseFlightID(args[0])
			if err != nil { return err }

			e,err := newEnv()
			if err != nil { return err }
			defer e.Close()

			// The crew list is fixed, so a retry only helps if the race was transient
			var f flytau.Flight
			err = booking.WithRetry(kRetries, func() error {
				var err error
				f,err = e.Desk.AssignCrew(e.ctx, e.request(), id, pilots, attendants)
				return err
			})
			if err != nil { return explain(err) }

			fmt.Printf("%s ", green("crewed"))
			printFlight(f)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&pilots, "pilots", nil, "pilot IDs")
	cmd.Flags().StringSliceVar(&attendants, "attendants", nil, "attendant IDs")
	return cmd
}

// }}}
// {{{ cancelCmd

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel FLIGHTID",
		Short: "Cancel a flight and free its aircraft and crew",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id,err := parseFlightID(args[0])
			if err != nil { return err }

			e,err := newEnv()
			if err != nil { return err }
			defer e.Close()

			if err := e.Desk.CancelFlight(e.ctx, e.request(), id); err != nil { return err }
			f,err := e.Provider.LookupFlight(e.ctx, id)
			if err != nil { return err }
			fmt.Printf("%s ", red("cancelled"))
			printFlight(f)
			return nil
		},
	}
}

// }}}
// {{{ sweepCmd

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark every departed flight as Occurred",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e,err := newEnv()
			if err != nil { return err }
			defer e.Close()

			n,err := e.Desk.SweepOccurred(e.ctx, e.request())
			if err != nil { return err }
			fmt.Printf("%d flights marked Occurred\n", n)
			return nil
		},
	}
}

// }}}
// {{{ flightCmd

func flightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flight [FLIGHTID]",
		Short: "Show one flight, or list them all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e,err := newEnv()
			if err != nil { return err }
			defer e.Close()

			if len(args) == 1 {
				id,err := parseFlightID(args[0])
				if err != nil { return err }
				f,err := e.Provider.LookupFlight(e.ctx, id)
				if err != nil { return err }
				printFlight(f)
				return nil
			}

			flights,err := e.Provider.ListFlights(e.ctx)
			if err != nil { return err }
			for _,f := range flights { printFlight(f) }
			return nil
		},
	}
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
