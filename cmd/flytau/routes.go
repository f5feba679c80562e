package main

import(
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skypies/flytau/config"
	"github.com/skypies/flytau/db"
	"github.com/skypies/flytau/ref"
)

func routesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Maintain the route table",
	}
	cmd.AddCommand(routesListCmd())
	cmd.AddCommand(routesImportCmd())
	cmd.AddCommand(routesExportCmd())
	cmd.AddCommand(snapshotCmd())
	return cmd
}

// {{{ routesListCmd

func routesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e,err := newEnv()
			if err != nil { return err }
			defer e.Close()

			rt,err := e.Desk.Routes.Load(e.ctx)
			if err != nil { return err }
			fmt.Print(rt)
			return nil
		},
	}
}

// }}}
// {{{ routesImportCmd

func routesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE.csv",
		Short: "Add or update routes from a CSV file (origin,destination,minutes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f,err := os.Open(args[0])
			if err != nil { return err }
			defer f.Close()
			routes,err := ref.ReadRoutesCSV(f)
			if err != nil { return err }

			e,err := newEnv()
			if err != nil { return err }
			defer e.Close()

			if err := db.PersistRoutes(e.ctx, e.Provider, routes); err != nil { return err }
			e.Desk.Routes.Invalidate()
			fmt.Printf("imported %d routes\n", len(routes))
			return nil
		},
	}
}

// }}}
// {{{ routesExportCmd

func routesExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE.csv]",
		Short: "Write the route table as CSV (to stdout if no file given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e,err := newEnv()
			if err != nil { return err }
			defer e.Close()

			rt,err := e.Desk.Routes.Load(e.ctx)
			if err != nil { return err }

			if len(args) == 0 {
				return ref.WriteRoutesCSV(os.Stdout, rt.Routes())
			}
			f,err := os.Create(args[0])
			if err != nil { return err }
			if err := ref.WriteRoutesCSV(f, rt.Routes()); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
}

// }}}
// {{{ snapshotCmd

func snapshotStore(e *env, dir string) (ref.SnapshotStore, error) {
	if bucket := config.Get("snapshots.bucket"); bucket != "" {
		gs,err := ref.NewGCSSnapshotStore(e.ctx, bucket, "routes/")
		if err != nil { return nil, err }
		prev := e.close
		e.close = func(){ gs.Close(); prev() }
		return gs, nil
	}
	return ref.FileSnapshotStore{Dir:dir}, nil
}

func snapshotCmd() *cobra.Command {
	var fDir string

	cmd := &cobra.Command{
		Use:   "snapshot save [NAME] | restore NAME | list",
		Short: "Save or restore the whole route table (GCS if snapshots.bucket is set)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e,err := newEnv()
			if err != nil { return err }
			defer e.Close()

			store,err := snapshotStore(e, fDir)
			if err != nil { return err }

			switch args[0] {
			case "save":
				name := time.Now().UTC().Format("20060102-150405")
				if len(args) == 2 { name = args[1] }
				rt,err := e.Desk.Routes.Load(e.ctx)
				if err != nil { return err }
				if err := store.Save(e.ctx, name, rt); err != nil { return err }
				fmt.Printf("saved %d routes as %s\n", rt.Len(), name)

			case "restore":
				if len(args) != 2 { return fmt.Errorf("restore wants a snapshot name") }
				rt,err := store.Load(e.ctx, args[1])
				if err != nil { return err }
				if err := db.PersistRoutes(e.ctx, e.Provider, rt.Routes()); err != nil { return err }
				e.Desk.Routes.Invalidate()
				fmt.Printf("restored %d routes from %s (taken %s)\n", rt.Len(), args[1],
					rt.LastUpdated.Format(time.RFC3339))

			case "list":
				names,err := store.List(e.ctx)
				if err != nil { return err }
				for _,n := range names { fmt.Println(n) }

			default:
				return fmt.Errorf("unknown snapshot action %q", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fDir, "dir", "snapshots", "local directory, when no bucket is configured")
	return cmd
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
