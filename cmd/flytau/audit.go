package main

import(
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"github.com/spf13/cobra"

	"github.com/skypies/flytau/audit"
	"github.com/skypies/flytau/config"
	"github.com/skypies/flytau/log"
)

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Work with decision logs written by --audit-file",
	}
	cmd.AddCommand(auditShowCmd())
	cmd.AddCommand(auditArchiveCmd())
	return cmd
}

func readAuditFile(filename string) ([]audit.DecisionForBigQuery, error) {
	f,err := os.Open(filename)
	if err != nil { return nil, err }
	defer f.Close()
	return audit.ReadNDJSON(f)
}

// {{{ auditShowCmd

func auditShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE.ndjson",
		Short: "Print the decisions in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows,err := readAuditFile(args[0])
			if err != nil { return err }
			for _,row := range rows {
				reason := green(row.Reason)
				if !row.Accepted { reason = red(row.Reason) }
				fmt.Printf("%s %s %s\n", dim(row.Recorded.Format("2006-01-02 15:04:05")), row, reason)
			}
			return nil
		},
	}
}

// }}}
// {{{ auditArchiveCmd

// Uploads the file to GCS as that day's archive, then loads it into BigQuery. An archive that
// already exists for the day is left alone.
func auditArchiveCmd() *cobra.Command {
	var fDay string

	cmd := &cobra.Command{
		Use:   "archive FILE.ndjson",
		Short: "Archive a decisions file to GCS (audit.bucket) and load it into BigQuery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows,err := readAuditFile(args[0])
			if err != nil { return err }

			day := time.Now().UTC()
			if fDay != "" {
				if day,err = time.Parse("2006-01-02", fDay); err != nil { return err }
			}

			bucket := config.Get("audit.bucket")
			if bucket == "" { return fmt.Errorf("no audit.bucket configured") }
			project := config.Get("audit.project")
			if project == "" { project = config.Get("datastore.project") }

			ctx := cmd.Context()
			client,err := storage.NewClient(ctx)
			if err != nil { return err }
			defer client.Close()

			pub,err := audit.NewBigQueryPublisher(ctx, project, config.Get("audit.dataset"),
				config.Get("audit.table"))
			if err != nil { return err }
			defer pub.Close()
			pub.Log = log.New(config.Get("log.level"), config.Get("log.dir"))

			n,err := pub.Archive(ctx, client, bucket, day, rows)
			if err != nil { return err }
			if n == 0 {
				fmt.Printf("%s\n", yellow("archive for "+day.Format("2006-01-02")+" already exists, nothing loaded"))
			} else {
				fmt.Printf("archived and loaded %d decisions\n", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fDay, "day", "", "which day's archive this is (2006-01-02, default today)")
	return cmd
}

// }}}
