package audit

import(
	"fmt"
	"time"

	"golang.org/x/net/context"
	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/skypies/flytau/log"
)

// Publisher is anything that can take a batch of decision rows.
type Publisher interface {
	Publish(ctx context.Context, rows []DecisionForBigQuery) error
}

// {{{ BigQueryPublisher

// BigQueryPublisher streams rows into a table. The dataset may live in a different project
// from the rest of the deployment; the service account needs editor on it.
type BigQueryPublisher struct {
	Project string
	Dataset string
	Table   string
	Log    *log.Logger
	client *bigquery.Client
}

func NewBigQueryPublisher(ctx context.Context, project, dataset, table string, opts ...option.ClientOption) (*BigQueryPublisher, error) {
	client,err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("Creating bigquery client: %v", err)
	}
	return &BigQueryPublisher{Project:project, Dataset:dataset, Table:table, client:client}, nil
}

func (p *BigQueryPublisher)Close() error { return p.client.Close() }

func (p *BigQueryPublisher)Publish(ctx context.Context, rows []DecisionForBigQuery) error {
	if len(rows) == 0 { return nil }
	ins := p.client.Dataset(p.Dataset).Table(p.Table).Inserter()
	if err := ins.Put(ctx, rows); err != nil {
		p.Log.Errorf("BigQuery insert of %d rows: %v", len(rows), err)
		return fmt.Errorf("Publish: %v", err)
	}
	p.Log.Debugf("published %d decisions to %s.%s", len(rows), p.Dataset, p.Table)
	return nil
}

// }}}
// {{{ WriteGCSFile

// WriteGCSFile writes the rows as NDJSON to gs://bucket/filename. It returns the number of
// rows written, which is zero if the file already exists.
func WriteGCSFile(ctx context.Context, client *storage.Client, bucket, filename string, rows []DecisionForBigQuery) (int, error) {
	obj := client.Bucket(bucket).Object(filename)
	if _,err := obj.Attrs(ctx); err == nil {
		return 0, nil
	} else if err != storage.ErrObjectNotExist {
		return 0, err
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	n,err := WriteNDJSON(w, rows)
	if err != nil {
		w.Close()
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return n, nil
}

// }}}
// {{{ SubmitLoadJob

// SubmitLoadJob asks BigQuery to append the contents of a GCS file to the table, and waits
// for it to finish.
func (p *BigQueryPublisher)SubmitLoadJob(ctx context.Context, bucket, filename string) error {
	gcsSrc := bigquery.NewGCSReference(fmt.Sprintf("gs://%s/%s", bucket, filename))
	gcsSrc.SourceFormat = bigquery.JSON

	loader := p.client.Dataset(p.Dataset).Table(p.Table).LoaderFrom(gcsSrc)
	loader.WriteDisposition = bigquery.WriteAppend

	job,err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("Submission of load job: %v", err)
	}

	status,err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("Failure determining status: %v", err)
	} else if err := status.Err(); err != nil {
		detailedErrStr := ""
		for i,innerErr := range status.Errors {
			detailedErrStr += fmt.Sprintf(" [%2d] %v\n", i, innerErr)
		}
		p.Log.Errorf("BigQuery LoadJob error: %v\n--\n%s", err, detailedErrStr)
		return fmt.Errorf("Job error: %v\n--\n%s", err, detailedErrStr)
	}

	p.Log.Infof("BigQuery LoadJob gs://%s/%s done, state=%v", bucket, filename, status.State)
	return nil
}

// }}}
// {{{ Archive

// Archive is the batch path: write a day's rows to GCS, then load them.
func (p *BigQueryPublisher)Archive(ctx context.Context, client *storage.Client, bucket string, day time.Time, rows []DecisionForBigQuery) (int, error) {
	filename := "decisions-" + day.UTC().Format("2006.01.02") + ".json"
	n,err := WriteGCSFile(ctx, client, bucket, filename, rows)
	if err != nil || n == 0 { return n, err }
	return n, p.SubmitLoadJob(ctx, bucket, filename)
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
