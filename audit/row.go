// Package audit ships scheduler decisions to BigQuery, either streamed directly or via
// newline-delimited JSON files in GCS and a load job.
package audit

import(
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/skypies/flytau/sched"
)

// DecisionForBigQuery is a flattened sched.Decision, plus who asked and when.
type DecisionForBigQuery struct {
	RequestID     string    `bigquery:"request_id"    json:"request_id"`
	Operator      string    `bigquery:"operator"      json:"operator"`
	Recorded      time.Time `bigquery:"recorded"      json:"recorded"`

	ResourceKind  string    `bigquery:"resource_kind" json:"resource_kind"`
	ResourceID    string    `bigquery:"resource_id"   json:"resource_id"`
	DisplayName   string    `bigquery:"display_name"  json:"display_name"`

	Origin        string    `bigquery:"origin"        json:"origin"`
	Destination   string    `bigquery:"destination"   json:"destination"`
	Departure     time.Time `bigquery:"departure"     json:"departure"`
	DurationClass string    `bigquery:"duration_class" json:"duration_class"`

	Accepted      bool      `bigquery:"accepted"      json:"accepted"`
	Reason        string    `bigquery:"reason"        json:"reason"`
	ConflictFlight int64    `bigquery:"conflict_flight" json:"conflict_flight,omitempty"`
	BufferMinutes int       `bigquery:"buffer_minutes" json:"buffer_minutes"`
	Detail        string    `bigquery:"detail"        json:"detail,omitempty"`
}

func (d DecisionForBigQuery)String() string {
	return fmt.Sprintf("%s %s:%s %s-%s %s", d.RequestID, d.ResourceKind, d.ResourceID, d.Origin,
		d.Destination, d.Reason)
}

func ForBigQuery(requestID, operator string, recorded time.Time, d sched.Decision) DecisionForBigQuery {
	row := DecisionForBigQuery{
		RequestID: requestID,
		Operator: operator,
		Recorded: recorded.UTC(),
		ResourceKind: d.Resource.Kind.String(),
		ResourceID: d.Resource.ID,
		DisplayName: d.DisplayName,
		Origin: string(d.Origin),
		Destination: string(d.Destination),
		Departure: d.DepartureUTC.UTC(),
		DurationClass: d.Class.String(),
		Accepted: d.OK(),
		Reason: d.Reason.String(),
		BufferMinutes: int(d.Buffer.Minutes()),
		Detail: d.Detail,
	}
	if d.Conflict != nil { row.ConflictFlight = d.Conflict.FlightID }
	return row
}

func Rows(requestID, operator string, recorded time.Time, decisions []sched.Decision) []DecisionForBigQuery {
	rows := []DecisionForBigQuery{}
	for _,d := range decisions {
		rows = append(rows, ForBigQuery(requestID, operator, recorded, d))
	}
	return rows
}

// WriteNDJSON writes one JSON object per line, the format BigQuery load jobs want.
func WriteNDJSON(w io.Writer, rows []DecisionForBigQuery) (int, error) {
	encoder := json.NewEncoder(w)
	for i,row := range rows {
		if err := encoder.Encode(row); err != nil { return i, err }
	}
	return len(rows), nil
}

// ReadNDJSON is the inverse of WriteNDJSON.
func ReadNDJSON(r io.Reader) ([]DecisionForBigQuery, error) {
	rows := []DecisionForBigQuery{}
	decoder := json.NewDecoder(r)
	for decoder.More() {
		row := DecisionForBigQuery{}
		if err := decoder.Decode(&row); err != nil {
			return rows, fmt.Errorf("ReadNDJSON, row %d: %v", len(rows), err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
