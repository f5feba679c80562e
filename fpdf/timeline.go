// Provides routines to render resource timelines as PDFs
package fpdf

import(
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/skypies/flytau/sched"
)

// https://godoc.org/github.com/jung-kurt/gofpdf

var(
	CommitmentColor = []int{0x1f, 0x5f, 0xa8}
	CandidateColor  = []int{0xe0, 0x7a, 0x10}
	ZeroLengthColor = []int{0xa0, 0x00, 0x00}
)

// SheetRow is one resource's line on the sheet.
type SheetRow struct {
	Label     string
	Timeline  sched.Timeline
	Candidate *sched.Leg // drawn over the top, if present
}

// {{{ Window

// Window picks a time range covering every interval on the sheet, rounded out to whole hours,
// with some margin at either end.
func Window(rows []SheetRow) (time.Time, time.Time) {
	var s,e time.Time
	extend := func(a,b time.Time) {
		if s.IsZero() || a.Before(s) { s = a }
		if e.IsZero() || b.After(e) { e = b }
	}
	for _,r := range rows {
		for _,i := range r.Timeline { extend(i.DepartureUTC, i.ArrivalUTC) }
		if r.Candidate != nil { extend(r.Candidate.DepartureUTC, r.Candidate.ArrivalUTC) }
	}
	if s.IsZero() {
		s = time.Now().UTC().Truncate(time.Hour)
		return s, s.Add(24*time.Hour)
	}
	return s.Truncate(time.Hour).Add(-2*time.Hour), e.Truncate(time.Hour).Add(3*time.Hour)
}

// }}}
// {{{ NewTimelinePdf

func NewTimelinePdf(title string, start, end time.Time, nRows int) (*gofpdf.Fpdf, Grid) {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.MoveTo(10, 8)
	pdf.Cell(200, 8, title)

	hours := end.Sub(start).Hours()
	every := 1.0
	for hours/every > 24 { every *= 2 }

	rowH := 8.0
	if nRows > 20 { rowH = 160.0 / float64(nRows) }

	g := Grid{
		Fpdf: pdf,
		OffsetU: 55, OffsetV: 22,
		W: 210, H: rowH * float64(nRows),
		MaxX: hours,
		Rows: nRows,
		XGridlineEvery: every,
		XTickFmt: func(x float64) string {
			return start.Add(time.Duration(x*float64(time.Hour))).Format("02 15:04")
		},
		LineColor: []int{0x40, 0x40, 0x40},
	}
	return pdf, g
}

// }}}
// {{{ WriteTimelineSheet

// WriteTimelineSheet renders a Gantt chart: one row per resource, one bar per commitment, and
// the candidate flight (if any) highlighted.
func WriteTimelineSheet(output io.Writer, title string, rows []SheetRow) error {
	start,end := Window(rows)
	pdf,g := NewTimelinePdf(title, start, end, len(rows))

	labels := []string{}
	for _,r := range rows { labels = append(labels, r.Label) }
	g.DrawGridlines(labels)

	x := func(t time.Time) float64 { return t.Sub(start).Hours() }
	g.SetFont("Arial", "", 6)
	for row,r := range rows {
		for _,i := range r.Timeline {
			if !i.ArrivalUTC.After(i.DepartureUTC) {
				g.Marker(row, x(i.DepartureUTC), ZeroLengthColor)
				continue
			}
			label := fmt.Sprintf("F%d %s-%s", i.FlightID, i.Origin, i.Destination)
			g.Bar(row, x(i.DepartureUTC), x(i.ArrivalUTC), CommitmentColor, label)
		}
		if c := r.Candidate; c != nil {
			g.Bar(row, x(c.DepartureUTC), x(c.ArrivalUTC), CandidateColor, string(c.Origin)+"-"+string(c.Destination))
		}
	}

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.MoveTo(10, g.OffsetV+g.H+8)
	pdf.Cell(200, 6, fmt.Sprintf("%s to %s (UTC)", start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04")))

	return pdf.Output(output)
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
