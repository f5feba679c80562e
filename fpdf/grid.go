package fpdf

import "github.com/jung-kurt/gofpdf"

// Grid describes an area of the page that we plot over: time along X (in hours from the start
// of the window), one row per resource down Y.
type Grid struct {
	*gofpdf.Fpdf        // Embed the thing we're writing to

	// The portion of PDF page space the grid is drawn over (labels go outside of this)
	OffsetU     float64 // where the origin (top-left) should be, in PDF coords
	OffsetV     float64
	W,H         float64 // width and height of the grid, in PDF units (mm)

	MaxX        float64 // hours; X runs from 0 to MaxX
	Rows        int

	XGridlineEvery float64 // hours
	XTickFmt       func(x float64) string // blank labels if nil
	LineColor    []int // rgb, each [0,255]
}

// {{{ g.U, V, RowHeight

// the bool is whether x is out of bounds for the grid.
func (g Grid)U(x float64) (float64, bool) {
	ratio := x / g.MaxX
	return g.OffsetU + ratio*g.W, ratio<0 || ratio>1
}

func (g Grid)RowHeight() float64 {
	if g.Rows == 0 { return g.H }
	return g.H / float64(g.Rows)
}

// V is the top of the row.
func (g Grid)V(row int) float64 { return g.OffsetV + float64(row)*g.RowHeight() }

// }}}
// {{{ g.MaybeSetDrawColor

func (g Grid)MaybeSetDrawColor() {
	if len(g.LineColor) == 3 {
		g.SetDrawColor(g.LineColor[0], g.LineColor[1], g.LineColor[2])
	}
}

// }}}
// {{{ g.Bar

// Bar fills the [x1,x2) span of a row, clipped to the grid, and writes the label inside it if
// there's room.
func (g Grid)Bar(row int, x1, x2 float64, rgb []int, label string) {
	if x2 < 0 || x1 > g.MaxX { return }
	if x1 < 0 { x1 = 0 }
	if x2 > g.MaxX { x2 = g.MaxX }

	u1,_ := g.U(x1)
	u2,_ := g.U(x2)
	pad := g.RowHeight() * 0.15
	v := g.V(row) + pad
	h := g.RowHeight() - 2*pad

	g.SetFillColor(rgb[0], rgb[1], rgb[2])
	g.Rect(u1, v, u2-u1, h, "F")

	if label != "" && g.GetStringWidth(label) < (u2-u1) {
		g.SetTextColor(0xff, 0xff, 0xff)
		g.SetXY(u1, v)
		g.CellFormat(u2-u1, h, label, "", 0, "C", false, 0, "")
	}
}

// }}}
// {{{ g.Marker

// Marker draws a thin vertical line across a row; zero-length intervals show up as one.
func (g Grid)Marker(row int, x float64, rgb []int) {
	u,oob := g.U(x)
	if oob { return }
	g.SetDrawColor(rgb[0], rgb[1], rgb[2])
	g.SetLineWidth(0.6)
	g.Line(u, g.V(row), u, g.V(row)+g.RowHeight())
}

// }}}
// {{{ g.DrawGridlines

func (g Grid)DrawGridlines(rowLabels []string) {
	g.SetFont("Arial", "", 7)
	g.SetLineWidth(0.03)
	g.SetDrawColor(0xc0, 0xc0, 0xc0)
	g.SetTextColor(0, 0, 0)

	if g.XGridlineEvery > 0 {
		for x := 0.0; x <= g.MaxX; x += g.XGridlineEvery {
			u,_ := g.U(x)
			g.Line(u, g.OffsetV, u, g.OffsetV+g.H)
			if g.XTickFmt != nil {
				g.SetXY(u-8, g.OffsetV+g.H+1)
				g.CellFormat(16, 4, g.XTickFmt(x), "", 0, "C", false, 0, "")
			}
		}
	}

	for row := 0; row <= g.Rows; row++ {
		g.Line(g.OffsetU, g.V(row), g.OffsetU+g.W, g.V(row))
	}

	g.SetFont("Arial", "", 8)
	for row,label := range rowLabels {
		if row >= g.Rows { break }
		g.SetXY(g.OffsetU-42, g.V(row))
		g.CellFormat(40, g.RowHeight(), label, "", 0, "R", false, 0, "")
	}

	g.MaybeSetDrawColor()
	g.SetLineWidth(0.3)
	g.Rect(g.OffsetU, g.OffsetV, g.W, g.H, "D")
}

// }}}
