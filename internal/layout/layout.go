// Package layout places pipeline stage boxes for a given viewport width.
package layout

import (
	"github.com/mattn/go-runewidth"

	"github.com/waabox/stagedeck/internal/domain"
)

const (
	// MinStageWidth is the narrowest a stage box is ever drawn.
	MinStageWidth = 16
	// ConnectorWidth is the gap between two stages on the same row.
	ConnectorWidth = 5
	// WrapMargin is reserved on the left of every row after the first for
	// the wrap connector.
	WrapMargin = 3
)

// Strategy is the placement strategy chosen by Compute.
type Strategy int

const (
	Single Strategy = iota
	Shrunk
	Wrapped
)

func (s Strategy) String() string {
	switch s {
	case Single:
		return "single"
	case Shrunk:
		return "shrunk"
	case Wrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

// Box is the placement of one stage, in content coordinates.
type Box struct {
	X, Y          int
	Width, Height int
	Row           int
}

// Layout is the result of Compute. Boxes[i] belongs to stage i.
type Layout struct {
	Boxes       []Box
	Rows        int
	TotalWidth  int
	TotalHeight int
	Strategy    Strategy
}

// IdealWidth is the width a stage needs to show its header and every job
// name without truncation.
func IdealWidth(s domain.Stage) int {
	w := max(runewidth.StringWidth(s.Name)+8, MinStageWidth)
	for _, j := range s.Jobs {
		w = max(w, runewidth.StringWidth(j.Name)+5)
	}
	return w
}

func stageHeight(stages []domain.Stage) int {
	h := 0
	for _, s := range stages {
		h = max(h, len(s.Jobs))
	}
	return h + 2
}

// Compute lays stages out for the given width. It tries a centered single
// row first, then a proportionally shrunk single row, and finally wraps
// stages onto several rows.
func Compute(stages []domain.Stage, width int) Layout {
	if len(stages) == 0 {
		return Layout{}
	}
	n := len(stages)
	ideal := make([]int, n)
	sum := 0
	for i, s := range stages {
		ideal[i] = IdealWidth(s)
		sum += ideal[i]
	}
	connectors := (n - 1) * ConnectorWidth

	if sum+connectors <= width {
		return singleRow(stages, ideal, width, Single)
	}

	avail := width - connectors
	if avail >= n*MinStageWidth {
		shrunk := shrink(ideal, avail)
		total := connectors
		for _, w := range shrunk {
			total += w
		}
		if total <= width {
			return singleRow(stages, shrunk, width, Shrunk)
		}
	}

	return wrap(stages, ideal, width)
}

// NeedsWrap reports whether stages cannot fit on a single row.
func NeedsWrap(stages []domain.Stage, width int) bool {
	return Compute(stages, width).Strategy == Wrapped
}

// shrink scales widths proportionally so that they sum to about avail,
// never going below MinStageWidth.
func shrink(widths []int, avail int) []int {
	sum := 0
	for _, w := range widths {
		sum += w
	}
	out := make([]int, len(widths))
	for i, w := range widths {
		if sum > 0 {
			out[i] = max(w*avail/sum, MinStageWidth)
		} else {
			out[i] = MinStageWidth
		}
	}
	return out
}

func singleRow(stages []domain.Stage, widths []int, width int, strategy Strategy) Layout {
	total := (len(widths) - 1) * ConnectorWidth
	for _, w := range widths {
		total += w
	}
	height := stageHeight(stages)
	x := max((width-total)/2, 0)
	l := Layout{
		Boxes:       make([]Box, len(widths)),
		Rows:        1,
		TotalHeight: height,
		Strategy:    strategy,
	}
	for i, w := range widths {
		l.Boxes[i] = Box{X: x, Y: 0, Width: w, Height: height}
		x += w + ConnectorWidth
	}
	l.TotalWidth = l.Boxes[len(widths)-1].X + widths[len(widths)-1]
	return l
}

func wrap(stages []domain.Stage, ideal []int, width int) Layout {
	l := Layout{Boxes: make([]Box, len(stages)), Strategy: Wrapped}
	y := 0
	for start := 0; start < len(stages); {
		margin := 0
		if l.Rows > 0 {
			margin = WrapMargin
		}
		rowAvail := width - margin

		end := start + 1
		used := ideal[start]
		for end < len(stages) && used+ConnectorWidth+ideal[end] <= rowAvail {
			used += ConnectorWidth + ideal[end]
			end++
		}

		widths := make([]int, end-start)
		total := (len(widths) - 1) * ConnectorWidth
		for i := range widths {
			widths[i] = max(min(ideal[start+i], rowAvail), MinStageWidth)
			total += widths[i]
		}
		if total > rowAvail {
			widths = shrink(widths, rowAvail-(len(widths)-1)*ConnectorWidth)
			total = (len(widths) - 1) * ConnectorWidth
			for _, w := range widths {
				total += w
			}
		}

		x := max((width-total)/2, 0)
		if l.Rows > 0 {
			x = margin + max((rowAvail-total)/2, 0)
		}
		height := stageHeight(stages[start:end])
		for i, w := range widths {
			l.Boxes[start+i] = Box{X: x, Y: y, Width: w, Height: height, Row: l.Rows}
			x += w + ConnectorWidth
		}
		l.TotalWidth = max(l.TotalWidth, x-ConnectorWidth)

		y += height
		start = end
		l.Rows++
		if start < len(stages) {
			y++
		}
	}
	l.TotalHeight = y
	return l
}
