package joblog

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/waabox/stagedeck/internal/canvas"
	"github.com/waabox/stagedeck/internal/theme"
)

// Run is a stretch of text drawn with one style.
type Run struct {
	Text  string
	Style canvas.Style
}

var sgrColors = map[int]colorful.Color{
	31: theme.Nord11,
	32: theme.Nord14,
	33: theme.Nord13,
	34: theme.Nord10,
	35: theme.Nord15,
	36: theme.Nord8,
	37: theme.Nord4,
	90: theme.Nord3,
}

// newSeqParser returns an escape sequence parser that collects parameters
// but not string payloads such as OSC titles.
func newSeqParser() *ansi.Parser {
	p := ansi.NewParser()
	p.SetDataSize(0)
	return p
}

// parseSGR splits s into styled runs. Only SGR sequences change the style;
// every other escape sequence is dropped from the text.
func parseSGR(p *ansi.Parser, s string) []Run {
	var (
		runs  []Run
		buf   strings.Builder
		style canvas.Style
		state byte
	)
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		runs = append(runs, Run{Text: buf.String(), Style: style})
		buf.Reset()
	}
	for len(s) > 0 {
		seq, _, n, newState := ansi.DecodeSequence(s, state, p)
		if n == 0 {
			seq, n = s[:1], 1
		}
		state = newState
		s = s[n:]
		switch {
		case ansi.HasCsiPrefix(seq):
			cmd := ansi.Cmd(p.Command())
			if cmd.Final() == 'm' && cmd.Prefix() == 0 && cmd.Intermediate() == 0 {
				flush()
				style = applySGR(p.Params())
			}
		case seq[0] == ansi.ESC, len(seq) == 1 && seq[0] >= 0x80 && seq[0] < 0xa0:
		default:
			buf.WriteString(seq)
		}
	}
	flush()
	return runs
}

func applySGR(params ansi.Params) canvas.Style {
	var st canvas.Style
	if len(params) == 0 {
		return st
	}
	params.ForEach(0, func(_, code int, _ bool) {
		switch code {
		case 0:
			st = canvas.Style{}
		case 1:
			st = st.WithBold()
		default:
			c, ok := sgrColors[code]
			if !ok {
				st = canvas.Style{}
				return
			}
			st.Fg, st.HasFg = c, true
		}
	})
	return st
}

func joinRuns(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
