// Package joblog turns raw GitLab job traces into styled, timestamped lines.
package joblog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const (
	sectionStart = "section_start:"
	sectionEnd   = "section_end:"
)

// clearLine are the erase-in-line sequences GitLab runners emit around
// section markers.
var clearLine = strings.NewReplacer("\x1b[0K", "", "\x1b[K", "")

// Line is one displayed line of a job log.
type Line struct {
	// Timestamp is HH:MM:SS when the runner prefixed the line with a time.
	Timestamp string
	// Duration is MM:SS when the line closes a timed section.
	Duration string
	// Content is the visible text without escape sequences.
	Content string
	Runs    []Run
}

// Parse converts a raw trace into display lines. It never fails: unknown
// escape sequences degrade to unstyled text.
func Parse(raw string) []Line {
	p := parser{starts: make(map[string]uint64), seq: newSeqParser()}
	for _, l := range strings.Split(raw, "\n") {
		p.feed(strings.TrimRight(l, "\r"))
	}
	return p.lines
}

type parser struct {
	lines  []Line
	starts map[string]uint64
	seq    *ansi.Parser
}

// feed handles one physical line. Text in front of a section marker is
// emitted before the marker takes effect, so a section_end sharing a line
// with the section's last output lands on that output.
func (p *parser) feed(line string) {
	ts, body := splitTimestamp(line)
	for {
		i, end := nextMarker(body)
		if i < 0 {
			break
		}
		p.emit(ts, body[:i])
		kind := sectionStart
		if end {
			kind = sectionEnd
		}
		epoch, name, rest, ok := parseMarker(body[i+len(kind):])
		if ok {
			if end {
				p.closeSection(name, epoch)
			} else {
				p.starts[name] = epoch
			}
		}
		body = rest
	}
	p.emit(ts, body)
}

func (p *parser) emit(ts, text string) {
	text = clearLine.Replace(text)
	if strings.TrimSpace(ansi.Strip(text)) == "" {
		return
	}
	runs := parseSGR(p.seq, text)
	p.lines = append(p.lines, Line{
		Timestamp: ts,
		Content:   joinRuns(runs),
		Runs:      runs,
	})
}

func (p *parser) closeSection(name string, epoch uint64) {
	start, ok := p.starts[name]
	if !ok || len(p.lines) == 0 {
		return
	}
	delete(p.starts, name)
	var secs uint64
	if epoch > start {
		secs = epoch - start
	}
	p.lines[len(p.lines)-1].Duration = formatDuration(secs)
}

func nextMarker(s string) (idx int, end bool) {
	si := strings.Index(s, sectionStart)
	ei := strings.Index(s, sectionEnd)
	switch {
	case si < 0 && ei < 0:
		return -1, false
	case si < 0:
		return ei, true
	case ei < 0:
		return si, false
	case ei < si:
		return ei, true
	}
	return si, false
}

// parseMarker reads "<epoch>:<name>[options]" and returns the text after it.
// A marker that does not parse is dropped from the output all the same.
func parseMarker(s string) (epoch uint64, name, rest string, ok bool) {
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return 0, "", "", false
	}
	epoch, err := strconv.ParseUint(s[:colon], 10, 64)
	if err != nil {
		return 0, "", s, false
	}
	s = s[colon+1:]
	n := strings.IndexAny(s, "[\r\x1b \t")
	if n < 0 {
		n = len(s)
	}
	name = s[:n]
	rest = s[n:]
	if strings.HasPrefix(rest, "[") {
		if close := strings.IndexByte(rest, ']'); close >= 0 {
			rest = rest[close+1:]
		}
	}
	return epoch, name, strings.TrimLeft(rest, "\r"), name != ""
}

// splitTimestamp strips the "2024-01-15T10:30:45.123456Z 00O " prefix that
// timestamped GitLab runners put in front of each line.
func splitTimestamp(line string) (ts, body string) {
	if len(line) <= 32 || line[4] != '-' || line[10] != 'T' || !digits(line[:4]) || !digits(line[11:13]) {
		return "", line
	}
	ts = line[11:19]
	if sp := strings.IndexByte(line[28:], ' '); sp >= 0 {
		return ts, line[28+sp+1:]
	}
	return ts, line
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func formatDuration(secs uint64) string {
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// AsText renders lines as numbered plain text for copying.
func AsText(lines []Line) string {
	width := len(strconv.Itoa(max(len(lines), 1)))
	out := make([]string, len(lines))
	for i, l := range lines {
		ts := l.Timestamp
		if ts == "" {
			ts = "        "
		}
		s := fmt.Sprintf("%*d %s  %s", width, i+1, ts, l.Content)
		if l.Duration != "" {
			s += " " + l.Duration
		}
		out[i] = s
	}
	return strings.Join(out, "\n")
}
