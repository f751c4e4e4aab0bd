package logtail

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Severity is the first letter of a glog line.
type Severity byte

const (
	SeverityNone    Severity = 0
	SeverityInfo    Severity = 'I'
	SeverityWarning Severity = 'W'
	SeverityError   Severity = 'E'
	SeverityFatal   Severity = 'F'
)

// Entry is one parsed glog line.
type Entry struct {
	Severity Severity
	// Header is "mmdd hh:mm:ss.uuuuuu threadid file:line".
	Header    string
	Component string
	Message   string
}

// Lmmdd hh:mm:ss.uuuuuu threadid file:line] msg
var glogLine = regexp.MustCompile(`^([IWEF])(\d{4} \d{2}:\d{2}:\d{2}\.\d+\s+\d+ [^\]]+)\] ?(.*)$`)

// [sup] mode poll -> push
var componentTag = regexp.MustCompile(`^\[([a-z]+)\] ?`)

// Parse splits a glog line. Lines that are not glog records (the file
// preamble, wrapped continuations) come back with SeverityNone and the raw
// text as Message.
func Parse(line string) Entry {
	m := glogLine.FindStringSubmatch(line)
	if m == nil {
		return Entry{Message: line}
	}
	e := Entry{Severity: Severity(m[1][0]), Header: m[2], Message: m[3]}
	if tag := componentTag.FindStringSubmatch(e.Message); tag != nil {
		e.Component = tag[1]
		e.Message = e.Message[len(tag[0]):]
	}
	return e
}

// Palette holds the styles Colorize applies.
type Palette struct {
	Header    lipgloss.Style
	Info      lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Component lipgloss.Style
	Message   lipgloss.Style
	Plain     lipgloss.Style
}

// Style returns the style for a severity.
func (p Palette) Style(s Severity) lipgloss.Style {
	switch s {
	case SeverityWarning:
		return p.Warning
	case SeverityError, SeverityFatal:
		return p.Error
	case SeverityInfo:
		return p.Info
	default:
		return p.Plain
	}
}

// ColorizeLine renders one glog line with the palette.
func ColorizeLine(line string, p Palette) string {
	e := Parse(line)
	if e.Severity == SeverityNone {
		return p.Plain.Render(line)
	}
	var b strings.Builder
	b.WriteString(p.Style(e.Severity).Bold(true).Render(string(rune(e.Severity))))
	b.WriteString(p.Header.Render(e.Header))
	b.WriteString(" ")
	if e.Component != "" {
		b.WriteString(p.Component.Render("[" + e.Component + "]"))
		b.WriteString(" ")
	}
	msg := p.Message
	if e.Severity != SeverityInfo {
		msg = p.Style(e.Severity)
	}
	b.WriteString(msg.Render(e.Message))
	return b.String()
}

// ColorizeLines applies ColorizeLine to every line.
func ColorizeLines(lines []string, p Palette) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ColorizeLine(line, p)
	}
	return out
}
