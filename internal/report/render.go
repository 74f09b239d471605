package report

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const ruleWidth = 50

// Render writes the human-readable summary block to w.
// Counts use English digit grouping ("1,510").
func Render(w io.Writer, s Summary) error {
	p := message.NewPrinter(language.English)
	rule := strings.Repeat("=", ruleWidth)

	date := s.Date
	if s.DateFull != "" {
		date = s.DateFull
	}
	name := s.Name
	if name == "" {
		name = "Unknown"
	}

	var b strings.Builder
	b.WriteString(rule + "\n")
	p.Fprintf(&b, "EXPRESS ENTRY DRAW #%s\n", strconv.Itoa(s.Number))
	b.WriteString(rule + "\n")
	p.Fprintf(&b, "%-14s%s\n", "Date:", date)
	p.Fprintf(&b, "%-14s%s\n", "Type:", name)
	p.Fprintf(&b, "%-14s%d\n", "Invitations:", s.Invitations)
	p.Fprintf(&b, "%-14s%d\n", "Minimum CRS:", s.CRSCutoff)
	b.WriteString("\n")
	b.WriteString(Happened(s.DaysSince) + "\n")

	if s.Previous != nil && s.DaysBetween != nil {
		p.Fprintf(&b, "Days since previous draw: %d\n", *s.DaysBetween)
		p.Fprintf(&b, "Previous draw #%s on %s (CRS: %d)\n", strconv.Itoa(s.Previous.Number), s.Previous.Date, s.Previous.CRSCutoff)
	} else {
		b.WriteString("No previous draw data available.\n")
	}
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Happened phrases how long ago a draw took place.
func Happened(daysSince int) string {
	p := message.NewPrinter(language.English)
	switch {
	case daysSince == 0:
		return "This draw happened TODAY!"
	case daysSince == 1:
		return "This draw happened YESTERDAY."
	case daysSince < 0:
		return p.Sprintf("This draw is dated %d days ahead.", -daysSince)
	default:
		return p.Sprintf("This draw happened %d days ago.", daysSince)
	}
}
