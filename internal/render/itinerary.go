// Package render formats itineraries for terminal output.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tripweaver/tripweaver/internal/service"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	dayStyle    = lipgloss.NewStyle().Bold(true)
	noteStyle   = lipgloss.NewStyle().Italic(true)
	timeStyle   = lipgloss.NewStyle().Faint(true)
)

// Itinerary renders the day plans as a readable block.
func Itinerary(id string, plans []service.DayPlan) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Itinerary "+id) + "\n")
	if len(plans) == 0 {
		b.WriteString("nothing to plan: no attractions matched the request\n")
		return b.String()
	}
	for _, p := range plans {
		b.WriteString(dayStyle.Render(p.Day) + "\n")
		if p.Note != "" {
			b.WriteString("  " + noteStyle.Render(p.Note) + "\n")
			continue
		}
		for _, st := range p.Stops {
			b.WriteString(fmt.Sprintf("  %s  %-32s %s\n",
				timeStyle.Render(st.ArrivalTime),
				st.AttractionName,
				timeStyle.Render(fmt.Sprintf("until %02d:%02d", st.EndMinutes/60, st.EndMinutes%60)),
			))
		}
	}
	return b.String()
}

// SplitCSVFlag splits a comma-separated flag value, dropping empties.
func SplitCSVFlag(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
