// Package tui is a terminal browser over the attraction catalog with an
// on-demand itinerary preview.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tripweaver/tripweaver/internal/config"
	"github.com/tripweaver/tripweaver/internal/database/repository"
	"github.com/tripweaver/tripweaver/internal/nlp"
	"github.com/tripweaver/tripweaver/internal/recommend"
	"github.com/tripweaver/tripweaver/internal/service"
)

// Repos bundles repositories the TUI reads.
type Repos struct {
	Attractions *repository.AttractionRepo
}

// Services bundles the actions the TUI can trigger.
type Services struct {
	Itineraries *service.ItineraryService
	Processor   *nlp.Processor
	SaveConfig  func(config.Config) error
}

// App ties together views.
type App struct {
	ctx      context.Context
	repos    Repos
	services Services
	cfg      config.Config

	state       appState
	attractions []repository.Attraction
	total       int
	cursor      int
	city        string
	search      string
	status      string
	plans       []service.DayPlan
}

type appState string

const (
	viewBrowse appState = "browse"
	viewPlan   appState = "plan"
)

func New(ctx context.Context, cfg config.Config, repos Repos, services Services, city string) *App {
	return &App{
		ctx:      ctx,
		repos:    repos,
		services: services,
		cfg:      cfg,
		state:    viewBrowse,
		city:     city,
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadAttractions()
}

type attractionsMsg struct {
	list  []repository.Attraction
	total int
}

type plansMsg []service.DayPlan

type enrichedMsg nlp.EnrichResult

type configSavedMsg struct{ city string }

type errMsg struct{ err error }

func (a *App) loadAttractions() tea.Cmd {
	return func() tea.Msg {
		list, err := a.repos.Attractions.List(a.ctx, repository.AttractionFilters{
			City:   a.city,
			Search: a.search,
		})
		if err != nil {
			return errMsg{err}
		}
		total, err := a.repos.Attractions.Count(a.ctx, a.city)
		if err != nil {
			return errMsg{err}
		}
		return attractionsMsg{list: list, total: total}
	}
}

func (a *App) saveConfigCmd() tea.Cmd {
	return func() tea.Msg {
		if a.services.SaveConfig == nil {
			return errMsg{fmt.Errorf("config save not available")}
		}
		cfg := a.cfg
		cfg.Browse.City = a.city
		if err := a.services.SaveConfig(cfg); err != nil {
			return errMsg{err}
		}
		return configSavedMsg{city: a.city}
	}
}

func (a *App) generateCmd() tea.Cmd {
	return func() tea.Msg {
		start := time.Now().UTC()
		req := recommend.Request{
			City:      a.city,
			StartDate: start.Format(time.DateOnly),
			EndDate:   start.AddDate(0, 0, 1).Format(time.DateOnly),
			Budget:    4,
		}
		for _, attr := range a.attractions {
			req.Preferences = append(req.Preferences, attr.Themes...)
			if len(req.Preferences) >= 6 {
				break
			}
		}
		_, plans, err := a.services.Itineraries.Generate(a.ctx, req)
		if err != nil {
			return errMsg{err}
		}
		return plansMsg(plans)
	}
}

func (a *App) enrichCmd() tea.Cmd {
	return func() tea.Msg {
		res, err := a.services.Processor.EnrichAll(a.ctx, a.city)
		if err != nil {
			return errMsg{err}
		}
		return enrichedMsg(res)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(m)
	case attractionsMsg:
		a.attractions = m.list
		a.total = m.total
		if a.cursor >= len(a.attractions) {
			a.cursor = 0
		}
	case plansMsg:
		a.plans = m
		a.state = viewPlan
		a.status = ""
	case enrichedMsg:
		a.status = fmt.Sprintf("enriched %d attractions (%d from tags)", m.Processed, m.FellBack)
		return a, a.loadAttractions()
	case configSavedMsg:
		a.cfg.Browse.City = m.city
		if m.city == "" {
			a.status = "cleared default city"
		} else {
			a.status = "saved " + m.city + " as default city"
		}
	case errMsg:
		a.status = "error: " + m.err.Error()
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		if a.state == viewPlan {
			a.state = viewBrowse
			return a, nil
		}
		if a.search != "" {
			a.search = ""
			return a, a.loadAttractions()
		}
	case "up", "ctrl+k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "ctrl+j":
		if a.cursor < len(a.attractions)-1 {
			a.cursor++
		}
	case "ctrl+g":
		if a.state == viewBrowse && len(a.attractions) > 0 {
			a.status = "planning..."
			return a, a.generateCmd()
		}
	case "ctrl+e":
		if a.state == viewBrowse {
			a.status = "enriching..."
			return a, a.enrichCmd()
		}
	case "ctrl+r":
		return a, a.loadAttractions()
	case "ctrl+s":
		if a.state == viewBrowse {
			return a, a.saveConfigCmd()
		}
	case "backspace":
		if len(a.search) > 0 {
			a.search = a.search[:len(a.search)-1]
			return a, a.loadAttractions()
		}
	default:
		if a.state == viewBrowse && len(m.String()) == 1 {
			a.search += m.String()
			return a, a.loadAttractions()
		}
	}
	return a, nil
}

// styles
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	noteStyle  = lipgloss.NewStyle().Italic(true)
)

func (a *App) View() string {
	switch a.state {
	case viewPlan:
		return a.renderPlan()
	default:
		return a.renderBrowse()
	}
}

func (a *App) renderBrowse() string {
	city := a.city
	if city == "" {
		city = "all cities"
	}
	title := titleStyle.Render("Tripweaver Attractions - " + city)
	out := title + "\n"
	if a.search != "" {
		out += dimStyle.Render("filter: "+a.search) + "\n"
	}
	if len(a.attractions) == 0 {
		out += "No attractions. Import or crawl some first.\n"
	} else {
		out += dimStyle.Render(fmt.Sprintf("%d of %d attractions", len(a.attractions), a.total)) + "\n"
	}
	for i, attr := range a.attractions {
		marker := " "
		if i == a.cursor {
			marker = "▶"
		}
		sentiment := "  n/a"
		if attr.SentimentScore != nil {
			sentiment = fmt.Sprintf("%+.2f", *attr.SentimentScore)
		}
		theme := "-"
		if attr.DominantTheme != nil {
			theme = *attr.DominantTheme
		}
		out += fmt.Sprintf("%s %-30s  %.1f★ (%d)  %s  %s  %s\n",
			marker, attr.Name, attr.Rating, attr.ReviewCount,
			strings.Repeat("$", attr.PriceLevel), sentiment, theme)
	}
	out += dimStyle.Render("[type] filter  [ctrl+g] plan  [ctrl+e] enrich  [ctrl+s] save city  [ctrl+r] reload  [q] quit")
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderPlan() string {
	title := titleStyle.Render("Itinerary Preview")
	out := title + "\n"
	for _, p := range a.plans {
		out += titleStyle.Render(p.Day) + "\n"
		if p.Note != "" {
			out += noteStyle.Render("  "+p.Note) + "\n"
			continue
		}
		for _, st := range p.Stops {
			out += fmt.Sprintf("  %s  %-30s  until %02d:%02d\n",
				st.ArrivalTime, st.AttractionName, st.EndMinutes/60, st.EndMinutes%60)
		}
	}
	out += dimStyle.Render("[esc] back  [q] quit")
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}
