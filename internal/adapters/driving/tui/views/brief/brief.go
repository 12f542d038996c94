// Package brief provides the section-by-section brief view for the TUI.
package brief

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/flightdeck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/flightdeck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// reservedLines is the header, tab row and status bar around the viewport.
const reservedLines = 5

// View shows one brief section at a time in a scrollable viewport.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	viewport viewport.Model

	brief   *domain.Brief
	preview bool
	section int
	width   int
}

// NewView creates an empty brief view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	return &View{
		styles:   s,
		keymap:   km,
		viewport: viewport.New(80, 20),
		width:    80,
	}
}

// SetBrief replaces the brief. preview marks a dry-run brief that was not
// delivered. The current section is kept.
func (v *View) SetBrief(b *domain.Brief, preview bool) {
	v.brief = b
	v.preview = preview
	v.refresh()
}

// Brief returns the brief on display.
func (v *View) Brief() *domain.Brief {
	return v.brief
}

// Section returns the index of the section on display.
func (v *View) Section() int {
	return v.section
}

// SetDimensions sizes the viewport to the terminal.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.viewport.Width = width
	v.viewport.Height = max(height-reservedLines, 1)
	v.refresh()
}

// Update handles section switching and forwards scrolling to the viewport.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		n := len(domain.SectionNames())
		switch {
		case key.Matches(km, v.keymap.Next):
			v.section = (v.section + 1) % n
			v.refresh()
			return v, nil
		case key.Matches(km, v.keymap.Prev):
			v.section = (v.section + n - 1) % n
			v.refresh()
			return v, nil
		}
	}
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the header, section tabs and the current section.
func (v *View) View() string {
	if v.brief == nil {
		return v.styles.Title.Render("Daily Flight Deck") + "\n\n" +
			v.styles.Muted.Render("No brief has been delivered yet. Press p to preview one.")
	}

	title := fmt.Sprintf("Daily Flight Deck (%s)", v.brief.GeneratedAt.UTC().Format(time.DateOnly))
	header := v.styles.Title.Render(title)
	if v.preview {
		header += " " + v.styles.Warning.Render("[preview, not delivered]")
	} else {
		header += " " + v.styles.Muted.Render("run "+v.brief.RunID)
	}
	return header + "\n" + v.renderTabs() + "\n\n" + v.viewport.View()
}

func (v *View) renderTabs() string {
	sections := v.brief.Sections.Ordered()
	tabs := make([]string, len(sections))
	for i, sec := range sections {
		label := fmt.Sprintf("%d·%d", i+1, len(sec.Items))
		if i == v.section {
			tabs[i] = v.styles.ActiveTab.Render(label)
		} else {
			tabs[i] = v.styles.Tab.Render(label)
		}
	}
	return strings.Join(tabs, "")
}

func (v *View) refresh() {
	if v.brief == nil {
		v.viewport.SetContent("")
		return
	}
	v.viewport.SetContent(v.Content())
	v.viewport.GotoTop()
}

// Content renders the current section as plain lines.
func (v *View) Content() string {
	if v.brief == nil {
		return ""
	}
	sec := v.brief.Sections.Ordered()[v.section]
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render(sec.Name))
	b.WriteString("\n")

	if sec.Name == domain.SectionCalendarPrep {
		titles := make(map[string]string)
		for i := range v.brief.Items {
			titles[v.brief.Items[i].Key()] = v.brief.Items[i].Title
		}
		for _, c := range v.brief.Sections.Collisions {
			fmt.Fprintf(&b, "%s %s overlaps with %s\n",
				v.styles.Warning.Render("Collision:"), titles[c.First], titles[c.Second])
		}
	}
	if len(sec.Items) == 0 {
		b.WriteString(v.styles.Muted.Render("none"))
		return b.String()
	}
	for i := range sec.Items {
		v.writeItem(&b, &sec.Items[i])
	}
	return b.String()
}

func (v *View) writeItem(b *strings.Builder, item *domain.Item) {
	fmt.Fprintf(b, "\n%s %s %s\n",
		v.styles.Muted.Render("["+string(item.Source)+"]"),
		v.styles.Normal.Bold(true).Render(item.Title),
		v.styles.Muted.Render(fmt.Sprintf("from %s, score %d", item.ChannelOrSender, item.Score)))
	if len(item.ScoreReasons) > 0 {
		fmt.Fprintf(b, "  %s\n", v.styles.Muted.Render(strings.Join(item.ScoreReasons, "; ")))
	}
	if item.Snippet != "" {
		fmt.Fprintf(b, "  %s\n", item.Snippet)
	}
	fmt.Fprintf(b, "  → %s\n", item.RecommendedAction)
	if item.URL != "" {
		fmt.Fprintf(b, "  %s\n", v.styles.Muted.Render(item.URL))
	}
}
