package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/flightdeck/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/flightdeck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/flightdeck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/flightdeck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/flightdeck/internal/adapters/driving/tui/views/brief"
	"github.com/custodia-labs/flightdeck/internal/adapters/driving/tui/views/events"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
)

// App is the TUI model following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	briefView  *brief.View
	eventsView *events.View
	statusBar  *status.Bar

	currentView messages.ViewType
	lastView    messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the TUI over ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		help:        help.New(),
		briefView:   brief.NewView(s, km),
		eventsView:  events.NewView(s),
		statusBar:   status.NewBar(s, km),
		currentView: messages.ViewBrief,
	}, nil
}

// WithContext sets the context passed to service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init loads the latest brief and the refresh log.
func (a *App) Init() tea.Cmd {
	a.statusBar.Set(status.StateLoading, "")
	return tea.Batch(
		tea.SetWindowTitle("flightdeck"),
		a.loadBrief,
		a.loadAudit,
	)
}

func (a *App) loadBrief() tea.Msg {
	b, err := a.ports.Audit.LatestBrief(a.ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return messages.BriefLoaded{}
	}
	return messages.BriefLoaded{Brief: b, Err: err}
}

func (a *App) loadAudit() tea.Msg {
	r, err := a.ports.Audit.Audit(a.ctx, 0)
	return messages.AuditLoaded{Report: r, Err: err}
}

func (a *App) runPreview() tea.Msg {
	r, err := a.ports.Briefing.Run(a.ctx, driving.RunOptions{
		Trigger:      domain.TriggerManual,
		SkipDelivery: true,
	})
	return messages.PreviewCompleted{Report: r, Err: err}
}

// Update handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height, a.ready = msg.Width, msg.Height, true
		a.briefView.SetDimensions(msg.Width, msg.Height)
		a.eventsView.SetDimensions(msg.Width, msg.Height)
		a.statusBar.SetWidth(msg.Width)
		a.help.Width = msg.Width
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.BriefLoaded:
		if msg.Err != nil {
			a.fail(msg.Err)
			return a, nil
		}
		a.briefView.SetBrief(msg.Brief, false)
		a.statusBar.Set(status.StateReady, "")
		return a, nil

	case messages.AuditLoaded:
		if msg.Err != nil {
			a.fail(msg.Err)
			return a, nil
		}
		a.eventsView.SetReport(msg.Report)
		if a.statusBar.State() != status.StateError {
			a.statusBar.Set(status.StateReady, fmt.Sprintf("%d events", len(msg.Report.Recent)))
		}
		return a, nil

	case messages.PreviewCompleted:
		if msg.Report != nil && msg.Report.Brief != nil {
			a.briefView.SetBrief(msg.Report.Brief, true)
			a.currentView = messages.ViewBrief
			a.statusBar.Set(status.StateReady, "preview "+string(msg.Report.Event.Status))
			return a, nil
		}
		if msg.Err == nil {
			msg.Err = errors.New("preview produced no brief")
		}
		a.fail(msg.Err)
		return a, nil
	}

	return a.forward(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keymap.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keymap.Help):
		if a.currentView == messages.ViewHelp {
			a.currentView = a.lastView
		} else {
			a.lastView, a.currentView = a.currentView, messages.ViewHelp
		}
		return a, nil

	case key.Matches(msg, a.keymap.Tab):
		if a.currentView == messages.ViewBrief {
			a.currentView = messages.ViewEvents
		} else {
			a.currentView = messages.ViewBrief
		}
		return a, nil

	case key.Matches(msg, a.keymap.Refresh):
		a.err = nil
		a.statusBar.Set(status.StateLoading, "")
		return a, tea.Batch(a.loadBrief, a.loadAudit)

	case key.Matches(msg, a.keymap.Preview):
		if a.ports.Briefing == nil {
			a.statusBar.Set(status.StateError, "preview unavailable")
			return a, nil
		}
		a.err = nil
		a.statusBar.Set(status.StateLoading, "")
		return a, a.runPreview
	}
	return a.forward(msg)
}

func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewBrief:
		a.briefView, cmd = a.briefView.Update(msg)
	case messages.ViewEvents:
		a.eventsView, cmd = a.eventsView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) fail(err error) {
	a.err = err
	a.statusBar.Set(status.StateError, err.Error())
}

// View renders the active view with the status bar.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	var body string
	switch a.currentView {
	case messages.ViewEvents:
		body = a.eventsView.View()
	case messages.ViewHelp:
		body = a.styles.Title.Render("Help") + "\n\n" + a.help.FullHelpView(a.keymap.FullHelp())
	default:
		body = a.briefView.View()
	}
	return body + "\n" + a.statusBar.View()
}

// Run starts the TUI and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error reported by a service.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether a window size has been received.
func (a *App) Ready() bool {
	return a.ready
}
