// Package tui is a terminal front end for a download session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"vidsparrow/internal/model"
	"vidsparrow/internal/session"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// changedMsg tells the model that the session changed
type changedMsg struct{}

// intentDoneMsg reports a finished background intent
type intentDoneMsg struct {
	action session.Action
	err    error
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	activeTab     = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#7D56F4"))
	inactiveTab   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#888888"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	dialogStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#FF5F87")).Padding(0, 1)
	previewBox    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#3C3C3C")).Padding(0, 1)

	toastStyles = map[model.Severity]lipgloss.Style{
		model.SeverityInfo:    lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#3B82F6")),
		model.SeverityError:   lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#DC2626")),
		model.SeveritySuccess: lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#16A34A")),
	}
)

// Model is the bubbletea model of the panel
type Model struct {
	ctx        context.Context
	dispatcher *session.Dispatcher

	input textinput.Model
	bar   progress.Model
	snap  model.Snapshot
	row   int
	width int
}

// NewModel creates the terminal model over d
func NewModel(ctx context.Context, d *session.Dispatcher) Model {
	ti := textinput.New()
	ti.Prompt = "URL › "
	ti.CharLimit = 2048
	ti.Width = 60
	ti.Focus()

	snap := d.Snapshot()
	ti.Placeholder = snap.Controls.Placeholder
	ti.SetValue(snap.State.URL)

	return Model{
		ctx:        ctx,
		dispatcher: d,
		input:      ti,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
		),
		snap: snap,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.run(session.Intent{Action: session.ActionRefreshHistory}),
	)
}

// run dispatches intent off the event loop
func (m Model) run(intent session.Intent) tea.Cmd {
	d := m.dispatcher
	ctx := m.ctx
	return func() tea.Msg {
		return intentDoneMsg{action: intent.Action, err: d.Dispatch(ctx, intent)}
	}
}

// apply dispatches a quick intent inline
func (m Model) apply(intent session.Intent) Model {
	m.dispatcher.Dispatch(m.ctx, intent)
	return m.refresh()
}

// refresh pulls a new snapshot and syncs the text field with it
func (m Model) refresh() Model {
	m.snap = m.dispatcher.Snapshot()
	m.input.Placeholder = m.snap.Controls.Placeholder
	if m.input.Value() != m.snap.State.URL {
		m.input.SetValue(m.snap.State.URL)
	}
	if n := len(m.snap.History.Entries); m.row >= n {
		m.row = max(n-1, 0)
	}
	return m
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-10, 20)
		m.bar.Width = max(min(msg.Width-20, 60), 10)
		return m, nil

	case changedMsg:
		return m.refresh(), nil

	case intentDoneMsg:
		return m.refresh(), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.snap.History.Pending != nil {
		switch key {
		case "y", "Y":
			return m, m.run(session.Intent{Action: session.ActionConfirm})
		case "n", "N", "esc":
			return m.apply(session.Intent{Action: session.ActionCancel}), nil
		}
		return m, nil
	}

	switch key {
	case "tab":
		return m.apply(session.Intent{Action: session.ActionSetPlatform, Value: string(nextPlatform(m.snap.State.Platform))}), nil
	case "ctrl+t":
		next := model.MediaTypeAudio
		if m.snap.State.MediaType.IsAudio() {
			next = model.MediaTypeVideo
		}
		return m.apply(session.Intent{Action: session.ActionSetMediaType, Value: string(next)}), nil
	case "enter":
		if !m.snap.Controls.PreviewEnabled {
			return m, nil
		}
		return m, m.run(session.Intent{Action: session.ActionPreview, Value: m.input.Value()})
	case "up", "down":
		if !m.snap.Controls.QualityVisible {
			return m, nil
		}
		return m.apply(session.Intent{Action: session.ActionSelectQuality, Value: m.shiftQuality(key == "down")}), nil
	case "ctrl+n":
		if m.row < len(m.snap.History.Entries)-1 {
			m.row++
		}
		return m, nil
	case "ctrl+p":
		if m.row > 0 {
			m.row--
		}
		return m, nil
	case "ctrl+d":
		if !m.snap.Controls.DownloadEnabled {
			return m, nil
		}
		return m, m.run(session.Intent{Action: session.ActionDownload})
	case "ctrl+r":
		return m, m.run(session.Intent{Action: session.ActionRefreshHistory})
	case "ctrl+x":
		if m.row < len(m.snap.History.Entries) {
			return m.apply(session.Intent{Action: session.ActionDeleteRecord, Value: m.snap.History.Entries[m.row].ID}), nil
		}
		return m, nil
	case "ctrl+k":
		if !m.snap.History.ShowClearAll {
			return m, nil
		}
		return m.apply(session.Intent{Action: session.ActionClearAll}), nil
	case "esc":
		return m.apply(session.Intent{Action: session.ActionDismissToast}), nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.dispatcher.Dispatch(m.ctx, session.Intent{Action: session.ActionEditURL, Value: after})
		m = m.refresh()
	}
	return m, cmd
}

// shiftQuality returns the catalog value next to the current one
func (m Model) shiftQuality(down bool) string {
	opts := m.snap.Catalog
	idx := 0
	for i, o := range opts {
		if o.Value == m.snap.State.Quality {
			idx = i
		}
	}
	if down && idx < len(opts)-1 {
		idx++
	} else if !down && idx > 0 {
		idx--
	}
	return opts[idx].Value
}

func nextPlatform(p model.Platform) model.Platform {
	for i, known := range model.KnownPlatforms {
		if known == p {
			return model.KnownPlatforms[(i+1)%len(model.KnownPlatforms)]
		}
	}
	return model.KnownPlatforms[0]
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("vidsparrow"))
	b.WriteString("\n\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("[" + m.snap.Controls.PreviewLabel + "]"))
	b.WriteString("\n")

	if p := m.snap.State.Preview; p != nil {
		b.WriteString(previewBox.Render(fmt.Sprintf("%s\n%s · %s · %s views",
			p.DisplayTitle(), p.DisplayUploader(), p.DurationText(), p.ViewsText())))
		b.WriteString("\n")
		b.WriteString(m.qualities())
	}

	if pr := m.snap.Notify.Progress; pr.Visible {
		b.WriteString("\n")
		b.WriteString(pr.Message)
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(float64(pr.Percent) / 100))
		b.WriteString("\n")
	}

	if t := m.snap.Notify.Toast; t != nil {
		b.WriteString("\n")
		b.WriteString(toastStyles[t.Severity].Render(t.Message))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.history())

	if c := m.snap.History.Pending; c != nil {
		b.WriteString("\n")
		b.WriteString(dialogStyle.Render(c.Prompt + "  (y/n)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab platform · ctrl+t format · enter preview · ↑/↓ quality · ctrl+d download · ctrl+r refresh · ctrl+p/ctrl+n row · ctrl+x delete · ctrl+k clear all · esc dismiss · ctrl+c quit"))
	return b.String()
}

func (m Model) tabs() string {
	var parts []string
	for _, p := range model.KnownPlatforms {
		style := inactiveTab
		if p == m.snap.State.Platform {
			style = activeTab
		}
		parts = append(parts, style.Render(string(p)))
	}
	parts = append(parts, "  ")
	for _, mt := range []model.MediaType{model.MediaTypeVideo, model.MediaTypeAudio} {
		style := inactiveTab
		if mt == m.snap.State.MediaType {
			style = activeTab
		}
		parts = append(parts, style.Render(strings.ToUpper(string(mt))))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) qualities() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Quality"))
	b.WriteString("\n")
	for _, o := range m.snap.Catalog {
		if o.Value == m.snap.State.Quality {
			b.WriteString(selectedStyle.Render("› " + o.Label))
		} else {
			b.WriteString("  " + o.Label)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) history() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Recent downloads"))
	b.WriteString("\n")

	h := m.snap.History
	if h.Empty {
		b.WriteString(mutedStyle.Render(h.EmptyMessage))
		b.WriteString("\n")
		return b.String()
	}

	for i, e := range h.Entries {
		when := "unknown time"
		if !e.DownloadedAt.IsZero() {
			when = humanize.Time(e.DownloadedAt.Time)
		}
		line := fmt.Sprintf("%-4s %-10s %s  %s", e.MediaLabel, e.Platform, e.DisplayTitle, mutedStyle.Render(when))
		if i == m.row {
			b.WriteString(selectedStyle.Render("› ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if h.ShowClearAll {
		b.WriteString(mutedStyle.Render("ctrl+k to clear all"))
		b.WriteString("\n")
	}
	return b.String()
}
