// Package tui provides the Bubble Tea interfaces for reviewing staged
// uploads and browsing the community feed.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/NUPS-NASA/exohunt/internal/api"
	"github.com/NUPS-NASA/exohunt/internal/staging"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	// Section heading inside the body
	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	// Key=value label
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	badgeDarkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	badgeBiasStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	badgeFlatStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	pagerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("237")).
			Padding(0, 1)
)

// ── Review model ────────────────────

type reviewMode int

const (
	modeBrowse reviewMode = iota
	modeEditName
	modeCommitting
)

type commitDoneMsg struct {
	resp *api.UploadCommitResponse
	err  error
}

// ReviewModel pages through staged frames, supports removing frames and
// naming the repository, and commits the batch.
type ReviewModel struct {
	ctx      context.Context
	workflow *staging.Workflow

	mode      reviewMode
	nameInput textinput.Model
	viewport  viewport.Model
	width     int
	height    int
	ready     bool
	errText   string

	// Committed holds the server response after a successful commit.
	Committed *api.UploadCommitResponse
	// Cancelled is set when the user quits without committing.
	Cancelled bool
}

// NewReview builds the review model over an already-staged workflow.
func NewReview(ctx context.Context, w *staging.Workflow) ReviewModel {
	in := textinput.New()
	in.Placeholder = "repository name"
	in.CharLimit = 120
	in.SetValue(w.RepositoryName())
	return ReviewModel{ctx: ctx, workflow: w, nameInput: in}
}

// ── Bubble Tea interface ───────────────

func (m ReviewModel) Init() tea.Cmd { return nil }

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeEditName:
			switch msg.String() {
			case "enter":
				m.workflow.SetRepositoryName(strings.TrimSpace(m.nameInput.Value()))
				m.mode = modeBrowse
				m.nameInput.Blur()
				m.rebuild()
				return m, nil
			case "esc":
				m.nameInput.SetValue(m.workflow.RepositoryName())
				m.mode = modeBrowse
				m.nameInput.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.nameInput, cmd = m.nameInput.Update(msg)
			return m, cmd

		case modeCommitting:
			// Ignore input while the request is in flight.
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Cancelled = true
			return m, tea.Quit
		case "right", "l", "tab":
			m.workflow.Next()
			m.errText = ""
			m.rebuild()
		case "left", "h", "shift+tab":
			m.workflow.Prev()
			m.errText = ""
			m.rebuild()
		case "d", "x":
			m.workflow.RemoveCurrent()
			m.errText = ""
			// Commit needs at least one primary frame; with none left
			// the review can only be cancelled, so do that now.
			if len(m.workflow.Items()) == 0 {
				m.Cancelled = true
				return m, tea.Quit
			}
			m.rebuild()
		case "n":
			m.mode = modeEditName
			m.nameInput.SetValue(m.workflow.RepositoryName())
			m.nameInput.Focus()
			return m, textinput.Blink
		case "c", "enter":
			m.mode = modeCommitting
			m.errText = ""
			return m, m.commitCmd()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case commitDoneMsg:
		if msg.err != nil {
			m.mode = modeBrowse
			m.errText = msg.err.Error()
			m.rebuild()
			return m, nil
		}
		m.Committed = msg.resp
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		// title(1) + pager(1) + statusBar(1) = 3 fixed rows
		vpHeight := m.height - 3
		if vpHeight < 1 {
			vpHeight = 1
		}
		m.viewport = viewport.New(m.width, vpHeight)
		m.rebuild()
		return m, nil
	}
	return m, nil
}

func (m *ReviewModel) commitCmd() tea.Cmd {
	ctx, workflow := m.ctx, m.workflow
	return func() tea.Msg {
		resp, err := workflow.Commit(ctx)
		return commitDoneMsg{resp: resp, err: err}
	}
}

func (m ReviewModel) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  exohunt  upload review")

	items := m.workflow.Items()
	pager := fmt.Sprintf(" frame %d of %d ", m.workflow.Index()+1, len(items))
	if len(items) == 0 {
		pager = " calibration frames only "
	}
	if n := m.workflow.PreprocessCount(); n > 0 {
		pager += dimStyle.Render(fmt.Sprintf(" +%d calibration", n))
	}
	pagerRow := pagerStyle.Width(m.width).Render(pager)

	content := m.viewport.View()

	hint := "  ←/→ frame  d remove  n name  c commit  q cancel"
	if m.mode == modeEditName {
		hint = "  enter save  esc cancel"
	}
	if m.mode == modeCommitting {
		hint = "  committing…"
	}
	pct := fmt.Sprintf("%3.0f%%", m.viewport.ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(
		hint + strings.Repeat(" ", pad) + pct,
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, pagerRow, content, statusBar)
}

// ── Rendering ─────────────────────────────────────────────────────────────────

func (m *ReviewModel) rebuild() {
	m.viewport.SetContent(m.renderBody())
	m.viewport.GotoTop()
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func (m *ReviewModel) renderBody() string {
	var sb strings.Builder

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}

	sb.WriteString(heading("Repository"))
	name := m.workflow.RepositoryName()
	if m.mode == modeEditName {
		row("Name:", m.nameInput.View())
	} else if name == "" {
		row("Name:", errStyle.Render("(required — press n)"))
	} else {
		row("Name:", name)
	}

	if m.errText != "" {
		sb.WriteString("\n" + errStyle.Render("  "+m.errText) + "\n")
	}

	item := m.workflow.Current()
	if item != nil {
		sb.WriteString(heading("Frame"))
		row("Filename:", item.Filename)
		row("Size:", staging.FormatSizeKB(item.SizeBytes)+dimStyle.Render("  ("+humanize.Bytes(uint64(item.SizeBytes))+")"))
		if item.TmpPNGPath != nil {
			row("Preview:", dimStyle.Render(*item.TmpPNGPath))
		}

		primary, optional := staging.SplitHeader(item.FITSHeader)
		if len(primary) > 0 {
			sb.WriteString(heading("Header"))
			for _, entry := range primary {
				row(entry.Key+":", entry.Value)
			}
		}
		if len(optional) > 0 {
			sb.WriteString(heading("Other keywords"))
			for _, entry := range optional {
				sb.WriteString(dimStyle.Render(fmt.Sprintf("  %-14s  %s", entry.Key, entry.Value)) + "\n")
			}
		}
	}

	if m.workflow.PreprocessCount() > 0 {
		sb.WriteString(heading("Calibration frames"))
		pre := m.workflow.Preprocess()
		for _, cat := range api.PreprocessCategories {
			for _, frame := range pre[cat] {
				badge := categoryBadge(cat)
				sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", badge, frame.Filename, dimStyle.Render(staging.FormatSizeKB(frame.SizeBytes))))
			}
		}
	}

	return sb.String()
}

func categoryBadge(cat api.PreprocessCategory) string {
	label := fmt.Sprintf("[%-4s]", strings.ToUpper(string(cat)))
	switch cat {
	case api.PreprocessDark:
		return badgeDarkStyle.Render(label)
	case api.PreprocessBias:
		return badgeBiasStyle.Render(label)
	case api.PreprocessFlat:
		return badgeFlatStyle.Render(label)
	}
	return label
}

// RunReview starts the review TUI over a staged workflow and reports the
// commit response, or nil when the user cancelled.
func RunReview(ctx context.Context, w *staging.Workflow) (*api.UploadCommitResponse, error) {
	p := tea.NewProgram(NewReview(ctx, w), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	model := final.(ReviewModel)
	return model.Committed, nil
}
