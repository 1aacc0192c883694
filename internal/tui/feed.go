package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/NUPS-NASA/exohunt/internal/api"
	"github.com/NUPS-NASA/exohunt/internal/feed"
)

var (
	categoryTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	categoryTabActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	likedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	postTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))

	selectedPostStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))
)

// feedCategories is the tab order: all posts first, then each category.
var feedCategories = append([]api.PostCategory{""}, api.PostCategories...)

type postsLoadedMsg struct {
	posts []api.Post
	err   error
}

type opDoneMsg struct {
	err error
}

// FeedModel browses community posts by category and drives the optimistic
// like toggle on the selected post.
type FeedModel struct {
	ctx     context.Context
	service *feed.Service

	category int
	posts    []api.Post
	cursor   int
	expanded map[int64]bool

	viewport viewport.Model
	width    int
	height   int
	ready    bool
	loading  bool
	errText  string
}

func NewFeed(ctx context.Context, service *feed.Service) FeedModel {
	return FeedModel{ctx: ctx, service: service, expanded: make(map[int64]bool)}
}

func (m FeedModel) Init() tea.Cmd { return m.loadCmd() }

func (m *FeedModel) loadCmd() tea.Cmd {
	ctx, service := m.ctx, m.service
	category := feedCategories[m.category]
	return func() tea.Msg {
		posts, err := service.Posts(ctx, category)
		return postsLoadedMsg{posts: posts, err: err}
	}
}

func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.category = (m.category + 1) % len(feedCategories)
			return m.reload()
		case "shift+tab", "h", "left":
			m.category = (m.category - 1 + len(feedCategories)) % len(feedCategories)
			return m.reload()
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.rebuild()
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.posts)-1 {
				m.cursor++
				m.rebuild()
			}
			return m, nil
		case "enter", " ":
			if post := m.selected(); post != nil {
				if m.expanded[post.ID] {
					delete(m.expanded, post.ID)
				} else {
					m.expanded[post.ID] = true
				}
				m.rebuild()
			}
			return m, nil
		case "L":
			if post := m.selected(); post != nil {
				return m.toggleLike(post)
			}
			return m, nil
		case "r":
			return m.reload()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case postsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		} else {
			m.errText = ""
			m.posts = msg.posts
			if m.cursor >= len(m.posts) {
				m.cursor = 0
			}
		}
		m.rebuild()
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		// The cache already carries the reconciled state.
		return m.reload()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
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

func (m FeedModel) reload() (tea.Model, tea.Cmd) {
	m.loading = true
	m.rebuild()
	return m, m.loadCmd()
}

func (m FeedModel) toggleLike(post *api.Post) (tea.Model, tea.Cmd) {
	ctx, service := m.ctx, m.service
	id, like := post.ID, !post.Liked
	return m, func() tea.Msg {
		return opDoneMsg{err: service.ToggleLike(ctx, id, like)}
	}
}

func (m *FeedModel) selected() *api.Post {
	if m.cursor < 0 || m.cursor >= len(m.posts) {
		return nil
	}
	return &m.posts[m.cursor]
}

func (m FeedModel) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  exohunt  community")

	var tabParts []string
	for i, cat := range feedCategories {
		label := categoryLabel(cat)
		if i == m.category {
			tabParts = append(tabParts, categoryTabActiveStyle.Render(label))
		} else {
			tabParts = append(tabParts, categoryTabStyle.Render(label))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewport.View()

	hint := "  ←/→ category  ↑/↓ select  enter expand  L like  r refresh  q quit"
	pct := fmt.Sprintf("%3.0f%%", m.viewport.ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(
		hint + strings.Repeat(" ", pad) + pct,
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

func (m *FeedModel) rebuild() {
	m.viewport.SetContent(m.renderPosts())
}

func (m *FeedModel) renderPosts() string {
	var sb strings.Builder

	if m.loading {
		sb.WriteString(dimStyle.Render("\n  loading…") + "\n")
		return sb.String()
	}
	if m.errText != "" {
		sb.WriteString("\n" + errStyle.Render("  "+m.errText) + "\n")
	}
	if len(m.posts) == 0 {
		sb.WriteString(dimStyle.Render("\n  (no posts in this category)") + "\n")
		return sb.String()
	}

	sb.WriteString("\n")
	for i, post := range m.posts {
		likes := fmt.Sprintf("♥ %d", post.LikesCount)
		if post.Liked {
			likes = likedStyle.Render(likes)
		} else {
			likes = dimStyle.Render(likes)
		}
		ts := timeStyle.Render(humanize.Time(post.CreatedAt))
		row := fmt.Sprintf("  %s  %s  %s  %s",
			likes,
			postTitleStyle.Render(post.Title),
			dimStyle.Render("by "+post.Author.DisplayName),
			ts)
		if i == m.cursor {
			row = selectedPostStyle.Width(m.width - 2).Render(row)
		}
		sb.WriteString(row + "\n")

		if m.expanded[post.ID] {
			sb.WriteString("\n" + indent(post.Content, "    ") + "\n")
			if len(post.Comments) > 0 {
				sb.WriteString("\n" + dimStyle.Render(fmt.Sprintf("    %d comment(s)", len(post.Comments))) + "\n")
				for _, c := range post.Comments {
					sb.WriteString(fmt.Sprintf("    %s %s  %s\n",
						timeStyle.Render(humanize.Time(c.CreatedAt)),
						labelStyle.Render(c.Author.DisplayName+":"),
						c.Content))
				}
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func categoryLabel(cat api.PostCategory) string {
	if cat == "" {
		return " All "
	}
	return " " + strings.ReplaceAll(string(cat), "-", " ") + " "
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// RunFeed starts the community feed TUI.
func RunFeed(ctx context.Context, service *feed.Service) error {
	p := tea.NewProgram(NewFeed(ctx, service), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
