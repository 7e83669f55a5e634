package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aiblame/aiblame/internal/render"
	"github.com/aiblame/aiblame/pkg/models"
)

const commitLimit = 50

type model struct {
	backend Backend
	ctx     context.Context

	commits        []models.Commit
	cursor         int
	selectedCommit *models.Commit

	blameCache     map[string]BlameContext // commit hash → resolved context
	loadingBlame   map[string]bool
	activeRequests map[string]context.CancelFunc

	leftViewport  viewport.Model
	rightViewport viewport.Model
	indicator     *LoadingIndicator
	loadingList   bool
	ready         bool
	err           error
	width         int
	height        int
}

func initialModel(backend Backend) model {
	return model{
		backend:        backend,
		ctx:            context.Background(),
		blameCache:     make(map[string]BlameContext),
		loadingBlame:   make(map[string]bool),
		activeRequests: make(map[string]context.CancelFunc),
		indicator:      NewLoadingIndicator("Loading commits..."),
		loadingList:    true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		loadCommitsCmd(m.ctx, m.backend, commitLimit),
		tickCmd(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		leftWidth := msg.Width/2 - 1
		rightWidth := msg.Width - leftWidth - 1
		viewHeight := msg.Height - 3

		if !m.ready {
			m.leftViewport = viewport.New(leftWidth, viewHeight)
			m.rightViewport = viewport.New(rightWidth, viewHeight)
			m.ready = true
		} else {
			m.leftViewport.Width = leftWidth
			m.leftViewport.Height = viewHeight
			m.rightViewport.Width = rightWidth
			m.rightViewport.Height = viewHeight
		}
		m.updateViewports()

	case CommitsLoadedMsg:
		m.loadingList = false
		if msg.Error != nil {
			m.err = msg.Error
			return m, nil
		}
		m.commits = msg.Commits
		m.cursor = 0
		var cmd tea.Cmd
		m, cmd = m.resolveCurrent()
		cmds = append(cmds, cmd)
		m.updateViewports()

	case BlameResolvedMsg:
		delete(m.activeRequests, msg.RequestID)
		delete(m.loadingBlame, msg.CommitHash)
		if msg.Error == nil {
			m.blameCache[msg.CommitHash] = msg.Context
		}
		m.updateViewports()

	case TickMsg:
		m.indicator.Tick()
		if m.loadingList || len(m.loadingBlame) > 0 {
			m.updateViewports()
		}
		cmds = append(cmds, tickCmd())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancelAll()
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				var cmd tea.Cmd
				m, cmd = m.resolveCurrent()
				cmds = append(cmds, cmd)
				m.updateViewports()
			}

		case "down", "j":
			if m.cursor < len(m.commits)-1 {
				m.cursor++
				var cmd tea.Cmd
				m, cmd = m.resolveCurrent()
				cmds = append(cmds, cmd)
				m.updateViewports()
			}

		case "enter":
			if m.cursor < len(m.commits) {
				commit := m.commits[m.cursor]
				m.selectedCommit = &commit
				m.cancelAll()
				return m, tea.Quit
			}

		case "esc":
			m.cancelAll()
			m.updateViewports()
		}
	}

	var leftCmd, rightCmd tea.Cmd
	m.leftViewport, leftCmd = m.leftViewport.Update(msg)
	m.rightViewport, rightCmd = m.rightViewport.Update(msg)
	cmds = append(cmds, leftCmd, rightCmd)

	return m, tea.Batch(cmds...)
}

// resolveCurrent kicks off blame resolution for the commit under the cursor,
// unless a result is already cached or a request is in flight.
func (m model) resolveCurrent() (model, tea.Cmd) {
	if m.cursor >= len(m.commits) {
		return m, nil
	}
	commit := m.commits[m.cursor]
	if _, ok := m.blameCache[commit.Hash]; ok {
		return m, nil
	}
	if m.loadingBlame[commit.Hash] {
		return m, nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	cmd, requestID := resolveBlameCmd(ctx, m.backend, commit)
	m.activeRequests[requestID] = cancel
	m.loadingBlame[commit.Hash] = true
	return m, cmd
}

func (m *model) cancelAll() {
	for id, cancel := range m.activeRequests {
		cancel()
		delete(m.activeRequests, id)
	}
	for hash := range m.loadingBlame {
		delete(m.loadingBlame, hash)
	}
}

func (m *model) updateViewports() {
	if !m.ready {
		return
	}
	m.leftViewport.SetContent(m.renderCommits())
	m.rightViewport.SetContent(m.renderContext())
}

func (m model) renderCommits() string {
	if m.loadingList {
		return LoadingOverlay(m.leftViewport.Width, m.leftViewport.Height, m.indicator)
	}
	if len(m.commits) == 0 {
		return "No commits found"
	}

	var s strings.Builder
	for i, commit := range m.commits {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		style := lipgloss.NewStyle()
		if i == m.cursor {
			style = style.Foreground(lipgloss.Color("212")).Bold(true)
		}

		subject := commit.Subject
		maxLen := m.leftViewport.Width - 22
		if maxLen > 0 && len(subject) > maxLen {
			subject = subject[:maxLen] + "..."
		}

		line := fmt.Sprintf("%s%s %s %s",
			cursor,
			commit.ShortHash(),
			commit.When.Format("01-02 15:04"),
			subject)
		s.WriteString(style.Render(line) + "\n")
	}
	return s.String()
}

func (m model) renderContext() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	var s strings.Builder
	s.WriteString(headerStyle.Render("AI Context") + "\n")
	dividerWidth := m.rightViewport.Width - 2
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	s.WriteString(strings.Repeat("─", dividerWidth) + "\n\n")

	if m.cursor >= len(m.commits) {
		s.WriteString(dimStyle.Render("No commit selected"))
		return s.String()
	}
	commit := m.commits[m.cursor]

	if m.loadingBlame[commit.Hash] {
		s.WriteString(m.indicator.View())
		return s.String()
	}

	blameCtx, ok := m.blameCache[commit.Hash]
	if !ok || blameCtx.Interaction == nil {
		s.WriteString(dimStyle.Render("No AI context found for this commit"))
		return s.String()
	}

	s.WriteString(render.MatchInfo(blameCtx.Interaction.SessionID, blameCtx.Strategy) + "\n\n")

	wrapWidth := m.rightViewport.Width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}
	for _, line := range wrapText(blameCtx.Interaction.Prompt, wrapWidth) {
		s.WriteString(line + "\n")
	}
	s.WriteString("\n")

	if len(blameCtx.Stats) > 0 {
		s.WriteString(render.StatsTable(blameCtx.Stats))
	}

	return s.String()
}

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	currentLine := words[0]
	for _, word := range words[1:] {
		if len(currentLine)+1+len(word) > width {
			lines = append(lines, currentLine)
			currentLine = word
		} else {
			currentLine += " " + word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n", m.err)
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	return fmt.Sprintf("%s\n%s\n%s", header, m.renderSplitView(), footer)
}

func (m model) renderSplitView() string {
	leftStyle := lipgloss.NewStyle().
		Width(m.leftViewport.Width).
		Height(m.leftViewport.Height)

	rightStyle := lipgloss.NewStyle().
		Width(m.rightViewport.Width).
		Height(m.rightViewport.Height)

	dividerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Height(m.leftViewport.Height)

	divider := strings.Builder{}
	for i := 0; i < m.leftViewport.Height; i++ {
		divider.WriteString("│")
		if i < m.leftViewport.Height-1 {
			divider.WriteString("\n")
		}
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftStyle.Render(m.leftViewport.View()),
		dividerStyle.Render(divider.String()),
		rightStyle.Render(m.rightViewport.View()),
	)
}

func (m model) renderHeader() string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("63"))
	return style.Render("ai-blame - Commits")
}

func (m model) renderFooter() string {
	info := "↑/↓: navigate • enter: show blame • q: quit"
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return style.Render(info)
}

// ShowTUI runs the commit browser and returns the commit the user selected
// for a full blame report, or nil if they just quit.
func ShowTUI(backend Backend) (*models.Commit, error) {
	p := tea.NewProgram(initialModel(backend), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := finalModel.(model)
	return m.selectedCommit, nil
}
