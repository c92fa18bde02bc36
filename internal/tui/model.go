// Package tui is the terminal chat front end.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"regassist.in/nbfc-chatbot/internal/core"
	"regassist.in/nbfc-chatbot/internal/store"
)

const transcriptPath = "transcripts/chat.txt"

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	bot      *core.Chatbot
	input    textinput.Model
	viewport viewport.Model
	lines    []string
	status   string
	summary  string
	waiting  bool
	ready    bool
}

// answerMsg carries a finished answer back into the update loop.
type answerMsg struct {
	result store.QueryResult
}

// New creates the chat model. summary is the subtitle under the header,
// typically the backend name or the list of askable demo topics.
func New(bot *core.Chatbot, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about NBFC regulations and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		bot:      bot,
		input:    ti,
		viewport: vp,
		summary:  summary,
		status:   "Ready. Ctrl+S saves the transcript, Ctrl+L clears history.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header + summary, spacer, input frame, status
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = maxInt(3, vh-ch)
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		return m, nil

	case answerMsg:
		m.waiting = false
		m.lines = append(m.lines, renderAnswer(msg.result), "")
		m.status = fmt.Sprintf("Confidence: %s", msg.result.Confidence)
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.status = "Thinking..."
			m.lines = append(m.lines, questionStyle.Render("You: ")+question)
			m.viewport.SetContent(strings.Join(m.lines, "\n"))
			m.viewport.GotoBottom()
			bot := m.bot
			return m, func() tea.Msg {
				return answerMsg{result: bot.Ask(context.Background(), question)}
			}
		case "ctrl+l":
			m.bot.ClearHistory()
			m.lines = nil
			m.status = "History cleared."
			m.viewport.SetContent("")
			return m, nil
		case "ctrl+s":
			if err := m.bot.SaveTranscript(transcriptPath); err != nil {
				m.status = "Error saving transcript: " + err.Error()
			} else {
				m.status = "Transcript saved to " + transcriptPath
			}
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("NBFC Regulatory Chatbot")
	summary := summaryStyle.Render(m.summary)
	chat := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + chat + "\n" + input + "\n" + status
}

func renderAnswer(result store.QueryResult) string {
	var sb strings.Builder
	sb.WriteString(answerStyle.Render("Bot: "))
	sb.WriteString(result.Answer)
	for _, src := range result.Sources {
		sb.WriteString("\n")
		sb.WriteString(sourceStyle.Render(fmt.Sprintf("  [%s, page %s] %s", src.Source, src.Page, src.Content)))
	}
	return sb.String()
}

var (
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	summaryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
