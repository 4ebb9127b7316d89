package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/aquatox/debsim/internal/simulate"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	eventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model plays a computed trajectory back frame by frame.
type Model struct {
	name string
	res  *simulate.Result

	col     int
	head    int
	speed   int
	playing bool
}

// NewModel wraps a finished run for playback.
func NewModel(name string, res *simulate.Result) Model {
	return Model{
		name:    name,
		res:     res,
		head:    1,
		speed:   1,
		playing: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "tab":
			m.col = (m.col + 1) % len(m.res.Labels)
		case "left", "h":
			m.playing = false
			m.head = max(1, m.head-1)
		case "right", "l":
			m.playing = false
			m.head = min(len(m.res.Times)-1, m.head+1)
		case "+", "=":
			m.speed = min(16, m.speed*2)
		case "-":
			m.speed = max(1, m.speed/2)
		case "r":
			m.head = 1
			m.playing = true
		}
		return m, nil

	case TickMsg:
		if m.playing {
			m.head += m.speed
			if m.head >= len(m.res.Times) {
				m.head = len(m.res.Times) - 1
				m.playing = false
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m Model) View() string {
	label := m.res.Labels[m.col]
	data := m.res.Column(m.col)[:m.head+1]
	now := m.res.Times[m.head]

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s — %s", m.name, label)))
	b.WriteString("\n")

	graph := asciigraph.Plot(data,
		asciigraph.Height(14),
		asciigraph.Width(76),
		asciigraph.Caption(fmt.Sprintf("%s, day 0..%.1f", label, now)),
	)
	b.WriteString(graphStyle.Render(graph))
	b.WriteString("\n\n")

	row := func(k string, v string) {
		b.WriteString(labelStyle.Render(k))
		b.WriteString(valueStyle.Render(v))
		b.WriteString("\n")
	}
	row("day", fmt.Sprintf("%.2f", now))
	for col, lab := range m.res.Labels {
		row(lab, fmt.Sprintf("%.4g", m.res.States[m.head][col]))
	}
	if !math.IsInf(m.res.Puberty, 1) {
		mark := fmt.Sprintf("day %.2f", m.res.Puberty)
		if now >= m.res.Puberty {
			mark = eventStyle.Render(mark + "  ✓")
		}
		row("puberty", mark)
	}
	speed := ""
	if m.speed > 1 {
		speed = fmt.Sprintf("  %dx", m.speed)
	}
	state := "paused"
	if m.playing {
		state = "playing"
	}
	row("playback", state+speed)

	b.WriteString(helpStyle.Render("space play/pause · tab column · ←/→ scrub · +/- speed · r restart · q quit"))
	return b.String()
}

// RunLive starts the playback viewer and blocks until it quits.
func RunLive(name string, res *simulate.Result) error {
	_, err := tea.NewProgram(NewModel(name, res)).Run()
	return err
}
