// Package ui provides the terminal preview of the strip using Bubble Tea.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-starfield/internal/config"
	"github.com/litescript/ls-starfield/internal/state"
	"github.com/litescript/ls-starfield/internal/strip"
	"github.com/litescript/ls-starfield/internal/version"
)

// Msg types for Bubble Tea
type (
	// AnimTickMsg triggers a refresh of the strip preview.
	AnimTickMsg time.Time

	// ErrorMsg signals that the animation loop stopped with an error.
	ErrorMsg struct {
		Error error
	}
)

const animInterval = 30 * time.Millisecond

// Model is the root Bubble Tea model.
type Model struct {
	state *state.Manager

	// UI state
	width      int
	height     int
	ready      bool
	paused     bool
	showEvents bool
	animTick   int
	err        error

	// Last snapshot pulled from the state manager
	snapshot state.Snapshot
}

// New creates a new root UI model.
func New(stateMgr *state.Manager) Model {
	return Model{
		state:      stateMgr,
		showEvents: true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return animTickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "p", " ":
			m.paused = !m.paused
		case "e":
			m.showEvents = !m.showEvents
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case AnimTickMsg:
		m.animTick++
		if !m.paused {
			m.snapshot = m.state.Snapshot()
		}
		return m, animTickCmd()

	case ErrorMsg:
		m.err = msg.Error
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content strings.Builder
	content.WriteString(renderStrip(m.snapshot.Frame, m.width-4))
	content.WriteString("\n")
	content.WriteString(m.renderStats())
	if m.showEvents {
		content.WriteString("\n\n")
		content.WriteString(m.renderEvents(m.eventRows()))
	}

	return m.renderFrame(content.String())
}

func (m Model) renderFrame(content string) string {
	header := m.renderHeader()
	footer := m.renderFooter()

	return header + "\n" + content + "\n\n" + footer
}

func (m Model) renderHeader() string {
	title := "ls-starfield"
	runes := []rune(title)

	var b strings.Builder
	b.WriteString("\n  ")
	for col, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(col, len(runes)))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  v%s · %d elements", version.Version, len(m.snapshot.Frame))))
	b.WriteString("\n")
	return b.String()
}

// gradientColor returns a hex color for a position in the title gradient,
// night blue through violet, blended in HCL space.
func gradientColor(col, width int) string {
	if width <= 1 {
		return logoStart.Hex()
	}
	t := float64(col) / float64(width-1)
	return logoStart.BlendHcl(logoEnd, t).Clamped().Hex()
}

var (
	logoStart = colorful.Color{R: 0x3B / 255.0, G: 0x82 / 255.0, B: 0xF6 / 255.0}
	logoEnd   = colorful.Color{R: 0xD9 / 255.0, G: 0x46 / 255.0, B: 0xEF / 255.0}
)

func (m Model) renderStats() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)

	phase := dimStyle.Render("idle")
	if m.snapshot.CometActive {
		phase = accentStyle.Render("comet")
	}

	return "  " + dimStyle.Render(fmt.Sprintf("frames %d · ticks %d · comets %d · ",
		m.snapshot.Frames, m.snapshot.Ticks, m.snapshot.Comets)) + phase
}

// eventRows is how many events fit below the strip.
func (m Model) eventRows() int {
	rows := m.height - stripRows(len(m.snapshot.Frame), m.width-4) - 10
	if rows < 1 {
		return 1
	}
	return rows
}

func (m Model) renderEvents(limit int) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	startStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	events := m.snapshot.RecentEvents(limit)
	if len(events) == 0 {
		return "  " + dimStyle.Render("No comets yet")
	}

	lines := make([]string, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		line := fmt.Sprintf("%s  %-14s %-8s trail %2d  step %-6v head %.2f",
			e.Timestamp.Format("15:04:05"), e.Type, e.Direction, e.Trail,
			e.StepDelay.Round(time.Millisecond), e.Head)
		if e.Type == state.EventCometStarted {
			lines = append(lines, "  "+startStyle.Render(line))
		} else {
			lines = append(lines, "  "+dimStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	// Animated spinner frames
	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.err != nil:
		status = errorStyle.Render("ERROR: " + m.err.Error())
	case m.paused:
		status = accentStyle.Render("❚❚") + dimStyle.Render(" paused")
	case m.snapshot.HasFrame():
		status = accentStyle.Render(spinner) + dimStyle.Render(" running "+m.snapshot.Uptime.Round(time.Second).String())
	default:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Waiting for first frame...")
	}

	help := dimStyle.Render("p: pause | e: events | q: quit")
	return "  " + status + "  " + dimStyle.Render("|") + "  " + help
}

func animTickCmd() tea.Cmd {
	return tea.Tick(animInterval, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// renderShimmerText sweeps a starlight glint across text, one rune per
// anim tick.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	// the glint enters and leaves a few runes outside the text
	center := m.animTick%(len(runes)+2*shimmerReach) - shimmerReach

	var b strings.Builder
	for i, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(shimmerColor(i - center)))
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

const shimmerReach = 5

var (
	shimmerBase = colorful.Color{R: 80 / 255.0, G: 70 / 255.0, B: 120 / 255.0}
	shimmerPeak = strip.HSV{H: config.StarBaseHue / 360, S: 0.15, V: 0.95}.Color()
)

// shimmerColor is the colour of a rune dist runes away from the glint.
func shimmerColor(dist int) string {
	glow := 1 - math.Abs(float64(dist))/shimmerReach
	if glow <= 0 {
		return shimmerBase.Hex()
	}
	return shimmerBase.BlendLab(shimmerPeak, glow*glow).Clamped().Hex()
}
