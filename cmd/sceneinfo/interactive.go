package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/assimp-go"
	"github.com/wippyai/assimp-go/ffi"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateLoading modelState = iota
	stateBrowse
	stateFilter
)

var tabNames = []string{"Nodes", "Meshes", "Materials", "Animations", "Other"}

type interactiveModel struct {
	lib    ffi.Library
	req    *request
	ctx    context.Context
	cancel context.CancelFunc
	send   func(tea.Msg)

	state   modelState
	err     error
	spinner spinner.Model
	bar     progress.Model
	percent float64
	message string

	sum    summary
	tabs   [][]string
	tab    int
	cursor int
	offset int
	height int
	filter textinput.Model
}

type progressMsg struct {
	percent float64
	message string
}

type loadedMsg struct {
	err error
	sum summary
}

func newInteractiveModel(lib ffi.Library, req *request) *interactiveModel {
	ctx, cancel := context.WithCancel(context.Background())
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter"
	ti.Width = 40

	return &interactiveModel{
		lib:     lib,
		req:     req,
		ctx:     ctx,
		cancel:  cancel,
		send:    func(tea.Msg) {},
		state:   stateLoading,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		height:  20,
		filter:  ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

// load runs the import. Progress reaches the UI through send; quitting
// cancels ctx, which stops the import at its next progress poll.
func (m *interactiveModel) load() tea.Msg {
	onProgress := assimp.ProgressFunc(func(p float32, msg string) bool {
		m.send(progressMsg{percent: float64(p), message: msg})
		return true
	})
	s, err := m.req.read(m.ctx, m.lib, os.Stdin, assimp.WithProgress(onProgress))
	if err != nil {
		return loadedMsg{err: err}
	}
	defer s.Close()
	return loadedMsg{sum: summarize(s)}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 3)
		m.bar.Width = min(max(msg.Width-10, 10), 60)

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancel()
			return m, tea.Quit

		case "up", "k":
			m.move(-1)

		case "down", "j":
			m.move(1)

		case "pgup":
			m.move(-m.height)

		case "pgdown":
			m.move(m.height)

		case "left", "h", "shift+tab":
			m.switchTab(m.tab + len(tabNames) - 1)

		case "right", "l", "tab":
			m.switchTab(m.tab + 1)

		case "/":
			if m.state == stateBrowse {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "esc":
			m.filter.SetValue("")
			m.cursor, m.offset = 0, 0
		}

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		m.percent = msg.percent
		m.message = msg.message

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateBrowse
			return m, nil
		}
		m.sum = msg.sum
		m.tabs = buildTabs(msg.sum)
		m.state = stateBrowse
	}
	return m, nil
}

func (m *interactiveModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "ctrl+c":
		m.filter.Blur()
		m.state = stateBrowse
		if msg.String() == "esc" {
			m.filter.SetValue("")
		}
		m.cursor, m.offset = 0, 0
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.cursor, m.offset = 0, 0
	return m, cmd
}

func (m *interactiveModel) switchTab(i int) {
	if m.state == stateLoading {
		return
	}
	m.tab = i % len(tabNames)
	m.cursor, m.offset = 0, 0
}

func (m *interactiveModel) move(delta int) {
	n := len(m.lines())
	if n == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// lines returns the rows of the current tab that match the filter.
func (m *interactiveModel) lines() []string {
	if m.tab >= len(m.tabs) {
		return nil
	}
	all := m.tabs[m.tab]
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if q == "" {
		return all
	}
	var out []string
	for _, l := range all {
		if strings.Contains(strings.ToLower(l), q) {
			out = append(out, l)
		}
	}
	return out
}

func buildTabs(s summary) [][]string {
	tabs := make([][]string, len(tabNames))
	for _, n := range s.nodes {
		l := strings.Repeat("  ", n.depth) + n.name
		if n.meshes > 0 {
			l += fmt.Sprintf(" [%d meshes]", n.meshes)
		}
		tabs[0] = append(tabs[0], l)
	}
	for i, me := range s.meshes {
		tabs[1] = append(tabs[1], fmt.Sprintf("%3d %s  %d verts  %d faces  %s  %s",
			i, me.name, me.vertices, me.faces, me.prims, me.material))
	}
	tabs[2] = append(tabs[2], s.materials...)
	for _, a := range s.animations {
		tabs[3] = append(tabs[3], fmt.Sprintf("%s  %.2fs  %d channels", a.name, a.seconds, a.channels))
	}
	for _, t := range s.textures {
		tabs[4] = append(tabs[4], "texture "+t)
	}
	for _, c := range s.cameras {
		tabs[4] = append(tabs[4], "camera  "+c)
	}
	for _, l := range s.lights {
		tabs[4] = append(tabs[4], "light   "+l)
	}
	return tabs
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Scene Info"))
	b.WriteString(" ")
	b.WriteString(m.req.path)
	b.WriteString("\n\n")

	if m.state == stateLoading {
		msg := m.message
		if msg == "" {
			msg = "Importing"
		}
		b.WriteString(m.spinner.View() + " " + msg + "\n\n")
		b.WriteString(m.bar.ViewAs(m.percent))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q cancel"))
		return b.String()
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	for i, name := range tabNames {
		label := fmt.Sprintf("%s (%d)", name, len(m.tabs[i]))
		if i == m.tab {
			b.WriteString(activeTabStyle.Render(label))
		} else {
			b.WriteString(tabStyle.Render(label))
		}
	}
	b.WriteString("\n\n")

	lines := m.lines()
	end := min(m.offset+m.height, len(lines))
	for i := m.offset; i < end; i++ {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + lines[i]))
		} else {
			b.WriteString("  " + lines[i])
		}
		b.WriteString("\n")
	}
	if len(lines) == 0 {
		b.WriteString(helpStyle.Render("  (empty)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.state == stateFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("←/→ tab • ↑/↓ move • / filter • esc clear • q quit"))
	return b.String()
}

func runInteractive(lib ffi.Library, req *request) error {
	if req.path == "-" {
		return fmt.Errorf("interactive mode cannot read the scene from stdin")
	}
	m := newInteractiveModel(lib, req)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.send = p.Send
	_, err := p.Run()
	m.cancel()
	return err
}
