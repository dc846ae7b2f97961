// Package tui implements the interactive transcript viewer.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/ccollicutt/wareader/pkg/output"
	"github.com/ccollicutt/wareader/pkg/parser"
)

// LoadFunc produces the transcript to display. progress may be called from
// the loading goroutine with the number of lines read so far.
type LoadFunc func(ctx context.Context, progress func(lines int)) (*parser.Transcript, error)

// Options configures the viewer.
type Options struct {
	// Title is shown in the status line, usually the file name.
	Title string

	// Load produces the transcript.
	Load LoadFunc

	// Self is the initial perspective. Unknown names start with no perspective.
	Self string

	// Colors overrides the participant palette.
	Colors []string
}

type Model struct {
	ctx  context.Context
	opts Options

	viewport viewport.Model
	help     help.Model
	spinner  spinner.Model
	search   textinput.Model
	keys     keyMap

	width  int
	height int

	loading  bool
	progress chan int
	lines    int

	transcript   *parser.Transcript
	report       *output.Report
	perspectives []string // "" followed by the participants
	perspective  int

	searchMode  bool
	searchQuery string
	matchLines  []int
	matchIndex  int

	now    func() time.Time
	status string
	err    error
}

type progressMsg int

type loadedMsg struct {
	transcript *parser.Transcript
	elapsed    time.Duration
	err        error
}

// NewModel creates a viewer that loads its transcript on Init.
func NewModel(ctx context.Context, opts Options) Model {
	vp := viewport.New(80, 20)
	vp.SetContent("Loading transcript...")

	h := help.New()
	h.ShowAll = false

	sp := spinner.New()
	sp.Spinner = spinner.Points

	ti := textinput.New()
	ti.Placeholder = "Search messages..."
	ti.Prompt = "/ "
	ti.CharLimit = 256

	return Model{
		ctx:        ctx,
		opts:       opts,
		viewport:   vp,
		help:       h,
		spinner:    sp,
		search:     ti,
		keys:       defaultKeys(),
		loading:    true,
		progress:   make(chan int, 1),
		matchIndex: -1,
		now:        time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd(), waitForProgress(m.progress))
}

func (m Model) loadCmd() tea.Cmd {
	load := m.opts.Load
	ctx := m.ctx
	progress := m.progress
	return func() tea.Msg {
		defer close(progress)
		if load == nil {
			return loadedMsg{err: fmt.Errorf("no transcript to load")}
		}
		start := time.Now()
		t, err := load(ctx, func(lines int) {
			select {
			case progress <- lines:
			default:
			}
		})
		return loadedMsg{transcript: t, elapsed: time.Since(start), err: err}
	}
}

func waitForProgress(ch <-chan int) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return progressMsg(n)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.refresh(false)

	case progressMsg:
		m.lines = int(msg)
		cmds = append(cmds, waitForProgress(m.progress))

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.status = "Load failed"
			m.viewport.SetContent("Could not load transcript: " + msg.err.Error())
			break
		}
		m.transcript = msg.transcript
		m.perspectives = append([]string{""}, msg.transcript.Participants...)
		m.perspective = 0
		for i, p := range m.perspectives {
			if p != "" && p == m.opts.Self {
				m.perspective = i
			}
		}
		m.rebuild()
		m.status = fmt.Sprintf("Loaded in %s", msg.elapsed.Round(time.Millisecond))

	case tea.KeyMsg:
		if m.searchMode {
			switch msg.String() {
			case "esc":
				m.searchMode = false
				m.searchQuery = ""
				m.search.SetValue("")
				m.search.Blur()
				m.refresh(false)
				return m, nil
			case "enter":
				m.searchMode = false
				m.search.Blur()
				m.searchQuery = strings.TrimSpace(m.search.Value())
				m.refresh(true)
				return m, nil
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		case key.Matches(msg, m.keys.Search):
			m.searchMode = true
			m.search.SetValue(m.searchQuery)
			m.search.CursorEnd()
			m.search.Focus()
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Esc):
			m.searchQuery = ""
			m.refresh(false)
			return m, nil
		case key.Matches(msg, m.keys.NextPerspective):
			m.cyclePerspective(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevPerspective):
			m.cyclePerspective(-1)
			return m, nil
		case key.Matches(msg, m.keys.NextMatch):
			m.jumpToMatch(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevMatch):
			m.jumpToMatch(-1)
			return m, nil
		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}

		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.loading {
		var spin tea.Cmd
		m.spinner, spin = m.spinner.Update(msg)
		cmds = append(cmds, spin)
	}

	return m, tea.Batch(cmds...)
}

// Self returns the current perspective, "" for none.
func (m Model) Self() string {
	if m.perspective < 0 || m.perspective >= len(m.perspectives) {
		return ""
	}
	return m.perspectives[m.perspective]
}

func (m *Model) cyclePerspective(delta int) {
	if len(m.perspectives) == 0 {
		return
	}
	n := len(m.perspectives)
	m.perspective = ((m.perspective+delta)%n + n) % n
	m.rebuild()
	if self := m.Self(); self != "" {
		m.status = "Viewing as " + self
	} else {
		m.status = "No perspective"
	}
}

// rebuild relabels the transcript for the current perspective and redraws.
func (m *Model) rebuild() {
	if m.transcript == nil {
		return
	}
	report, err := output.NewReport(m.ctx, m.transcript, output.ReportOptions{
		Self:   m.Self(),
		Colors: m.opts.Colors,
	})
	if err != nil {
		m.err = err
		return
	}
	m.report = report
	offset := m.viewport.YOffset
	m.refresh(false)
	m.viewport.SetYOffset(m.clampViewportOffset(offset))
}

// refresh re-renders the transcript for the current width and search query.
// With jump set the view moves to the first match.
func (m *Model) refresh(jump bool) {
	if m.report == nil {
		return
	}
	rendered := renderTranscript(m.report, m.viewport.Width, m.searchQuery, m.now())
	m.viewport.SetContent(rendered)

	m.matchLines = matchingLines(rendered, m.searchQuery)
	if len(m.matchLines) == 0 {
		m.matchIndex = -1
		if jump && m.searchQuery != "" {
			m.status = "No matches for " + m.searchQuery
		}
		return
	}
	if jump || m.matchIndex >= len(m.matchLines) {
		m.matchIndex = -1
		m.jumpToMatch(1)
	}
}

func (m *Model) jumpToMatch(delta int) {
	if len(m.matchLines) == 0 {
		m.status = "No search matches in transcript"
		return
	}

	if m.matchIndex < 0 || m.matchIndex >= len(m.matchLines) {
		m.matchIndex = 0
	} else if delta > 0 {
		m.matchIndex = (m.matchIndex + 1) % len(m.matchLines)
	} else if delta < 0 {
		m.matchIndex = (m.matchIndex - 1 + len(m.matchLines)) % len(m.matchLines)
	}

	line := m.matchLines[m.matchIndex]
	m.viewport.SetYOffset(m.clampViewportOffset(line))
	m.status = fmt.Sprintf("Match %d/%d", m.matchIndex+1, len(m.matchLines))
}

func (m *Model) clampViewportOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	maxOffset := m.viewport.TotalLineCount() - m.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	helpHeight := 1
	if m.help.ShowAll {
		helpHeight = len(m.keys.FullHelp()[0])
	}
	m.help.Width = m.width
	m.viewport.Width = m.width
	m.viewport.Height = m.height - 1 - helpHeight
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Starting..."
	}

	helpView := m.help.View(m.keys)
	if m.searchMode {
		helpView = m.search.View() + "  " + helpView
	} else if m.searchQuery != "" {
		helpView = "search: " + m.searchQuery + "  " + helpView
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusLine(),
		m.viewport.View(),
		helpView,
	)
}

func (m Model) statusLine() string {
	status := m.opts.Title
	if m.loading {
		status += "  " + m.spinner.View() + " parsing"
		if m.lines > 0 {
			status += " " + humanize.Comma(int64(m.lines)) + " lines"
		}
	}
	if m.report != nil && m.report.Summary != nil {
		status += fmt.Sprintf("  %s messages  %d participants",
			humanize.Comma(int64(m.report.Summary.Totals.UserMessages)),
			len(m.report.Participants))
		if self := m.Self(); self != "" {
			status += "  [as " + self + "]"
		}
	}
	if m.searchQuery != "" {
		status += fmt.Sprintf("  [match %d/%d]", m.matchIndex+1, len(m.matchLines))
	}
	if strings.TrimSpace(m.status) != "" {
		status += "  " + m.status
	}
	if m.err != nil {
		status += "  err=" + m.err.Error()
	}
	return statusStyle.Width(m.width).Render(ansi.Truncate(status, m.width-2, "…"))
}

// Run starts the viewer and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
