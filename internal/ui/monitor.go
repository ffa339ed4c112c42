package ui

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/inputkit/internal/events"
)

// EventMsg carries one event from the generic channel into the monitor
type EventMsg struct {
	At    time.Time
	Event events.Event
}

// StreamClosedMsg is sent once the stream feeding the monitor is closed
type StreamClosedMsg struct{}

// Stream buffers events from the generic channel so the hook goroutine never
// waits on the terminal. Events arriving while the buffer is full are dropped.
type Stream struct {
	source *events.Emitter[events.Event]
	sub    events.Subscription
	ch     chan EventMsg

	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewStream subscribes to every event published on source
func NewStream(source *events.Emitter[events.Event], size int) (*Stream, error) {
	if size <= 0 {
		size = 256
	}
	s := &Stream{source: source, ch: make(chan EventMsg, size)}

	sub, err := source.Subscribe(events.AllTag, s.push)
	if err != nil {
		return nil, err
	}
	s.sub = sub
	return s, nil
}

func (s *Stream) push(ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- EventMsg{At: time.Now(), Event: ev}:
	default:
		s.dropped++
	}
}

// Next returns a command that waits for the next event
func (s *Stream) Next() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-s.ch
		if !ok {
			return StreamClosedMsg{}
		}
		return msg
	}
}

// Dropped returns how many events did not fit in the buffer
func (s *Stream) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close unsubscribes and ends the stream
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	return s.source.Unsubscribe(s.sub)
}

// MonitorModel is the full-screen event monitor
type MonitorModel struct {
	title  string
	stream *Stream

	viewport viewport.Model
	spinner  spinner.Model
	ready    bool
	width    int

	paused bool
	ended  bool

	lines    []string
	maxLines int
	counts   map[string]int
	total    int
}

// NewMonitorModel creates a monitor reading from stream. A nil stream gives
// a monitor that only renders what it is sent.
func NewMonitorModel(title string, stream *Stream) *MonitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return &MonitorModel{
		title:    title,
		stream:   stream,
		spinner:  s,
		maxLines: 1000,
		counts:   make(map[string]int),
	}
}

// Init implements tea.Model
func (m *MonitorModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, tea.EnterAltScreen}
	if m.stream != nil {
		cmds = append(cmds, m.stream.Next())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (m *MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		// header and status bar
		height := msg.Height - 4
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.YPosition = 2
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "space", "p":
			m.paused = !m.paused
		case "c":
			m.lines = m.lines[:0]
			m.refresh()
		case "g":
			m.viewport.GotoTop()
		case "G":
			m.viewport.GotoBottom()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case EventMsg:
		m.record(msg)
		if m.stream != nil {
			cmds = append(cmds, m.stream.Next())
		}

	case StreamClosedMsg:
		m.ended = true
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *MonitorModel) record(msg EventMsg) {
	m.total++
	m.counts[msg.Event.Channel()]++
	if m.paused {
		return
	}

	m.lines = append(m.lines, FormatEvent(msg.At, msg.Event))
	if len(m.lines) > m.maxLines {
		m.lines = m.lines[len(m.lines)-m.maxLines:]
	}
	m.refresh()
}

func (m *MonitorModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// View implements tea.Model
func (m *MonitorModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(CreateSeparator(m.width, "─"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m *MonitorModel) renderHeader() string {
	state := m.spinner.View() + " listening"
	switch {
	case m.ended:
		state = WarningStyle.Render(IconWarning + " stream closed")
	case m.paused:
		state = WarningStyle.Render(IconPaused + " paused")
	}
	return TitleStyle.Render(m.title) + " " + state
}

func (m *MonitorModel) renderStatusBar() string {
	channels := make([]string, 0, len(m.counts))
	for ch := range m.counts {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	parts := []string{fmt.Sprintf("%d events", m.total)}
	for _, ch := range channels {
		parts = append(parts, fmt.Sprintf("%s:%d", ch, m.counts[ch]))
	}
	if m.stream != nil {
		if dropped := m.stream.Dropped(); dropped > 0 {
			parts = append(parts, fmt.Sprintf("dropped:%d", dropped))
		}
	}

	controls := FormatControl("space", "pause") + "  " + FormatControl("c", "clear") + "  " + FormatControl("q", "quit")
	return StatusBarStyle.Render(strings.Join(parts, "  ")) + "  " + controls
}
