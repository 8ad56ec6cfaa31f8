package sim

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"droneops-telemetry/internal/history"
	"droneops-telemetry/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// Controls is the subset of session controls the dashboard can drive.
type Controls interface {
	Running() bool
	Toggle() bool
	Interval() time.Duration
	StepInterval(delta int) time.Duration
}

// frameMsg carries a tick's frame to the model.
type frameMsg struct{ telemetry.Frame }

// adminMsg reports admin UI status.
type adminMsg struct{ active bool }

type setControlsMsg struct{ c Controls }

type tab int

const (
	tabLive tab = iota
	tabCharts
	tabMap
)

var tabNames = []string{"Live Metrics", "Charts", "Map"}

type keyMap struct {
	Toggle  key.Binding
	Faster  key.Binding
	Slower  key.Binding
	Live    key.Binding
	Charts  key.Binding
	Map     key.Binding
	NextTab key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/stop")),
		Faster:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "shorter interval")),
		Slower:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "longer interval")),
		Live:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "live metrics")),
		Charts:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "charts")),
		Map:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "map")),
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?", "h"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Slower, k.Faster, k.NextTab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Slower, k.Faster},
		{k.Live, k.Charts, k.Map, k.NextTab},
		{k.Help, k.Quit},
	}
}

// TUIWriter renders telemetry using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
// Quitting the TUI interrupts the process so the run command shuts down.
func NewTUIWriter() *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements TelemetryWriter.
func (w *TUIWriter) Write(frame telemetry.Frame) error {
	w.program.Send(frameMsg{frame})
	return nil
}

// SetControls wires the start/stop and interval keys to c.
func (w *TUIWriter) SetControls(c Controls) {
	w.program.Send(setControlsMsg{c: c})
}

// SetAdminStatus updates the admin UI indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type position struct{ lat, lon float64 }

type tuiModel struct {
	keys     keyMap
	help     help.Model
	battery  progress.Model
	controls Controls

	tab      tab
	showHelp bool
	admin    bool
	width    int
	height   int

	frame    telemetry.Frame
	haveData bool
	updated  time.Time
	running  bool
	interval time.Duration
	trail    []position
}

func newTUIModel() tuiModel {
	return tuiModel{
		keys:     newKeyMap(),
		help:     help.New(),
		battery:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(30)),
		width:    80,
		height:   24,
		running:  true,
		interval: 2 * time.Second,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		w := msg.Width - 20
		if w > 50 {
			w = 50
		}
		if w < 10 {
			w = 10
		}
		m.battery.Width = w
	case frameMsg:
		m.frame = msg.Frame
		m.haveData = true
		m.updated = time.Now()
		m.running = msg.Running
		m.interval = msg.Interval
		m.trail = append(m.trail, position{lat: msg.Latest.Latitude, lon: msg.Latest.Longitude})
		if n := m.capacity(); len(m.trail) > n {
			m.trail = m.trail[len(m.trail)-n:]
		}
	case setControlsMsg:
		m.controls = msg.c
		if m.controls != nil {
			m.running = m.controls.Running()
			m.interval = m.controls.Interval()
		}
	case adminMsg:
		m.admin = msg.active
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
			m.showHelp = false
			m.help.ShowAll = false
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.help.ShowAll = true
	case key.Matches(msg, m.keys.Toggle):
		if m.controls != nil {
			m.running = m.controls.Toggle()
		}
	case key.Matches(msg, m.keys.Slower):
		if m.controls != nil {
			m.interval = m.controls.StepInterval(1)
		}
	case key.Matches(msg, m.keys.Faster):
		if m.controls != nil {
			m.interval = m.controls.StepInterval(-1)
		}
	case key.Matches(msg, m.keys.Live):
		m.tab = tabLive
	case key.Matches(msg, m.keys.Charts):
		m.tab = tabCharts
	case key.Matches(msg, m.keys.Map):
		m.tab = tabMap
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % tab(len(tabNames))
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, "Key Bindings:", "", m.help.View(m.keys))
	}
	var body string
	switch {
	case !m.haveData:
		body = "Waiting for telemetry..."
	case m.tab == tabCharts:
		body = m.renderCharts()
	case m.tab == tabMap:
		body = m.renderMap()
	default:
		body = m.renderLive()
	}
	divider := strings.Repeat("─", m.width)
	return strings.Join([]string{m.renderTabs(), divider, body, divider, m.renderBottom()}, "\n")
}

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)
	tileStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1).Width(20)
	tileLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tileValueStyle   = lipgloss.NewStyle().Bold(true)
)

func (m tuiModel) renderTabs() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if tab(i) == m.tab {
			parts[i] = activeTabStyle.Render(label)
		} else {
			parts[i] = inactiveTabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func metricTile(label, value string) string {
	return tileStyle.Render(tileLabelStyle.Render(label) + "\n" + tileValueStyle.Render(value))
}

func (m tuiModel) renderLive() string {
	r := m.frame.Latest
	tiles := lipgloss.JoinHorizontal(lipgloss.Top,
		metricTile("Battery", fmt.Sprintf("%.2f V", r.Battery)),
		metricTile("Temperature", fmt.Sprintf("%.1f °C", r.Temperature)),
		metricTile("Altitude", fmt.Sprintf("%.1f m", r.Altitude)),
	)
	attitude := lipgloss.JoinHorizontal(lipgloss.Top,
		metricTile("Roll", fmt.Sprintf("%.2f°", r.Roll)),
		metricTile("Pitch", fmt.Sprintf("%.2f°", r.Pitch)),
		metricTile("Yaw", fmt.Sprintf("%.2f°", r.Yaw)),
	)
	pct := (r.Battery - telemetry.BatteryRange.Min) / telemetry.BatteryRange.Span()
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	gauge := fmt.Sprintf("Battery %s %3.0f%%", m.battery.ViewAs(pct), pct*100)
	conn := fmt.Sprintf("Connection %s   Position %.6f, %.6f",
		lipgloss.NewStyle().Foreground(connectionStyleColor(r.Connection)).Bold(true).Render(string(r.Connection)),
		r.Latitude, r.Longitude)
	sections := []string{tiles, attitude, gauge, conn}
	if banners := m.renderAlerts(); banners != "" {
		sections = append(sections, banners)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func connectionStyleColor(c telemetry.ConnectionState) lipgloss.Color {
	switch c {
	case telemetry.ConnectionExcellent:
		return lipgloss.Color("10")
	case telemetry.ConnectionPoor:
		return lipgloss.Color("11")
	default:
		return lipgloss.Color("9")
	}
}

func (m tuiModel) renderAlerts() string {
	if len(m.frame.Alerts) == 0 {
		return ""
	}
	width := m.width - 4
	if width < 10 {
		width = 10
	}
	lines := make([]string, 0, len(m.frame.Alerts))
	for _, a := range m.frame.Alerts {
		bg := lipgloss.Color("3")
		if a.Severity == telemetry.SeverityError {
			bg = lipgloss.Color("1")
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(bg).Padding(0, 1)
		lines = append(lines, style.Render(wordwrap.String("⚠ "+a.Message, width)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// capacity is the history window size reported by the latest frame.
func (m tuiModel) capacity() int {
	if m.frame.Capacity > 0 {
		return m.frame.Capacity
	}
	return history.DefaultCapacity
}

func (m tuiModel) renderCharts() string {
	width := m.width - 16
	if width < 10 {
		width = 10
	}
	var batt, alt, temp []float64
	for _, s := range m.frame.History {
		batt = append(batt, s.Battery)
		alt = append(alt, s.Altitude)
		temp = append(temp, s.Temperature)
	}
	row := func(label string, vals []float64, b telemetry.Bounds, unit string) string {
		last := 0.0
		if len(vals) > 0 {
			last = vals[len(vals)-1]
		}
		return fmt.Sprintf("%-12s %s %.1f%s", label, sparkline(vals, b, width), last, unit)
	}
	return strings.Join([]string{
		fmt.Sprintf("History: %d/%d samples", len(m.frame.History), m.capacity()),
		row("Battery", batt, telemetry.BatteryRange, "V"),
		row("Altitude", alt, telemetry.AltitudeRange, "m"),
		row("Temperature", temp, telemetry.TemperatureRange, "°C"),
	}, "\n")
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline scales the last width values into block characters over b.
func sparkline(vals []float64, b telemetry.Bounds, width int) string {
	if len(vals) > width {
		vals = vals[len(vals)-width:]
	}
	var sb strings.Builder
	for _, v := range vals {
		f := (v - b.Min) / b.Span()
		idx := int(f * float64(len(sparkRunes)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkRunes) {
			idx = len(sparkRunes) - 1
		}
		sb.WriteRune(sparkRunes[idx])
	}
	return sb.String()
}

func (m tuiModel) renderMap() string {
	width := m.width
	height := m.height - 6
	if height < 3 {
		height = 3
	}
	if width < 10 {
		width = 10
	}
	grid := make([][]rune, height)
	for i := range grid {
		row := make([]rune, width)
		for j := range row {
			row[j] = '.'
		}
		grid[i] = row
	}
	cell := func(p position) (int, int, bool) {
		if !telemetry.LatitudeRange.Contains(p.lat) || !telemetry.LongitudeRange.Contains(p.lon) {
			return 0, 0, false
		}
		x := int((p.lon - telemetry.LongitudeRange.Min) / telemetry.LongitudeRange.Span() * float64(width-1))
		y := int((telemetry.LatitudeRange.Max - p.lat) / telemetry.LatitudeRange.Span() * float64(height-1))
		return x, y, true
	}
	for i, p := range m.trail {
		x, y, ok := cell(p)
		if !ok {
			continue
		}
		if i == len(m.trail)-1 {
			grid[y][x] = '◆'
		} else {
			grid[y][x] = '·'
		}
	}
	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = string(row)
	}
	header := fmt.Sprintf("lat %.1f-%.1f  lon %.1f-%.1f  trail=%d",
		telemetry.LatitudeRange.Min, telemetry.LatitudeRange.Max,
		telemetry.LongitudeRange.Min, telemetry.LongitudeRange.Max, len(m.trail))
	return header + "\n" + strings.Join(lines, "\n")
}

func (m tuiModel) renderBottom() string {
	runColor := lipgloss.Color("9")
	runLabel := "stopped"
	if m.running {
		runColor = lipgloss.Color("10")
		runLabel = "running"
	}
	adminColor := lipgloss.Color("9")
	if m.admin {
		adminColor = lipgloss.Color("10")
	}
	runIndicator := lipgloss.NewStyle().Foreground(runColor).Render("●")
	adminIndicator := lipgloss.NewStyle().Foreground(adminColor).Render("●")
	updated := "never"
	if !m.updated.IsZero() {
		updated = humanize.Time(m.updated)
	}
	status := fmt.Sprintf("%s %s | every %s | tick %s | updated %s | Admin UI %s",
		runIndicator, runLabel, m.interval, humanize.Comma(int64(m.frame.Seq)), updated, adminIndicator)
	return status + "\n" + m.help.View(m.keys)
}
