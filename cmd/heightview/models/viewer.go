package models

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/VoidMesh/heightfield/cmd/heightview/components"
	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/pipeline"
	"github.com/VoidMesh/heightfield/internal/texture"
)

const (
	pollInterval   = 100 * time.Millisecond
	iterationStep  = 10
	panelWidth     = 36
	chromeRows     = 4
	defaultMapCols = 80
	defaultMapRows = 40
)

// Previewer is the part of pipeline.Regenerator the viewer drives.
type Previewer interface {
	Submit(cfg config.GenerationConfig) uint64
	Latest() (pipeline.Outcome, bool)
	Generation() uint64
}

type tickMsg time.Time

// ViewerModel shows the latest preview and resubmits on every config change.
// Keys pressed while a run is in flight supersede it.
type ViewerModel struct {
	preview Previewer
	cfg     config.GenerationConfig

	width  int
	height int

	outcome  pipeline.Outcome
	have     bool
	showHelp bool
}

func NewViewerModel(preview Previewer, cfg config.GenerationConfig) *ViewerModel {
	return &ViewerModel{preview: preview, cfg: cfg}
}

// Config returns the configuration of the most recent submission.
func (m *ViewerModel) Config() config.GenerationConfig { return m.cfg }

func (m *ViewerModel) Init() tea.Cmd {
	m.preview.Submit(m.cfg)
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		}
		m.HandleKey(msg.String())
		return m, nil

	case tickMsg:
		m.poll()
		return m, tick()
	}

	return m, nil
}

// HandleKey applies a key binding and resubmits when the config changed.
func (m *ViewerModel) HandleKey(key string) bool {
	if !applyKey(&m.cfg, key) {
		return false
	}
	m.preview.Submit(m.cfg)
	return true
}

func (m *ViewerModel) poll() {
	if out, ok := m.preview.Latest(); ok {
		m.outcome = out
		m.have = true
	}
}

// Pending reports whether the shown outcome is older than the last submission.
func (m *ViewerModel) Pending() bool {
	return !m.have || m.outcome.Generation != m.preview.Generation()
}

func applyKey(cfg *config.GenerationConfig, key string) bool {
	switch key {
	case "n", "right":
		cfg.Seed++
	case "p", "left":
		cfg.Seed--
	case "e":
		cfg.Erosion.Enabled = !cfg.Erosion.Enabled
	case "+", "=":
		cfg.Erosion.Iterations += iterationStep
	case "-":
		cfg.Erosion.Iterations = max(0, cfg.Erosion.Iterations-iterationStep)
	case "b":
		if cfg.Noise.Basis == config.BasisSimplex {
			cfg.Noise.Basis = config.BasisPerlin
		} else {
			cfg.Noise.Basis = config.BasisSimplex
		}
	case "f":
		cfg.FractalNoise.Enabled = !cfg.FractalNoise.Enabled
	case "d":
		cfg.Displacement.Enabled = !cfg.Displacement.Enabled
	case "v":
		cfg.Voronoi.Enabled = !cfg.Voronoi.Enabled
	case "r":
		cfg.River.Enabled = !cfg.River.Enabled
	case "l":
		cfg.Lake.Enabled = !cfg.Lake.Enabled
	case "t":
		cfg.Trail.Enabled = !cfg.Trail.Enabled
	default:
		return false
	}
	return true
}

// SampleIndices picks at most slots evenly spaced indices from [0, n).
func SampleIndices(n, slots int) []int {
	if n <= 0 || slots <= 0 {
		return nil
	}
	if slots >= n {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, slots)
	for i := range out {
		out[i] = i * n / slots
	}
	return out
}

// RenderMap draws res scaled down to fit cols x rows.
func RenderMap(res *pipeline.Result, cols, rows int) string {
	xs := SampleIndices(res.Width, cols)
	ys := SampleIndices(res.Length, rows)

	var b strings.Builder
	for i, y := range ys {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, x := range xs {
			layer := ""
			if res.Layers != nil {
				layer, _ = res.Layers.LayerAt(x, y)
			}
			b.WriteString(components.Cell(layer, res.Grid.At(x, y)))
		}
	}
	return b.String()
}

func (m *ViewerModel) View() string {
	if m.showHelp {
		return m.renderHelp()
	}

	cols, rows := defaultMapCols, defaultMapRows
	if m.width > panelWidth+4 {
		cols = m.width - panelWidth - 4
	}
	if m.height > chromeRows+2 {
		rows = m.height - chromeRows - 2
	}

	var body string
	switch {
	case !m.have:
		body = components.HelpStyle.Render("Generating...")
	case m.outcome.Err != nil:
		body = components.ErrorStyle.Render("Generation failed: " + m.outcome.Err.Error())
	default:
		body = components.MapStyle.Render(RenderMap(m.outcome.Result, cols, rows))
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, body, components.InfoPanelStyle.Render(m.renderInfo()))
	return lipgloss.JoinVertical(lipgloss.Left,
		components.TitleStyle.Render("Heightfield Preview"),
		content,
		components.StatusBarStyle.Render(m.renderStatus()),
	)
}

func (m *ViewerModel) renderInfo() string {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}

	lines := []string{
		components.SubtitleStyle.Render("Config"),
		fmt.Sprintf("size      %dx%d", m.cfg.Width, m.cfg.Length),
		fmt.Sprintf("seed      %d", m.cfg.Seed),
		fmt.Sprintf("basis     %s", m.cfg.Noise.Basis),
		fmt.Sprintf("fractal   %s", onOff(m.cfg.FractalNoise.Enabled)),
		fmt.Sprintf("displace  %s", onOff(m.cfg.Displacement.Enabled)),
		fmt.Sprintf("voronoi   %s", onOff(m.cfg.Voronoi.Enabled)),
		fmt.Sprintf("erosion   %s (%d)", onOff(m.cfg.Erosion.Enabled), m.cfg.Erosion.Iterations),
		fmt.Sprintf("river     %s", onOff(m.cfg.River.Enabled)),
		fmt.Sprintf("lake      %s", onOff(m.cfg.Lake.Enabled)),
		fmt.Sprintf("trail     %s", onOff(m.cfg.Trail.Enabled)),
	}

	if m.have && m.outcome.Err == nil {
		res := m.outcome.Result
		lines = append(lines, "",
			components.SubtitleStyle.Render("Result"),
			fmt.Sprintf("min       %.3f", res.Stats.Min),
			fmt.Sprintf("max       %.3f", res.Stats.Max),
			fmt.Sprintf("mean      %.3f", res.Stats.Mean),
			fmt.Sprintf("took      %s", res.Duration.Round(time.Millisecond)),
		)
		lines = append(lines, layerLines(res.Layers)...)
	}
	return strings.Join(lines, "\n")
}

func layerLines(layers *texture.LayerMap) []string {
	if layers == nil {
		return nil
	}
	counts := layers.Counts()
	total := float64(layers.Width * layers.Length)
	out := make([]string, 0, len(layers.Layers))
	for _, name := range layers.Layers {
		swatch := lipgloss.NewStyle().Background(components.LayerColor(name)).Render("  ")
		out = append(out, fmt.Sprintf("%s %-8s %5.1f%%", swatch, name, 100*float64(counts[name])/total))
	}
	return out
}

func (m *ViewerModel) renderStatus() string {
	state := "ready"
	if m.Pending() {
		state = "pending"
	}
	return fmt.Sprintf("generation %d %s | ? help | q quit", m.preview.Generation(), state)
}

func (m *ViewerModel) renderHelp() string {
	return components.HelpStyle.Render(strings.Join([]string{
		"Keys:",
		"  n / right   next seed",
		"  p / left    previous seed",
		"  b           toggle perlin / simplex",
		"  f d v       toggle fractal, displacement, voronoi",
		"  e           toggle erosion",
		"  + / -       erosion iterations",
		"  r l t       toggle river, lake, trail",
		"  ?           close help",
		"  q           quit",
	}, "\n"))
}
