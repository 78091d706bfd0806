package viz

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/spacesim/internal/space"
)

// AU is one astronomical unit in meters.
const AU = 149598e6

const (
	width           = 80
	height          = 24
	statsWidth      = 50
	historyCapacity = 600
	trailCapacity   = 150

	minScaleAU = 0.2
	maxScaleAU = 30
)

// Vesta is the body added with the "a" key.
const (
	vestaMass   = 2.67e20
	vestaRadius = 0.00625
)

type TickMsg time.Time

type Options struct {
	System        string
	TicksPerFrame int
	FPS           int
	ScaleAU       float64
	GIFPath       string
	Theme         string
	Logger        *slog.Logger
}

// Model is the live view. It owns the universe: every tick and every
// registry command runs inside Update.
type Model struct {
	universe      *space.Universe
	opts          Options
	scaleAU       float64
	focus         space.BodyID
	running       bool
	width, height int
	canvas        *Canvas
	trails        map[space.BodyID][]space.Vector2
	energy0       float64
	energyHistory []float64
	status        string
	statusErr     bool
	showHelp      bool
	theme         Theme
	styles        styles
	recording     bool
	frames        []*image.Paletted
	logger        *slog.Logger
}

func NewModel(u *space.Universe, opts Options) Model {
	if opts.TicksPerFrame < 1 {
		opts.TicksPerFrame = 100
	}
	if opts.FPS < 1 {
		opts.FPS = 30
	}
	if opts.ScaleAU <= 0 {
		opts.ScaleAU = 10
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "spacesim.gif"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	theme := GetTheme(opts.Theme)

	m := Model{
		universe:      u,
		opts:          opts,
		scaleAU:       opts.ScaleAU,
		running:       true,
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		trails:        make(map[space.BodyID][]space.Vector2),
		energyHistory: make([]float64, 0, historyCapacity),
		theme:         theme,
		styles:        newStyles(theme),
		logger:        opts.Logger.With("component", "viz"),
	}
	m.focusFirst()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		m.status, m.statusErr = "", false
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.stopRecording()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.zoomIn()
		case "-", "_":
			m.zoomOut()
		case "n":
			m.nextFocus()
		case "backspace", "delete":
			m.removeMostRecent()
		case "a":
			m.addVesta()
		case "[":
			m.scaleStep(0.5)
		case "]":
			m.scaleStep(2)
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
			m.setStatus("theme " + m.theme.Name)
		case "g":
			if m.recording {
				m.stopRecording()
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
				m.setStatus("recording")
			}
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cw := w - statsWidth - 4
	if cw < 20 {
		cw = 20
	}
	ch := h - 2
	if ch < 8 {
		ch = 8
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

// step runs one frame worth of ticks. Tick errors never stop the view; the
// last one is shown in the status line.
func (m *Model) step() {
	var lastErr error
	for i := 0; i < m.opts.TicksPerFrame; i++ {
		if err := m.universe.Tick(); err != nil {
			lastErr = err
		}
	}
	if lastErr != nil {
		m.logger.Debug("Tick error", "operation", "step", "error", lastErr)
		m.setError(lastErr)
	}

	// drift from the first frame, in parts per million
	e := m.universe.TotalEnergy()
	if len(m.energyHistory) == 0 {
		m.energy0 = e
	}
	drift := 0.0
	if m.energy0 != 0 {
		drift = (e - m.energy0) / math.Abs(m.energy0) * 1e6
	}
	m.energyHistory = append(m.energyHistory, drift)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}

	for _, b := range m.universe.Bodies() {
		tr := append(m.trails[b.ID()], b.Position)
		if len(tr) > trailCapacity {
			tr = tr[1:]
		}
		m.trails[b.ID()] = tr
	}
}

// zoomIn and zoomOut move in 0.2 AU steps below 5 AU and 1 AU steps above.
func (m *Model) zoomIn() {
	if m.scaleAU <= minScaleAU {
		return
	}
	if m.scaleAU < 5 {
		m.scaleAU -= 0.2
	} else {
		m.scaleAU--
	}
	m.scaleAU = math.Max(math.Round(m.scaleAU*100)/100, minScaleAU)
}

func (m *Model) zoomOut() {
	if m.scaleAU >= maxScaleAU {
		return
	}
	if m.scaleAU < 5 {
		m.scaleAU += 0.2
	} else {
		m.scaleAU++
	}
	m.scaleAU = math.Min(math.Round(m.scaleAU*100)/100, maxScaleAU)
}

func (m *Model) focusFirst() {
	bodies := m.universe.Bodies()
	if len(bodies) == 0 {
		m.focus = 0
		return
	}
	m.focus = bodies[0].ID()
}

// nextFocus moves focus to the next body in insertion order, wrapping to
// the first.
func (m *Model) nextFocus() {
	bodies := m.universe.Bodies()
	if len(bodies) == 0 {
		m.focus = 0
		return
	}
	for i, b := range bodies {
		if b.ID() == m.focus && i+1 < len(bodies) {
			m.focus = bodies[i+1].ID()
			return
		}
	}
	m.focus = bodies[0].ID()
}

func (m *Model) removeMostRecent() {
	b, err := m.universe.RemoveMostRecent()
	if err != nil {
		m.setError(err)
		return
	}
	delete(m.trails, b.ID())
	m.energyHistory = m.energyHistory[:0]
	if b.ID() == m.focus {
		m.focusFirst()
	}
	m.logger.Info("Body removed", "operation", "remove_most_recent", "body", b.Name)
	m.setStatus("removed " + b.Name)
}

// addVesta adds a small planet one tenth of the view to the right of the
// focus body, on a circular orbit around it.
func (m *Model) addVesta() {
	d := m.scaleAU * AU / 10
	pos := space.Vector2{X: d}
	var vel space.Vector2

	if f, ok := m.universe.Body(m.focus); ok {
		if err := space.ValidateOrbit(f.Mass, d); err != nil {
			m.setError(err)
			return
		}
		pos = f.Position.Add(space.Vector2{X: d})
		vel = f.Velocity.Add(space.Vector2{Y: space.OrbitalSpeed(f.Mass, d)})
	}

	b := space.NewPlanet("Vesta", vestaMass, vestaRadius, pos, vel, space.RGB(1, 0, 0))
	if _, err := m.universe.Add(b); err != nil {
		m.setError(err)
		return
	}
	if m.focus == 0 {
		m.focus = b.ID()
	}
	m.energyHistory = m.energyHistory[:0]
	m.logger.Info("Body added", "operation", "add", "body", b.Name, "distance", d)
	m.setStatus("added Vesta")
}

func (m *Model) scaleStep(f float64) {
	if err := m.universe.SetStepDuration(m.universe.StepDuration() * f); err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("step %gs", m.universe.StepDuration()))
}

func (m *Model) center() space.Vector2 {
	if f, ok := m.universe.Body(m.focus); ok {
		return f.Position
	}
	return space.Vector2{}
}

// projector maps world coordinates to canvas pixels around the focus body.
type projector struct {
	center   space.Vector2
	perMeter float64
	cx, cy   int
	cw, ch   int
	half     float64
}

func (m *Model) projector() projector {
	cw, ch := m.canvas.PixelSize()
	half := float64(min(cw, ch)) / 2
	return projector{
		center:   m.center(),
		perMeter: half / (m.scaleAU * AU),
		cx:       cw / 2,
		cy:       ch / 2,
		cw:       cw,
		ch:       ch,
		half:     half,
	}
}

// project returns false for points outside the canvas.
func (p projector) project(v space.Vector2) (int, int, bool) {
	rel := v.Sub(p.center)
	fx := float64(p.cx) + rel.X*p.perMeter
	fy := float64(p.cy) - rel.Y*p.perMeter
	if fx < 0 || fy < 0 || fx >= float64(p.cw) || fy >= float64(p.ch) || math.IsNaN(fx) || math.IsNaN(fy) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}

func (m *Model) draw() {
	m.canvas.Clear()
	p := m.projector()

	for _, tr := range m.trails {
		for i := 1; i < len(tr); i++ {
			x0, y0, ok0 := p.project(tr[i-1])
			x1, y1, ok1 := p.project(tr[i])
			if ok0 && ok1 {
				m.canvas.DrawLine(x0, y0, x1, y1, m.theme.Trail)
			}
		}
	}

	for _, b := range m.universe.Bodies() {
		x, y, ok := p.project(b.Position)
		if !ok {
			continue
		}
		r := int(b.Radius * p.half)
		if _, lit := b.EmitterSlot(); lit {
			r++
		}
		m.canvas.Disc(x, y, r, BodyColor(b.Color))
	}
}

// View renders the canvas and the stats panel.
func (m Model) View() string {
	m.draw()
	u := m.universe
	st := m.styles

	var s strings.Builder
	title := "SPACESIM"
	if m.opts.System != "" {
		title += " · " + m.opts.System
	}
	s.WriteString(st.header.Render(title) + "\n")

	status := st.running.Render("RUNNING")
	if !m.running {
		status = st.paused.Render("PAUSED")
	}
	if m.recording {
		status += " " + st.errText.Render("● REC")
	}
	s.WriteString(status + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("Energy drift (ppm)"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", formatDuration(u.Elapsed()))
	row("Step", fmt.Sprintf("%gs × %d", u.StepDuration(), m.opts.TicksPerFrame))
	row("Scale", fmt.Sprintf("%.2f AU", m.scaleAU))
	row("Bodies", fmt.Sprintf("%d (%d stars, %d planets, %d moons)",
		u.Len(), len(u.Stars()), len(u.Planets()), len(u.Moons())))

	if f, ok := u.Body(m.focus); ok {
		row("Focus", st.focus.Render(f.Name))
		row("Speed", fmt.Sprintf("%.2f km/s", f.Speed()/1000))
	} else {
		row("Focus", "-")
	}

	if m.status != "" {
		if m.statusErr {
			s.WriteString("\n" + st.errText.Render(truncate(m.status, statsWidth-6)) + "\n")
		} else {
			s.WriteString("\n" + st.value.Render(m.status) + "\n")
		}
	}

	s.WriteString(st.help.Render("SP:Pause N:Focus A:Add DEL:Remove\n+/-:Zoom [/]:Step ?:Help Q:Quit"))

	canvasView := st.canvas.Render(m.canvas.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
	if m.showHelp {
		return st.overlay.Render(helpText) + "\n" + mainView
	}
	return mainView
}

const helpText = `KEYBOARD SHORTCUTS

Space      Pause/Resume simulation
+ / -      Zoom in / out
N          Focus next body
A          Add Vesta orbiting the focus body
Del/Bksp   Remove most recently added body
[ / ]      Halve / double the step duration
T          Cycle themes
G          Toggle GIF recording
?          Toggle this help
Q          Quit`

func formatDuration(seconds float64) string {
	days := seconds / 86400
	if days >= 365.25 {
		return fmt.Sprintf("%.2f y", days/365.25)
	}
	return fmt.Sprintf("%.1f d", days)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (m *Model) stopRecording() {
	if err := m.saveGIF(); err != nil {
		m.setError(err)
	} else {
		m.setStatus("saved " + m.opts.GIFPath)
	}
	m.recording = false
	m.frames = nil
}

// captureFrame rasterizes the canvas, one 8x16 block per character, with
// each cell's color in the palette.
func (m *Model) captureFrame() {
	const charW, charH = 8, 16
	c := m.canvas

	palette := color.Palette{color.Black, color.White}
	index := make(map[lipgloss.Color]uint8)
	for row := range c.Colors {
		for _, col := range c.Colors[row] {
			if col == "" || len(palette) >= 256 {
				continue
			}
			if _, ok := index[col]; ok {
				continue
			}
			cc, err := colorful.Hex(string(col))
			if err != nil {
				continue
			}
			index[col] = uint8(len(palette))
			palette = append(palette, cc)
		}
	}

	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), palette)
	dotW, dotH := charW/2, charH/4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			pattern := int(c.Grid[row][col] - blank)
			if pattern == 0 {
				continue
			}
			ci, ok := index[c.Colors[row][col]]
			if !ok {
				ci = 1
			}
			baseX, baseY := col*charW, row*charH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, ci)
						}
					}
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return errors.New("no frames recorded")
	}
	delay := 100 / m.opts.FPS
	if delay < 2 {
		delay = 2
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}

	f, err := os.Create(m.opts.GIFPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	m.logger.Info("Recording saved", "operation", "save_gif", "path", m.opts.GIFPath, "frames", len(m.frames))
	return f.Close()
}

// Focus returns the focused body's id, or zero.
func (m Model) Focus() space.BodyID { return m.focus }

func (m Model) ScaleAU() float64 { return m.scaleAU }

func (m Model) Running() bool { return m.running }

// Status returns the status line and whether it reports an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }
