package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"

	"sortline/internal/figure"
)

const (
	defaultTrackColumns = 48
	minTrackColumns     = 16
	// fixed columns used by the counters and claw readout
	reservedColumns = 48
)

// TerminalOptions configures a Terminal renderer.
type TerminalOptions struct {
	// Color is "auto", "always" or "never".
	Color string
	// Width overrides the detected terminal width; zero probes the terminal.
	Width int
	// TrackWidth is the track length in layout units.
	TrackWidth float64
}

// Terminal draws the scene as one status line. On a TTY the line is redrawn
// in place; otherwise a line is printed for every change except motion ticks.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	scene   *Scene
	tty     bool
	color   bool
	columns int
	scale   float64
	dirty   bool
}

// NewTerminal constructs a renderer writing to out.
func NewTerminal(out io.Writer, opts TerminalOptions) *Terminal {
	tty := isTerminal(out)
	color := false
	switch strings.ToLower(opts.Color) {
	case "always":
		color = true
	case "never":
	default:
		color = tty
	}
	width := opts.Width
	if width <= 0 && tty {
		width = terminalWidth(out)
	}
	columns := defaultTrackColumns
	if width > 0 {
		columns = max(width-reservedColumns, minTrackColumns)
	}
	trackWidth := opts.TrackWidth
	if trackWidth <= 0 {
		trackWidth = 800
	}
	return &Terminal{
		out:     out,
		scene:   NewScene(),
		tty:     tty,
		color:   color,
		columns: columns,
		scale:   float64(columns) / trackWidth,
	}
}

// Scene exposes the state the terminal renders.
func (t *Terminal) Scene() *Scene { return t.scene }

// Apply implements Sink.
func (t *Terminal) Apply(e Event) {
	t.scene.Apply(e)
	if !t.tty && e.Type == FigureMoved {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	line := t.render(t.scene.Snapshot())
	if t.tty {
		fmt.Fprintf(t.out, "\r\033[K%s", line)
		t.dirty = true
		return
	}
	fmt.Fprintf(t.out, "%8s  %s\n", e.At.Truncate(1e6), line)
}

// Close terminates an in-place line so later output starts cleanly.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tty && t.dirty {
		_, err := io.WriteString(t.out, "\n")
		t.dirty = false
		return err
	}
	return nil
}

func (t *Terminal) render(snap Snapshot) string {
	cells := make([]string, t.columns)
	for i := range cells {
		cells[i] = "·"
	}
	for _, f := range snap.Figures {
		if f.OnClaw {
			continue
		}
		cells[t.column(f.X)] = f.Handle.Kind.Glyph()
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(strings.Join(cells, ""))
	b.WriteString("] ")
	b.WriteString(t.clawReadout(snap.Claw))
	b.WriteString(" |")
	for _, kind := range figure.Kinds() {
		b.WriteString(" ")
		b.WriteString(t.counterLabel(kind, snap))
	}
	return b.String()
}

func (t *Terminal) column(x float64) int {
	col := int(x * t.scale)
	return min(max(col, 0), t.columns-1)
}

func (t *Terminal) clawReadout(claw ClawState) string {
	if !claw.Visible {
		return "claw -      "
	}
	grip := "open"
	if claw.Gripping {
		grip = "shut"
		if claw.Holding.Valid() {
			grip = claw.Holding.Kind.Glyph() + "   "
		}
	}
	return fmt.Sprintf("claw %4.0f %s", claw.X, grip)
}

func (t *Terminal) counterLabel(kind figure.Kind, snap Snapshot) string {
	label := fmt.Sprintf("%s %s %d", kind.Glyph(), kind.Label(), snap.Counters[kind])
	if !t.color {
		return label
	}
	switch {
	case containsKind(snap.Pulsing, kind):
		return text.Colors{text.Bold, text.FgHiGreen}.Sprint(label)
	case containsKind(snap.Highlighted, kind):
		return text.FgYellow.Sprint(label)
	case containsKind(snap.Grabbing, kind):
		return text.FgCyan.Sprint(label)
	default:
		return label
	}
}

func containsKind(kinds []figure.Kind, kind figure.Kind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return 0
	}
	ws, err := unix.IoctlGetWinsize(int(file.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 0
	}
	return int(ws.Col)
}
