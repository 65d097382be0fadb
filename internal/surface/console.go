package surface

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"SpotPrice/internal/colormap"
	"SpotPrice/internal/model"
	"SpotPrice/internal/render"
)

const clearScreen = "\x1b[H\x1b[2J"

var blocks = []rune(" ▁▂▃▄▅▆▇█")

// Console prints frames to a terminal. Graphs become a block chart,
// Columns wide and Rows tall.
type Console struct {
	Out     io.Writer
	Columns int
	Rows    int
	Clear   bool
}

func NewConsole(out io.Writer, clear bool) *Console {
	return &Console{Out: out, Columns: 48, Rows: 8, Clear: clear}
}

func (c *Console) Capabilities() render.Capabilities {
	return render.Capabilities{Text: true}
}

func (c *Console) Draw(f model.Frame) error {
	var b strings.Builder
	if c.Clear {
		b.WriteString(clearScreen)
	}

	title := lipgloss.NewStyle().Bold(true)
	if f.Stale {
		title = title.Foreground(lipgloss.Color(hex(colormap.Orange)))
	}
	b.WriteString(title.Render(f.Title))
	if f.Stale {
		b.WriteString(" (stale)")
	}
	b.WriteString("\n")

	switch f.Kind {
	case model.FramePrice:
		box := lipgloss.NewStyle().
			Background(lipgloss.Color(hex(f.Background))).
			Foreground(lipgloss.Color(hex(f.Foreground))).
			Bold(true).
			Padding(1, 4)
		b.WriteString(box.Render(f.Text + " " + f.Unit))
		b.WriteString("\n")
	case model.FrameGraph:
		if f.Graph != nil {
			b.WriteString(c.chart(f.Graph))
		}
	default:
		b.WriteString(f.Text)
		b.WriteString("\n")
	}

	if f.Status != "" {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render(f.Status))
		b.WriteString("\n")
	}

	_, err := io.WriteString(c.Out, b.String())
	return err
}

// chart samples the curve once per column. Each cell is colored with the
// fill color of the slot under it; the "now" column is highlighted.
func (c *Console) chart(g *model.Graph) string {
	cols, rows := c.Columns, c.Rows
	if cols < 1 || rows < 1 {
		return ""
	}
	span := g.Right - g.Left
	plotH := g.Bottom - g.Top

	heights := make([]float64, cols)
	colors := make([]color.RGBA, cols)
	known := make([]bool, cols)
	for i := 0; i < cols; i++ {
		x := g.Left + (float64(i)+0.5)*span/float64(cols)
		p, ok := sample(g.Segments, x)
		if !ok {
			continue
		}
		known[i] = true
		colors[i] = p.Line
		if plotH > 0 {
			heights[i] = (g.Bottom - p.Y) / plotH * float64(rows)
		}
	}

	nowCol := -1
	if span > 0 {
		nowCol = int((g.Marker.X - g.Left) / span * float64(cols))
	}

	var b strings.Builder
	if g.MaxLabel != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex(colormap.Red))).Render("max " + g.MaxLabel))
		b.WriteString("\n")
	}
	for r := rows - 1; r >= 0; r-- {
		for i := 0; i < cols; i++ {
			ch := ' '
			if known[i] {
				level := heights[i] - float64(r)
				switch {
				case level >= 1:
					ch = blocks[len(blocks)-1]
				case level > 0:
					ch = blocks[int(math.Round(level*float64(len(blocks)-1)))]
				}
			}
			st := lipgloss.NewStyle()
			if known[i] {
				st = st.Foreground(lipgloss.Color(hex(colors[i])))
			}
			if i == nowCol {
				st = st.Background(lipgloss.Color(hex(colormap.Gray)))
			}
			b.WriteString(st.Render(string(ch)))
		}
		b.WriteString("\n")
	}
	if g.MinLabel != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex(colormap.Green))).Render("min " + g.MinLabel))
		b.WriteString("\n")
	}
	if len(g.Ticks) > 0 {
		b.WriteString(tickLine(g, cols))
		b.WriteString("\n")
	}
	return b.String()
}

func tickLine(g *model.Graph, cols int) string {
	line := []rune(strings.Repeat(" ", cols))
	span := g.Right - g.Left
	for _, tk := range g.Ticks {
		if span <= 0 {
			break
		}
		col := int((tk.X - g.Left) / span * float64(cols))
		for j, r := range tk.Label {
			if col+j >= 0 && col+j < cols && line[col+j] == ' ' {
				line[col+j] = r
			}
		}
	}
	return strings.TrimRight(string(line), " ")
}

// sample returns the curve point at x, interpolated between the
// neighbouring vertices of whichever segment covers it.
func sample(segments [][]model.Point, x float64) (model.Point, bool) {
	for _, seg := range segments {
		for i := 0; i+1 < len(seg); i++ {
			a, b := seg[i], seg[i+1]
			if x >= a.X && x <= b.X {
				p := a
				p.Y = lerpY(a, b, x)
				return p, true
			}
		}
	}
	return model.Point{}, false
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
