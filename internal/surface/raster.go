package surface

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"SpotPrice/internal/colormap"
	"SpotPrice/internal/model"
)

const priceScale = 4

// Rasterize draws a frame into a new RGBA image of the given size.
func Rasterize(f model.Frame, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(f.Background), image.Point{}, draw.Src)

	drawText(img, f.Title, width/2, 2+13, f.Foreground, alignCenter)

	switch f.Kind {
	case model.FramePrice:
		drawScaledText(img, f.Text, width/2, height/2-5, f.Foreground, priceScale)
		drawText(img, f.Unit, width/2, height/2+40+13, f.Foreground, alignCenter)
	case model.FrameGraph:
		if f.Graph != nil {
			drawGraph(img, f.Graph)
		}
	default:
		drawText(img, f.Text, width/2, height/2+6, f.Foreground, alignCenter)
	}

	if f.Status != "" {
		drawText(img, f.Status, width/2, height-4, f.Foreground, alignCenter)
	}
	if f.Stale {
		fillRect(img, image.Rect(2, 2, 8, 8), colormap.Orange)
	}
	return img
}

func drawGraph(img *image.RGBA, g *model.Graph) {
	bottom := int(math.Round(g.Bottom))

	// area under the curve, one column at a time
	for _, seg := range g.Segments {
		for i := 0; i+1 < len(seg); i++ {
			a, b := seg[i], seg[i+1]
			x1, x2 := int(math.Round(a.X)), int(math.Round(b.X))
			for x := x1; x <= x2; x++ {
				y := lerpY(a, b, float64(x))
				if int(y) < bottom {
					fillRect(img, image.Rect(x, int(y), x+1, bottom), a.Fill)
				}
			}
		}
	}

	// curve on top
	for _, seg := range g.Segments {
		for i := 0; i+1 < len(seg); i++ {
			a, b := seg[i], seg[i+1]
			dx, dy := b.X-a.X, b.Y-a.Y
			steps := int(math.Max(math.Max(math.Abs(dx), math.Abs(dy)), 1))
			for s := 0; s <= steps; s++ {
				t := float64(s) / float64(steps)
				x := int(a.X + t*dx)
				y := int(a.Y + t*dy)
				fillRect(img, image.Rect(x, y-1, x+2, y+1), a.Line)
			}
		}
	}

	// "now" line and marker
	mx := int(math.Round(g.Marker.X))
	for y := int(g.Top); y < bottom; y += 3 {
		fillRect(img, image.Rect(mx, y, mx+1, y+2), colormap.Accent)
	}
	if g.Marker.Present {
		my := int(math.Round(g.Marker.Y))
		fillRect(img, image.Rect(mx-2, my-2, mx+2, my+2), colormap.White)
	}

	if g.MinLabel != "" {
		drawText(img, g.MinLabel, 4, 2+13, colormap.Green, alignLeft)
	}
	if g.MaxLabel != "" {
		drawText(img, g.MaxLabel, g.Width-4, 2+13, colormap.Red, alignRight)
	}
	for _, tk := range g.Ticks {
		x := int(math.Round(tk.X))
		c := colormap.Gray
		if tk.Label == "now" {
			c = colormap.Accent
		} else {
			fillRect(img, image.Rect(x, bottom, x+1, bottom+4), colormap.Gray)
		}
		drawText(img, tk.Label, x, bottom+4+11, c, alignCenter)
	}
}

func lerpY(a, b model.Point, x float64) float64 {
	if b.X == a.X {
		return a.Y
	}
	t := (x - a.X) / (b.X - a.X)
	return a.Y + t*(b.Y-a.Y)
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

// drawText places s with its baseline at y.
func drawText(img draw.Image, s string, x, y int, c color.Color, a align) {
	if s == "" {
		return
	}
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: basicfont.Face7x13}
	w := d.MeasureString(s).Ceil()
	switch a {
	case alignCenter:
		x -= w / 2
	case alignRight:
		x -= w
	}
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

// drawScaledText renders s at scale times the base font, centered on (cx, cy).
func drawScaledText(dst *image.RGBA, s string, cx, cy int, c color.Color, scale int) {
	if s == "" {
		return
	}
	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Ceil()
	h := face.Height
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	drawText(small, s, 0, face.Ascent, c, alignLeft)

	target := image.Rect(cx-w*scale/2, cy-h*scale/2, cx+w*scale/2, cy+h*scale/2)
	xdraw.NearestNeighbor.Scale(dst, target, small, small.Bounds(), xdraw.Over, nil)
}
