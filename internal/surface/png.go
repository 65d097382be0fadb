package surface

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"SpotPrice/internal/model"
	"SpotPrice/internal/render"
)

// PNG writes every frame to an image file, replacing it atomically so a
// viewer never sees a half-written frame.
type PNG struct {
	Path   string
	Width  int
	Height int
}

func NewPNG(path string, width, height int) *PNG {
	return &PNG{Path: path, Width: width, Height: height}
}

func (p *PNG) Capabilities() render.Capabilities {
	return render.Capabilities{Text: true}
}

func (p *PNG) Draw(f model.Frame) error {
	img := Rasterize(f, p.Width, p.Height)

	dir := filepath.Dir(p.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create frame dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".frame-*.png")
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close frame file: %w", err)
	}
	return os.Rename(tmp.Name(), p.Path)
}
