package canopy

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ScreenshotPluginKey is the conventional key for a ScreenshotPlugin.
const ScreenshotPluginKey = "screenshot"

// ScreenshotPlugin is a scene plugin that writes the rendered frame to PNG
// files. Capture queues a label; the next rendered frame is written once per
// queued label to Dir with a timestamped file name.
type ScreenshotPlugin struct {
	Dir string

	queue   []string
	written []string
	now     func() time.Time
}

// NewScreenshotPlugin returns a plugin writing into dir.
func NewScreenshotPlugin(dir string) *ScreenshotPlugin {
	return &ScreenshotPlugin{Dir: dir, now: time.Now}
}

// Capture queues a screenshot of the next rendered frame.
func (p *ScreenshotPlugin) Capture(label string) {
	p.queue = append(p.queue, label)
}

// Written returns the paths written so far.
func (p *ScreenshotPlugin) Written() []string {
	out := make([]string, len(p.written))
	copy(out, p.written)
	return out
}

func (p *ScreenshotPlugin) Start(*Scene) error {
	if p.Dir == "" {
		return errors.New("screenshot: no output directory")
	}
	return os.MkdirAll(p.Dir, 0o755)
}

func (p *ScreenshotPlugin) Stop() {}

// Render captures the canvas as it stands after the frame's entities and
// batches have been drawn.
func (p *ScreenshotPlugin) Render(c Canvas) {
	if len(p.queue) == 0 {
		return
	}
	defer func() { p.queue = p.queue[:0] }()

	img, err := canvasPixels(c)
	if err != nil {
		Logger().Warn("screenshot failed", "error", err)
		return
	}
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	stamp := now().Format("20060102_150405")
	for _, label := range p.queue {
		path := filepath.Join(p.Dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			Logger().Warn("screenshot failed", "path", path, "error", err)
			continue
		}
		p.written = append(p.written, path)
	}
}

func (p *ScreenshotPlugin) Destroy() {
	p.queue = nil
}

// canvasPixels reads a bundled canvas back as straight-alpha NRGBA.
func canvasPixels(c Canvas) (*image.NRGBA, error) {
	var pix []byte
	var w, h int
	switch v := c.(type) {
	case *RasterCanvas:
		b := v.img.Bounds()
		w, h = b.Dx(), b.Dy()
		pix = make([]byte, 4*w*h)
		for y := 0; y < h; y++ {
			i := v.img.PixOffset(b.Min.X, b.Min.Y+y)
			copy(pix[4*w*y:4*w*(y+1)], v.img.Pix[i:i+4*w])
		}
	case *ImageCanvas:
		w, h = v.Size()
		pix = make([]byte, 4*w*h)
		v.target.ReadPixels(pix)
	default:
		return nil, fmt.Errorf("screenshot: unsupported canvas %T", c)
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pix); i += 4 {
		r, g, b, a := pix[i], pix[i+1], pix[i+2], pix[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, a
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps [A-Za-z0-9.-] and replaces everything else with '_'.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
