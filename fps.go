package canopy

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// FPSPluginKey is the key Run registers the FPS overlay under.
const FPSPluginKey = "fps"

// FPSOverlay is a scene plugin drawing ebiten's measured FPS and TPS in the
// top-left corner. The text is refreshed every half second. It draws
// nothing on canvases other than ImageCanvas.
type FPSOverlay struct {
	img     *ebiten.Image
	updated time.Time
}

// NewFPSOverlay returns a stopped overlay; register it with AddPlugin.
func NewFPSOverlay() *FPSOverlay {
	return &FPSOverlay{}
}

func (f *FPSOverlay) Start(*Scene) error {
	if f.img == nil {
		// 100x32 fits "FPS: 60.0\nTPS: 60.0".
		f.img = ebiten.NewImage(100, 32)
	}
	f.updated = time.Time{}
	return nil
}

func (f *FPSOverlay) Stop() {}

func (f *FPSOverlay) Render(c Canvas) {
	ic, ok := c.(*ImageCanvas)
	if !ok || f.img == nil {
		return
	}
	if now := time.Now(); now.Sub(f.updated) >= 500*time.Millisecond {
		f.updated = now
		f.img.Clear()
		f.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(f.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	ic.Save()
	ic.cur = Identity()
	ic.DrawImage(f.img, 0, 0)
	ic.Restore()
}

func (f *FPSOverlay) Destroy() {
	if f.img != nil {
		f.img.Deallocate()
		f.img = nil
	}
}
