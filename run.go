package canopy

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
	// Scene configures the scene Run creates. ClearColor fills the window
	// behind the scene canvas.
	Scene Config
	// Update, if set, runs once per tick after the scene processes input.
	// Returning ebiten.Termination closes the window cleanly.
	Update func(s *Scene) error
}

// Run opens an ebiten window, builds a scene drawing onto an offscreen
// canvas the size of the window, calls build to populate it, starts the
// pipeline and blocks until the window closes. Frames scheduled by the scene
// run from ebiten's Draw; pointer input is polled in ebiten's Update.
func Run(cfg RunConfig, build func(*Scene) error) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, cfg.Width, cfg.Height)
	}
	canvas := NewImageCanvas(ebiten.NewImage(cfg.Width, cfg.Height))
	frames := &FrameQueue{}
	scene, err := NewScene(canvas, frames, cfg.Scene)
	if err != nil {
		return err
	}
	if cfg.ShowFPS {
		if err := scene.AddPlugin(FPSPluginKey, NewFPSOverlay()); err != nil {
			return err
		}
		if err := scene.StartPlugin(FPSPluginKey); err != nil {
			return err
		}
	}
	if build != nil {
		if err := build(scene); err != nil {
			return fmt.Errorf("build scene: %w", err)
		}
	}
	if scene.State() == StateStopped {
		if err := scene.Start(); err != nil {
			return err
		}
	}
	defer scene.Stop()

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	return ebiten.RunGame(&host{scene: scene, canvas: canvas, frames: frames, cfg: cfg})
}

// host adapts a Scene to ebiten.Game.
type host struct {
	scene  *Scene
	canvas *ImageCanvas
	frames *FrameQueue
	cfg    RunConfig
	op     ebiten.DrawImageOptions
}

func (h *host) Update() error {
	h.scene.Update(1 / float64(ebiten.TPS()))
	if h.cfg.Update != nil {
		return h.cfg.Update(h.scene)
	}
	return nil
}

func (h *host) Draw(screen *ebiten.Image) {
	screen.Fill(h.cfg.Scene.ClearColor.toRGBA())
	h.frames.Flush()
	screen.DrawImage(h.canvas.Target(), &h.op)
}

func (h *host) Layout(_, _ int) (int, int) {
	return h.cfg.Width, h.cfg.Height
}
