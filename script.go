package canopy

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// scriptStep is a single action in an input script.
type scriptStep struct {
	Action string  `yaml:"action"`
	Label  string  `yaml:"label,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	FromX  float64 `yaml:"fromX,omitempty"`
	FromY  float64 `yaml:"fromY,omitempty"`
	ToX    float64 `yaml:"toX,omitempty"`
	ToY    float64 `yaml:"toY,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
}

type script struct {
	Steps []scriptStep `yaml:"steps"`
}

// ScriptRunner sequences injected pointer input and screenshots across
// ticks for automated visual testing. Attach it with Scene.SetScriptRunner.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a YAML (or JSON) input script:
//
//	steps:
//	  - {action: click, x: 100, y: 200}
//	  - {action: drag, fromX: 0, fromY: 0, toX: 50, toY: 50, frames: 10}
//	  - {action: wait, frames: 3}
//	  - {action: screenshot, label: after-drag}
//
// Actions are click, move, drag, wait and screenshot.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var sc script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse input script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse input script: no steps")
	}
	for i, st := range sc.Steps {
		switch st.Action {
		case "click", "move", "drag", "wait", "screenshot":
		default:
			return nil, fmt.Errorf("parse input script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// SetScriptRunner attaches r to the scene. The runner advances once per
// Scene.Update, before input is processed. Pass nil to detach.
func (s *Scene) SetScriptRunner(r *ScriptRunner) {
	s.script = r
}

// Done reports whether every step has run and its input has drained.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one tick.
func (r *ScriptRunner) step(s *Scene) {
	if r.done {
		return
	}
	if len(s.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		if p, err := s.Plugin(ScreenshotPluginKey); err == nil {
			if sp, ok := p.(*ScreenshotPlugin); ok {
				sp.Capture(st.Label)
				break
			}
		}
		Logger().Warn("script screenshot skipped: no screenshot plugin", "label", st.Label)
	case "click":
		s.InjectClick(st.X, st.Y)
	case "move":
		s.InjectHover(st.X, st.Y)
	case "drag":
		frames := max(st.Frames, 2)
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, frames)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this tick counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.injectQueue) == 0 {
		r.done = true
	}
}
