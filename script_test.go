package canopy

import (
	"os"
	"testing"
)

func TestLoadScript(t *testing.T) {
	data := []byte(`{
  "steps": [
    {"action": "screenshot", "label": "initial"},
    {"action": "click", "x": 100, "y": 200},
    {"action": "wait", "frames": 3},
    {"action": "screenshot", "label": "after-click"}
  ]
}`)

	runner, err := LoadScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(runner.steps))
	}
	if runner.steps[0].Action != "screenshot" || runner.steps[0].Label != "initial" {
		t.Error("step 0 mismatch")
	}
	if runner.steps[1].Action != "click" || runner.steps[1].X != 100 || runner.steps[1].Y != 200 {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Action != "wait" || runner.steps[2].Frames != 3 {
		t.Error("step 2 mismatch")
	}
}

func TestLoadScriptYAML(t *testing.T) {
	data := []byte(`
steps:
  - {action: drag, fromX: 1, fromY: 2, toX: 30, toY: 40, frames: 6}
  - {action: move, x: 5, y: 5}
`)
	runner, err := LoadScript(data)
	if err != nil {
		t.Fatal(err)
	}
	if st := runner.steps[0]; st.FromY != 2 || st.ToX != 30 || st.Frames != 6 {
		t.Errorf("drag step = %+v", st)
	}
}

func TestLoadScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid", `steps: [unclosed`},
		{"empty", `{"steps": []}`},
		{"unknown action", `{"steps": [{"action": "teleport"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadScript([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestScriptRunnerClick(t *testing.T) {
	s, _, _ := newTestScene(t, 400, 400)
	e := mustEntity(t, s, "e", box(100, 100, 200, 200))
	s.RenderFrame()

	clicked := false
	e.On(EventClick, func(PointerEvent) { clicked = true })

	runner, err := LoadScript([]byte(`{"steps": [{"action": "click", "x": 50, "y": 50}]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetScriptRunner(runner)

	for i := 0; i < 5 && !runner.Done(); i++ {
		s.Update(1.0 / 60)
	}
	if !clicked {
		t.Error("expected click from script")
	}
	if !runner.Done() {
		t.Error("runner should be done")
	}
}

func TestScriptRunnerWait(t *testing.T) {
	s, _, _ := newTestScene(t, 10, 10)
	runner, err := LoadScript([]byte(`{"steps": [{"action": "wait", "frames": 3}, {"action": "move", "x": 1, "y": 1}]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetScriptRunner(runner)

	s.Update(1.0 / 60) // wait step: counts as the first frame
	s.Update(1.0 / 60)
	s.Update(1.0 / 60)
	if runner.cursor != 1 {
		t.Fatalf("cursor = %d after wait, want 1", runner.cursor)
	}
	s.Update(1.0 / 60) // move queued and consumed in the same tick
	if runner.cursor != 2 || s.PendingInjected() != 0 {
		t.Errorf("cursor = %d pending = %d", runner.cursor, s.PendingInjected())
	}
	s.Update(1.0 / 60)
	if !runner.Done() {
		t.Error("runner should be done")
	}
}

func TestScriptRunnerScreenshot(t *testing.T) {
	s, _, _ := newTestScene(t, 4, 4)
	p := NewScreenshotPlugin(t.TempDir())
	_ = s.AddPlugin(ScreenshotPluginKey, p)
	_ = s.StartPlugin(ScreenshotPluginKey)

	runner, err := LoadScript([]byte(`{"steps": [{"action": "screenshot", "label": "shot"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetScriptRunner(runner)
	s.Update(1.0 / 60)
	s.RenderFrame()

	written := p.Written()
	if len(written) != 1 {
		t.Fatalf("written = %v", written)
	}
	if _, err := os.Stat(written[0]); err != nil {
		t.Error(err)
	}
}
