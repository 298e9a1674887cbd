package canopy

import (
	"errors"
	"reflect"
	"testing"
)

func TestEntityPluginAttachDetach(t *testing.T) {
	s, _, _ := newTestScene(t, 10, 10)
	e := mustEntity(t, s, "e", box(0, 0, 1, 1))
	var log []string

	if err := e.AttachPlugin("glow", stubEntityPlugin{"glow", &log}); err != nil {
		t.Fatal(err)
	}
	if err := e.AttachPlugin("glow", stubEntityPlugin{"glow", &log}); !errors.Is(err, ErrDuplicatePlugin) {
		t.Errorf("duplicate attach err = %v", err)
	}
	if err := e.AttachPlugin("label", stubEntityPlugin{"label", &log}); err != nil {
		t.Fatal(err)
	}
	if got := e.PluginKeys(); !reflect.DeepEqual(got, []string{"glow", "label"}) {
		t.Errorf("keys = %v", got)
	}
	if _, ok := e.Plugin("label"); !ok {
		t.Error("Plugin(label) not found")
	}

	if err := e.DetachPlugin("glow"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(log, []string{"glow.destroy"}) {
		t.Errorf("log = %v", log)
	}
	if err := e.DetachPlugin("glow"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("second detach err = %v", err)
	}
}

func TestEntityPluginAttachAfterDestroy(t *testing.T) {
	s, _, _ := newTestScene(t, 10, 10)
	e := mustEntity(t, s, "e", box(0, 0, 1, 1))
	e.Destroy()
	var log []string
	if err := e.AttachPlugin("x", stubEntityPlugin{"x", &log}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("err = %v, want ErrDestroyed", err)
	}
}

func TestEntityPluginsDestroyedWithEntity(t *testing.T) {
	s, _, _ := newTestScene(t, 10, 10)
	e := mustEntity(t, s, "e", box(0, 0, 1, 1))
	var log []string
	_ = e.AttachPlugin("a", stubEntityPlugin{"a", &log})
	_ = e.AttachPlugin("b", stubEntityPlugin{"b", &log})
	e.Destroy()
	e.Destroy()
	if !reflect.DeepEqual(log, []string{"a.destroy", "b.destroy"}) {
		t.Errorf("log = %v", log)
	}
}

func TestScenePluginLifecycle(t *testing.T) {
	s, _, _ := newTestScene(t, 10, 10)
	p := &stubScenePlugin{}
	if err := s.AddPlugin("stub", p); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPlugin("stub", &stubScenePlugin{}); !errors.Is(err, ErrDuplicatePlugin) {
		t.Errorf("duplicate add err = %v", err)
	}
	if s.PluginRunning("stub") {
		t.Error("plugin running before StartPlugin")
	}

	if err := s.StartPlugin("stub"); err != nil {
		t.Fatal(err)
	}
	_ = s.StartPlugin("stub")
	if err := s.StopPlugin("stub"); err != nil {
		t.Fatal(err)
	}
	_ = s.StopPlugin("stub")
	if err := s.RemovePlugin("stub"); err != nil {
		t.Fatal(err)
	}

	want := []string{"start", "stop", "destroy"}
	if !reflect.DeepEqual(p.calls, want) {
		t.Errorf("calls = %v, want %v", p.calls, want)
	}
	if _, err := s.Plugin("stub"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Plugin after remove err = %v", err)
	}
}

func TestScenePluginStartFailureStaysStopped(t *testing.T) {
	s, _, _ := newTestScene(t, 10, 10)
	boom := errors.New("boom")
	p := &stubScenePlugin{startErr: boom}
	_ = s.AddPlugin("bad", p)

	err := s.StartPlugin("bad")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if s.PluginRunning("bad") {
		t.Error("failed plugin marked running")
	}
	s.RenderFrame()
	if p.renders != 0 {
		t.Errorf("failed plugin rendered %d times", p.renders)
	}
}

func TestRemoveRunningPluginStopsFirst(t *testing.T) {
	s, _, _ := newTestScene(t, 10, 10)
	p := &stubScenePlugin{}
	_ = s.AddPlugin("p", p)
	_ = s.StartPlugin("p")
	_ = s.RemovePlugin("p")
	if !reflect.DeepEqual(p.calls, []string{"start", "stop", "destroy"}) {
		t.Errorf("calls = %v", p.calls)
	}
}

func TestScenePluginNotFound(t *testing.T) {
	s, _, _ := newTestScene(t, 10, 10)
	for name, fn := range map[string]func(string) error{
		"start":  s.StartPlugin,
		"stop":   s.StopPlugin,
		"remove": s.RemovePlugin,
	} {
		if err := fn("missing"); !errors.Is(err, ErrPluginNotFound) {
			t.Errorf("%s err = %v", name, err)
		}
	}
}
