package canopy

import "fmt"

// EntityPlugin extends a single entity. Render runs right after the entity's
// own drawable, in the entity's local space; Destroy runs when the plugin is
// detached or the entity is destroyed.
type EntityPlugin interface {
	Render(c Canvas, e *Entity)
	Destroy()
}

// ScenePlugin extends the whole scene. A running plugin renders after every
// frame's entities and static batches.
type ScenePlugin interface {
	Start(s *Scene) error
	Stop()
	Render(c Canvas)
	Destroy()
}

// AttachPlugin attaches p under key. Entity plugins render in attach order.
func (e *Entity) AttachPlugin(key string, p EntityPlugin) error {
	if p == nil {
		panic("canopy: cannot attach nil plugin")
	}
	if e.destroyed {
		return ErrDestroyed
	}
	if _, ok := e.plugins[key]; ok {
		return fmt.Errorf("%w: %q on entity %q", ErrDuplicatePlugin, key, e.id)
	}
	if e.plugins == nil {
		e.plugins = make(map[string]EntityPlugin)
	}
	e.plugins[key] = p
	e.pluginKeys = append(e.pluginKeys, key)
	return nil
}

// DetachPlugin removes the plugin under key and calls its Destroy.
func (e *Entity) DetachPlugin(key string) error {
	p, ok := e.plugins[key]
	if !ok {
		return fmt.Errorf("%w: %q on entity %q", ErrPluginNotFound, key, e.id)
	}
	delete(e.plugins, key)
	for i, k := range e.pluginKeys {
		if k == key {
			e.pluginKeys = append(e.pluginKeys[:i], e.pluginKeys[i+1:]...)
			break
		}
	}
	p.Destroy()
	return nil
}

// Plugin returns the plugin attached under key.
func (e *Entity) Plugin(key string) (EntityPlugin, bool) {
	p, ok := e.plugins[key]
	return p, ok
}

// PluginKeys returns the attached plugin keys in attach order.
func (e *Entity) PluginKeys() []string {
	out := make([]string, len(e.pluginKeys))
	copy(out, e.pluginKeys)
	return out
}

func (e *Entity) renderPlugins(c Canvas) {
	for _, key := range e.pluginKeys {
		e.plugins[key].Render(c, e)
	}
}

// --- Scene plugins ---

type scenePlugin struct {
	key     string
	plugin  ScenePlugin
	running bool
}

func (s *Scene) findPlugin(key string) (int, *scenePlugin) {
	for i, sp := range s.plugins {
		if sp.key == key {
			return i, sp
		}
	}
	return -1, nil
}

// AddPlugin registers p under key. The plugin does not run until
// StartPlugin is called.
func (s *Scene) AddPlugin(key string, p ScenePlugin) error {
	if p == nil {
		panic("canopy: cannot add nil plugin")
	}
	if _, sp := s.findPlugin(key); sp != nil {
		return fmt.Errorf("%w: %q", ErrDuplicatePlugin, key)
	}
	s.plugins = append(s.plugins, &scenePlugin{key: key, plugin: p})
	return nil
}

// Plugin returns the plugin registered under key.
func (s *Scene) Plugin(key string) (ScenePlugin, error) {
	_, sp := s.findPlugin(key)
	if sp == nil {
		return nil, fmt.Errorf("%w: %q", ErrPluginNotFound, key)
	}
	return sp.plugin, nil
}

// PluginRunning reports whether the plugin under key has been started.
func (s *Scene) PluginRunning(key string) bool {
	_, sp := s.findPlugin(key)
	return sp != nil && sp.running
}

// StartPlugin starts the plugin under key. Starting a running plugin is a
// no-op. If the plugin's Start fails it stays stopped.
func (s *Scene) StartPlugin(key string) error {
	_, sp := s.findPlugin(key)
	if sp == nil {
		return fmt.Errorf("%w: %q", ErrPluginNotFound, key)
	}
	if sp.running {
		return nil
	}
	if err := sp.plugin.Start(s); err != nil {
		return fmt.Errorf("start plugin %q: %w", key, err)
	}
	sp.running = true
	Logger().Info("plugin started", "plugin", key)
	return nil
}

// StopPlugin stops the plugin under key. Stopping a stopped plugin is a
// no-op.
func (s *Scene) StopPlugin(key string) error {
	_, sp := s.findPlugin(key)
	if sp == nil {
		return fmt.Errorf("%w: %q", ErrPluginNotFound, key)
	}
	if sp.running {
		sp.running = false
		sp.plugin.Stop()
		Logger().Info("plugin stopped", "plugin", key)
	}
	return nil
}

// RemovePlugin stops the plugin under key if it is running, destroys it and
// unregisters it.
func (s *Scene) RemovePlugin(key string) error {
	i, sp := s.findPlugin(key)
	if sp == nil {
		return fmt.Errorf("%w: %q", ErrPluginNotFound, key)
	}
	s.plugins = append(s.plugins[:i], s.plugins[i+1:]...)
	if sp.running {
		sp.running = false
		sp.plugin.Stop()
	}
	sp.plugin.Destroy()
	return nil
}

// renderPlugins renders the running scene plugins in registration order and
// returns how many rendered.
func (s *Scene) renderPlugins(c Canvas) int {
	n := 0
	for _, sp := range append([]*scenePlugin(nil), s.plugins...) {
		if sp.running {
			sp.plugin.Render(c)
			n++
		}
	}
	return n
}

// releasePlugins stops and destroys every scene plugin.
func (s *Scene) releasePlugins() {
	plugins := s.plugins
	s.plugins = nil
	for _, sp := range plugins {
		if sp.running {
			sp.running = false
			sp.plugin.Stop()
		}
		sp.plugin.Destroy()
	}
}
