package canopy

import "errors"

// Configuration errors, returned by NewScene.
var (
	ErrNilCanvas     = errors.New("canopy: scene requires a canvas")
	ErrNilScheduler  = errors.New("canopy: scene requires a frame scheduler")
	ErrInvalidConfig = errors.New("canopy: invalid config")
)

// Invariant violations, returned at the call site.
var (
	ErrDuplicateID     = errors.New("canopy: duplicate entity id")
	ErrEntityNotFound  = errors.New("canopy: entity not found")
	ErrCycle           = errors.New("canopy: entity would become its own ancestor")
	ErrForeignEntity   = errors.New("canopy: entity belongs to another scene")
	ErrDestroyed       = errors.New("canopy: entity is destroyed")
	ErrDuplicatePlugin = errors.New("canopy: duplicate plugin")
	ErrPluginNotFound  = errors.New("canopy: plugin not found")
	ErrInvalidZoom     = errors.New("canopy: zoom must be positive")
	ErrInvalidState    = errors.New("canopy: invalid pipeline state")
)
