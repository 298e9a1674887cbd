package canopy

// debugLog logs the frame's stats at debug level.
func (s *Scene) debugLog(stats FrameStats) {
	Logger().Debug("frame",
		"frame", stats.Frame,
		"drawn", stats.Drawn,
		"culled", stats.Culled,
		"batches", stats.Batches,
		"plugins", stats.Plugins,
		"duration", stats.Duration)
}

// debugMaxTreeDepth is the depth above which debug mode warns.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(e *Entity) {
	depth := 0
	for p := e; p != nil; p = p.Parent() {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("tree depth exceeds threshold",
			"entity", e.id, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugMaxChildCount is the child count above which debug mode warns.
const debugMaxChildCount = 1000

func debugCheckChildCount(e *Entity) {
	if n := len(e.children); n > debugMaxChildCount {
		Logger().Warn("child count exceeds threshold",
			"entity", e.id, "children", n, "threshold", debugMaxChildCount)
	}
}
