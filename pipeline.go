package canopy

import "fmt"

// RenderState is the state of a scene's render pipeline.
type RenderState uint8

const (
	StateStopped RenderState = iota
	StateRunning
	StatePaused
)

func (s RenderState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	}
	return "unknown"
}

// FrameScheduler runs a callback on the host's next frame tick. Callbacks
// are always invoked on the host's main loop, never re-entrantly from
// RequestFrame.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// FrameQueue is a FrameScheduler that holds requested callbacks until Flush
// is called. Hosts call Flush once per tick; Run does so from ebiten's Draw.
type FrameQueue struct {
	pending []func()
	running []func()
}

// RequestFrame queues fn for the next Flush.
func (q *FrameQueue) RequestFrame(fn func()) {
	q.pending = append(q.pending, fn)
}

// Flush runs every callback queued before the call and returns how many ran.
// Callbacks queued while flushing wait for the next Flush.
func (q *FrameQueue) Flush() int {
	q.running, q.pending = q.pending, q.running[:0]
	n := len(q.running)
	for i, fn := range q.running {
		q.running[i] = nil
		fn()
	}
	q.running = q.running[:0]
	return n
}

// Pending returns the number of queued callbacks.
func (q *FrameQueue) Pending() int {
	return len(q.pending)
}

// State returns the pipeline state.
func (s *Scene) State() RenderState { return s.state }

// Start begins the frame loop. Only a stopped scene can be started; use
// Resume for a paused one.
func (s *Scene) Start() error {
	if s.state != StateStopped {
		return fmt.Errorf("%w: start while %s", ErrInvalidState, s.state)
	}
	s.state = StateRunning
	Logger().Info("pipeline started", "entities", len(s.entities))
	s.requestFrame()
	return nil
}

// Pause stops scheduling frames without releasing anything.
func (s *Scene) Pause() error {
	if s.state != StateRunning {
		return fmt.Errorf("%w: pause while %s", ErrInvalidState, s.state)
	}
	s.state = StatePaused
	Logger().Info("pipeline paused", "frame", s.frameNo)
	return nil
}

// Resume restarts the frame loop of a paused scene.
func (s *Scene) Resume() error {
	if s.state != StatePaused {
		return fmt.Errorf("%w: resume while %s", ErrInvalidState, s.state)
	}
	s.state = StateRunning
	Logger().Info("pipeline resumed", "frame", s.frameNo)
	s.requestFrame()
	return nil
}

// Stop ends the frame loop and releases the scene: every entity is
// destroyed, static batches are disposed, scene plugins are stopped and
// destroyed, and the canvas is cleared. A frame already in progress
// completes. Stop is idempotent, and a stopped scene may be started again.
func (s *Scene) Stop() {
	wasStopped := s.state == StateStopped
	s.state = StateStopped
	s.destroyAll()
	s.ClearStaticBatches()
	s.releasePlugins()
	s.pointer.reset()
	s.injectQueue = s.injectQueue[:0]
	s.drawOrder = s.drawOrder[:0]
	s.prevOrder = s.prevOrder[:0]
	s.canvas.Clear()
	if !wasStopped {
		Logger().Info("pipeline stopped", "frames", s.frameNo)
	}
}

// requestFrame schedules one frame unless one is already pending.
func (s *Scene) requestFrame() {
	if s.framePending {
		return
	}
	s.framePending = true
	s.scheduler.RequestFrame(s.frame)
}

// frame is the scheduled callback: it renders while running and re-arms
// itself.
func (s *Scene) frame() {
	s.framePending = false
	if s.state != StateRunning {
		return
	}
	s.RenderFrame()
	if s.state == StateRunning {
		s.requestFrame()
	}
}
