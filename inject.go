package canopy

// injectedPointer is one queued synthetic pointer sample, in device
// coordinates, fed through the same path as a polled mouse.
type injectedPointer struct {
	screen  Vec2
	pressed bool
	button  MouseButton
}

// InjectPress queues a left-button press at screen (x, y). Queued samples
// are consumed one per Update, ahead of the real mouse.
func (s *Scene) InjectPress(x, y float64) {
	s.inject(Vec2{x, y}, true, MouseButtonLeft)
}

// InjectMove queues a move to (x, y) with the button held.
func (s *Scene) InjectMove(x, y float64) {
	s.inject(Vec2{x, y}, true, MouseButtonLeft)
}

// InjectHover queues a move to (x, y) with no button held.
func (s *Scene) InjectHover(x, y float64) {
	s.inject(Vec2{x, y}, false, MouseButtonLeft)
}

// InjectRelease queues a release at (x, y).
func (s *Scene) InjectRelease(x, y float64) {
	s.inject(Vec2{x, y}, false, MouseButtonLeft)
}

// InjectClick queues a press and a release at (x, y). Consumes two updates.
func (s *Scene) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 evenly spaced held
// moves, and a release at (toX, toY). frames is clamped to at least 2.
func (s *Scene) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	s.InjectRelease(toX, toY)
}

// PendingInjected returns the number of queued synthetic samples.
func (s *Scene) PendingInjected() int {
	return len(s.injectQueue)
}

func (s *Scene) inject(screen Vec2, pressed bool, button MouseButton) {
	s.injectQueue = append(s.injectQueue, injectedPointer{screen: screen, pressed: pressed, button: button})
}

// consumeInjected pops one queued sample and feeds it through pollPointer.
// It reports whether a sample was consumed.
func (s *Scene) consumeInjected(mods KeyModifiers) bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	ev := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]
	s.pollPointer(ev.screen, ev.pressed, ev.button, mods)
	return true
}
