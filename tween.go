package canopy

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to four values of an entity together. Values are
// written back through the entity's setters, so the spatial index sees the
// change. Create one with TweenPosition, TweenSize, TweenRotation or
// TweenFill and call Update(dt) each tick. If the entity is destroyed the
// group stops without writing.
//
// There is no global animation manager.
type TweenGroup struct {
	tweens [4]*gween.Tween
	vals   [4]float64
	count  int
	apply  func(v [4]float64)
	target *Entity
	Done   bool
}

func newTweenGroup(e *Entity, from, to []float64, duration float32, fn ease.TweenFunc, apply func([4]float64)) *TweenGroup {
	g := &TweenGroup{count: len(from), target: e, apply: apply}
	for i := range from {
		g.tweens[i] = gween.New(float32(from[i]), float32(to[i]), duration, fn)
		g.vals[i] = from[i]
	}
	return g
}

// Update advances every tween by dt seconds and applies the values.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.destroyed {
		g.Done = true
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.vals[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.apply(g.vals)
}

// TweenPosition animates e's position to `to`.
func TweenPosition(e *Entity, to Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	p := e.Position()
	return newTweenGroup(e, []float64{p.X, p.Y}, []float64{to.X, to.Y}, duration, fn,
		func(v [4]float64) { e.SetPosition(Vec2{v[0], v[1]}) })
}

// TweenSize animates e's size to `to`.
func TweenSize(e *Entity, to Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	s := e.Size()
	return newTweenGroup(e, []float64{s.X, s.Y}, []float64{to.X, to.Y}, duration, fn,
		func(v [4]float64) { e.SetSize(Vec2{v[0], v[1]}) })
}

// TweenRotation animates e's rotation to `to` degrees.
func TweenRotation(e *Entity, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(e, []float64{e.Rotation()}, []float64{to}, duration, fn,
		func(v [4]float64) { e.SetRotation(v[0]) })
}

// TweenFill animates the color of a Fill drawn by e. The fill must be the
// entity's drawable by pointer for the change to show.
func TweenFill(e *Entity, f *Fill, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	c := f.Color
	return newTweenGroup(e,
		[]float64{c.R, c.G, c.B, c.A},
		[]float64{to.R, to.G, to.B, to.A},
		duration, fn,
		func(v [4]float64) { f.Color = Color{v[0], v[1], v[2], v[3]} })
}
