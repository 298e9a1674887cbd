// Package canopy is a retained-mode 2D scene-graph engine for [Ebitengine].
//
// Canopy keeps a tree of rectangular entities, each with its own affine
// transform, and renders it through a cooperative frame loop with viewport
// culling and static batching. Pointer input is hit-tested against rotated
// and scaled rectangles through a uniform spatial grid and dispatched as
// enter, leave, hover, down, up and click events to the topmost entity.
//
// # Quick start
//
// [Run] opens a window, creates a scene and drives it:
//
//	canopy.Run(canopy.RunConfig{Title: "Demo", Width: 640, Height: 480},
//		func(s *canopy.Scene) error {
//			box, err := s.NewEntity("box", canopy.Geometry{
//				Position: canopy.Vec2{X: 320, Y: 240},
//				Size:     canopy.Vec2{X: 80, Y: 40},
//				Drawable: canopy.Fill{Color: canopy.Color{R: 0.3, G: 0.7, B: 1, A: 1}},
//			})
//			if err != nil {
//				return err
//			}
//			box.On(canopy.EventClick, func(canopy.PointerEvent) { box.SetRotation(box.Rotation() + 15) })
//			return nil
//		})
//
// For full control, create a [Canvas] ([ImageCanvas] for ebiten images,
// [RasterCanvas] for plain image.RGBA) and a [FrameScheduler] (a
// [FrameQueue] flushed once per host tick) and call [NewScene] directly.
//
// # Entities
//
// An entity's Position is its centre in parent space and its Rotation is in
// degrees. The size given at creation is the entity's initial size; later
// size changes are applied as a scale of Size/InitialSize, so drawables
// always draw the initial rectangle centred on the origin. World transforms
// compose parent-then-child.
//
// # Rendering
//
// Each frame clears the canvas, draws the non-static tree depth-first with
// roots and siblings ordered by layer, blits one pre-rendered surface per
// static layer ([Scene.BatchStaticObjects]), then renders the running
// [ScenePlugin]s. Every drawn entity gets a render index counted from the
// top (0 is drawn last); pointer dispatch uses it to pick the topmost
// target.
//
// # Animation and scripted input
//
// [TweenGroup] values animate entity geometry with gween easing functions;
// call Update once per tick. [Camera.ZoomTo] and [Camera.PanTo] animate the
// camera and are advanced by [Scene.Update]. [LoadScript] reads a YAML or
// JSON list of click, move, drag, wait and screenshot steps that a
// [ScriptRunner] feeds through the input injection queue.
//
// # Logging
//
// Canopy logs through log/slog. It is silent until [SetLogger] is called.
//
// [Ebitengine]: https://ebitengine.org
package canopy
