package action

// Scaler converts coordinates the model returns in bitmap space into the
// logical screen space the sink expects, per spec.md §4.7. Scale factors are
// computed per-axis since the bitmap is typically capped on width only.
type Scaler struct {
	ScaleX float64
	ScaleY float64
}

// NewScaler derives per-axis scale factors from the logical screen
// dimensions and the bitmap dimensions the model was shown.
func NewScaler(logicalW, logicalH, bitmapW, bitmapH int) Scaler {
	s := Scaler{ScaleX: 1, ScaleY: 1}
	if bitmapW > 0 {
		s.ScaleX = float64(logicalW) / float64(bitmapW)
	}
	if bitmapH > 0 {
		s.ScaleY = float64(logicalH) / float64(bitmapH)
	}
	return s
}

// Scale converts a single bitmap-space point into logical space.
func (s Scaler) Scale(p Point) Point {
	return Point{
		X: int(float64(p.X) * s.ScaleX),
		Y: int(float64(p.Y) * s.ScaleY),
	}
}

// ScaleAction returns a copy of a with its coordinate fields rescaled from
// bitmap space to logical space.
func (s Scaler) ScaleAction(a Action) Action {
	a.Coordinate = s.Scale(a.Coordinate)
	a.StartCoordinate = s.Scale(a.StartCoordinate)
	return a
}

// ScaledSink wraps a Sink, rescaling every action's coordinates before
// dispatch and making MaximizeForegroundWindow idempotent per session (the
// spec's "maximize once" requirement), unless disabled by config.
type ScaledSink struct {
	Sink               Sink
	Scaler             Scaler
	DisableAutoMaximize bool

	maximized bool
}

// Dispatch rescales a's coordinates and forwards it to the wrapped sink.
func (s *ScaledSink) Dispatch(a Action) error {
	return s.Sink.Dispatch(s.Scaler.ScaleAction(a))
}

// MaximizeOnce runs the foreground-window maximize exactly once for the
// lifetime of this ScaledSink, a no-op on later calls (or if disabled).
func (s *ScaledSink) MaximizeOnce() error {
	if s.maximized || s.DisableAutoMaximize {
		return nil
	}
	s.maximized = true
	return s.Sink.MaximizeForegroundWindow()
}
