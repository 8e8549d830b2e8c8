package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSink struct {
	dispatched []Action
	maximized  int
}

func (f *fakeSink) Dispatch(a Action) error {
	f.dispatched = append(f.dispatched, a)
	return nil
}

func (f *fakeSink) MaximizeForegroundWindow() error {
	f.maximized++
	return nil
}

func TestParseClick(t *testing.T) {
	a, ok := Parse("left_click", map[string]any{"coordinate": []any{float64(10), float64(20)}})
	assert.True(t, ok)
	assert.Equal(t, KindLeftClick, a.Kind)
	assert.Equal(t, Point{10, 20}, a.Coordinate)
	assert.True(t, a.IsClick())
}

func TestParseKey(t *testing.T) {
	a, ok := Parse("key", map[string]any{"key": "cmd+space"})
	assert.True(t, ok)
	assert.Equal(t, KindKey, a.Kind)
	assert.Equal(t, "cmd+space", a.Key)
}

func TestParseUnknownActionNoOps(t *testing.T) {
	_, ok := Parse("teleport", map[string]any{})
	assert.False(t, ok)
}

func TestParseScrollDefaultAmount(t *testing.T) {
	a, ok := Parse("scroll", map[string]any{"coordinate": []any{float64(1), float64(2)}, "scroll_direction": "down"})
	assert.True(t, ok)
	assert.Equal(t, ScrollDown, a.ScrollDirection)
	assert.Equal(t, DefaultScrollAmount, a.ScrollAmount)
}

func TestScalerScalesPerAxis(t *testing.T) {
	s := NewScaler(1920, 1080, 1024, 576)
	p := s.Scale(Point{X: 512, Y: 288})
	assert.InDelta(t, 960, p.X, 2)
	assert.InDelta(t, 540, p.Y, 2)
}

func TestScaledSinkMaximizesOnce(t *testing.T) {
	f := &fakeSink{}
	s := &ScaledSink{Sink: f, Scaler: NewScaler(100, 100, 100, 100)}
	require := assert.New(t)
	require.NoError(s.MaximizeOnce())
	require.NoError(s.MaximizeOnce())
	require.NoError(s.MaximizeOnce())
	assert.Equal(t, 1, f.maximized)
}

func TestScaledSinkMaximizeDisabled(t *testing.T) {
	f := &fakeSink{}
	s := &ScaledSink{Sink: f, Scaler: NewScaler(100, 100, 100, 100), DisableAutoMaximize: true}
	assert.NoError(t, s.MaximizeOnce())
	assert.Equal(t, 0, f.maximized)
}
