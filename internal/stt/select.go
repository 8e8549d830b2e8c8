package stt

import "context"

// Logger is the narrow logging capability Select uses to report fallback.
type Logger interface {
	Warn(msg string, args ...interface{})
}

// Select returns onDevice if preferOnDevice is set and its Setup
// succeeds; otherwise it falls back to cloud. Selection happens once at
// startup (spec.md §4.6): on-device setup failure silently degrades to
// the cloud backend rather than failing the session.
func Select(ctx context.Context, preferOnDevice bool, onDevice, cloud Provider, log Logger) (Provider, error) {
	if preferOnDevice && onDevice != nil {
		if err := onDevice.Setup(ctx); err == nil {
			return onDevice, nil
		} else if log != nil {
			log.Warn("on-device STT setup failed, falling back to cloud", "error", err)
		}
	}
	if err := cloud.Setup(ctx); err != nil {
		return nil, err
	}
	return cloud, nil
}
