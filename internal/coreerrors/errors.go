// Package coreerrors defines the typed error kinds the voice loop and
// pipeline use to decide how to recover from a failure, in the style of
// pkg/orchestrator/errors.go: plain sentinels matched with errors.Is,
// wrapped with fmt.Errorf for context.
package coreerrors

import "errors"

var (
	// ErrPermissionDenied covers microphone, speech, screen, or accessibility
	// permission failures. Fatal at startup; fatal to the current utterance
	// mid-session.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNetworkTransient covers HTTP non-200s, connection resets, and
	// stream cuts against the inference backend. The direct-execution loop
	// escalates to the planner on this error.
	ErrNetworkTransient = errors.New("transient network failure")

	// ErrParseError covers malformed JSON from the planner. Treated the same
	// as ErrNetworkTransient by callers, logged with the raw response.
	ErrParseError = errors.New("response parse error")

	// ErrModelRefusesToAct fires when a non-conversational turn produces no
	// tool calls and no recognized prefix.
	ErrModelRefusesToAct = errors.New("model refused to act")

	// ErrScreenCaptureLost means the screen source failed to produce a
	// frame; the utterance is dropped with a single-sentence summary.
	ErrScreenCaptureLost = errors.New("screen capture lost")

	// ErrUserInterrupt marks cooperative cancellation triggered by a new
	// utterance or a "stop" token. Never announced as an error.
	ErrUserInterrupt = errors.New("user interrupt")
)

// Kind classifies an error against the typed kinds above using errors.Is,
// defaulting to ErrNetworkTransient for unrecognized errors so that callers
// always have a recovery path (per spec: "no error crashes the process").
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		ErrPermissionDenied,
		ErrNetworkTransient,
		ErrParseError,
		ErrModelRefusesToAct,
		ErrScreenCaptureLost,
		ErrUserInterrupt,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return ErrNetworkTransient
}
