package voiceloop

import (
	"regexp"
	"strings"
)

// complexMarkers is the closed set of contextual phrases that route a
// transcript onto the complex path (spec.md §4.5).
var complexMarkers = []string{
	"actually", "instead", "rather", "hmm",
	"remember that", "always use", "i prefer", "i like to",
	"tell me about", "explain what",
}

var complexQuestionPattern = regexp.MustCompile(
	`\b(what|how|why)\s+(did|was|were|are)\b`,
)

// IsSimpleCommand implements is_simple_command: the transcript is "complex"
// (returns false) iff it contains any of a small closed set of contextual
// markers; everything else is "simple" (returns true) and takes the fast
// path. Also supplied to the speculative dispatcher as gate 1 of the
// similarity predicate.
func IsSimpleCommand(transcript string) bool {
	lower := strings.ToLower(transcript)
	for _, marker := range complexMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return !complexQuestionPattern.MatchString(lower)
}

// SpecialToken classifies the handful of transcripts that route immediately
// without going through either path (spec.md §4.5 step 4).
type SpecialToken int

const (
	SpecialNone SpecialToken = iota
	SpecialQuit
	SpecialStop
)

var quitTokens = []string{"quit", "goodbye", "exit"}
var stopTokens = []string{"stop", "cancel", "never mind"}

// ClassifySpecialToken reports whether transcript is a quit/stop token.
// Matching is whole-transcript (trimmed, case-insensitive) so that e.g.
// "please stop the music" is not mistaken for the cancel command.
func ClassifySpecialToken(transcript string) SpecialToken {
	normalized := strings.ToLower(strings.TrimSpace(transcript))
	for _, tok := range quitTokens {
		if normalized == tok {
			return SpecialQuit
		}
	}
	for _, tok := range stopTokens {
		if normalized == tok {
			return SpecialStop
		}
	}
	return SpecialNone
}

// fillerPhrases are the simple-path acknowledgements enqueued before the
// direct-execution loop actually does anything (spec.md §4.5).
var fillerPhrases = []string{
	"On it.", "Sure.", "Let me do that.", "Got it.", "One moment.",
}

// FillerPhrase returns one of the simple-path acknowledgements, chosen by
// pick (an index into fillerPhrases, typically a caller-supplied random
// source modulo len(fillerPhrases)).
func FillerPhrase(pick int) string {
	n := len(fillerPhrases)
	idx := pick % n
	if idx < 0 {
		idx += n
	}
	return fillerPhrases[idx]
}

var routingPrefixes = []string{"NARRATE:", "GUIDE:", "DONE:", "CLARIFY:"}

// guideCoordPattern strips a leading "(x, y)" coordinate trailer, mirroring
// internal/pipeline's GUIDE payload parsing.
var guideCoordPattern = regexp.MustCompile(`^\(\s*-?\d+\s*,\s*-?\d+\s*\)\s*`)

// StripRoutingPrefix removes a leading NARRATE:/GUIDE:/DONE:/CLARIFY: token
// (and the GUIDE "(x, y)" coordinate, if present) from speculative
// narration text before it is spoken, per spec.md §4.5's "stripped of
// NARRATE:/GUIDE:/DONE:/CLARIFY: prefixes".
func StripRoutingPrefix(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, p := range routingPrefixes {
		if strings.HasPrefix(trimmed, p) {
			rest := strings.TrimSpace(trimmed[len(p):])
			if p == "GUIDE:" {
				rest = guideCoordPattern.ReplaceAllString(rest, "")
			}
			return rest
		}
	}
	return trimmed
}
