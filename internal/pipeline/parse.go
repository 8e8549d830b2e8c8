package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/axon-cua/agent/internal/action"
)

const (
	tokenGuide   = "GUIDE:"
	tokenNarrate = "NARRATE:"
	tokenDone    = "DONE:"
	tokenClarify = "CLARIFY:"
)

var streamPrefixes = []string{tokenGuide, tokenNarrate, tokenDone, tokenClarify}

// hasStreamPrefix reports whether text already unambiguously starts with
// one of the four routing prefixes the executor watches for as they
// stream in.
func hasStreamPrefix(text string) bool {
	for _, p := range streamPrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// couldStillBePrefix reports whether the text accumulated so far is still
// consistent with becoming one of the routing prefixes, i.e. streaming
// hasn't yet ruled every one of them out. Used to withhold first-sentence
// narration until it's clear the response isn't GUIDE/DONE/CLARIFY (those
// have their own speech paths).
func couldStillBePrefix(text string) bool {
	for _, p := range streamPrefixes {
		n := len(text)
		if n > len(p) {
			n = len(p)
		}
		if strings.EqualFold(text[:n], p[:n]) {
			return true
		}
	}
	return false
}

type responseKind string

const (
	kindPlain    responseKind = ""
	kindDone     responseKind = "done"
	kindClarify  responseKind = "clarify"
	kindGuide    responseKind = "guide"
)

// classifyResponse scans the complete response text for the DONE:/
// CLARIFY:/GUIDE: tokens anywhere in the text (not only at the start),
// checked in that priority order, per spec.md §4.3.1 step 3.
func classifyResponse(text string) (responseKind, string) {
	if idx := strings.Index(text, tokenDone); idx >= 0 {
		return kindDone, strings.TrimSpace(text[idx+len(tokenDone):])
	}
	if idx := strings.Index(text, tokenClarify); idx >= 0 {
		return kindClarify, strings.TrimSpace(text[idx+len(tokenClarify):])
	}
	if idx := strings.Index(text, tokenGuide); idx >= 0 {
		return kindGuide, strings.TrimSpace(text[idx+len(tokenGuide):])
	}
	return kindPlain, text
}

var guidePattern = regexp.MustCompile(`^\(\s*(-?\d+)\s*,\s*(-?\d+)\s*\)\s*(.*)$`)

// parseGuidePayload parses the "(x, y) instruction" trailer of a GUIDE:
// response into a bitmap-space point and the instruction text.
func parseGuidePayload(payload string) (action.Point, string) {
	m := guidePattern.FindStringSubmatch(payload)
	if m == nil {
		return action.Point{}, strings.TrimSpace(payload)
	}
	x, _ := strconv.Atoi(m[1])
	y, _ := strconv.Atoi(m[2])
	return action.Point{X: x, Y: y}, strings.TrimSpace(m[3])
}

// firstSentence returns the leading sentence of text (through the first
// ./!/? and any trailing whitespace), or the whole text if it contains no
// sentence boundary yet.
func firstSentence(text string) string {
	runes := []rune(text)
	for i, r := range runes {
		if r == '.' || r == '!' || r == '?' {
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			return string(runes[:j])
		}
	}
	return text
}

