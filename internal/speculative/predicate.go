// Package speculative implements the Speculative Dispatcher (spec.md §4.2):
// a single-slot state machine that may fire one inference call against a
// stable partial transcript, claimed or discarded once the final transcript
// arrives. Tier C/D of the similarity predicate lean on the same
// edit-distance building blocks the pack's phonetic matcher uses
// (github.com/antzucaro/matchr), grounded on
// MrWong99-glyphoxa/internal/transcript/phonetic.
package speculative

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "please": {}, "can": {}, "you": {}, "could": {}, "would": {},
}

var commandVerbs = map[string]struct{}{
	"open": {}, "go": {}, "click": {}, "search": {}, "find": {}, "type": {}, "close": {},
	"switch": {}, "tab": {}, "run": {}, "show": {}, "hide": {}, "scroll": {}, "select": {},
	"copy": {}, "paste": {}, "delete": {}, "send": {}, "reply": {}, "forward": {},
	"navigate": {}, "maximize": {}, "minimize": {},
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize lowercases, splits on non-alphanumerics, and drops stopwords.
func Normalize(text string) []string {
	lower := strings.ToLower(text)
	fields := nonAlphanumeric.Split(lower, -1)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// IsSimpleCommandFn is supplied by the caller (voice loop's is_simple_command,
// §4.5) so gate 1 can check routing agreement without an import cycle
// between speculative and voiceloop.
type IsSimpleCommandFn func(transcript string) bool

// Similar implements the token-based, order-preserving similarity predicate
// of §4.2: any tier passing means the partial and final transcripts are
// considered similar enough to claim the speculative result.
func Similar(partial, final string, isSimple IsSimpleCommandFn) bool {
	pTokens := Normalize(partial)
	fTokens := Normalize(final)

	if len(fTokens) < max(len(pTokens)-1, 2) {
		return false
	}

	// Gate 1: routing agreement.
	if isSimple != nil && isSimple(partial) != isSimple(final) {
		return false
	}

	// Gate 2: verb gate when either side is short.
	if len(pTokens) <= 3 || len(fTokens) <= 3 {
		if !verbGatePasses(pTokens, fTokens) {
			return false
		}
	}

	if tierA(pTokens, fTokens) {
		return true
	}
	if tierB(pTokens, fTokens) {
		return true
	}
	if tierC(pTokens, fTokens) {
		return true
	}
	return tierD(pTokens, fTokens)
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func verbGatePasses(pTokens, fTokens []string) bool {
	if len(pTokens) == 0 || len(fTokens) == 0 {
		return false
	}
	if _, ok := commandVerbs[pTokens[0]]; !ok {
		return false
	}
	return pTokens[0] == fTokens[0]
}

// tierA: exact token-sequence equality.
func tierA(pTokens, fTokens []string) bool {
	return equalSlices(pTokens, fTokens)
}

// tierB: the first N tokens of partial are a prefix of final, N >= 2.
func tierB(pTokens, fTokens []string) bool {
	n := len(pTokens)
	if n < 2 || n > len(fTokens) {
		return false
	}
	for i := 0; i < n; i++ {
		if pTokens[i] != fTokens[i] {
			return false
		}
	}
	return true
}

// tierC: equal counts in {2,3}, first tokens match, edit-distance <= 1 on
// the remaining tokens position-wise.
func tierC(pTokens, fTokens []string) bool {
	n := len(pTokens)
	if n != len(fTokens) || (n != 2 && n != 3) {
		return false
	}
	if pTokens[0] != fTokens[0] {
		return false
	}
	for i := 1; i < n; i++ {
		if editDistance(pTokens[i], fTokens[i]) > 1 {
			return false
		}
	}
	return true
}

// tierD: Levenshtein distance of the whitespace-joined normalized tokens is
// less than 15% of the longer length.
func tierD(pTokens, fTokens []string) bool {
	p := strings.Join(pTokens, " ")
	f := strings.Join(fTokens, " ")
	longer := len(p)
	if len(f) > longer {
		longer = len(f)
	}
	if longer == 0 {
		return true
	}
	dist := editDistance(p, f)
	return float64(dist) < 0.15*float64(longer)
}

func editDistance(a, b string) int {
	return matchr.Levenshtein(a, b)
}
