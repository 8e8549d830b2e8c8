package voiceloop

import (
	"regexp"
	"strings"
)

var (
	emailAtSpacing  = regexp.MustCompile(`\s*@\s*`)
	emailLocalGlue  = regexp.MustCompile(`([A-Za-z]+)\s+([0-9]+)@`)
	emailDotSpacing = regexp.MustCompile(`\s*\.\s*`)
)

// FixEmailWhitespace collapses stray spaces around every "@" and between
// letters and the digits preceding "@", per spec.md §4.5 step 2, and
// collapses spaces around every "." in the text after the first "@" (a
// sentence break following the address included). Text without an "@" is
// returned unchanged. Run once on the final transcript before it's
// dispatched anywhere else.
func FixEmailWhitespace(text string) string {
	if !strings.Contains(text, "@") {
		return text
	}

	text = emailAtSpacing.ReplaceAllString(text, "@")
	text = emailLocalGlue.ReplaceAllString(text, "$1$2@")

	atIdx := strings.Index(text, "@")
	head, tail := text[:atIdx+1], text[atIdx+1:]
	tail = emailDotSpacing.ReplaceAllString(tail, ".")
	return head + tail
}
