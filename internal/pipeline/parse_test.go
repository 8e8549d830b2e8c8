package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyResponseFindsDoneAnywhere(t *testing.T) {
	kind, payload := classifyResponse("Sure, one moment. DONE: opened the browser")
	assert.Equal(t, kindDone, kind)
	assert.Equal(t, "opened the browser", payload)
}

func TestClassifyResponsePrioritizesDoneOverGuide(t *testing.T) {
	kind, _ := classifyResponse("GUIDE: (10, 20) click here DONE: finished")
	assert.Equal(t, kindDone, kind)
}

func TestClassifyResponsePlainWhenNoToken(t *testing.T) {
	kind, payload := classifyResponse("just some narration text")
	assert.Equal(t, kindPlain, kind)
	assert.Equal(t, "just some narration text", payload)
}

func TestParseGuidePayloadExtractsCoordinateAndInstruction(t *testing.T) {
	p, instruction := parseGuidePayload("(120, 340) click the Settings gear icon")
	assert.Equal(t, 120, p.X)
	assert.Equal(t, 340, p.Y)
	assert.Equal(t, "click the Settings gear icon", instruction)
}

func TestCouldStillBePrefixNarrowsAsTextDiverges(t *testing.T) {
	assert.True(t, couldStillBePrefix("DO"))
	assert.True(t, couldStillBePrefix("GUIDE"))
	assert.False(t, couldStillBePrefix("Sure thing"))
}

func TestHasStreamPrefixRequiresFullToken(t *testing.T) {
	assert.True(t, hasStreamPrefix("DONE: all set"))
	assert.False(t, hasStreamPrefix("DO"))
}

func TestFirstSentenceStopsAtBoundary(t *testing.T) {
	assert.Equal(t, "On it. ", firstSentence("On it. Opening the browser now."))
}

func TestFirstSentenceReturnsWholeTextWithoutBoundary(t *testing.T) {
	assert.Equal(t, "still streaming", firstSentence("still streaming"))
}
