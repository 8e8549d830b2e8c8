package voiceloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSimpleCommandTrueForPlainDirective(t *testing.T) {
	assert.True(t, IsSimpleCommand("open the browser and search for flights"))
}

func TestIsSimpleCommandFalseForContextualMarker(t *testing.T) {
	assert.False(t, IsSimpleCommand("actually, click the other button instead"))
}

func TestIsSimpleCommandFalseForWhyQuestion(t *testing.T) {
	assert.False(t, IsSimpleCommand("why did that fail?"))
}

func TestIsSimpleCommandFalseForMemoryPhrase(t *testing.T) {
	assert.False(t, IsSimpleCommand("remember that I prefer dark mode"))
}

func TestClassifySpecialTokenQuit(t *testing.T) {
	assert.Equal(t, SpecialQuit, ClassifySpecialToken("  Goodbye  "))
	assert.Equal(t, SpecialQuit, ClassifySpecialToken("exit"))
}

func TestClassifySpecialTokenStop(t *testing.T) {
	assert.Equal(t, SpecialStop, ClassifySpecialToken("never mind"))
}

func TestClassifySpecialTokenNoneForEmbeddedWord(t *testing.T) {
	assert.Equal(t, SpecialNone, ClassifySpecialToken("please stop the music"))
}

func TestFillerPhraseWrapsNegativeIndex(t *testing.T) {
	assert.Equal(t, fillerPhrases[len(fillerPhrases)-1], FillerPhrase(-1))
}

func TestStripRoutingPrefixRemovesNarrate(t *testing.T) {
	assert.Equal(t, "opening the browser now", StripRoutingPrefix("NARRATE: opening the browser now"))
}

func TestStripRoutingPrefixRemovesGuideCoordinate(t *testing.T) {
	assert.Equal(t, "click the Settings gear icon", StripRoutingPrefix("GUIDE: (120, 340) click the Settings gear icon"))
}

func TestStripRoutingPrefixLeavesPlainTextAlone(t *testing.T) {
	assert.Equal(t, "just some text", StripRoutingPrefix("just some text"))
}
