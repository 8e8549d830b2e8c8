package voiceloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixEmailWhitespaceCollapsesStrayGaps(t *testing.T) {
	got := FixEmailWhitespace("send it to john 123 @ example . com please")
	assert.Contains(t, got, "john123@example.com")
	assert.Contains(t, got, "please")
}

func TestFixEmailWhitespaceLeavesPlainTextAlone(t *testing.T) {
	got := FixEmailWhitespace("open the settings menu")
	assert.Equal(t, "open the settings menu", got)
}
