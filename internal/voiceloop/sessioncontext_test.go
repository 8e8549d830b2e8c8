package voiceloop

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionContextRetainsInsertionOrder(t *testing.T) {
	sc := NewSessionContext()
	sc.AddUser("open the browser")
	sc.AddAgent("opening the browser now")

	assert.Equal(t, []string{"User: open the browser", "Agent: opening the browser now"}, sc.Lines())
}

func TestSessionContextEvictsOldestBeyondCap(t *testing.T) {
	sc := NewSessionContext()
	for i := 0; i < SessionContextCap+3; i++ {
		sc.AddUser(fmt.Sprintf("line %d", i))
	}

	lines := sc.Lines()
	assert.Len(t, lines, SessionContextCap)
	assert.Equal(t, "User: line 3", lines[0])
	assert.Equal(t, fmt.Sprintf("User: line %d", SessionContextCap+2), lines[len(lines)-1])
}
