package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDedupesCaseInsensitively(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.Add("Prefers aisle seats"))
	require.NoError(t, s.Add("prefers aisle seats"))
	require.NoError(t, s.Add("Likes window views"))

	assert.Equal(t, []string{"Prefers aisle seats", "Likes window views"}, s.All())
}

func TestRoundTripPersists(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Add("Remember I like aisle seats"))

	reloaded, err := Open(dir)
	require.NoError(t, err)
	assert.Contains(t, reloaded.All(), "Remember I like aisle seats")
}

func TestAddRejectsBlank(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Add("   "))
	assert.Empty(t, s.All())
}
