package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrdinalsStrictlyIncreasing(t *testing.T) {
	prev := -1
	for _, d := range Defs {
		ord := Ordinal(d.Key)
		assert.Greater(t, ord, prev, "ordinal for %s", d.Key)
		prev = ord
	}
}

func TestOrdinalNonSequentialKeys(t *testing.T) {
	assert.Equal(t, -1, Ordinal(Fallback))
	assert.Equal(t, -1, Ordinal(Error))
	assert.Equal(t, -1, Ordinal(Key("SOME_FUTURE_PHASE")))
}

func TestCompletedIsHighestOrdinal(t *testing.T) {
	assert.Equal(t, len(Defs)-1, Ordinal(Completed))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(Completed))
	assert.True(t, IsTerminal(Error))
	assert.False(t, IsTerminal(GeneratingClips))
	assert.False(t, IsTerminal(Fallback))
}

func TestLabelUnknownPassthrough(t *testing.T) {
	assert.Equal(t, "Generating Clips", Label(GeneratingClips))
	assert.Equal(t, "SOME_FUTURE_PHASE", Label(Key("SOME_FUTURE_PHASE")))
}
