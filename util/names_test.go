package util

import (
	"strings"
	"testing"

	"github.com/pion/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoomName(t *testing.T) {
	r := randutil.NewMathRandomGenerator()
	for i := 0; i < 50; i++ {
		name := NewRoomName(r)
		parts := strings.Split(name, "-")
		require.Len(t, parts, 3, name)
		assert.Contains(t, adjectives, parts[0])
		assert.Contains(t, adjectives, parts[1])
		assert.Contains(t, nouns, parts[2])
	}
}
