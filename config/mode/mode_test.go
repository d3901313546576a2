package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	defer Set(Dev)

	Set(Prod)
	assert.Equal(t, Prod, Get())

	Set("unknown")
	assert.Equal(t, Dev, Get())
}
