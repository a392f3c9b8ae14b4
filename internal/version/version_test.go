package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "terrain dev (unknown, built unknown)", String("terrain"))
}
