package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) { called = true })
	Logf("test message")
	assert.True(t, called, "custom logger was not called")

	called = false
	SetLogger(nil)
	Logf("test message")
	assert.False(t, called, "no-op logger should not reach the previous logger")
}

func TestCappedLog(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	c := NewCappedLog("Sink", 2)
	for i := 0; i < 5; i++ {
		c.Reportf("write %d rejected", i)
	}

	assert.Equal(t, 5, c.Count())
	assert.Equal(t, []string{"write 0 rejected", "write 1 rejected"}, c.Messages())
	assert.Equal(t, []string{
		"[Sink] write 0 rejected",
		"[Sink] write 1 rejected",
		"[Sink] further messages suppressed (cap 2)",
	}, lines)
}

func TestCappedLog_ZeroCap(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	logged := 0
	SetLogger(func(string, ...interface{}) { logged++ })

	var c CappedLog
	c.Reportf("ignored")
	assert.Equal(t, 1, c.Count())
	assert.Zero(t, logged)
}
