package monitoring

import (
	"fmt"
	"log"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// CappedLog counts every reported event but only logs the first Cap of
// them, then a single suppression notice. The zero value logs nothing.
type CappedLog struct {
	Prefix string
	Cap    int

	count    int
	messages []string
}

// NewCappedLog returns a CappedLog that tags lines with "[prefix]".
func NewCappedLog(prefix string, limit int) *CappedLog {
	return &CappedLog{Prefix: prefix, Cap: limit}
}

// Reportf records one event.
func (c *CappedLog) Reportf(format string, v ...interface{}) {
	c.count++
	if c.count <= c.Cap {
		msg := fmt.Sprintf(format, v...)
		c.messages = append(c.messages, msg)
		Logf("[%s] %s", c.Prefix, msg)
		return
	}
	if c.count == c.Cap+1 && c.Cap > 0 {
		Logf("[%s] further messages suppressed (cap %d)", c.Prefix, c.Cap)
	}
}

// Count is the total number of reported events, logged or not.
func (c *CappedLog) Count() int { return c.count }

// Messages returns the logged messages in order.
func (c *CappedLog) Messages() []string { return c.messages }
