package health

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Checker reports whether a component is healthy. A nil error means healthy.
type Checker interface {
	Check() error
}

// HeartbeatChecker is healthy once Beat has been called and for at most timeout after each call.
type HeartbeatChecker struct {
	timeout  time.Duration
	lastBeat time.Time
	now      func() time.Time
	mu       sync.Mutex
}

func NewHeartbeatChecker(timeout time.Duration) *HeartbeatChecker {
	return &HeartbeatChecker{
		timeout: timeout,
		now:     time.Now,
	}
}

// Beat records that the monitored component made progress.
func (c *HeartbeatChecker) Beat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastBeat = c.now()
}

func (c *HeartbeatChecker) Check() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastBeat.IsZero() {
		return errors.New("no heartbeat received yet")
	}
	if elapsed := c.now().Sub(c.lastBeat); elapsed > c.timeout {
		return errors.Errorf("last heartbeat was %s ago, exceeding the timeout of %s", elapsed, c.timeout)
	}
	return nil
}
