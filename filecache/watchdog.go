package filecache

import (
	"io"
	"time"

	"github.com/adifgo/adif/errs"
)

var errWouldBlockDeadline = errs.New(errs.WouldBlock, "recv deadline exceeded")

// startLoad issues a pack's load on its own goroutine, honoring the
// "pull-load missing packs" contract without making callers block the
// window mutex for the duration of a slow Medium.ReadAt.
func (c *Cache) startLoad(p *pack) {
	go c.doLoad(p)
}

func (c *Cache) doLoad(p *pack) {
	c.mu.Lock()
	if p.state == PackSucceeded {
		c.mu.Unlock()
		return
	}
	p.state = PackReceiving
	p.loadAttempt++
	idx := p.index
	c.mu.Unlock()

	c.medMu.Lock()
	buf := make([]byte, c.packSize)
	n, err := c.medium.ReadAt(idx*int64(c.packSize), buf)
	c.medMu.Unlock()
	if err == io.EOF {
		err = nil
	}
	if err != nil {
		c.log.Warn().Err(err).Msgf("pack %d load failed", idx)
	}

	c.mu.Lock()
	copy(p.data, buf[:n])
	p.markSucceeded(n, err)
	c.mu.Unlock()
}

// waitReady blocks until p reaches Succeeded, re-invoking p's loader
// (rate-limited by opts.WatchdogReloadRate) every WatchdogInterval it
// remains stuck in Receiving, and returns p.err once ready. waitMs > 0
// bounds the overall wait; waitMs <= 0 waits indefinitely.
func (c *Cache) waitReady(p *pack, waitMs int) error {
	var deadline <-chan time.Time
	if waitMs > 0 {
		timer := time.NewTimer(time.Duration(waitMs) * time.Millisecond)
		defer timer.Stop()
		deadline = timer.C
	}

	watchdog := time.NewTimer(c.opts.WatchdogInterval)
	defer watchdog.Stop()

	for {
		select {
		case <-p.ready:
			return p.err
		case <-watchdog.C:
			c.mu.Lock()
			stuck := p.state == PackReceiving
			c.mu.Unlock()
			if stuck && c.watchdogLimiter.Allow() {
				c.log.Debug().Msgf("watchdog re-issuing load for pack %d (attempt %d)", p.index, p.loadAttempt+1)
				c.startLoad(p)
			}
			watchdog.Reset(c.opts.WatchdogInterval)
		case <-deadline:
			return errWouldBlockDeadline
		}
	}
}
