// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"sync"
	"time"
)

// janitor runs a cleanup function periodically until stopped.
type janitor struct {
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

func startJanitor(interval time.Duration, fn func()) *janitor {
	if interval <= 0 {
		return nil
	}
	j := &janitor{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go j.run(fn)
	return j
}

func (j *janitor) run(fn func()) {
	defer close(j.done)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn()
		case <-j.stop:
			return
		}
	}
}

// Stop halts the loop and waits for it to exit. Safe to call more than once and on nil.
func (j *janitor) Stop() {
	if j == nil {
		return
	}
	j.once.Do(func() {
		close(j.stop)
		<-j.done
	})
}
