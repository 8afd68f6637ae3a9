//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Cancellable repeating task used to poll playback.
//

package spotify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// activePollers counts running poll loops.
var activePollers atomic.Int32

// Poller runs a function on a fixed interval until stopped.
type Poller struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartPoller starts calling fn every interval. When immediate is true fn is
// also called once right away. The context passed to fn is cancelled by Stop.
func StartPoller(interval time.Duration, immediate bool, fn func(ctx context.Context)) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go p.run(ctx, interval, immediate, fn)
	return p
}

func (p *Poller) run(ctx context.Context, interval time.Duration, immediate bool, fn func(ctx context.Context)) {
	activePollers.Add(1)
	defer close(p.done)
	defer activePollers.Add(-1)

	if immediate {
		fn(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// Stop cancels the loop and waits for it to exit. Safe to call more than once.
func (p *Poller) Stop() {
	if p == nil {
		return
	}
	p.once.Do(p.cancel)
	<-p.done
}
