package trace

import (
	"context"
	"fmt"
	"time"
)

// Heartbeat emits a liveness event at a fixed interval. Each beat carries
// the number of spans ended since the previous one; beats with ended=0
// mean a long batch is stuck inside a single request.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat starts beating on t. It returns nil when t is disabled or
// interval is not positive; Stop accepts nil.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.run(ctx, t, interval)
	return h
}

func (h *Heartbeat) run(ctx context.Context, t Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := ended.Load()
	for beat := 1; ; beat++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			cur := ended.Load()
			t.Emit(&Event{
				Time:   now,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    goid(),
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d ended=%d", beat, cur-last),
			})
			last = cur
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine. Calling it again is
// a no-op.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
