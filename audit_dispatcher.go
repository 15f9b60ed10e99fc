package goConsole

import (
	"context"
	"sync"
	"sync/atomic"
)

// forbiddenKey identifies a denied navigation for coalescing.
type forbiddenKey struct {
	username string
	route    string
}

type auditDispatcher struct {
	cfg       AuditConfig
	sink      AuditSink
	ch        chan AuditEvent
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	coalesced atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once

	mu sync.Mutex
	// queued counts navigation_forbidden events waiting in ch per user and route.
	queued map[forbiddenKey]int
	// droppedBy counts dropped events per event type.
	droppedBy map[string]uint64
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		cfg:       cfg,
		sink:      sink,
		ch:        make(chan AuditEvent, cfg.BufferSize),
		done:      make(chan struct{}),
		queued:    make(map[forbiddenKey]int),
		droppedBy: make(map[string]uint64),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *auditDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.deliver(event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (d *auditDispatcher) deliver(event AuditEvent) {
	if d.cfg.DropIfFull && event.EventType == auditEventNavigationForbidden {
		d.release(forbiddenKey{username: event.Username, route: event.Route})
	}
	d.sink.Emit(context.Background(), event)
}

// Emit queues event. With DropIfFull a full buffer drops the event and counts it,
// and a denied navigation already waiting in the buffer for the same user and
// route is folded into the queued one. Without DropIfFull Emit blocks until there
// is room, ctx ends or the dispatcher closes.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		d.emitNoWait(event)
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
	case <-d.done:
	}
}

func (d *auditDispatcher) emitNoWait(event AuditEvent) {
	forbidden := event.EventType == auditEventNavigationForbidden
	key := forbiddenKey{username: event.Username, route: event.Route}
	if forbidden && !d.reserve(key) {
		d.coalesced.Add(1)
		return
	}

	select {
	case d.ch <- event:
		return
	case <-d.done:
	default:
		d.dropped.Add(1)
		d.mu.Lock()
		d.droppedBy[event.EventType]++
		d.mu.Unlock()
	}
	if forbidden {
		d.release(key)
	}
}

// reserve marks key as queued. It reports false when an event for key is
// already waiting.
func (d *auditDispatcher) reserve(key forbiddenKey) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.queued[key] > 0 {
		return false
	}
	d.queued[key]++
	return true
}

func (d *auditDispatcher) release(key forbiddenKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.queued[key] <= 1 {
		delete(d.queued, key)
		return
	}
	d.queued[key]--
}

// Close stops accepting events, flushes the buffer to the sink and waits for the
// dispatcher goroutine.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Coalesced returns how many denied navigations were folded into one already queued.
func (d *auditDispatcher) Coalesced() uint64 {
	if d == nil {
		return 0
	}
	return d.coalesced.Load()
}

// DroppedByEvent returns a copy of the drop counts keyed by event type.
func (d *auditDispatcher) DroppedByEvent() map[string]uint64 {
	out := make(map[string]uint64)
	if d == nil {
		return out
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for eventType, n := range d.droppedBy {
		out[eventType] = n
	}
	return out
}
