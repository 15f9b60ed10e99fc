package goConsole

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{gate: make(chan struct{})}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func auditEngine(t *testing.T, be *consoleBackend, sink AuditSink) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Backend.BaseURL = be.baseURL()
	cfg.Audit = AuditConfig{Enabled: true, BufferSize: 32, DropIfFull: false}
	return newTestEngine(t, be, nil, func(b *Builder) { b.WithConfig(cfg).WithAuditSink(sink) })
}

func collect(t *testing.T, sink *ChannelSink, n int) []AuditEvent {
	t.Helper()
	out := make([]AuditEvent, 0, n)
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case ev := <-sink.Events():
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("expected %d audit events, got %d", n, len(out))
		}
	}
	return out
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	sink := &countingSink{}
	engine := newTestEngine(t, newConsoleBackend(t), nil, func(b *Builder) { b.WithAuditSink(sink) })
	mustLogin(t, engine)
	engine.Close()
	if sink.count.Load() != 0 {
		t.Fatalf("audit is off by default, sink saw %d events", sink.count.Load())
	}
}

func TestAuditSessionLifecycle(t *testing.T) {
	be := newConsoleBackend(t)
	sink := NewChannelSink(32)
	engine := auditEngine(t, be, sink)

	ctx := WithRequestID(context.Background(), "req-7")
	if _, err := engine.Login(ctx, Credentials{Username: "alice", Password: "secret"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if nav := engine.Navigate(ctx, "/permission"); nav.Outcome != NavigateForbidden {
		t.Fatalf("expected forbidden, got %s", nav.Outcome)
	}
	if err := engine.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	events := collect(t, sink, 4)
	wantTypes := []string{auditEventLoginSuccess, auditEventUserResolved, auditEventNavigationForbidden, auditEventLogout}
	for i, ev := range events {
		if ev.EventType != wantTypes[i] {
			t.Fatalf("event %d: expected %s, got %s", i, wantTypes[i], ev.EventType)
		}
		if ev.Username != "alice" {
			t.Fatalf("event %d: expected username alice, got %q", i, ev.Username)
		}
		if ev.RequestID != "req-7" {
			t.Fatalf("event %d: expected request id, got %q", i, ev.RequestID)
		}
	}
	if events[2].Route != "/permission" || events[2].Error != string(auditErrForbidden) {
		t.Fatalf("unexpected forbidden event %+v", events[2])
	}
}

func TestAuditLoginFailureCarriesErrorCode(t *testing.T) {
	be := newConsoleBackend(t)
	be.set(func(be *consoleBackend) { be.loginReply = `{"code":200,"data":{}}` })
	sink := NewChannelSink(8)
	engine := auditEngine(t, be, sink)

	_, _ = engine.Login(context.Background(), Credentials{Username: "alice", Password: "hunter2"})
	ev := collect(t, sink, 1)[0]
	if ev.EventType != auditEventLoginFailure || ev.Success || ev.Error != string(auditErrMalformedLogin) {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestAuditNoSecretsInEvents(t *testing.T) {
	be := newConsoleBackend(t)
	var buf syncBuffer
	engine := auditEngine(t, be, NewJSONWriterSink(&buf))

	token := mustLogin(t, engine)
	if _, err := engine.FetchCurrentUser(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	_ = engine.Logout(context.Background())
	engine.Close()

	if !buf.Contains(auditEventLoginSuccess) {
		t.Fatal("expected JSON lines to include the login event")
	}
	for _, needle := range []string{"secret", token} {
		if buf.Contains(needle) {
			t.Fatalf("sensitive value leaked in audit output: %q", needle)
		}
	}
}

func TestAuditBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	start := time.Now()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if dispatcher.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestAuditBufferFullDropIfFullFalseBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: false}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	done := make(chan struct{})
	go func() {
		dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestAuditCoalescesQueuedForbiddenNavigations(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8, DropIfFull: true}, sink)
	defer dispatcher.Close()

	// The first event parks the dispatcher goroutine on the gate.
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	waitForEmpty(t, dispatcher)

	denied := func(user, route string) AuditEvent {
		return AuditEvent{EventType: auditEventNavigationForbidden, Username: user, Route: route}
	}
	dispatcher.Emit(context.Background(), denied("alice", "/users"))
	dispatcher.Emit(context.Background(), denied("alice", "/users"))
	dispatcher.Emit(context.Background(), denied("alice", "/users"))
	dispatcher.Emit(context.Background(), denied("alice", "/roles"))
	dispatcher.Emit(context.Background(), denied("bob", "/users"))

	if got := dispatcher.Coalesced(); got != 2 {
		t.Fatalf("expected 2 coalesced events, got %d", got)
	}
	if got := len(dispatcher.ch); got != 3 {
		t.Fatalf("expected 3 queued events, got %d", got)
	}

	// Once the queued event for a route is delivered, the next denial queues again.
	for i := 0; i < 4; i++ {
		sink.gate <- struct{}{}
	}
	waitForEmpty(t, dispatcher)
	dispatcher.Emit(context.Background(), denied("alice", "/users"))
	if got := dispatcher.Coalesced(); got != 2 {
		t.Fatalf("expected a delivered route to queue again, coalesced=%d", got)
	}
	close(sink.gate)
}

func TestAuditCountsDropsPerEventType(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	waitForEmpty(t, dispatcher)
	dispatcher.Emit(context.Background(), AuditEvent{EventType: auditEventLoginSuccess})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: auditEventLogout})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: auditEventLogout})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: auditEventNavigationForbidden, Route: "/users"})

	got := dispatcher.DroppedByEvent()
	want := map[string]uint64{auditEventLogout: 2, auditEventNavigationForbidden: 1}
	if len(got) != len(want) || got[auditEventLogout] != 2 || got[auditEventNavigationForbidden] != 1 {
		t.Fatalf("unexpected per-event drops: got %v want %v", got, want)
	}
	if dispatcher.Dropped() != 3 {
		t.Fatalf("expected 3 drops, got %d", dispatcher.Dropped())
	}
	// A dropped denial does not stay reserved.
	dispatcher.mu.Lock()
	n := len(dispatcher.queued)
	dispatcher.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected no reserved denials after a drop, got %d", n)
	}
}

func waitForEmpty(t *testing.T, d *auditDispatcher) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(d.ch) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("audit buffer did not drain")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAuditDispatcherCloseIdempotentAndEmitAfterCloseSafe(t *testing.T) {
	dispatcher := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 4, DropIfFull: true}, &countingSink{})

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Close()
	dispatcher.Close()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})
}

func TestSlogSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSlogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	sink.Emit(context.Background(), AuditEvent{EventType: auditEventLogout, Success: true, Username: "alice"})
	sink.Emit(context.Background(), AuditEvent{EventType: auditEventAuthExpired, Error: string(auditErrAuthExpired)})

	out := buf.String()
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, "username=alice") {
		t.Fatalf("expected info record, got %s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "error=authentication_expired") {
		t.Fatalf("expected warn record for failure, got %s", out)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) Contains(v string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(string(b.buf), v)
}
