package remote

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// DefaultConnectTimeout bounds handle construction
const DefaultConnectTimeout = 10 * time.Second

// BindingState is the lifecycle of a handle
type BindingState int

const (
	BindingIdle BindingState = iota
	BindingConnecting
	BindingReady
	BindingFailed
)

func (s BindingState) String() string {
	switch s {
	case BindingIdle:
		return "idle"
	case BindingConnecting:
		return "connecting"
	case BindingReady:
		return "ready"
	case BindingFailed:
		return "failed"
	}
	return "unknown"
}

// BindingStatus is a snapshot of the handle's readiness
type BindingStatus struct {
	State BindingState
	Err   error
}

// Ready reports whether the handle can serve calls
func (s BindingStatus) Ready() bool { return s.State == BindingReady }

// Loading reports whether the handle is still being constructed
func (s BindingStatus) Loading() bool {
	return s.State == BindingIdle || s.State == BindingConnecting
}

// Failed reports whether construction errored or timed out
func (s BindingStatus) Failed() bool { return s.State == BindingFailed }

// Binding lazily constructs a Service for one principal. Construction runs in
// the background, is bounded by a timeout, and can be retried after failure.
type Binding struct {
	dial      Dialer
	principal string
	timeout   time.Duration

	mu        sync.Mutex
	state     BindingState
	svc       Service
	err       error
	gen       uint64
	cancel    context.CancelFunc
	listeners map[int]func()
	nextID    int
}

// NewBinding creates an idle binding; nothing is dialed until Connect
func NewBinding(dial Dialer, principal string, timeout time.Duration) *Binding {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	return &Binding{
		dial:      dial,
		principal: principal,
		timeout:   timeout,
		listeners: make(map[int]func()),
	}
}

// Principal returns the caller identity this binding acts as
func (b *Binding) Principal() string {
	return b.principal
}

// Connect starts construction if the binding is idle. It never blocks.
func (b *Binding) Connect() {
	b.mu.Lock()
	if b.state != BindingIdle {
		b.mu.Unlock()
		return
	}
	b.state = BindingConnecting
	b.gen++
	gen := b.gen
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.mu.Unlock()

	b.notify()
	go b.construct(ctx, gen)
}

func (b *Binding) construct(ctx context.Context, gen uint64) {
	type result struct {
		svc Service
		err error
	}
	done := make(chan result, 1)

	dialCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	go func() {
		svc, err := b.dial(dialCtx, b.principal)
		done <- result{svc: svc, err: err}
	}()

	var res result
	select {
	case res = <-done:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) {
			res.err = ErrConnectTimeout
		}
	case <-dialCtx.Done():
		if errors.Is(dialCtx.Err(), context.DeadlineExceeded) {
			res.err = ErrConnectTimeout
		} else {
			res.err = dialCtx.Err()
		}
	}

	b.mu.Lock()
	if gen != b.gen {
		// Superseded by Retry or Close
		b.mu.Unlock()
		return
	}
	if res.err != nil {
		b.state = BindingFailed
		b.err = res.err
		b.svc = nil
		log.Printf("Backend handle for %q failed: %v", ShortPrincipal(b.principal), res.err)
	} else {
		b.state = BindingReady
		b.svc = res.svc
		b.err = nil
	}
	b.mu.Unlock()

	b.notify()
}

// Status returns the current readiness snapshot
func (b *Binding) Status() BindingStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BindingStatus{State: b.state, Err: b.err}
}

// Service returns the handle if ready
func (b *Binding) Service() (Service, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case BindingReady:
		return b.svc, nil
	case BindingFailed:
		return nil, b.err
	}
	return nil, ErrNotReady
}

// Wait connects if needed and blocks until the handle is ready, has failed,
// or ctx is done
func (b *Binding) Wait(ctx context.Context) (Service, error) {
	changed := make(chan struct{}, 1)
	unsubscribe := b.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	b.Connect()
	for {
		b.mu.Lock()
		state, svc, err := b.state, b.svc, b.err
		b.mu.Unlock()

		switch state {
		case BindingReady:
			return svc, nil
		case BindingFailed:
			return nil, err
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Retry discards a failed or pending construction and starts a new one.
// A ready handle is left untouched.
func (b *Binding) Retry() {
	b.mu.Lock()
	if b.state == BindingReady {
		b.mu.Unlock()
		return
	}
	if b.cancel != nil {
		b.cancel()
	}
	b.gen++
	b.state = BindingIdle
	b.err = nil
	b.svc = nil
	b.mu.Unlock()

	b.Connect()
}

// Close cancels any in-flight construction and drops the handle
func (b *Binding) Close() {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.gen++
	b.state = BindingIdle
	b.svc = nil
	b.err = nil
	b.mu.Unlock()
}

// Subscribe registers fn to run after every state change
func (b *Binding) Subscribe(fn func()) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

func (b *Binding) notify() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// ShortPrincipal abbreviates a principal for display and logs
func ShortPrincipal(p string) string {
	if p == "" {
		return "anonymous"
	}
	if len(p) <= 8 {
		return p
	}
	return p[:5] + "..." + p[len(p)-3:]
}
