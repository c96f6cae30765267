package remote_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"alumnihub/remote"
	"alumnihub/remote/remotetest"
)

func TestBindingConnectsLazily(t *testing.T) {
	fake := remotetest.NewFake("alice")
	b := remote.NewBinding(fake.Dialer(), "alice", time.Second)

	if got := b.Status().State; got != remote.BindingIdle {
		t.Errorf("Expected idle binding, got %v", got)
	}
	if n := fake.Calls("dial"); n != 0 {
		t.Errorf("Expected no dial yet, got %d", n)
	}

	svc, err := b.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if svc.Principal() != "alice" {
		t.Errorf("Expected principal alice, got %s", svc.Principal())
	}
	if !b.Status().Ready() {
		t.Error("Expected binding to be ready")
	}

	// Connecting again is a no-op once ready
	b.Connect()
	if n := fake.Calls("dial"); n != 1 {
		t.Errorf("Expected a single dial, got %d", n)
	}
}

func TestBindingTimesOut(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	dial := func(ctx context.Context, principal string) (remote.Service, error) {
		<-block
		return remotetest.NewFake(principal), nil
	}
	b := remote.NewBinding(dial, "bob", 20*time.Millisecond)

	if _, err := b.Wait(context.Background()); !errors.Is(err, remote.ErrConnectTimeout) {
		t.Fatalf("Expected ErrConnectTimeout, got %v", err)
	}

	status := b.Status()
	if !status.Failed() || status.Loading() {
		t.Errorf("Expected failed binding, got %+v", status)
	}
	if !errors.Is(status.Err, remote.ErrConnectTimeout) {
		t.Errorf("Expected status error ErrConnectTimeout, got %v", status.Err)
	}
}

func TestBindingRetryAfterFailure(t *testing.T) {
	var attempts int32
	fake := remotetest.NewFake("carol")
	dial := func(ctx context.Context, principal string) (remote.Service, error) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return nil, errors.New("boom")
		}
		return fake, nil
	}
	b := remote.NewBinding(dial, "carol", time.Second)

	if _, err := b.Wait(context.Background()); err == nil {
		t.Fatal("Expected first connect to fail")
	}
	if !b.Status().Failed() {
		t.Error("Expected failed binding")
	}
	if _, err := b.Service(); err == nil {
		t.Error("Expected no service after failure")
	}

	b.Retry()
	svc, err := b.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait after retry failed: %v", err)
	}
	if svc.Principal() != "carol" {
		t.Errorf("Expected principal carol, got %s", svc.Principal())
	}
	if n := atomic.LoadInt32(&attempts); n != 2 {
		t.Errorf("Expected 2 attempts, got %d", n)
	}
}

func TestBindingRetryLeavesReadyHandle(t *testing.T) {
	fake := remotetest.NewFake("dave")
	b := remote.NewBinding(fake.Dialer(), "dave", time.Second)
	if _, err := b.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	b.Retry()
	if !b.Status().Ready() {
		t.Error("Expected binding to stay ready")
	}
	if n := fake.Calls("dial"); n != 1 {
		t.Errorf("Expected no redial, got %d dials", n)
	}
}

func TestBindingServiceNotReady(t *testing.T) {
	b := remote.NewBinding(remotetest.NewFake("").Dialer(), "", time.Second)
	if _, err := b.Service(); !errors.Is(err, remote.ErrNotReady) {
		t.Errorf("Expected ErrNotReady, got %v", err)
	}
}
