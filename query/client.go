// Package query is a process-wide cache of remote reads. Entries are keyed
// by operation name plus parameters, fetched at most once concurrently,
// and invalidated explicitly by the writes that affect them.
package query

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies a cache entry. Scope carries the caller principal for
// operations whose answer depends on who is asking.
type Key struct {
	Op     string
	Scope  string
	Params string
}

// NewKey builds a key from an operation and its parameters. Nil pointers
// render as "null" so an unset filter differs from a zero one.
func NewKey(op string, params ...any) Key {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = formatParam(p)
	}
	return Key{Op: op, Params: strings.Join(parts, "|")}
}

// Scoped returns a copy of k bound to the caller principal
func (k Key) Scoped(principal string) Key {
	k.Scope = principal
	return k
}

func (k Key) String() string {
	return k.Op + "/" + k.Scope + "/" + k.Params
}

func formatParam(p any) string {
	switch v := p.(type) {
	case nil:
		return "null"
	case *int:
		if v == nil {
			return "null"
		}
		return fmt.Sprint(*v)
	case *bool:
		if v == nil {
			return "null"
		}
		return fmt.Sprint(*v)
	case *string:
		if v == nil {
			return "null"
		}
		return *v
	}
	return fmt.Sprint(p)
}

// Status is the lifecycle of a cache entry
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// State is a snapshot of one cache entry
type State struct {
	Status    Status
	Data      any
	Err       error
	Fetching  bool
	Stale     bool
	UpdatedAt time.Time
}

// IsLoading reports a first fetch in flight with nothing to show yet
func (s State) IsLoading() bool { return s.Status == StatusPending }

// IsError reports that the last fetch failed
func (s State) IsError() bool { return s.Status == StatusError }

// IsFetched reports that at least one fetch has settled
func (s State) IsFetched() bool {
	return s.Status == StatusSuccess || s.Status == StatusError
}

// Fetcher performs the remote read for a query
type Fetcher func(ctx context.Context) (any, error)

// Query describes one cacheable read
type Query struct {
	Key        Key
	Fn         Fetcher
	Retry      int
	RetryDelay time.Duration
}

type entry struct {
	state   State
	query   Query
	seq     uint64
	applied uint64
}

// Options configures a Client
type Options struct {
	// StaleTime is how long a successful result is served without refetching
	StaleTime time.Duration
	// FetchTimeout bounds a single background fetch attempt
	FetchTimeout time.Duration
}

// Client is the cache. It is safe for concurrent use.
type Client struct {
	opts  Options
	group singleflight.Group
	now   func() time.Time

	mu        sync.Mutex
	entries   map[Key]*entry
	listeners map[int]func(Key)
	nextID    int
}

// NewClient creates an empty cache
func NewClient(opts Options) *Client {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	return &Client{
		opts:      opts,
		now:       time.Now,
		entries:   make(map[Key]*entry),
		listeners: make(map[int]func(Key)),
	}
}

// Peek returns the state of key without triggering a fetch
func (c *Client) Peek(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return c.snapshot(e)
	}
	return State{Status: StatusIdle}
}

// Observe returns the current state of q and starts a background fetch when
// the entry is missing or stale and nothing is already in flight
func (c *Client) Observe(q Query) State {
	c.mu.Lock()
	e := c.entryLocked(q)
	q = e.query
	st := c.snapshot(e)
	start := q.Fn != nil && !e.state.Fetching && (e.state.Status == StatusIdle || (st.Stale && e.state.Status == StatusSuccess))
	var seq uint64
	if start {
		seq = c.beginLocked(e)
		st = c.snapshot(e)
	}
	c.mu.Unlock()

	if start {
		c.notify(q.Key)
		go c.runAsync(q, seq)
	}
	return st
}

// Refetch starts a background fetch of key using the query last registered
// for it. Entries never observed are ignored.
func (c *Client) Refetch(key Key) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.query.Fn == nil {
		c.mu.Unlock()
		return
	}
	q := e.query
	c.group.Forget(key.String())
	seq := c.beginLocked(e)
	c.mu.Unlock()

	c.notify(key)
	go c.runAsync(q, seq)
}

// Fetch returns fresh cached data for q or blocks on a fetch. Concurrent
// fetches of the same key share one remote call.
func (c *Client) Fetch(ctx context.Context, q Query) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(q)
	q = e.query
	st := c.snapshot(e)
	if st.Status == StatusSuccess && !st.Stale {
		c.mu.Unlock()
		return st.Data, nil
	}
	if q.Fn == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("query %s: no fetcher registered", q.Key.Op)
	}
	seq := c.beginLocked(e)
	c.mu.Unlock()
	c.notify(q.Key)

	ch := c.group.DoChan(q.Key.String(), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.Background(), c.opts.FetchTimeout*time.Duration(q.Retry+1))
		defer cancel()
		return c.attempt(fetchCtx, q)
	})

	select {
	case res := <-ch:
		c.apply(q.Key, seq, res.Val, res.Err)
		return res.Val, res.Err
	case <-ctx.Done():
		// The shared fetch keeps running and will settle the entry for others
		go func() {
			res := <-ch
			c.apply(q.Key, seq, res.Val, res.Err)
		}()
		return nil, ctx.Err()
	}
}

// Invalidate marks every entry of the given operations stale, across all
// parameters and scopes. Entries are refetched on their next read.
func (c *Client) Invalidate(ops ...string) {
	match := make(map[string]bool, len(ops))
	for _, op := range ops {
		match[op] = true
	}
	c.invalidateWhere(func(k Key) bool { return match[k.Op] })
}

func (c *Client) invalidateWhere(pred func(Key) bool) {
	var keys []Key
	c.mu.Lock()
	for k, e := range c.entries {
		if !pred(k) {
			continue
		}
		e.state.Stale = true
		if e.state.Status != StatusSuccess {
			e.state.Status = StatusIdle
			e.state.Err = nil
		}
		// A fetch started before the write may return pre-write data
		e.applied = e.seq
		e.state.Fetching = false
		c.group.Forget(k.String())
		keys = append(keys, k)
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.notify(k)
	}
}

// RemoveScope drops every entry bound to principal, used on logout
func (c *Client) RemoveScope(principal string) {
	c.mu.Lock()
	for k := range c.entries {
		if k.Scope == principal {
			delete(c.entries, k)
			c.group.Forget(k.String())
		}
	}
	c.mu.Unlock()
}

// Subscribe registers fn to run after any entry changes
func (c *Client) Subscribe(fn func(Key)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) entryLocked(q Query) *entry {
	e, ok := c.entries[q.Key]
	if !ok {
		e = &entry{state: State{Status: StatusIdle}}
		c.entries[q.Key] = e
	}
	if q.Fn != nil {
		e.query = q
	}
	e.query.Key = q.Key
	return e
}

func (c *Client) beginLocked(e *entry) uint64 {
	e.seq++
	e.state.Fetching = true
	if e.state.Status == StatusIdle || e.state.Status == StatusError {
		e.state.Status = StatusPending
		e.state.Err = nil
	}
	return e.seq
}

func (c *Client) snapshot(e *entry) State {
	st := e.state
	if st.Status == StatusSuccess && !st.Stale && c.opts.StaleTime > 0 {
		st.Stale = c.now().Sub(st.UpdatedAt) > c.opts.StaleTime
	}
	return st
}

func (c *Client) runAsync(q Query, seq uint64) {
	ch := c.group.DoChan(q.Key.String(), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.FetchTimeout*time.Duration(q.Retry+1))
		defer cancel()
		return c.attempt(ctx, q)
	})
	res := <-ch
	c.apply(q.Key, seq, res.Val, res.Err)
}

func (c *Client) attempt(ctx context.Context, q Query) (any, error) {
	var (
		data any
		err  error
	)
	for i := 0; i <= q.Retry; i++ {
		if i > 0 {
			select {
			case <-time.After(q.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		data, err = q.Fn(ctx)
		if err == nil {
			return data, nil
		}
	}
	return nil, err
}

// apply stores a fetch result unless a newer fetch of the same key has
// already settled or the entry was invalidated after this fetch began
func (c *Client) apply(key Key, seq uint64, data any, err error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || seq <= e.applied {
		c.mu.Unlock()
		return
	}
	e.applied = seq
	if seq == e.seq {
		e.state.Fetching = false
	}
	if err != nil {
		e.state.Status = StatusError
		e.state.Err = err
		log.Printf("Query %s failed: %v", key.Op, err)
	} else {
		e.state.Status = StatusSuccess
		e.state.Data = data
		e.state.Err = nil
		e.state.Stale = false
		e.state.UpdatedAt = c.now()
	}
	c.mu.Unlock()

	c.notify(key)
}

func (c *Client) notify(key Key) {
	c.mu.Lock()
	fns := make([]func(Key), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}
