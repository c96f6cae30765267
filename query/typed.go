package query

import (
	"context"
	"fmt"
)

// Get fetches q through c and asserts the result type
func Get[T any](ctx context.Context, c *Client, q Query) (T, error) {
	var zero T
	v, err := c.Fetch(ctx, q)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: unexpected result type %T", q.Key.Op, v)
	}
	return out, nil
}

// Data extracts typed data from a state snapshot
func Data[T any](s State) (T, bool) {
	var zero T
	if s.Status != StatusSuccess || s.Data == nil {
		return zero, false
	}
	out, ok := s.Data.(T)
	return out, ok
}
