package access

import (
	"context"

	"alumnihub/models"
	"alumnihub/query"
	"alumnihub/remote"
	"alumnihub/services"
)

// Identity is the session side of the resolver's inputs
type Identity interface {
	Principal() string
	Authenticated() bool
	Initializing() bool
}

// Resolver tracks the access status of one session
type Resolver struct {
	identity  Identity
	binding   *remote.Binding
	cache     *query.Client
	allowlist Allowlist
}

// NewResolver creates a resolver over a session's identity and binding
func NewResolver(identity Identity, binding *remote.Binding, cache *query.Client, allowlist Allowlist) *Resolver {
	return &Resolver{
		identity:  identity,
		binding:   binding,
		cache:     cache,
		allowlist: allowlist,
	}
}

// Signals snapshots the current inputs. Role and approval queries are only
// issued once the session is authenticated and the backend handle is ready.
func (r *Resolver) Signals() Signals {
	r.binding.Connect()

	s := Signals{
		Authenticated:       r.identity.Authenticated(),
		SessionInitializing: r.identity.Initializing(),
		Backend:             r.binding.Status(),
		Allowlisted:         r.allowlist.Contains(r.identity.Principal()),
	}
	if s.Authenticated && s.Backend.Ready() {
		// Issued for allowlisted principals too; Resolve ignores the result
		s.Role = r.cache.Observe(services.CallerAdminQuery(r.binding))
		s.Approval = r.cache.Observe(services.CallerApprovedQuery(r.binding))
	}
	return s
}

// Status resolves the current signals
func (r *Resolver) Status() Status {
	return Resolve(r.Signals())
}

// Retry re-triggers whichever of the backend handle, role query and
// approval query is currently failed. Healthy ones are left alone.
func (r *Resolver) Retry() {
	if r.binding.Status().Failed() {
		r.binding.Retry()
		return
	}
	roleKey := services.CallerAdminQuery(r.binding).Key
	approvalKey := services.CallerApprovedQuery(r.binding).Key
	if r.cache.Peek(roleKey).IsError() {
		r.cache.Refetch(roleKey)
	}
	if r.cache.Peek(approvalKey).IsError() {
		r.cache.Refetch(approvalKey)
	}
}

// ApprovalRecord fetches the caller's own approval entry, refetching it when
// an approval write has marked it stale
func (r *Resolver) ApprovalRecord(ctx context.Context) (models.Optional[models.ApprovalStatus], error) {
	return query.Get[models.Optional[models.ApprovalStatus]](ctx, r.cache, services.CallerApprovalQuery(r.binding))
}

// Wait blocks until the status stops loading or ctx is done, and returns
// the last status seen
func (r *Resolver) Wait(ctx context.Context) Status {
	changed := make(chan struct{}, 1)
	wake := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	unsubBinding := r.binding.Subscribe(wake)
	defer unsubBinding()
	unsubCache := r.cache.Subscribe(func(query.Key) { wake() })
	defer unsubCache()

	for {
		st := r.Status()
		if !st.IsLoading {
			return st
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return st
		}
	}
}
