package access_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"alumnihub/access"
	"alumnihub/models"
	"alumnihub/query"
	"alumnihub/remote"
	"alumnihub/remote/remotetest"
)

type identity struct {
	principal string
	authed    bool
}

func (i identity) Principal() string   { return i.principal }
func (i identity) Authenticated() bool { return i.authed }
func (i identity) Initializing() bool  { return false }

func newResolver(t *testing.T, id identity, dial remote.Dialer, allow ...string) *access.Resolver {
	t.Helper()
	b := remote.NewBinding(dial, id.principal, 200*time.Millisecond)
	t.Cleanup(b.Close)
	return access.NewResolver(id, b, query.NewClient(query.Options{}), access.NewAllowlist(allow))
}

func settle(t *testing.T, r *access.Resolver) access.Status {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st := r.Wait(ctx)
	if st.IsLoading {
		t.Fatal("Resolver did not settle")
	}
	return st
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Condition not met in time")
}

func TestUnauthenticatedIssuesNoAccessQueries(t *testing.T) {
	fake := remotetest.NewFake("")
	r := newResolver(t, identity{}, fake.Dialer())

	st := r.Status()
	if st.IsLoading || st.IsAuthenticated {
		t.Errorf("Expected settled anonymous status, got %+v", st)
	}

	st = settle(t, r)
	if st.IsApproved {
		t.Error("Expected anonymous caller not to be approved")
	}
	if n := fake.Calls("isCallerApproved") + fake.Calls("isCallerAdmin"); n != 0 {
		t.Errorf("Expected no access queries, got %d", n)
	}
}

func TestBackendTimeoutIsErrorBeforeLogin(t *testing.T) {
	dial := func(ctx context.Context, principal string) (remote.Service, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	r := newResolver(t, identity{}, dial)

	eventually(t, func() bool { return r.Status().IsError })
	if err := r.Status().BackendError; !errors.Is(err, remote.ErrConnectTimeout) {
		t.Errorf("Expected ErrConnectTimeout, got %v", err)
	}
}

func TestApprovedMember(t *testing.T) {
	fake := remotetest.NewFake("member-1")
	fake.Approved = true
	r := newResolver(t, identity{principal: "member-1", authed: true}, fake.Dialer())

	st := settle(t, r)

	if !st.IsAuthenticated || !st.IsApproved {
		t.Errorf("Expected signed-in approved member, got %+v", st)
	}
	if st.IsAdmin || st.CanManageMembers() {
		t.Error("Expected a member not to be an admin")
	}
}

func TestRetryReissuesOnlyFailedQuery(t *testing.T) {
	fake := remotetest.NewFake("member-1")
	var attempts atomic.Int32
	fake.IsCallerApprovedFn = func(ctx context.Context) (bool, error) {
		if attempts.Add(1) == 1 {
			return false, errors.New("replica unavailable")
		}
		return true, nil
	}
	r := newResolver(t, identity{principal: "member-1", authed: true}, fake.Dialer())

	st := settle(t, r)
	if !st.IsError {
		t.Fatal("Expected the failed approval query to surface as an error")
	}
	if fake.Calls("isCallerApproved") != 1 || fake.Calls("isCallerAdmin") != 1 {
		t.Fatalf("Expected one call each, got approved=%d admin=%d",
			fake.Calls("isCallerApproved"), fake.Calls("isCallerAdmin"))
	}

	r.Retry()
	st = settle(t, r)

	if st.IsError || !st.IsApproved {
		t.Errorf("Expected retry to recover approval, got %+v", st)
	}
	if n := fake.Calls("isCallerApproved"); n != 2 {
		t.Errorf("Expected approval query to be re-issued once, got %d calls", n)
	}
	if n := fake.Calls("isCallerAdmin"); n != 1 {
		t.Errorf("Expected healthy role query not to be re-issued, got %d calls", n)
	}
}

func TestRetryReconnectsFailedBackend(t *testing.T) {
	fake := remotetest.NewFake("member-1")
	var dials atomic.Int32
	dial := func(ctx context.Context, principal string) (remote.Service, error) {
		if dials.Add(1) == 1 {
			return nil, errors.New("no route")
		}
		return fake, nil
	}
	r := newResolver(t, identity{principal: "member-1", authed: true}, dial)

	eventually(t, func() bool { return r.Status().IsError })

	r.Retry()
	st := settle(t, r)

	if st.IsError {
		t.Errorf("Expected retry to reconnect, got %+v", st)
	}
	if n := dials.Load(); n != 2 {
		t.Errorf("Expected 2 dials, got %d", n)
	}
}

func TestAllowlistedAdminDoesNotWaitOnRole(t *testing.T) {
	fake := remotetest.NewFake("root-admin")
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	fake.IsCallerAdminFn = func(ctx context.Context) (bool, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return false, nil
	}
	r := newResolver(t, identity{principal: "root-admin", authed: true}, fake.Dialer(), "root-admin")

	st := settle(t, r)

	if !st.IsAdmin || !st.IsApproved || !st.CanManageContent() {
		t.Errorf("Expected allowlisted admin access, got %+v", st)
	}
	// The role query is still issued
	eventually(t, func() bool { return fake.Calls("isCallerAdmin") == 1 })
}

func TestApprovalRecord(t *testing.T) {
	testCases := []struct {
		name     string
		entries  []models.UserApprovalInfo
		expected models.ApprovalStatus
		present  bool
	}{
		{"No request yet", nil, "", false},
		{"Pending request", []models.UserApprovalInfo{{Principal: "member-1", Status: models.ApprovalPending}}, models.ApprovalPending, true},
		{"Rejected request", []models.UserApprovalInfo{{Principal: "member-1", Status: models.ApprovalRejected}}, models.ApprovalRejected, true},
		{"Someone else's entry", []models.UserApprovalInfo{{Principal: "member-2", Status: models.ApprovalPending}}, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := remotetest.NewFake("member-1")
			fake.Approval = tc.entries
			r := newResolver(t, identity{principal: "member-1", authed: true}, fake.Dialer())
			settle(t, r)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			rec, err := r.ApprovalRecord(ctx)
			if err != nil {
				t.Fatalf("ApprovalRecord failed: %v", err)
			}
			status, ok := rec.Get()
			if ok != tc.present || status != tc.expected {
				t.Errorf("Expected %q (%v), got %q (%v)", tc.expected, tc.present, status, ok)
			}
		})
	}
}
