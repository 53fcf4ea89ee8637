package deck

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixedIdentity struct {
	startup Startup
	err     error
}

func (f fixedIdentity) CurrentStartup(context.Context) (Startup, error) {
	return f.startup, f.err
}

// deferredStore holds every CreateSubmission call until release is closed.
type deferredStore struct {
	mu      sync.Mutex
	records []SubmissionRecord
	entered chan struct{}
	release chan struct{}
	err     error
}

func newDeferredStore() *deferredStore {
	return &deferredStore{entered: make(chan struct{}, 8), release: make(chan struct{})}
}

func (s *deferredStore) CreateSubmission(ctx context.Context, rec SubmissionRecord) (SubmissionRecord, error) {
	s.entered <- struct{}{}
	select {
	case <-s.release:
	case <-ctx.Done():
		return SubmissionRecord{}, ctx.Err()
	}
	if s.err != nil {
		return SubmissionRecord{}, s.err
	}
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return rec, nil
}

func (s *deferredStore) Records() []SubmissionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SubmissionRecord(nil), s.records...)
}

type recordingNav struct {
	mu     sync.Mutex
	routes []Route
}

func (n *recordingNav) GoTo(r Route) {
	n.mu.Lock()
	n.routes = append(n.routes, r)
	n.mu.Unlock()
}

func (n *recordingNav) Routes() []Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Route(nil), n.routes...)
}

var acme = fixedIdentity{startup: Startup{DocumentID: "s1", Name: "Acme"}}

func TestSubmitNavigatesOnlyAfterStoreConfirms(t *testing.T) {
	store := newDeferredStore()
	nav := &recordingNav{}
	c := NewCoordinator(store, acme)

	done := make(chan error, 1)
	go func() {
		_, err := c.SubmitAndNavigate(context.Background(), testPattern(), Selection{Type: ResponseAccept, Value: PerformExercise}, "/explore", nav, nil)
		done <- err
	}()

	<-store.entered
	time.Sleep(20 * time.Millisecond)
	require.Empty(t, nav.Routes(), "navigated before the store confirmed")
	require.Empty(t, store.Records())

	close(store.release)
	require.NoError(t, <-done)

	recs := store.Records()
	require.Len(t, recs, 1)
	require.Equal(t, "s1", recs[0].StartupID)
	require.Equal(t, "p1", recs[0].PatternID)
	require.Equal(t, ResponseAccept, recs[0].ResponseType)
	require.Equal(t, PerformExercise, recs[0].Response)
	require.NotEmpty(t, recs[0].ID)

	require.Equal(t, []Route{{Path: "/progress/p1/exercise", State: &NavState{NextURL: "/explore"}}}, nav.Routes())
}

func TestSubmitRejectMaybeLaterGoesToNextURL(t *testing.T) {
	store := newDeferredStore()
	close(store.release)
	nav := &recordingNav{}
	c := NewCoordinator(store, acme)

	navigated, err := c.SubmitAndNavigate(context.Background(), testPattern(), Selection{Type: ResponseReject, Value: MaybeLater}, "/explore", nav, func() bool { return true })
	require.NoError(t, err)
	require.True(t, navigated)
	require.Equal(t, []Route{{Path: "/explore"}}, nav.Routes())
	require.Equal(t, MaybeLater, store.Records()[0].Response)
}

func TestSubmitThinkLaterFallsThrough(t *testing.T) {
	store := newDeferredStore()
	close(store.release)
	c := NewCoordinator(store, acme)

	route, err := c.Submit(context.Background(), testPattern(), Selection{Type: ResponseAccept, Value: ThinkLater}, "/explore")
	require.NoError(t, err)
	require.Equal(t, Route{Path: "/explore"}, route)
}

func TestSubmitDropsNavigationAfterUnmount(t *testing.T) {
	store := newDeferredStore()
	close(store.release)
	nav := &recordingNav{}
	c := NewCoordinator(store, acme)

	navigated, err := c.SubmitAndNavigate(context.Background(), testPattern(), Selection{Type: ResponseAccept, Value: ShareReflection}, "/explore", nav, func() bool { return false })
	require.NoError(t, err)
	require.False(t, navigated)
	require.Empty(t, nav.Routes())
	require.Len(t, store.Records(), 1, "in-flight submission still completes")
}

func TestSubmitStoreFailureDoesNotNavigate(t *testing.T) {
	store := newDeferredStore()
	store.err = errors.New("disk full")
	close(store.release)
	nav := &recordingNav{}
	c := NewCoordinator(store, acme)

	navigated, err := c.SubmitAndNavigate(context.Background(), testPattern(), Selection{Type: ResponseReject, Value: NoValue}, "/explore", nav, nil)
	require.ErrorIs(t, err, ErrSubmission)
	require.ErrorContains(t, err, "disk full")
	require.False(t, navigated)
	require.Empty(t, nav.Routes())
}

func TestSubmitTimeout(t *testing.T) {
	store := newDeferredStore()
	c := NewCoordinator(store, acme, WithTimeout(30*time.Millisecond))

	_, err := c.Submit(context.Background(), testPattern(), Selection{Type: ResponseReject, Value: NoValue}, "/explore")
	require.ErrorIs(t, err, ErrSubmission)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(store.release)
}

func TestSubmitRequiresIdentity(t *testing.T) {
	store := newDeferredStore()
	close(store.release)

	c := NewCoordinator(store, fixedIdentity{})
	_, err := c.Submit(context.Background(), testPattern(), Selection{Type: ResponseAccept, Value: ThinkLater}, "/explore")
	require.ErrorIs(t, err, ErrNoIdentity)

	c = NewCoordinator(store, fixedIdentity{err: ErrNoIdentity})
	_, err = c.Submit(context.Background(), testPattern(), Selection{Type: ResponseAccept, Value: ThinkLater}, "/explore")
	require.ErrorIs(t, err, ErrNoIdentity)

	require.Empty(t, store.Records())
}

func TestSubmitRejectsCrossBranch(t *testing.T) {
	store := newDeferredStore()
	close(store.release)
	c := NewCoordinator(store, acme)

	_, err := c.Submit(context.Background(), testPattern(), Selection{Type: ResponseReject, Value: PerformExercise}, "/explore")
	require.ErrorIs(t, err, ErrCrossBranch)
	_, err = c.Submit(context.Background(), nil, Selection{Type: ResponseReject, Value: NoValue}, "/explore")
	require.ErrorIs(t, err, ErrNoPattern)
	require.Empty(t, store.Records())
}

func TestSubmitUsesClock(t *testing.T) {
	store := newDeferredStore()
	close(store.release)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewCoordinator(store, acme, WithClock(func() time.Time { return at }))

	_, err := c.Submit(context.Background(), testPattern(), Selection{Type: ResponseAccept, Value: ShareReflection}, "/explore")
	require.NoError(t, err)
	require.Equal(t, at, store.Records()[0].CreatedAt)
}
