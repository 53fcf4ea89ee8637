package deck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoIdentity  = errors.New("no startup identity")
	ErrCrossBranch = errors.New("response value does not belong to response type")
	ErrSubmission  = errors.New("submission failed")
	ErrNoPattern   = errors.New("no pattern")
)

// Store persists submission records. CreateSubmission returns only after
// the record exists.
type Store interface {
	CreateSubmission(ctx context.Context, rec SubmissionRecord) (SubmissionRecord, error)
}

// Identity supplies the startup responses are recorded for.
type Identity interface {
	CurrentStartup(ctx context.Context) (Startup, error)
}

// Navigator performs the route transition.
type Navigator interface {
	GoTo(route Route)
}

// Coordinator records a dialog selection and resolves where to go next.
type Coordinator struct {
	store    Store
	identity Identity
	timeout  time.Duration
	log      *zap.Logger
	now      func() time.Time
}

type CoordinatorOption func(*Coordinator)

// WithTimeout bounds each store call. Zero waits as long as ctx allows.
func WithTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.timeout = d }
}

func WithLogger(l *zap.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCoordinator(store Store, identity Identity, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:    store,
		identity: identity,
		log:      zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit persists the selection for pattern p and, once the store has
// confirmed the record, returns the route to navigate to.
func (c *Coordinator) Submit(ctx context.Context, p *Pattern, sel Selection, nextURL string) (Route, error) {
	if p == nil || p.DocumentID == "" {
		return Route{}, ErrNoPattern
	}
	if !sel.Type.Allows(sel.Value) {
		return Route{}, fmt.Errorf("%w: %s/%s", ErrCrossBranch, sel.Type, sel.Value)
	}
	if c.identity == nil {
		return Route{}, ErrNoIdentity
	}
	startup, err := c.identity.CurrentStartup(ctx)
	if err != nil {
		return Route{}, fmt.Errorf("resolve identity: %w", err)
	}
	if startup.DocumentID == "" {
		return Route{}, ErrNoIdentity
	}

	rec := SubmissionRecord{
		ID:           uuid.NewString(),
		StartupID:    startup.DocumentID,
		PatternID:    p.DocumentID,
		ResponseType: sel.Type,
		Response:     sel.Value,
		CreatedAt:    c.now(),
	}

	storeCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		storeCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	saved, err := c.store.CreateSubmission(storeCtx, rec)
	if err != nil {
		c.log.Warn("submission not stored",
			zap.String("pattern", p.DocumentID),
			zap.String("response", string(sel.Value)),
			zap.Error(err))
		return Route{}, fmt.Errorf("%w: %w", ErrSubmission, err)
	}
	c.log.Info("submission stored",
		zap.String("id", saved.ID),
		zap.String("startup", saved.StartupID),
		zap.String("pattern", saved.PatternID),
		zap.String("type", string(saved.ResponseType)),
		zap.String("response", string(saved.Response)))

	return Resolve(sel.Type, sel.Value, p.DocumentID, nextURL), nil
}

// SubmitAndNavigate submits and then navigates, in that order. The
// navigation is dropped when mounted reports the presenting card has gone
// away in the meantime. It returns whether navigation happened.
func (c *Coordinator) SubmitAndNavigate(ctx context.Context, p *Pattern, sel Selection, nextURL string, nav Navigator, mounted func() bool) (bool, error) {
	route, err := c.Submit(ctx, p, sel, nextURL)
	if err != nil {
		return false, err
	}
	if mounted != nil && !mounted() {
		c.log.Debug("navigation dropped after unmount", zap.String("route", route.Path))
		return false, nil
	}
	nav.GoTo(route)
	return true, nil
}
