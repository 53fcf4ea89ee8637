package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/jask/patterndeck/internal/config"
	"github.com/jask/patterndeck/internal/deck"
)

type fakeStore struct {
	recs    []deck.SubmissionRecord
	err     error
	onWrite func()
}

func (s *fakeStore) CreateSubmission(_ context.Context, rec deck.SubmissionRecord) (deck.SubmissionRecord, error) {
	if s.onWrite != nil {
		s.onWrite()
	}
	if s.err != nil {
		return deck.SubmissionRecord{}, s.err
	}
	s.recs = append(s.recs, rec)
	return rec, nil
}

func (s *fakeStore) answered(id string) bool {
	for _, r := range s.recs {
		if r.PatternID == id {
			return true
		}
	}
	return false
}

type fakeSource struct {
	store    *fakeStore
	patterns []*deck.Pattern
	err      error
}

func (f *fakeSource) Next(_ context.Context, startupID string) (*deck.Pattern, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.patterns {
		if !f.store.answered(p.DocumentID) {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) Get(_ context.Context, id string) (*deck.Pattern, error) {
	for _, p := range f.patterns {
		if p.DocumentID == id {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

type fakeIdentity struct{ err error }

func (f fakeIdentity) CurrentStartup(context.Context) (deck.Startup, error) {
	if f.err != nil {
		return deck.Startup{}, f.err
	}
	return deck.Startup{DocumentID: "acme", Name: "Acme"}, nil
}

type harness struct {
	t      *testing.T
	app    *App
	store  *fakeStore
	source *fakeSource
}

func testPatterns() []*deck.Pattern {
	return []*deck.Pattern{
		{
			DocumentID:  "p1",
			Name:        "Customer Interviews",
			Description: "Talk to customers.",
			Category:    deck.CategoryMarket,
			Phases:      []deck.Phase{deck.PhaseStart},
			RelatedPatterns: []deck.PatternRef{
				{DocumentID: "p2", Name: "Problem Statement"},
			},
		},
		{DocumentID: "p2", Name: "Problem Statement", Category: deck.CategoryProduct},
	}
}

func newHarness(t *testing.T, animate bool) *harness {
	t.Helper()
	store := &fakeStore{}
	source := &fakeSource{store: store, patterns: testPatterns()}
	coord := deck.NewCoordinator(store, fakeIdentity{}, deck.WithTimeout(time.Second))
	app := New(context.Background(), config.UIConfig{
		NextURL:     "/explore",
		CellWidthPx: 10,
		Animate:     animate,
		SettleDelay: time.Millisecond,
	}, Deps{Patterns: source, Identity: fakeIdentity{}, Coordinator: coord})
	h := &harness{t: t, app: app, store: store, source: source}
	h.run(app.Init())
	return h
}

// run executes cmd and feeds its message back until no command remains.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = h.app.Update(msg)
	}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	_, cmd := h.app.Update(msg)
	return cmd
}

func (h *harness) drag(from, to int) tea.Cmd {
	h.send(tea.MouseMsg{X: from, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.send(tea.MouseMsg{X: (from + to) / 2, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	return h.send(tea.MouseMsg{X: to, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (h *harness) view() string {
	return ansi.Strip(h.app.View())
}

func TestInitialLoadShowsNextPattern(t *testing.T) {
	h := newHarness(t, false)
	require.Equal(t, loadDone, h.app.load)
	require.NotNil(t, h.app.card)
	require.Equal(t, "p1", h.app.card.Pattern().DocumentID)
	require.Equal(t, deck.InitialState(), h.app.card.State())
	require.Contains(t, h.view(), "Customer Interviews")
}

func TestScenarioDragRightPerformExercise(t *testing.T) {
	h := newHarness(t, false)

	cmd := h.drag(10, 25)
	require.NotNil(t, cmd)
	require.Equal(t, deck.CardExiting, h.app.card.Phase())
	require.Equal(t, deck.DirectionRight, h.app.card.State().Exit)
	require.False(t, h.app.card.State().Visible)

	h.run(cmd)
	d, ok := h.app.card.Dialog()
	require.True(t, ok)
	require.Equal(t, deck.ResponseAccept, d.Type)
	require.Contains(t, h.view(), "Great! What would you like to do?")

	h.send(tea.KeyMsg{Type: tea.KeyDown})
	h.store.onWrite = func() {
		require.Equal(t, "/explore", h.app.router.Current().Path, "navigation must wait for the store")
	}
	cmd = h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, deck.CardResolved, h.app.card.Phase())
	require.Empty(t, h.store.recs)

	h.run(cmd)
	require.Len(t, h.store.recs, 1)
	require.Equal(t, deck.ResponseAccept, h.store.recs[0].ResponseType)
	require.Equal(t, deck.PerformExercise, h.store.recs[0].Response)

	route := h.app.router.Current()
	require.Equal(t, "/progress/p1/exercise", route.Path)
	require.Equal(t, &deck.NavState{NextURL: "/explore"}, route.State)
	require.Equal(t, screenExercise, h.app.screen)
	require.Contains(t, h.view(), "Customer Interviews")
}

func TestScenarioDragLeftMaybeLater(t *testing.T) {
	h := newHarness(t, false)

	h.run(h.drag(30, 18))
	d, ok := h.app.card.Dialog()
	require.True(t, ok)
	require.Equal(t, deck.ResponseReject, d.Type)
	require.Len(t, d.Actions, 4)

	h.run(h.send(runes("2")))
	require.Len(t, h.store.recs, 1)
	require.Equal(t, deck.MaybeLater, h.store.recs[0].Response)
	require.Equal(t, "/explore", h.app.router.Current().Path)
	require.Nil(t, h.app.router.Current().State)
	require.Equal(t, 1, h.app.router.Len(), "answering replaces the explore entry")

	// the next unanswered pattern is mounted
	require.Equal(t, "p2", h.app.card.Pattern().DocumentID)
}

func TestScenarioDragBelowThreshold(t *testing.T) {
	h := newHarness(t, false)
	cmd := h.drag(10, 15)
	require.Nil(t, cmd)
	require.Equal(t, deck.CardPresenting, h.app.card.Phase())
	require.Equal(t, deck.InitialState(), h.app.card.State())

	// exactly at the threshold does not swipe either
	require.Nil(t, h.drag(10, 20))
	require.Equal(t, deck.CardPresenting, h.app.card.Phase())
}

func TestScenarioThinkLaterFallsThrough(t *testing.T) {
	h := newHarness(t, false)
	h.run(h.send(tea.KeyMsg{Type: tea.KeyRight}))
	_, ok := h.app.card.Dialog()
	require.True(t, ok)

	h.run(h.send(runes("3")))
	require.Len(t, h.store.recs, 1)
	require.Equal(t, deck.ThinkLater, h.store.recs[0].Response)
	require.Equal(t, "/explore", h.app.router.Current().Path)
	require.Equal(t, screenExplore, h.app.screen)
}

func TestScenarioFlipToggles(t *testing.T) {
	h := newHarness(t, false)
	space := tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	for i := 0; i < 5; i++ {
		before := h.app.card.State()
		h.send(space)
		after := h.app.card.State()
		require.Equal(t, !before.Flipped, after.Flipped)
		after.Flipped = before.Flipped
		require.Equal(t, before, after)
	}
	require.True(t, h.app.card.State().Flipped)
	require.Contains(t, h.view(), "Talk to customers.")
	require.Contains(t, h.view(), "Start")

	h.send(runes("f"))
	require.False(t, h.app.card.State().Flipped)
}

func TestDialogBackRestoresCard(t *testing.T) {
	h := newHarness(t, false)
	h.send(runes("f"))
	h.run(h.send(tea.KeyMsg{Type: tea.KeyLeft}))
	require.Equal(t, deck.CardDialogOpen, h.app.card.Phase())

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, deck.CardPresenting, h.app.card.Phase())
	require.Equal(t, deck.InitialState(), h.app.card.State())
	require.Empty(t, h.store.recs)
}

func TestAnimatedExitOpensDialog(t *testing.T) {
	h := newHarness(t, true)
	cmd := h.send(runes("l"))
	require.NotNil(t, cmd)
	h.run(cmd)
	require.Equal(t, exitFrames, h.app.exitFrame)
	require.Equal(t, deck.CardDialogOpen, h.app.card.Phase())
}

func TestStaleMessagesAreDropped(t *testing.T) {
	h := newHarness(t, false)
	exit := h.send(tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, exit)
	staleGen := h.app.gen

	// the card is torn down before the settle tick fires
	h.app.router.GoTo(deck.Route{Path: "/explore/p2"})
	h.run(h.app.enterRoute())
	h.send(exitDoneMsg{gen: staleGen})
	require.Equal(t, deck.CardPresenting, h.app.card.Phase())
	require.Equal(t, "p2", h.app.card.Pattern().DocumentID)

	h.send(submitDoneMsg{gen: staleGen, route: deck.Route{Path: "/progress/p1/survey"}})
	require.Equal(t, "/explore/p2", h.app.router.Current().Path)
}

func TestSubmissionFinishingAfterUnmountDoesNotNavigate(t *testing.T) {
	h := newHarness(t, false)
	h.run(h.send(tea.KeyMsg{Type: tea.KeyRight}))
	submit := h.send(runes("1"))
	require.NotNil(t, submit)

	// the user moves on before the store answers
	h.app.router.GoTo(deck.Route{Path: "/explore/p2"})
	h.run(h.app.enterRoute())

	msg := submit()
	done, ok := msg.(submitDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	require.False(t, done.moved)
	require.Len(t, h.store.recs, 1, "the write still completes")

	h.send(msg)
	require.Equal(t, "/explore/p2", h.app.router.Current().Path)
	require.Equal(t, "p2", h.app.card.Pattern().DocumentID)
}

func TestQuitWaitsForInFlightSubmission(t *testing.T) {
	h := newHarness(t, false)
	h.run(h.send(tea.KeyMsg{Type: tea.KeyRight}))
	submit := h.send(runes("3"))
	require.NotNil(t, submit)

	require.Nil(t, h.send(runes("q")))
	require.Nil(t, h.send(tea.KeyMsg{Type: tea.KeyCtrlC}))
	require.True(t, h.app.quitting)
	require.Empty(t, h.store.recs)

	quit := h.send(submit())
	require.NotNil(t, quit)
	require.IsType(t, tea.QuitMsg{}, quit())
	require.Len(t, h.store.recs, 1)
}

func TestQuitWhenIdle(t *testing.T) {
	h := newHarness(t, false)
	cmd := h.send(runes("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSubmissionFailureRetry(t *testing.T) {
	h := newHarness(t, false)
	h.store.err = errors.New("connection refused")

	h.run(h.send(tea.KeyMsg{Type: tea.KeyRight}))
	h.run(h.send(runes("1")))
	require.Equal(t, submitFailed, h.app.submit)
	require.ErrorIs(t, h.app.submitErr, deck.ErrSubmission)
	require.Equal(t, "/explore", h.app.router.Current().Path)
	require.Contains(t, h.view(), "Could not save your response")

	h.store.err = nil
	h.run(h.send(runes("r")))
	require.Len(t, h.store.recs, 1)
	require.Equal(t, deck.ShareReflection, h.store.recs[0].Response)
	require.Equal(t, "/progress/p1/survey", h.app.router.Current().Path)
	require.Equal(t, screenSurvey, h.app.screen)

	// the survey continues to nextUrl
	h.run(h.send(tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, "/explore", h.app.router.Current().Path)
	require.Equal(t, "p2", h.app.card.Pattern().DocumentID)
}

func TestSubmissionFailureBackToCard(t *testing.T) {
	h := newHarness(t, false)
	h.store.err = errors.New("boom")
	h.run(h.send(tea.KeyMsg{Type: tea.KeyLeft}))
	h.run(h.send(runes("4")))
	require.Equal(t, submitFailed, h.app.submit)

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, submitIdle, h.app.submit)
	require.Equal(t, deck.CardPresenting, h.app.card.Phase())
	require.Equal(t, deck.InitialState(), h.app.card.State())
}

func TestLoadFailureTryAgain(t *testing.T) {
	h := newHarness(t, false)
	h.source.err = errors.New("db down")
	h.run(h.app.enterRoute())
	require.Equal(t, loadFailed, h.app.load)
	require.Contains(t, h.view(), "Error loading patterns")

	h.source.err = nil
	h.run(h.send(runes("r")))
	require.Equal(t, loadDone, h.app.load)
	require.NotNil(t, h.app.card)
}

func TestMissingIdentityIsALoadError(t *testing.T) {
	h := newHarness(t, false)
	h.app.deps.Identity = fakeIdentity{err: deck.ErrNoIdentity}
	h.run(h.app.enterRoute())
	require.Equal(t, loadFailed, h.app.load)
	require.ErrorIs(t, h.app.loadErr, deck.ErrNoIdentity)
}

func TestAllAnswered(t *testing.T) {
	h := newHarness(t, false)
	h.source.patterns = h.source.patterns[:1]
	h.run(h.send(tea.KeyMsg{Type: tea.KeyLeft}))
	h.run(h.send(runes("1")))
	require.Equal(t, loadExhausted, h.app.load)
	require.Nil(t, h.app.card)
	require.Contains(t, h.view(), "You have responded to every pattern.")
}

func TestRelatedPatternNavigation(t *testing.T) {
	h := newHarness(t, false)
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 0, h.app.relatedCursor)
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 0, h.app.relatedCursor, "single related pattern wraps")

	h.run(h.send(tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, "/explore/p2", h.app.router.Current().Path)
	require.Equal(t, "p2", h.app.card.Pattern().DocumentID)

	h.run(h.send(tea.KeyMsg{Type: tea.KeyEsc}))
	require.Equal(t, "/explore", h.app.router.Current().Path)
	require.Equal(t, "p1", h.app.card.Pattern().DocumentID)
}

func TestInputIgnoredWhileSubmitting(t *testing.T) {
	h := newHarness(t, false)
	h.run(h.send(tea.KeyMsg{Type: tea.KeyRight}))
	submit := h.send(runes("3"))
	require.NotNil(t, submit)

	require.Nil(t, h.send(runes("1")))
	require.Nil(t, h.drag(10, 30))
	require.Contains(t, h.view(), "Saving response...")

	h.run(submit)
	require.Len(t, h.store.recs, 1)
}

func TestStatusMsg(t *testing.T) {
	h := newHarness(t, false)
	h.send(StatusMsg{Text: "catalog reloaded"})
	require.True(t, strings.Contains(h.view(), "catalog reloaded"))
	h.send(StatusMsg{Text: "bad yaml", IsErr: true})
	require.Contains(t, h.view(), "error: bad yaml")
}
