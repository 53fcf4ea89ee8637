package tui

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/patterndeck/internal/config"
	"github.com/jask/patterndeck/internal/deck"
)

const (
	explorePath   = "/explore"
	exitFrames    = 6
	frameInterval = 16 * time.Millisecond
	exitStepCells = 8
)

// PatternSource supplies the patterns the explore screen presents.
type PatternSource interface {
	Next(ctx context.Context, startupID string) (*deck.Pattern, error)
	Get(ctx context.Context, id string) (*deck.Pattern, error)
}

type Deps struct {
	Patterns    PatternSource
	Identity    deck.Identity
	Coordinator *deck.Coordinator
	Log         *zap.Logger
}

type loadState int

const (
	loadPending loadState = iota
	loadFailed
	loadDone
	loadExhausted
)

type submitState int

const (
	submitIdle submitState = iota
	submitRunning
	submitFailed
)

// App ties together the explore, survey and exercise screens.
type App struct {
	ctx    context.Context
	deps   Deps
	ui     config.UIConfig
	keys   keyMap
	router *Router
	log    *zap.Logger

	width  int
	height int

	// gen identifies the mounted card. Async results tagged with an older
	// generation are dropped.
	gen     int
	live    atomic.Int64
	screen  screenKind
	load    loadState
	loadErr error
	card    *deck.Card
	last    *deck.Pattern

	dialogCursor  int
	relatedCursor int

	dragging   bool
	dragStartX int
	dragCells  int
	exitFrame  int

	submit    submitState
	submitErr error
	pending   deck.Selection

	status   string
	quitting bool
}

func New(ctx context.Context, ui config.UIConfig, deps Deps) *App {
	if ui.NextURL == "" {
		ui.NextURL = explorePath
	}
	if ui.CellWidthPx <= 0 {
		ui.CellWidthPx = 8
	}
	if ui.SettleDelay <= 0 {
		ui.SettleDelay = deck.DefaultSettleDelay
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		ctx:           ctx,
		deps:          deps,
		ui:            ui,
		keys:          defaultKeys(),
		router:        NewRouter(deck.Route{Path: explorePath}),
		log:           log,
		relatedCursor: -1,
	}
}

func (a *App) Init() tea.Cmd {
	return a.enterRoute()
}

// enterRoute mounts the screen for the current route. Any previous card
// is torn down first.
func (a *App) enterRoute() tea.Cmd {
	a.gen++
	a.live.Store(int64(a.gen))
	a.card = nil
	a.load = loadPending
	a.loadErr = nil
	a.resetInteraction()
	route := a.router.Current()
	kind, id := match(route.Path)
	a.screen = kind
	a.log.Debug("route entered", zap.String("route", route.String()), zap.Int("gen", a.gen))
	if kind != screenExplore {
		return nil
	}
	return a.loadPattern(a.gen, id)
}

func (a *App) resetInteraction() {
	a.dialogCursor = 0
	a.relatedCursor = -1
	a.dragging = false
	a.dragCells = 0
	a.exitFrame = 0
	a.submit = submitIdle
	a.submitErr = nil
	a.pending = deck.Selection{}
}

func (a *App) loadPattern(gen int, id string) tea.Cmd {
	return func() tea.Msg {
		if id != "" {
			p, err := a.deps.Patterns.Get(a.ctx, id)
			return patternMsg{gen: gen, pattern: p, err: err}
		}
		startup, err := a.deps.Identity.CurrentStartup(a.ctx)
		if err != nil {
			return patternMsg{gen: gen, err: err}
		}
		p, err := a.deps.Patterns.Next(a.ctx, startup.DocumentID)
		return patternMsg{gen: gen, pattern: p, err: err}
	}
}

// routeCapture hands the route chosen by the coordinator back to the
// update loop, which owns the router.
type routeCapture struct {
	route deck.Route
}

func (r *routeCapture) GoTo(route deck.Route) { r.route = route }

func (a *App) submitCmd(gen int, p *deck.Pattern, sel deck.Selection) tea.Cmd {
	nextURL := a.ui.NextURL
	return func() tea.Msg {
		var nav routeCapture
		mounted := func() bool { return a.live.Load() == int64(gen) }
		moved, err := a.deps.Coordinator.SubmitAndNavigate(a.ctx, p, sel, nextURL, &nav, mounted)
		return submitDoneMsg{gen: gen, route: nav.route, moved: moved, err: err}
	}
}

// startExit runs the slide-out animation, or the settle delay when
// animation is off. Both end in exitDoneMsg.
func (a *App) startExit() tea.Cmd {
	a.exitFrame = 0
	gen := a.gen
	if a.ui.Animate {
		return exitTick(gen)
	}
	return tea.Tick(a.ui.SettleDelay, func(time.Time) tea.Msg { return exitDoneMsg{gen: gen} })
}

func exitTick(gen int) tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return exitFrameMsg{gen: gen} })
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return a.quit()
		}
		return a.handleKey(m)
	case tea.MouseMsg:
		return a.handleMouse(m)
	case patternMsg:
		if m.gen != a.gen {
			return a, nil
		}
		switch {
		case m.err != nil:
			a.load = loadFailed
			a.loadErr = m.err
			a.log.Warn("pattern load failed", zap.Error(m.err))
		case m.pattern == nil:
			a.load = loadExhausted
		default:
			a.load = loadDone
			a.card = deck.NewCard(m.pattern)
			a.last = m.pattern
		}
	case exitFrameMsg:
		if !a.exiting(m.gen) {
			return a, nil
		}
		a.exitFrame++
		if a.exitFrame < exitFrames {
			return a, exitTick(m.gen)
		}
		gen := m.gen
		return a, func() tea.Msg { return exitDoneMsg{gen: gen} }
	case exitDoneMsg:
		if !a.exiting(m.gen) {
			return a, nil
		}
		if _, ok := a.card.ExitComplete(); ok {
			a.dialogCursor = 0
		}
	case submitDoneMsg:
		if a.quitting {
			return a, tea.Quit
		}
		if m.gen != a.gen || (m.err == nil && !m.moved) {
			a.log.Debug("submission result for unmounted card dropped", zap.Int("gen", m.gen))
			return a, nil
		}
		if m.err != nil {
			a.submit = submitFailed
			a.submitErr = m.err
			a.status = ""
			return a, nil
		}
		a.status = "Saved: " + string(a.pending.Type) + " / " + string(a.pending.Value)
		if m.route.State == nil {
			a.router.Replace(m.route)
		} else {
			a.router.GoTo(m.route)
		}
		return a, a.enterRoute()
	case StatusMsg:
		a.status = m.Text
		if m.IsErr {
			a.status = "error: " + m.Text
		}
	}
	return a, nil
}

// quit exits, unless a submission is in flight. Then the exit waits for
// its result so the write is not cut off.
func (a *App) quit() (tea.Model, tea.Cmd) {
	if a.submit == submitRunning {
		a.quitting = true
		a.status = "Finishing save before exit..."
		return a, nil
	}
	return a, tea.Quit
}

func (a *App) exiting(gen int) bool {
	return gen == a.gen && a.card != nil && a.card.Phase() == deck.CardExiting
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	dialogOpen := a.card != nil && a.card.Phase() == deck.CardDialogOpen
	if !dialogOpen && key.Matches(m, a.keys.Quit) {
		return a.quit()
	}
	switch a.screen {
	case screenSurvey, screenExercise:
		if key.Matches(m, a.keys.Open) {
			return a, a.continueFlow()
		}
		return a, nil
	case screenUnknown:
		if key.Matches(m, a.keys.Open) {
			a.router.GoTo(deck.Route{Path: explorePath})
			return a, a.enterRoute()
		}
		return a, nil
	}
	return a.handleExploreKey(m)
}

// continueFlow leaves a follow-up screen for the nextUrl it was given.
func (a *App) continueFlow() tea.Cmd {
	next := a.ui.NextURL
	if st := a.router.Current().State; st != nil && st.NextURL != "" {
		next = st.NextURL
	}
	a.router.Replace(deck.Route{Path: next})
	return a.enterRoute()
}

func (a *App) handleExploreKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.load {
	case loadPending:
		return a, nil
	case loadFailed, loadExhausted:
		switch {
		case key.Matches(m, a.keys.Retry):
			return a, a.enterRoute()
		case key.Matches(m, a.keys.Back):
			if a.router.Back() {
				return a, a.enterRoute()
			}
		}
		return a, nil
	}

	switch a.submit {
	case submitRunning:
		return a, nil
	case submitFailed:
		switch {
		case key.Matches(m, a.keys.Retry):
			a.submit = submitRunning
			a.submitErr = nil
			return a, a.submitCmd(a.gen, a.card.Pattern(), a.pending)
		case key.Matches(m, a.keys.Back):
			a.card = deck.NewCard(a.card.Pattern())
			a.resetInteraction()
		}
		return a, nil
	}

	switch a.card.Phase() {
	case deck.CardPresenting:
		return a.handleCardKey(m)
	case deck.CardDialogOpen:
		return a.handleDialogKey(m)
	}
	return a, nil
}

func (a *App) handleCardKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	related := a.card.Pattern().RelatedPatterns
	switch {
	case key.Matches(m, a.keys.Reject):
		if a.card.Swipe(deck.DirectionLeft) {
			return a, a.startExit()
		}
	case key.Matches(m, a.keys.Accept):
		if a.card.Swipe(deck.DirectionRight) {
			return a, a.startExit()
		}
	case key.Matches(m, a.keys.Flip):
		a.card.ToggleFlip()
	case key.Matches(m, a.keys.Related):
		if len(related) > 0 {
			a.relatedCursor = (a.relatedCursor + 1) % len(related)
		}
	case key.Matches(m, a.keys.Open):
		if a.relatedCursor >= 0 && a.relatedCursor < len(related) {
			a.router.GoTo(deck.Route{Path: deck.ExplorePath(related[a.relatedCursor].DocumentID)})
			return a, a.enterRoute()
		}
	case key.Matches(m, a.keys.Back):
		if a.router.Back() {
			return a, a.enterRoute()
		}
	}
	return a, nil
}

func (a *App) handleDialogKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	d, _ := a.card.Dialog()
	switch {
	case key.Matches(m, a.keys.Up):
		if a.dialogCursor > 0 {
			a.dialogCursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.dialogCursor < len(d.Actions)-1 {
			a.dialogCursor++
		}
	case key.Matches(m, a.keys.Select):
		return a, a.choose(a.dialogCursor)
	case key.Matches(m, a.keys.Back):
		a.card.Cancel()
		a.dialogCursor = 0
	default:
		if s := m.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			return a, a.choose(int(s[0] - '1'))
		}
	}
	return a, nil
}

// choose records the dialog action at i and starts the submission.
func (a *App) choose(i int) tea.Cmd {
	sel, ok := a.card.SelectIndex(i)
	if !ok {
		return nil
	}
	a.pending = sel
	a.submit = submitRunning
	a.log.Info("response chosen",
		zap.String("pattern", a.card.Pattern().DocumentID),
		zap.String("type", string(sel.Type)),
		zap.String("response", string(sel.Value)))
	return a.submitCmd(a.gen, a.card.Pattern(), sel)
}

func (a *App) handleMouse(m tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.screen != screenExplore || a.card == nil || a.submit != submitIdle {
		return a, nil
	}
	switch m.Action {
	case tea.MouseActionPress:
		if m.Button == tea.MouseButtonLeft && a.card.Phase() == deck.CardPresenting {
			a.dragging = true
			a.dragStartX = m.X
			a.dragCells = 0
		}
	case tea.MouseActionMotion:
		if a.dragging {
			a.dragCells = m.X - a.dragStartX
		}
	case tea.MouseActionRelease:
		if !a.dragging {
			return a, nil
		}
		a.dragging = false
		a.dragCells = 0
		offset := float64(m.X-a.dragStartX) * a.ui.CellWidthPx
		if a.card.DragEnd(offset) {
			return a, a.startExit()
		}
	}
	return a, nil
}

// messages
type patternMsg struct {
	gen     int
	pattern *deck.Pattern
	err     error
}

type exitFrameMsg struct{ gen int }

type exitDoneMsg struct{ gen int }

type submitDoneMsg struct {
	gen   int
	route deck.Route
	moved bool
	err   error
}

// StatusMsg sets the status line. It is sent from outside the program,
// e.g. when the catalog is reloaded.
type StatusMsg struct {
	Text  string
	IsErr bool
}
