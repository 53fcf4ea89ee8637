package deck

import "time"

// DefaultSettleDelay bridges the exit animation and the dialog when the
// presenter cannot report animation completion. It must be at least as
// long as the exit transition.
const DefaultSettleDelay = 100 * time.Millisecond

// CardPhase is the position of a card in its swipe/dialog lifecycle.
type CardPhase int

const (
	CardPresenting CardPhase = iota
	CardExiting
	CardDialogOpen
	CardResolved
)

func (p CardPhase) String() string {
	switch p {
	case CardPresenting:
		return "presenting"
	case CardExiting:
		return "exiting"
	case CardDialogOpen:
		return "dialog_open"
	case CardResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// PresentationState is the visible state of one card.
type PresentationState struct {
	Visible    bool
	Flipped    bool
	Exit       Direction
	DialogOpen bool
}

// InitialState is the state a card is mounted with and reset to on cancel.
func InitialState() PresentationState {
	return PresentationState{Visible: true, Exit: DirectionNone}
}

// Card drives the presentation of a single pattern. Inputs that do not
// apply to the current phase are ignored and report false.
type Card struct {
	pattern *Pattern
	phase   CardPhase
	state   PresentationState
	dialog  Dialog
}

func NewCard(p *Pattern) *Card {
	return &Card{pattern: p, phase: CardPresenting, state: InitialState()}
}

func (c *Card) Pattern() *Pattern        { return c.pattern }
func (c *Card) Phase() CardPhase         { return c.phase }
func (c *Card) State() PresentationState { return c.state }

// Dialog returns the open dialog, if any.
func (c *Card) Dialog() (Dialog, bool) {
	if c.phase != CardDialogOpen {
		return Dialog{}, false
	}
	return c.dialog, true
}

// DragEnd classifies a drag and swipes when it crosses the threshold.
func (c *Card) DragEnd(offsetX float64) bool {
	dir := Classify(offsetX)
	if dir == DirectionNone {
		return false
	}
	return c.Swipe(dir)
}

// Swipe starts the exit animation in the given direction.
func (c *Card) Swipe(dir Direction) bool {
	if c.phase != CardPresenting {
		return false
	}
	if dir != DirectionLeft && dir != DirectionRight {
		return false
	}
	c.phase = CardExiting
	c.state.Exit = dir
	c.state.Visible = false
	return true
}

// ExitComplete opens the dialog matching the exit direction.
func (c *Card) ExitComplete() (Dialog, bool) {
	if c.phase != CardExiting {
		return Dialog{}, false
	}
	t, ok := c.state.Exit.ResponseType()
	if !ok {
		return Dialog{}, false
	}
	c.dialog = DialogFor(t)
	c.phase = CardDialogOpen
	c.state.DialogOpen = true
	return c.dialog, true
}

// Select closes the dialog and returns the chosen response. Only the
// first selection of a dialog is accepted.
func (c *Card) Select(v ResponseValue) (Selection, bool) {
	if c.phase != CardDialogOpen || !c.dialog.Type.Allows(v) {
		return Selection{}, false
	}
	c.phase = CardResolved
	c.state.DialogOpen = false
	return Selection{Type: c.dialog.Type, Value: v}, true
}

// SelectIndex selects the dialog action at index i.
func (c *Card) SelectIndex(i int) (Selection, bool) {
	if c.phase != CardDialogOpen {
		return Selection{}, false
	}
	a, ok := c.dialog.Action(i)
	if !ok {
		return Selection{}, false
	}
	return c.Select(a.Value)
}

// Cancel is the dialog's Back action: the card returns as if never swiped.
func (c *Card) Cancel() bool {
	if c.phase != CardDialogOpen {
		return false
	}
	c.phase = CardPresenting
	c.state = InitialState()
	c.dialog = Dialog{}
	return true
}

// ToggleFlip turns the card over. Only valid while presenting.
func (c *Card) ToggleFlip() bool {
	if c.phase != CardPresenting {
		return false
	}
	c.state.Flipped = !c.state.Flipped
	return true
}
