package deck

// Action is one dialog button.
type Action struct {
	Label string
	Value ResponseValue
}

var acceptActions = []Action{
	{Label: "Share reflection", Value: ShareReflection},
	{Label: "Perform exercise", Value: PerformExercise},
	{Label: "Think about it later", Value: ThinkLater},
}

var rejectActions = []Action{
	{Label: "Already addressed", Value: AlreadyAddressed},
	{Label: "Maybe later", Value: MaybeLater},
	{Label: "Can't see value", Value: NoValue},
	{Label: "Don't get it", Value: DontUnderstand},
}

const (
	acceptTitle = "Great! What would you like to do?"
	rejectTitle = "Why are you passing?"
)

// Actions returns the ordered action list for a branch. The slice is a copy.
func Actions(t ResponseType) []Action {
	var src []Action
	switch t {
	case ResponseAccept:
		src = acceptActions
	case ResponseReject:
		src = rejectActions
	default:
		return nil
	}
	out := make([]Action, len(src))
	copy(out, src)
	return out
}

// Dialog is the follow-up question shown after the card exits.
type Dialog struct {
	Type    ResponseType
	Title   string
	Actions []Action
}

// DialogFor builds the dialog for a response branch.
func DialogFor(t ResponseType) Dialog {
	title := acceptTitle
	if t == ResponseReject {
		title = rejectTitle
	}
	return Dialog{Type: t, Title: title, Actions: Actions(t)}
}

// Action returns the action at index i, if any.
func (d Dialog) Action(i int) (Action, bool) {
	if i < 0 || i >= len(d.Actions) {
		return Action{}, false
	}
	return d.Actions[i], true
}
