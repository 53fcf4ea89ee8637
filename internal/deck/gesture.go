package deck

// SwipeThreshold is the horizontal drag distance, in device-independent
// pixels, a drag must exceed to count as a swipe.
const SwipeThreshold = 100.0

// Direction is the outcome of a drag or the card's exit direction.
type Direction string

const (
	DirectionNone  Direction = "none"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Classify maps a drag-end horizontal offset to a swipe direction.
// Offsets of exactly ±SwipeThreshold do not swipe.
func Classify(offsetX float64) Direction {
	switch {
	case offsetX > SwipeThreshold:
		return DirectionRight
	case offsetX < -SwipeThreshold:
		return DirectionLeft
	default:
		return DirectionNone
	}
}

// ResponseType returns the dialog branch an exit direction leads to.
func (d Direction) ResponseType() (ResponseType, bool) {
	switch d {
	case DirectionRight:
		return ResponseAccept, true
	case DirectionLeft:
		return ResponseReject, true
	default:
		return "", false
	}
}
