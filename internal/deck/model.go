// Package deck holds the swipe-to-decision pipeline for a single pattern
// card: gesture classification, card presentation state, the response
// dialog, submission and route resolution. It has no UI or storage
// dependencies; collaborators are passed in as interfaces.
package deck

import (
	"fmt"
	"time"
)

// Category groups patterns on the card header.
type Category string

const (
	CategoryEntrepreneur Category = "entrepreneur"
	CategoryTeam         Category = "team"
	CategoryStakeholders Category = "stakeholders"
	CategoryProduct      Category = "product"
	CategoryMarket       Category = "market"
	CategoryFinance      Category = "finance"
)

var categoryNames = map[Category]string{
	CategoryEntrepreneur: "Entrepreneur",
	CategoryTeam:         "Team",
	CategoryStakeholders: "Stakeholders",
	CategoryProduct:      "Product",
	CategoryMarket:       "Market",
	CategoryFinance:      "Finance",
}

var categoryIcons = map[Category]string{
	CategoryEntrepreneur: "🧭",
	CategoryTeam:         "👥",
	CategoryStakeholders: "🤝",
	CategoryProduct:      "🛠",
	CategoryMarket:       "📈",
	CategoryFinance:      "💰",
}

// DisplayName returns the header label, or the raw value for unknown categories.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

func (c Category) Icon() string {
	return categoryIcons[c]
}

func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// Phase is a startup lifecycle tag shown as a chip on the card back.
type Phase string

const (
	PhaseStart     Phase = "start"
	PhaseDiscovery Phase = "discovery"
	PhaseTransform Phase = "transformation"
	PhaseCreation  Phase = "creation"
	PhaseGrowth    Phase = "growth"
)

var phaseNames = map[Phase]string{
	PhaseStart:     "Start",
	PhaseDiscovery: "Discovery",
	PhaseTransform: "Transformation",
	PhaseCreation:  "Creation",
	PhaseGrowth:    "Growth",
}

func (p Phase) DisplayName() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return string(p)
}

// Image references card media by URL path.
type Image struct {
	URL string
}

// PatternRef is the lightweight form used for related patterns.
type PatternRef struct {
	DocumentID string
	Name       string
}

// Pattern is the item presented on a card. It is treated as immutable for
// the lifetime of one presentation.
type Pattern struct {
	DocumentID      string
	Name            string
	Description     string
	Category        Category
	Phases          []Phase
	Image           *Image
	RelatedPatterns []PatternRef
}

// ResponseType is the branch chosen by the swipe direction.
type ResponseType string

const (
	ResponseAccept ResponseType = "accept"
	ResponseReject ResponseType = "reject"
)

func (t ResponseType) Valid() bool {
	return t == ResponseAccept || t == ResponseReject
}

// Allows reports whether v belongs to this branch.
func (t ResponseType) Allows(v ResponseValue) bool {
	b, ok := v.Branch()
	return ok && b == t
}

// ResponseValue is the follow-up answer chosen in the dialog.
type ResponseValue string

const (
	ShareReflection  ResponseValue = "share_reflection"
	PerformExercise  ResponseValue = "perform_exercise"
	ThinkLater       ResponseValue = "think_later"
	AlreadyAddressed ResponseValue = "already_addressed"
	MaybeLater       ResponseValue = "maybe_later"
	NoValue          ResponseValue = "no_value"
	DontUnderstand   ResponseValue = "dont_understand"
)

var valueBranch = map[ResponseValue]ResponseType{
	ShareReflection:  ResponseAccept,
	PerformExercise:  ResponseAccept,
	ThinkLater:       ResponseAccept,
	AlreadyAddressed: ResponseReject,
	MaybeLater:       ResponseReject,
	NoValue:          ResponseReject,
	DontUnderstand:   ResponseReject,
}

// Branch returns the response type v belongs to.
func (v ResponseValue) Branch() (ResponseType, bool) {
	t, ok := valueBranch[v]
	return t, ok
}

// ParseResponse validates a stored (type, value) pair.
func ParseResponse(responseType, value string) (ResponseType, ResponseValue, error) {
	t := ResponseType(responseType)
	v := ResponseValue(value)
	if !t.Valid() {
		return "", "", fmt.Errorf("unknown response type %q", responseType)
	}
	if !t.Allows(v) {
		return "", "", fmt.Errorf("%w: %s/%s", ErrCrossBranch, responseType, value)
	}
	return t, v, nil
}

// Selection is the single (type, value) pair a dialog emits.
type Selection struct {
	Type  ResponseType
	Value ResponseValue
}

// Startup is the organization identity responses are recorded against.
type Startup struct {
	DocumentID string
	Name       string
}

// SubmissionRecord is the persisted response. It is created once per
// completed interaction and never updated.
type SubmissionRecord struct {
	ID           string
	StartupID    string
	PatternID    string
	ResponseType ResponseType
	Response     ResponseValue
	CreatedAt    time.Time
}
