package deck

import "fmt"

// NavState is auxiliary state carried to a follow-up screen so it can
// continue the flow afterward.
type NavState struct {
	NextURL string
}

// Route is a navigation target.
type Route struct {
	Path  string
	State *NavState
}

func (r Route) String() string {
	if r.State == nil {
		return r.Path
	}
	return fmt.Sprintf("%s (next %s)", r.Path, r.State.NextURL)
}

func SurveyPath(patternID string) string {
	return fmt.Sprintf("/progress/%s/survey", patternID)
}

func ExercisePath(patternID string) string {
	return fmt.Sprintf("/progress/%s/exercise", patternID)
}

func ExplorePath(patternID string) string {
	return fmt.Sprintf("/explore/%s", patternID)
}

// Resolve picks the screen that follows a recorded response. Only
// share_reflection and perform_exercise have dedicated screens; every other
// response continues to nextURL.
func Resolve(t ResponseType, v ResponseValue, patternID, nextURL string) Route {
	if t == ResponseAccept {
		switch v {
		case ShareReflection:
			return Route{Path: SurveyPath(patternID), State: &NavState{NextURL: nextURL}}
		case PerformExercise:
			return Route{Path: ExercisePath(patternID), State: &NavState{NextURL: nextURL}}
		}
	}
	return Route{Path: nextURL}
}
