package tui

import (
	"strings"

	"github.com/jask/patterndeck/internal/deck"
)

// Router is a stack of visited routes.
type Router struct {
	items []deck.Route
}

func NewRouter(start deck.Route) *Router {
	r := &Router{}
	r.GoTo(start)
	return r
}

func (r *Router) GoTo(route deck.Route) {
	if route.Path == "" {
		return
	}
	r.items = append(r.items, route)
}

// Replace swaps the current route for route. A plain route equal to the
// one below it collapses into it, so repeated visits don't stack up.
func (r *Router) Replace(route deck.Route) {
	if route.Path == "" {
		return
	}
	n := len(r.items)
	if n == 0 {
		r.items = append(r.items, route)
		return
	}
	r.items[n-1] = route
	if n > 1 && route.State == nil && r.items[n-2].State == nil && r.items[n-2].Path == route.Path {
		r.items = r.items[:n-1]
	}
}

// Back drops the current route. The first route is never removed.
func (r *Router) Back() bool {
	if len(r.items) <= 1 {
		return false
	}
	r.items = r.items[:len(r.items)-1]
	return true
}

func (r *Router) Current() deck.Route {
	if len(r.items) == 0 {
		return deck.Route{}
	}
	return r.items[len(r.items)-1]
}

func (r *Router) Len() int {
	return len(r.items)
}

type screenKind int

const (
	screenExplore screenKind = iota
	screenSurvey
	screenExercise
	screenUnknown
)

// match maps a path to a screen and the pattern id it carries, if any.
func match(path string) (screenKind, string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) >= 1 && parts[0] == "explore":
		if len(parts) == 2 && parts[1] != "" {
			return screenExplore, parts[1]
		}
		if len(parts) == 1 {
			return screenExplore, ""
		}
	case len(parts) == 3 && parts[0] == "progress" && parts[2] == "survey":
		return screenSurvey, parts[1]
	case len(parts) == 3 && parts[0] == "progress" && parts[2] == "exercise":
		return screenExercise, parts[1]
	}
	return screenUnknown, ""
}
