package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/patterndeck/internal/deck"
)

func (a *App) View() string {
	var body string
	switch a.screen {
	case screenExplore:
		body = a.renderExplore()
	case screenSurvey:
		body = a.renderFollowUp("Share your reflection",
			"Write down what this pattern changed in how you see your startup.")
	case screenExercise:
		body = a.renderFollowUp("Exercise",
			"Work through the exercise for this pattern with your team.")
	default:
		body = titleStyle.Render("Nothing here") + "\n" +
			mutedStyle.Render(a.router.Current().Path) + "\n\n" +
			renderHelp([]key.Binding{a.keys.Open, a.keys.Quit})
	}
	if a.status != "" {
		body += "\n\n" + successStyle.Render(a.status)
	}
	if a.card != nil && a.card.Phase() == deck.CardDialogOpen {
		return renderPopup(body, a.renderDialog(), a.width, a.height)
	}
	return body
}

func (a *App) renderExplore() string {
	title := titleStyle.Render("Explore patterns")
	switch a.load {
	case loadPending:
		return title + "\n\n" + mutedStyle.Render("Loading patterns...")
	case loadFailed:
		msg := errorStyle.Render("Error loading patterns")
		if a.loadErr != nil {
			msg += "\n" + mutedStyle.Render(a.loadErr.Error())
		}
		return title + "\n\n" + msg + "\n\n" + renderHelp([]key.Binding{helpAs(a.keys.Retry, "try again"), a.keys.Quit})
	case loadExhausted:
		return title + "\n\n" + successStyle.Render("You have responded to every pattern.") +
			"\n\n" + renderHelp([]key.Binding{helpAs(a.keys.Retry, "refresh"), a.keys.Quit})
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	state := a.card.State()
	switch {
	case state.Visible:
		b.WriteString(shiftRight(a.renderCard(), a.dragCells))
	case a.card.Phase() == deck.CardExiting:
		step := a.exitFrame * exitStepCells
		if state.Exit == deck.DirectionLeft {
			step = -step
		}
		b.WriteString(shiftRight(a.renderCard(), step))
	default:
		b.WriteString(mutedStyle.Render(a.card.Pattern().Name))
	}
	b.WriteString("\n\n")

	switch a.submit {
	case submitRunning:
		b.WriteString(mutedStyle.Render("Saving response..."))
	case submitFailed:
		b.WriteString(errorStyle.Render("Could not save your response"))
		if a.submitErr != nil {
			b.WriteString("\n" + mutedStyle.Render(a.submitErr.Error()))
		}
		b.WriteString("\n\n" + renderHelp([]key.Binding{a.keys.Retry, helpAs(a.keys.Back, "back to card")}))
	default:
		if state.Visible {
			b.WriteString(renderHelp(a.keys.cardHelp(len(a.card.Pattern().RelatedPatterns) > 0)))
		}
	}
	return b.String()
}

func (a *App) renderCard() string {
	p := a.card.Pattern()
	if a.card.State().Flipped {
		return cardStyle.Render(renderBack(p))
	}
	return cardStyle.Render(renderFront(p, a.relatedCursor))
}

func renderFront(p *deck.Pattern, cursor int) string {
	var b strings.Builder
	header := p.Category.DisplayName()
	if icon := p.Category.Icon(); icon != "" {
		header = icon + " " + header
	}
	b.WriteString(categoryStyle(p.Category).Render(header))
	b.WriteString("\n\n")
	if p.Image != nil && p.Image.URL != "" {
		b.WriteString(imageStyle.Render("[ " + p.Image.URL + " ]"))
	} else {
		b.WriteString(imageStyle.Render("[ no image ]"))
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(p.Name))
	if len(p.RelatedPatterns) > 0 {
		b.WriteString("\n\n" + mutedStyle.Render("Related"))
		for i, r := range p.RelatedPatterns {
			style := relatedStyle
			if i == cursor {
				style = relatedActiveStyle
			}
			b.WriteString("\n  " + style.Render(r.Name))
		}
	}
	return b.String()
}

func renderBack(p *deck.Pattern) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(p.Name))
	b.WriteString("\n\n")
	desc := p.Description
	if desc == "" {
		desc = "No description yet."
	}
	b.WriteString(desc)
	if len(p.Phases) > 0 {
		chips := make([]string, 0, len(p.Phases))
		for _, ph := range p.Phases {
			chips = append(chips, chipStyle.Render(ph.DisplayName()))
		}
		b.WriteString("\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, chips...))
	}
	return b.String()
}

func (a *App) renderDialog() string {
	d, _ := a.card.Dialog()
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n")
	for i, act := range d.Actions {
		line := fmt.Sprintf("%d. %s", i+1, act.Label)
		if i == a.dialogCursor {
			b.WriteString("\n" + cursorStyle.Render("› "+line))
			continue
		}
		b.WriteString("\n  " + line)
	}
	b.WriteString("\n\n" + renderHelp(a.keys.dialogHelp()))
	return b.String()
}

func (a *App) renderFollowUp(title, prompt string) string {
	route := a.router.Current()
	_, id := match(route.Path)
	name := id
	if a.last != nil && a.last.DocumentID == id {
		name = a.last.Name
	}
	next := a.ui.NextURL
	if route.State != nil && route.State.NextURL != "" {
		next = route.State.NextURL
	}
	return titleStyle.Render(title) + "\n" +
		mutedStyle.Render("Pattern: "+name) + "\n\n" +
		prompt + "\n\n" +
		renderHelp([]key.Binding{helpAs(a.keys.Open, "continue to "+next), a.keys.Quit})
}

func helpAs(b key.Binding, desc string) key.Binding {
	b.SetHelp(b.Help().Key, desc)
	return b
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" && h.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(h.Key)+" "+helpStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
