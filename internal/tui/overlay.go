package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var popupStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorAccent).
	Padding(1, 2)

// renderPopup draws popup centered over base, keeping base visible around it.
func renderPopup(base, popup string, width, height int) string {
	if width <= 0 || height <= 0 {
		return base + "\n\n" + popup
	}
	rendered := popupStyle.Render(popup)
	box := strings.Split(rendered, "\n")
	top := max((height-len(box))/2, 0)
	left := max((width-lipgloss.Width(rendered))/2, 0)

	rows := canvasRows(base, width, height)
	for i, line := range box {
		if top+i >= height {
			break
		}
		rows[top+i] = spliceAt(rows[top+i], line, left, width)
	}
	return strings.Join(rows, "\n")
}

// canvasRows cuts or pads s to exactly height rows of width cells.
func canvasRows(s string, width, height int) []string {
	rows := strings.Split(s, "\n")
	if len(rows) > height {
		rows = rows[:height]
	}
	for len(rows) < height {
		rows = append(rows, "")
	}
	for i := range rows {
		rows[i] = padCells(rows[i], width)
	}
	return rows
}

// spliceAt writes over onto row starting at cell col.
func spliceAt(row, over string, col, width int) string {
	head := ansi.Truncate(row, col, "")
	tail := dropColumns(row, col+ansi.StringWidth(over))
	return padCells(head+over+tail, width)
}

func dropColumns(s string, cols int) string {
	if cols <= 0 {
		return s
	}
	return strings.TrimPrefix(s, ansi.Truncate(s, cols, ""))
}

func padCells(s string, width int) string {
	s = ansi.Truncate(s, width, "")
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// shiftRight indents every line of s by n columns; negative n trims from
// the left. Used to draw the card following a drag.
func shiftRight(s string, n int) string {
	if n == 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if n > 0 {
			lines[i] = strings.Repeat(" ", n) + l
		} else {
			lines[i] = dropColumns(l, -n)
		}
	}
	return strings.Join(lines, "\n")
}
