package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorOn   = lipgloss.Color("82")
	colorOff  = lipgloss.Color("240")
	colorNoun = lipgloss.Color("14")

	styleOn    = lipgloss.NewStyle().Foreground(colorOn)
	styleOff   = lipgloss.NewStyle().Foreground(colorOff)
	styleLabel = lipgloss.NewStyle().Foreground(colorNoun)
	styleRule  = lipgloss.NewStyle().Faint(true)
)

const indentWidth = 2

// Text is a Layout that renders to lines of styled terminal text. Presses
// queued with Press are consumed by the next frame that draws the matching
// control, which makes it usable both from the CLI and from tests.
type Text struct {
	presses map[string]int
	lines   []string
	depth   int
}

// NewText creates an empty text layout.
func NewText() *Text {
	return &Text{presses: make(map[string]int)}
}

// Press queues a click on the control with the given id.
func (t *Text) Press(id string) {
	t.presses[id]++
}

// Pending reports whether any queued press was not consumed yet.
func (t *Text) Pending() bool {
	return len(t.presses) > 0
}

// Reset clears the rendered lines, keeping queued presses.
func (t *Text) Reset() {
	t.lines = t.lines[:0]
	t.depth = 0
}

// Toggle implements Layout.
func (t *Text) Toggle(id, label string, on bool) bool {
	if n := t.presses[id]; n > 0 {
		if n == 1 {
			delete(t.presses, id)
		} else {
			t.presses[id] = n - 1
		}
		on = !on
	}
	box := styleOff.Render("[ ]")
	if on {
		box = styleOn.Render("[x]")
	}
	t.add(box + " " + label)
	return on
}

// Label implements Layout.
func (t *Text) Label(text string) {
	t.add(styleLabel.Render(text))
}

// Separator implements Layout.
func (t *Text) Separator() {
	t.add(styleRule.Render(strings.Repeat("-", 24)))
}

// Indent implements Layout.
func (t *Text) Indent() {
	t.depth++
}

// Unindent implements Layout.
func (t *Text) Unindent() {
	if t.depth > 0 {
		t.depth--
	}
}

// Lines returns the rendered lines of the current frame.
func (t *Text) Lines() []string {
	return append([]string(nil), t.lines...)
}

// String renders the frame as a newline separated block.
func (t *Text) String() string {
	return strings.Join(t.lines, "\n")
}

func (t *Text) add(s string) {
	t.lines = append(t.lines, strings.Repeat(" ", t.depth*indentWidth)+s)
}
