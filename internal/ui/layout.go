// Package ui defines the immediate-mode drawing surface tweaks render their
// controls on, and a terminal implementation of it.
package ui

// Layout is an immediate-mode drawing surface. Controls are drawn every frame
// and report user interaction through their return values.
type Layout interface {
	// Toggle draws a labelled checkbox and returns its value after this
	// frame's interaction.
	Toggle(id, label string, on bool) bool
	// Label draws static text.
	Label(text string)
	// Separator draws a horizontal rule.
	Separator()
	// Indent increases the nesting depth of following controls.
	Indent()
	// Unindent reverses one Indent.
	Unindent()
}

// Control ids used by the runner. Hosts that script interactions refer to
// them by these prefixes.
const (
	EnableID = "enable:"
	ExpandID = "expand:"
)
