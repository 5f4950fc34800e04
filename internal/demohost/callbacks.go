package demohost

import "github.com/vk/tweakrunner/internal/ui"

// Toggle switches the mod framework on or off through the entry. It reports
// false when nothing is attached or the framework rejected the toggle.
func (g *Game) Toggle(on bool) bool {
	if g.entry.OnToggle == nil {
		return false
	}
	return g.entry.OnToggle(on)
}

// Frame advances the session clock and delivers the update callback.
func (g *Game) Frame(dt float64) {
	g.session.Methods("Tick")[0].Call(g.state, dt)
	if g.entry.OnUpdate != nil {
		g.entry.OnUpdate(dt)
	}
}

// DrawGUI renders the settings panel into l.
func (g *Game) DrawGUI(l ui.Layout) {
	if g.entry.OnGUI != nil {
		g.entry.OnGUI(l)
	}
}

// CloseGUI tells the framework the settings panel was closed.
func (g *Game) CloseGUI() {
	if g.entry.OnHideGUI != nil {
		g.entry.OnHideGUI()
	}
}

// Save asks the framework to persist its settings.
func (g *Game) Save() {
	if g.entry.OnSaveGUI != nil {
		g.entry.OnSaveGUI()
	}
}
