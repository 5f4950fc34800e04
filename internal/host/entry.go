package host

import "github.com/vk/tweakrunner/internal/ui"

// Entry is the callback surface a host exposes to a mod framework. A nil
// field means the host has not claimed that callback.
type Entry struct {
	// OnToggle is called when the framework is switched on or off. Returning
	// false rejects the toggle.
	OnToggle func(on bool) bool
	// OnUpdate is called once per frame with the elapsed seconds.
	OnUpdate func(dt float64)
	// OnGUI draws the framework's settings panel.
	OnGUI func(l ui.Layout)
	// OnHideGUI is called when the settings panel closes.
	OnHideGUI func()
	// OnSaveGUI is called when the host asks for settings to be written.
	OnSaveGUI func()
}
