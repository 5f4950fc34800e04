package runner

import (
	"fmt"
)

// enable activates a node when its persisted flag is set and its parent is
// active: OnEnable, install overrides, OnPatch, then the children. An
// installation failure reverts whatever was installed and leaves the node
// inert; siblings are unaffected.
func (r *Runner) enable(idx int) {
	n := r.nodes[idx]
	if !r.started || n.active || !n.settings.State().IsEnabled {
		return
	}
	if n.parent >= 0 && !r.nodes[n.parent].active {
		return
	}

	if err := r.hook(n, "OnEnable", n.inst.Tweak.OnEnable); err != nil {
		n.failure = err
		return
	}
	if err := n.registry.Apply(); err != nil {
		n.registry.Revert()
		n.failure = err
		n.logger.Error("Failed to enable tweak, it stays inert.", "error", err)
		return
	}
	n.active = true
	n.failure = nil
	_ = r.hook(n, "OnPatch", n.inst.Tweak.OnPatch)
	n.logger.Info("Tweak enabled.", "overrides", len(n.registry.Declarations()))

	for _, c := range n.children {
		r.enable(c)
	}
}

// disable deactivates a node: OnDisable, revert overrides, OnUnpatch, then
// the children. Always-on nodes ignore it unless force is set. Children are
// always forced so none stays active under an inactive parent.
func (r *Runner) disable(idx int, force bool) {
	n := r.nodes[idx]
	if n.alwaysOn() && !force {
		n.logger.Debug("Ignoring disable of always-on tweak.")
		return
	}

	if n.active {
		_ = r.hook(n, "OnDisable", n.inst.Tweak.OnDisable)
		n.registry.Revert()
		n.active = false
		_ = r.hook(n, "OnUnpatch", n.inst.Tweak.OnUnpatch)
		n.logger.Info("Tweak disabled.")
	}

	for _, c := range n.children {
		r.disable(c, true)
	}
}

// SetEnabled is the user-facing enable control. It updates the persisted
// flag and, while the framework is on, enables or disables the tweak and its
// children. Enabling also expands the tweak's detail view.
func (r *Runner) SetEnabled(name string, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.find(name)
	if !ok {
		return fmt.Errorf("unknown tweak %q", name)
	}
	return r.setEnabled(idx, on)
}

func (r *Runner) setEnabled(idx int, on bool) error {
	n := r.nodes[idx]
	if !on && n.alwaysOn() {
		return fmt.Errorf("tweak %q must not be disabled", n.name())
	}
	st := n.settings.State()
	st.IsEnabled = on
	if on {
		st.IsExpanded = true
		r.enable(idx)
		return n.failure
	}
	r.disable(idx, false)
	return nil
}

// SetExpanded shows or hides a tweak's detail view. Collapsing fires
// OnHideGUI whether or not the tweak is enabled.
func (r *Runner) SetExpanded(name string, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.find(name)
	if !ok {
		return fmt.Errorf("unknown tweak %q", name)
	}
	r.setExpanded(idx, on)
	return nil
}

func (r *Runner) setExpanded(idx int, on bool) {
	n := r.nodes[idx]
	st := n.settings.State()
	if st.IsExpanded == on {
		return
	}
	st.IsExpanded = on
	if !on {
		_ = r.hook(n, "OnHideGUI", n.inst.Tweak.OnHideGUI)
	}
}

// hook runs a tweak callback and turns a panic into an error so one tweak
// cannot take the host down.
func (r *Runner) hook(n *node, name string, fn func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("tweak %s: %s panicked: %v", n.name(), name, p)
			n.logger.Error("Tweak hook panicked.", "hook", name, "panic", p)
		}
	}()
	fn()
	return nil
}
