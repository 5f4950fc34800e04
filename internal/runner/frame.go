package runner

import (
	"github.com/vk/tweakrunner/internal/host"
	"github.com/vk/tweakrunner/internal/ui"
)

// Update forwards a host frame to every active tweak.
func (r *Runner) Update(dt float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.each(func(i int) {
		n := r.nodes[i]
		if n.active {
			_ = r.hook(n, "OnUpdate", func() { n.inst.Tweak.OnUpdate(dt) })
		}
	})
}

// HideGUI tells every active tweak that the host panel closed.
func (r *Runner) HideGUI() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.each(func(i int) {
		n := r.nodes[i]
		if n.active {
			_ = r.hook(n, "OnHideGUI", n.inst.Tweak.OnHideGUI)
		}
	})
}

// Save flushes every shared settings instance.
func (r *Runner) Save() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.Settings.Save(r.ctx)
}

// GUI draws the tweak panel and applies the interactions it reports.
func (r *Runner) GUI(l ui.Layout) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, root := range r.roots {
		r.draw(l, root)
	}
}

func (r *Runner) draw(l ui.Layout, idx int) {
	n := r.nodes[idx]
	st := n.settings.State()
	md := n.inst.Metadata

	label := md.Name
	if md.Description != "" {
		label += " - " + md.Description
	}

	enabled := st.IsEnabled
	if n.alwaysOn() {
		l.Label(label)
	} else {
		enabled = l.Toggle(ui.EnableID+n.key, label, st.IsEnabled)
	}
	expanded := st.IsExpanded
	if st.IsEnabled {
		expanded = l.Toggle(ui.ExpandID+n.key, "details", st.IsExpanded)
	}

	if enabled != st.IsEnabled {
		if err := r.setEnabled(idx, enabled); err != nil {
			n.logger.Warn("Toggle did not take effect.", "error", err)
		}
		if enabled {
			expanded = true
		}
	}
	r.setExpanded(idx, expanded)

	if st.IsExpanded && st.IsEnabled {
		l.Indent()
		_ = r.hook(n, "OnGUI", func() { n.inst.Tweak.OnGUI(l) })
		for _, c := range n.children {
			r.draw(l, c)
		}
		l.Unindent()
		if !n.last {
			l.Separator()
		}
	}
}

// Attach wires the runner into a host's callbacks. Callbacks the host left
// unclaimed are taken over; claimed ones are wrapped so the host's handler
// runs first, except OnGUI with Config.PreGUI set, where the runner draws
// first.
func (r *Runner) Attach(e *host.Entry) {
	preGUI := r.cfg.PreGUI

	if prev := e.OnToggle; prev != nil {
		e.OnToggle = func(on bool) bool {
			if !prev(on) {
				return false
			}
			return r.OnToggle(on)
		}
	} else {
		e.OnToggle = r.OnToggle
	}

	if prev := e.OnUpdate; prev != nil {
		e.OnUpdate = func(dt float64) {
			prev(dt)
			r.Update(dt)
		}
	} else {
		e.OnUpdate = r.Update
	}

	if prev := e.OnGUI; prev != nil {
		e.OnGUI = func(l ui.Layout) {
			if preGUI {
				r.GUI(l)
				prev(l)
				return
			}
			prev(l)
			r.GUI(l)
		}
	} else {
		e.OnGUI = r.GUI
	}

	if prev := e.OnHideGUI; prev != nil {
		e.OnHideGUI = func() {
			prev()
			r.HideGUI()
		}
	} else {
		e.OnHideGUI = r.HideGUI
	}

	if prev := e.OnSaveGUI; prev != nil {
		e.OnSaveGUI = func() {
			prev()
			r.Save()
		}
	} else {
		e.OnSaveGUI = r.Save
	}
}
