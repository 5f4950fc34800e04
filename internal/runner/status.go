package runner

import (
	"github.com/vk/tweakrunner/internal/settings"
	"github.com/vk/tweakrunner/internal/tweak"
)

// Status is a point-in-time view of one tweak.
type Status struct {
	Name        string
	Key         string
	Description string
	Depth       int
	Enabled     bool
	Expanded    bool
	Active      bool
	AlwaysOn    bool
	Overrides   int
	Err         error
	Settings    settings.Settings
}

// Status lists every tweak in tree order.
func (r *Runner) Status() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Status
	r.each(func(i int) {
		n := r.nodes[i]
		st := n.settings.State()
		out = append(out, Status{
			Name:        n.name(),
			Key:         n.key,
			Description: n.inst.Metadata.Description,
			Depth:       n.depth,
			Enabled:     st.IsEnabled,
			Expanded:    st.IsExpanded,
			Active:      n.active,
			AlwaysOn:    n.alwaysOn(),
			Overrides:   len(n.registry.Declarations()),
			Err:         n.failure,
			Settings:    n.settings,
		})
	})
	return out
}

// Tweak returns the live instance registered under a display name or type
// key.
func (r *Runner) Tweak(name string) (tweak.Tweak, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.find(name)
	if !ok {
		return nil, false
	}
	return r.nodes[idx].inst.Tweak, true
}
