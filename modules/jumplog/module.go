package jumplog

import (
	"fmt"
	"log/slog"

	"github.com/vk/tweakrunner/internal/host"
	"github.com/vk/tweakrunner/internal/patch"
	"github.com/vk/tweakrunner/internal/runner"
	"github.com/vk/tweakrunner/internal/settings"
	"github.com/vk/tweakrunner/internal/tweak"
	"github.com/vk/tweakrunner/internal/ui"
)

// Module registers the jump log tweak.
type Module struct{}

// Settings of the jump log.
type Settings struct {
	settings.Base
	Verbose bool `hcl:"verbose,optional"`
}

// Tweak counts player jumps and remembers the highest one.
type Tweak struct {
	tweak.Base
	Settings *Settings   `tweak:"settings"`
	Log      *slog.Logger `tweak:"logger"`

	jumps   int
	highest float64
}

// Metadata implements tweak.Described.
func (t *Tweak) Metadata() tweak.Metadata {
	return tweak.Metadata{
		Name:        "Jump Log",
		Description: "counts player jumps",
		Settings:    tweak.TypeOf[Settings](),
	}
}

// Patches returns the overrides of the tweak.
func (t *Tweak) Patches() []patch.Declaration {
	return []patch.Declaration{patch.After(t.Game_Player_Jump)}
}

// Game_Player_Jump runs after every jump.
func (t *Tweak) Game_Player_Jump(c *host.Call) {
	t.jumps++
	if h, ok := c.Result.(float64); ok && h > t.highest {
		t.highest = h
	}
	if t.Settings != nil && t.Settings.Verbose && t.Log != nil {
		t.Log.Info("Player jumped.", "height", c.Result, "jumps", t.jumps)
	}
}

// OnEnable starts a fresh count.
func (t *Tweak) OnEnable() {
	t.jumps = 0
	t.highest = 0
}

// OnGUI implements tweak.Tweak.
func (t *Tweak) OnGUI(l ui.Layout) {
	l.Label(fmt.Sprintf("jumps: %d, highest: %.2f", t.jumps, t.highest))
	if t.Settings != nil {
		t.Settings.Verbose = l.Toggle("jumplog:verbose", "log every jump", t.Settings.Verbose)
	}
}

// Count returns the jumps seen since the tweak was enabled.
func (t *Tweak) Count() int { return t.jumps }

// Highest returns the highest jump seen since the tweak was enabled.
func (t *Tweak) Highest() float64 { return t.highest }

// Register adds the tweak to the runner.
func (m *Module) Register(r *runner.Runner) error {
	return r.Register(tweak.TypeOf[Tweak]())
}
