// Package speed boosts the player's speed. It also carries a version gated
// armor override in a separate namespace and a nested Sprint tweak.
package speed

import (
	"fmt"
	"reflect"

	"github.com/vk/tweakrunner/internal/host"
	"github.com/vk/tweakrunner/internal/patch"
	"github.com/vk/tweakrunner/internal/runner"
	"github.com/vk/tweakrunner/internal/settings"
	"github.com/vk/tweakrunner/internal/tweak"
	"github.com/vk/tweakrunner/internal/ui"
)

// Module registers the speed tweak and its children.
type Module struct{}

// Settings of the speed boost.
type Settings struct {
	settings.Base
	Multiplier float64 `hcl:"multiplier,optional"`
	Armor      bool    `hcl:"armor,optional"`
}

// SetDefaults implements settings.Defaulter.
func (s *Settings) SetDefaults() {
	s.Multiplier = 1.5
	s.Armor = true
}

// Tweak multiplies the Speed property and refuses negative speeds.
type Tweak struct {
	tweak.Base
	Settings *Settings `tweak:"settings"`
}

// Metadata implements tweak.Described.
func (t *Tweak) Metadata() tweak.Metadata {
	return tweak.Metadata{
		Name:        "Speed Boost",
		Description: "multiplies player speed",
		Priority:    10,
		Settings:    tweak.TypeOf[Settings](),
		Patches:     tweak.TypeOf[armor](),
		Children:    []reflect.Type{tweak.TypeOf[Sprint]()},
	}
}

// Patches returns the overrides of the tweak.
func (t *Tweak) Patches() []patch.Declaration {
	return []patch.Declaration{
		patch.After(t.boost, patch.On("Game.Player.Speed"), patch.Kind(host.KindGetter)),
		patch.Before(t.rejectNegative, patch.On("set.Game.Player.Speed")),
	}
}

func (t *Tweak) boost(c *host.Call) {
	if v, ok := c.Result.(float64); ok {
		c.Result = v * t.multiplier()
	}
}

func (t *Tweak) rejectNegative(c *host.Call) bool {
	v, ok := c.Args[0].(float64)
	return !ok || v >= 0
}

func (t *Tweak) multiplier() float64 {
	if t.Settings == nil {
		return 1
	}
	return t.Settings.Multiplier
}

// OnGUI implements tweak.Tweak.
func (t *Tweak) OnGUI(l ui.Layout) {
	l.Label(fmt.Sprintf("multiplier: x%.2f", t.multiplier()))
	if t.Settings != nil {
		t.Settings.Armor = l.Toggle("speed:armor", "halve damage on older hosts", t.Settings.Armor)
	}
}

// Register adds the tweak to the runner.
func (m *Module) Register(r *runner.Runner) error {
	return r.Register(tweak.TypeOf[Tweak]())
}
