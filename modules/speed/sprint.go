package speed

import (
	"fmt"

	"github.com/vk/tweakrunner/internal/demohost"
	"github.com/vk/tweakrunner/internal/host"
	"github.com/vk/tweakrunner/internal/patch"
	"github.com/vk/tweakrunner/internal/settings"
	"github.com/vk/tweakrunner/internal/tweak"
	"github.com/vk/tweakrunner/internal/ui"
	"github.com/vk/tweakrunner/modules/jumplog"
)

// SprintSettings of the sprint child.
type SprintSettings struct {
	settings.Base
	Bonus float64 `hcl:"bonus,optional"`
}

// SetDefaults implements settings.Defaulter.
func (s *SprintSettings) SetDefaults() { s.Bonus = 0.5 }

// Sprint adds distance on every move, more for players who jump a lot. It
// only runs while Speed Boost is active.
type Sprint struct {
	tweak.Base
	Settings *SprintSettings `tweak:"settings"`
	Jumps    *jumplog.Tweak  `tweak:"module"`

	sprinted float64
}

// Metadata implements tweak.Described.
func (s *Sprint) Metadata() tweak.Metadata {
	return tweak.Metadata{
		Name:        "Sprint",
		Description: "extra distance per move",
		Settings:    tweak.TypeOf[SprintSettings](),
	}
}

// Patches returns the overrides of the tweak.
func (s *Sprint) Patches() []patch.Declaration {
	return []patch.Declaration{patch.After(s.Game_Player_Move)}
}

// Game_Player_Move adds the sprint bonus to the distance moved.
func (s *Sprint) Game_Player_Move(c *host.Call) {
	total, ok := c.Result.(float64)
	if !ok || s.Settings == nil {
		return
	}
	extra := s.Settings.Bonus * c.Args[0].(float64)
	if s.Jumps != nil {
		extra *= 1 + float64(s.Jumps.Count())/10
	}
	if p, ok := c.Instance.(*demohost.Player); ok {
		p.Distance += extra
	}
	s.sprinted += extra
	c.Result = total + extra
}

// OnEnable implements tweak.Tweak.
func (s *Sprint) OnEnable() { s.sprinted = 0 }

// OnGUI implements tweak.Tweak.
func (s *Sprint) OnGUI(l ui.Layout) {
	l.Label(fmt.Sprintf("sprinted: %.2f", s.sprinted))
}

// Sprinted returns the extra distance added since the tweak was enabled.
func (s *Sprint) Sprinted() float64 { return s.sprinted }
