package banner

import (
	"fmt"
	"log/slog"

	"github.com/vk/tweakrunner/internal/host"
	"github.com/vk/tweakrunner/internal/patch"
	"github.com/vk/tweakrunner/internal/runner"
	"github.com/vk/tweakrunner/internal/tweak"
	"github.com/vk/tweakrunner/internal/ui"
)

// Suffix is appended to the session title while the banner is installed.
const Suffix = " [modded]"

// Module registers the session banner.
type Module struct{}

// Tweak marks the session as modded and counts the players created. It
// cannot be switched off.
type Tweak struct {
	tweak.Base
	Log *slog.Logger `tweak:"logger"`

	players int
}

// Metadata implements tweak.Described.
func (t *Tweak) Metadata() tweak.Metadata {
	return tweak.Metadata{
		Name:              "Session Banner",
		Description:       "marks the session as modded",
		Priority:          -10,
		MustNotBeDisabled: true,
	}
}

// Patches returns the overrides of the tweak.
func (t *Tweak) Patches() []patch.Declaration {
	return []patch.Declaration{
		patch.After(t.title, patch.On("get.Game.Session.Title")),
		patch.After(t.created, patch.On("Game.Player.ctor")),
		patch.After(t.created, patch.On("Game.Player.ctor(string)")),
		patch.After(t.initialized, patch.On("Game.Player..cctor")),
	}
}

func (t *Tweak) title(c *host.Call) {
	if s, ok := c.Result.(string); ok {
		c.Result = s + Suffix
	}
}

func (t *Tweak) created(*host.Call) { t.players++ }

func (t *Tweak) initialized(*host.Call) {
	if t.Log != nil {
		t.Log.Info("Player type initialized.")
	}
}

// OnGUI implements tweak.Tweak.
func (t *Tweak) OnGUI(l ui.Layout) {
	l.Label(fmt.Sprintf("players created: %d", t.players))
}

// Players returns how many players were constructed while installed.
func (t *Tweak) Players() int { return t.players }

// Register adds the tweak to the runner.
func (m *Module) Register(r *runner.Runner) error {
	return r.Register(tweak.TypeOf[Tweak]())
}
