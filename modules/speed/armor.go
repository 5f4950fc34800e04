package speed

import (
	"github.com/vk/tweakrunner/internal/demohost"
	"github.com/vk/tweakrunner/internal/host"
	"github.com/vk/tweakrunner/internal/patch"
)

// armor halves incoming damage. Hosts from version 21 on ship their own
// armor, so the plain Hit override is limited to 10..20.
type armor struct {
	Settings *Settings `tweak:"settings"`
}

func (a *armor) Patches() []patch.Declaration {
	return []patch.Declaration{
		patch.Before(a.Game_Player_Hit, patch.On("Game.Player.Hit(int)"), patch.Versions(10, 20)),
	}
}

func (a *armor) Nested() []any {
	return []any{namedHits{}}
}

func (a *armor) Game_Player_Hit(c *host.Call) {
	if a.Settings != nil && a.Settings.Armor {
		c.Args[0] = c.Args[0].(int) / 2
	}
}

// namedHits ignores damage the player deals to themselves.
type namedHits struct{}

func (namedHits) Patches() []patch.Declaration {
	return []patch.Declaration{patch.Before(selfHit, patch.On("Game.Player.Hit(int,string)"))}
}

func selfHit(c *host.Call) bool {
	if source, _ := c.Args[1].(string); source != "self" {
		return true
	}
	if p, ok := c.Instance.(*demohost.Player); ok {
		c.Result = p.Health
	}
	return false
}
