// Package demohost is a small in-process game that tweaks can be pointed at
// from the CLI and from tests. Every piece of game behavior lives in a host
// member, so every call goes through the override chain.
package demohost

import (
	"fmt"

	"github.com/vk/tweakrunner/internal/host"
	"github.com/vk/tweakrunner/internal/ui"
)

// Type names exposed to the resolver.
const (
	PlayerType  = "Game.Player"
	SessionType = "Game.Session"
)

// DefaultVersion is the host version reported when none is configured.
const DefaultVersion = 15

const (
	defaultGravity = 9.81
	jumpHeight     = 2.0
	baseSpeed      = 5.0
	baseHealth     = 100
)

// Player is the state behind a Game.Player instance.
type Player struct {
	Name     string
	Speed    float64
	Health   int
	Jumps    int
	Distance float64
}

// Session is the state behind the Game.Session singleton.
type Session struct {
	Title   string
	Frames  int
	Elapsed float64
}

// Game owns the host universe and the callback entry a mod framework
// attaches to.
type Game struct {
	universe *host.Universe
	entry    *host.Entry
	player   *host.Type
	session  *host.Type
	state    *Session
	gravity  float64
}

// New builds the demo game for the given host version.
func New(version int) *Game {
	g := &Game{universe: host.NewUniverse(version)}
	g.player = g.definePlayer()
	g.session = g.defineSession()
	g.entry = &host.Entry{
		OnGUI: func(l ui.Layout) {
			l.Label(fmt.Sprintf("%s (host v%d)", g.Title(), version))
		},
	}

	inst, err := g.session.New()
	if err != nil {
		panic(err)
	}
	g.state = inst.(*Session)
	return g
}

func (g *Game) definePlayer() *host.Type {
	t := g.universe.Define(PlayerType)
	t.StaticInitializer(func(*host.Call) { g.gravity = defaultGravity })
	t.Constructor(nil, func(c *host.Call) {
		c.Result = &Player{Name: "player", Speed: baseSpeed, Health: baseHealth}
	})
	t.Constructor([]string{"string"}, func(c *host.Call) {
		c.Result = &Player{Name: c.Args[0].(string), Speed: baseSpeed, Health: baseHealth}
	})
	t.Method("Jump", nil, func(c *host.Call) {
		t.Initialize()
		p := c.Instance.(*Player)
		p.Jumps++
		c.Result = jumpHeight * defaultGravity / g.gravity
	})
	t.Method("Hit", []string{"int"}, func(c *host.Call) {
		p := c.Instance.(*Player)
		p.Health -= c.Args[0].(int)
		c.Result = p.Health
	})
	t.Method("Hit", []string{"int", "string"}, func(c *host.Call) {
		p := c.Instance.(*Player)
		p.Health -= c.Args[0].(int)
		c.Result = p.Health
	})
	t.Method("Move", []string{"float"}, func(c *host.Call) {
		p := c.Instance.(*Player)
		speed := t.Getter("Speed").Call(p).(float64)
		p.Distance += speed * c.Args[0].(float64)
		c.Result = p.Distance
	})
	t.Property("Speed",
		func(c *host.Call) { c.Result = c.Instance.(*Player).Speed },
		func(c *host.Call) { c.Instance.(*Player).Speed = c.Args[0].(float64) },
	)
	return t
}

func (g *Game) defineSession() *host.Type {
	t := g.universe.Define(SessionType)
	t.Constructor(nil, func(c *host.Call) { c.Result = &Session{Title: "demo session"} })
	t.Method("Tick", []string{"float"}, func(c *host.Call) {
		s := c.Instance.(*Session)
		s.Frames++
		s.Elapsed += c.Args[0].(float64)
	})
	t.Property("Title", func(c *host.Call) { c.Result = c.Instance.(*Session).Title }, nil)
	return t
}

// Universe returns the types tweaks resolve against.
func (g *Game) Universe() *host.Universe { return g.universe }

// Entry returns the callback surface of the game.
func (g *Game) Entry() *host.Entry { return g.entry }

// Version returns the host version.
func (g *Game) Version() int { return g.universe.Version() }

// Gravity is set by the Game.Player static initializer on first use of the
// type.
func (g *Game) Gravity() float64 {
	g.player.Initialize()
	return g.gravity
}

// Session returns the session state.
func (g *Game) Session() *Session { return g.state }

// NewPlayer runs a Game.Player constructor. An empty name selects the
// parameterless one.
func (g *Game) NewPlayer(name string) (*Player, error) {
	var (
		inst any
		err  error
	)
	if name == "" {
		inst, err = g.player.New()
	} else {
		inst, err = g.player.New(name)
	}
	if err != nil {
		return nil, err
	}
	p, ok := inst.(*Player)
	if !ok {
		return nil, fmt.Errorf("constructor of %s returned %T", PlayerType, inst)
	}
	return p, nil
}

// Jump returns the height reached.
func (g *Game) Jump(p *Player) float64 {
	return g.method("Jump", 0).Call(p).(float64)
}

// Hit applies damage and returns the remaining health.
func (g *Game) Hit(p *Player, damage int) int {
	return g.method("Hit", 1).Call(p, damage).(int)
}

// HitBy applies damage from a named source.
func (g *Game) HitBy(p *Player, damage int, source string) int {
	return g.method("Hit", 2).Call(p, damage, source).(int)
}

// Move advances the player for dt seconds and returns the total distance.
func (g *Game) Move(p *Player, dt float64) float64 {
	return g.method("Move", 1).Call(p, dt).(float64)
}

// Speed reads the Speed property.
func (g *Game) Speed(p *Player) float64 {
	return g.player.Getter("Speed").Call(p).(float64)
}

// SetSpeed writes the Speed property.
func (g *Game) SetSpeed(p *Player, v float64) {
	g.player.Setter("Speed").Call(p, v)
}

// Title reads the session title.
func (g *Game) Title() string {
	return g.session.Getter("Title").Call(g.state).(string)
}

func (g *Game) method(name string, arity int) *host.Member {
	for _, m := range g.player.Methods(name) {
		if len(m.Params()) == arity {
			return m
		}
	}
	panic(fmt.Sprintf("demohost: %s.%s/%d is not defined", PlayerType, name, arity))
}
