package app

import (
	"fmt"

	"github.com/vk/tweakrunner/internal/ui"
)

// SimulateOptions controls a headless play session.
type SimulateOptions struct {
	Frames    int
	DeltaTime float64
	// JumpEvery makes the player jump on every n-th frame. Zero disables
	// jumping.
	JumpEvery int
	// Damage is dealt once, after the last frame.
	Damage int
	// Presses are GUI control ids clicked on the first frame.
	Presses []string
}

// Report summarizes a simulated session.
type Report struct {
	Frames   int
	Jumps    int
	Distance float64
	Speed    float64
	Health   int
	Title    string
	Panel    []string
}

// Simulate starts the framework, plays frames against the demo host and
// stops again. The panel of the last frame is captured in the report.
func (a *App) Simulate(opts SimulateOptions) (*Report, error) {
	if opts.Frames < 0 {
		return nil, fmt.Errorf("frame count cannot be negative")
	}
	if opts.DeltaTime <= 0 {
		opts.DeltaTime = 1.0 / 60
	}
	if err := a.Start(); err != nil {
		return nil, err
	}
	defer a.Stop()

	player, err := a.game.NewPlayer("player")
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	panel := ui.NewText()
	for _, id := range opts.Presses {
		panel.Press(id)
	}
	a.game.DrawGUI(panel)
	if panel.Pending() {
		a.logger.Warn("Some GUI presses matched no control.")
	}

	for i := 1; i <= opts.Frames; i++ {
		if opts.JumpEvery > 0 && i%opts.JumpEvery == 0 {
			a.game.Jump(player)
		}
		a.game.Move(player, opts.DeltaTime)
		a.game.Frame(opts.DeltaTime)
	}
	health := player.Health
	if opts.Damage > 0 {
		health = a.game.Hit(player, opts.Damage)
	}

	panel.Reset()
	a.game.DrawGUI(panel)
	a.game.CloseGUI()
	a.logger.Info("Simulation finished.", "frames", opts.Frames, "distance", player.Distance)

	return &Report{
		Frames:   a.game.Session().Frames,
		Jumps:    player.Jumps,
		Distance: player.Distance,
		Speed:    a.game.Speed(player),
		Health:   health,
		Title:    a.game.Title(),
		Panel:    panel.Lines(),
	}, nil
}
