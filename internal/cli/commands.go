package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vk/tweakrunner/internal/app"
	"github.com/vk/tweakrunner/internal/runner"
	"github.com/vk/tweakrunner/internal/settings"
)

func newStatusCmd(opts *options) *cobra.Command {
	var showSettings bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List every tweak with its flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			list, err := a.Status()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, st := range list {
				fmt.Fprintln(out, formatStatus(st))
				if !showSettings || st.Settings == nil {
					continue
				}
				doc, err := settings.SnapshotJSON(st.Settings)
				if err != nil {
					return fmt.Errorf("failed to render settings of %q: %w", st.Name, err)
				}
				fmt.Fprintf(out, "%s  settings: %s\n", strings.Repeat("  ", st.Depth), doc)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSettings, "settings", false, "include each tweak's settings as JSON")
	return cmd
}

func formatStatus(st runner.Status) string {
	mark := "[ ]"
	switch {
	case st.AlwaysOn:
		mark = "[*]"
	case st.Enabled:
		mark = "[x]"
	}
	line := fmt.Sprintf("%s%s %s (%s)", strings.Repeat("  ", st.Depth), mark, st.Name, st.Key)
	if st.Description != "" {
		line += " - " + st.Description
	}
	if st.Active {
		line += fmt.Sprintf(" active, %d overrides", st.Overrides)
	}
	if st.Err != nil {
		line += " error: " + st.Err.Error()
	}
	return line
}

func newEnableCmd(opts *options, on bool) *cobra.Command {
	use, short, verb := "enable", "Enable a tweak by name or type key", "Enabled"
	if !on {
		use, short, verb = "disable", "Disable a tweak by name or type key", "Disabled"
	}

	return &cobra.Command{
		Use:   use + " NAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			if err := a.SetEnabled(args[0], on); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s.\n", verb, args[0])
			return nil
		},
	}
}

func newSimulateCmd(opts *options) *cobra.Command {
	var sim app.SimulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play the demo game headless with the tweaks attached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			report, err := a.Simulate(sim)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "title: %s\n", report.Title)
			fmt.Fprintf(out, "frames: %d\n", report.Frames)
			fmt.Fprintf(out, "jumps: %d\n", report.Jumps)
			fmt.Fprintf(out, "speed: %.2f\n", report.Speed)
			fmt.Fprintf(out, "distance: %.2f\n", report.Distance)
			fmt.Fprintf(out, "health: %d\n", report.Health)
			for _, line := range report.Panel {
				fmt.Fprintln(out, "| "+line)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&sim.Frames, "frames", 60, "number of frames to play")
	flags.Float64Var(&sim.DeltaTime, "dt", 1.0/60, "seconds per frame")
	flags.IntVar(&sim.JumpEvery, "jump-every", 0, "jump on every n-th frame, 0 never jumps")
	flags.IntVar(&sim.Damage, "damage", 0, "damage dealt to the player after the last frame")
	flags.StringSliceVar(&sim.Presses, "press", nil, "GUI control ids to click on the first frame, e.g. enable:speed.Tweak")
	return cmd
}

func newAttachCmd(opts *options) *cobra.Command {
	var healthcheckPort int

	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Serve host callbacks from a remote socket.io host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx, healthcheckPort)
		},
	}
	cmd.Flags().IntVar(&healthcheckPort, "healthcheck-port", 0, "port for the HTTP health check server, 0 is disabled")
	cmd.Flags().String("remote-url", "", "socket.io URL of the remote host (env: TWEAKRUNNER_REMOTE_URL)")
	return cmd
}
