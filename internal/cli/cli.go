package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vk/tweakrunner/internal/app"
	"github.com/vk/tweakrunner/internal/config"
)

// Exit codes.
const (
	ExitGeneralError    = 1
	ExitValidationError = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: ExitValidationError, Message: err.Error()}
}

// options holds the global flags shared by every subcommand.
type options struct {
	outW        io.Writer
	configPath  string
	logLevel    string
	logFormat   string
	settingsDir string
	hostVersion int
	preGUI      bool

	cfg *config.Config
}

// NewRootCmd builds the command tree writing all output to outW.
func NewRootCmd(outW io.Writer) *cobra.Command {
	opts := &options{outW: outW}

	root := &cobra.Command{
		Use:   "tweakrunner",
		Short: "Runs compiled-in tweaks against a host",
		Long: `tweakrunner attaches a tree of tweaks to a host program and manages their
lifecycle: enable and disable flags, persisted settings and the overrides each
tweak installs on host members.

It can drive the bundled demo game locally or bridge to a remote host over
socket.io.`,
		PersistentPreRunE: opts.load,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError(err) })

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to config file (default "+config.DefaultFile+" if present)")
	flags.StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "logging level: debug, info, warn, error (env: TWEAKRUNNER_LOG_LEVEL)")
	flags.StringVar(&opts.logFormat, "log-format", config.DefaultLogFormat, "log format: pretty, text, json (env: TWEAKRUNNER_LOG_FORMAT)")
	flags.StringVar(&opts.settingsDir, "settings-dir", config.DefaultSettingsDir, "directory holding persisted settings (env: TWEAKRUNNER_SETTINGS_DIR)")
	flags.IntVar(&opts.hostVersion, "host-version", config.DefaultHostVersion, "host version overrides are gated on (env: TWEAKRUNNER_HOST_VERSION)")
	flags.BoolVar(&opts.preGUI, "pre-gui", false, "draw the tweak panel before the host panel (env: TWEAKRUNNER_PRE_GUI)")

	root.AddCommand(
		newStatusCmd(opts),
		newEnableCmd(opts, true),
		newEnableCmd(opts, false),
		newSimulateCmd(opts),
		newAttachCmd(opts),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(outW io.Writer, args []string) error {
	root := NewRootCmd(outW)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: ExitGeneralError, Message: err.Error()}
}

// load resolves the configuration. Flags given on the command line win over
// the environment and the file.
func (o *options) load(cmd *cobra.Command, _ []string) error {
	loader := config.NewLoader()
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loader.Set("log.level", o.logLevel)
	}
	if flags.Changed("log-format") {
		loader.Set("log.format", o.logFormat)
	}
	if flags.Changed("settings-dir") {
		loader.Set("settings_dir", o.settingsDir)
	}
	if flags.Changed("host-version") {
		loader.Set("host_version", o.hostVersion)
	}
	if flags.Changed("pre-gui") {
		loader.Set("pre_gui", o.preGUI)
	}
	if cmd.Flags().Lookup("remote-url") != nil && flags.Changed("remote-url") {
		url, _ := flags.GetString("remote-url")
		loader.Set("remote.url", url)
	}

	cfg, err := loader.Load(o.configPath)
	if err != nil {
		return usageError(err)
	}
	o.cfg = cfg
	return nil
}

func (o *options) newApp() (*app.App, error) {
	a, err := app.NewApp(o.outW, o.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return a, nil
}
