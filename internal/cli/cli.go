// Package cli implements the lanefold command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lanefold/lanefold/pkg/buildinfo"
	"github.com/lanefold/lanefold/pkg/config"
	"github.com/lanefold/lanefold/pkg/family"
	"github.com/lanefold/lanefold/pkg/runner"
	"github.com/lanefold/lanefold/pkg/store"
)

const (
	// appName is the application name used for directories and display.
	appName = "lanefold"

	// defaultConfigPath is where lanefold looks for configuration when
	// --config is not given.
	defaultConfigPath = "lanefold.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		ConfigPath: defaultConfigPath,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "lanefold",
		Short:        "Lanefold lays out organizational genealogies on horizontal lanes",
		Long:         `Lanefold discovers families of connected organizations in a genealogy graph and searches for lane assignments that keep succession lines readable: related chains close together, hand-offs unobstructed, no two overlapping organizations sharing a lane.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", defaultConfigPath, "path to the TOML configuration file")

	root.AddCommand(c.discoverCommand())
	root.AddCommand(c.optimizeCommand())
	root.AddCommand(c.familiesCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.chainsCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// engine bundles the wired components every data-touching command needs.
type engine struct {
	Config   config.Config
	Provider *config.Provider
	Store    store.Store
	Runner   *runner.Runner
}

// newEngine loads configuration, opens the configured store and wires the
// discovery and optimization components. Callers must Close the engine.
func (c *CLI) newEngine(ctx context.Context) (*engine, error) {
	provider := config.NewProvider(c.ConfigPath)
	cfg, err := provider.Current()
	if err != nil {
		return nil, err
	}
	st, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	disc := &family.Discoverer{
		Store:         st,
		MinNodes:      cfg.Discovery.MinNodes,
		ReferenceYear: cfg.Discovery.ReferenceYear,
		Logger:        c.Logger,
	}
	run := &runner.Runner{
		Store:     st,
		Source:    provider,
		Logger:    c.Logger,
		Discovery: disc,
	}
	return &engine{Config: cfg, Provider: provider, Store: st, Runner: run}, nil
}

func (e *engine) Close() error {
	return e.Store.Close()
}
