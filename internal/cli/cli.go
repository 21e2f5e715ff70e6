package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/asciifolio/pkg/ascii"
	"github.com/matzehuels/asciifolio/pkg/buildinfo"
	"github.com/matzehuels/asciifolio/pkg/cache"
	"github.com/matzehuels/asciifolio/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "asciifolio"

	// maxSettleFrames bounds how many frames a one-shot render may take to
	// flush its next-frame callbacks.
	maxSettleFrames = 8
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag value.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "asciifolio renders images as ASCII art and filters portfolio projects",
		Long:         `asciifolio turns raster images into glyph grids sized to a viewport and animates tag-filtered project grids. It renders to text, PNG and HTML, runs both widgets in the terminal, and serves a portfolio page with the art rendered server-side.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.installHooks()
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default $"+config.EnvConfig+" or ./"+config.DefaultFile+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.projectsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Loader Factory
// =============================================================================

// loadConfig resolves and loads the configuration file.
func (c *CLI) loadConfig() (config.Config, error) {
	path := config.Resolve(c.configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return cfg, nil
}

// newLoader builds the image loader: local paths under root, remote sources
// through the configured cache. The returned cache must be closed.
func newLoader(ctx context.Context, cfg config.Config, root string, noCache bool) (ascii.Loader, cache.Cache, error) {
	cc := cfg.Cache
	if noCache {
		cc.Backend = config.BackendNone
	}
	store, err := cc.Open(ctx)
	if err != nil {
		return nil, nil, err
	}
	loader := ascii.MuxLoader{
		Files:  ascii.FileLoader{Root: root},
		Remote: ascii.NewHTTPLoader(store, cc.TTL).WithKeyer(cc.Keyer()),
	}
	return loader, store, nil
}

// splitImageArg turns a command-line image argument into a loader root and a
// source relative to it. URLs pass through unchanged.
func splitImageArg(arg string) (root, src string, err error) {
	if ascii.IsRemote(arg) {
		return ".", arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", "", err
	}
	return filepath.Dir(abs), filepath.Base(abs), nil
}
