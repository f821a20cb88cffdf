// Package commands implements the docsite command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Global carries the state shared by every subcommand.
type Global struct {
	Ctx    context.Context
	Logger *slog.Logger
}

// CLI definition and global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"docsite.yaml" type:"path"`
	EnvFile   string           `name:"env-file" help:"Environment file loaded before the configuration (default .env, .env.local)" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text|json)" default:"text" enum:"text,json"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve      ServeCmd   `cmd:"" default:"withargs" help:"Run the live reload preview server"`
	Build      BuildCmd   `cmd:"" help:"Write the static site into the build folder"`
	Index      IndexCmd   `cmd:"" help:"Write the search index into the static folder"`
	Init       InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	VersionCmd VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; set up logging once.
func (c *CLI) AfterApply(g *Global) error {
	logger := NewLogger(os.Stderr, c.LogFormat, parseLogLevel(c.Verbose))
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}
	return nil
}

// NewLogger builds the process logger for the given format.
func NewLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// parseLogLevel honours --verbose first, then DOCSITE_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(os.Getenv("DOCSITE_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig loads the configuration named by the global flags.
func loadConfig(root *CLI) (*config.Config, error) {
	return config.LoadWithEnv(root.Config, root.EnvFile)
}

// contextOf returns the signal context, or Background in tests.
func contextOf(g *Global) context.Context {
	if g != nil && g.Ctx != nil {
		return g.Ctx
	}
	return context.Background()
}

func loggerOf(g *Global) *slog.Logger {
	if g != nil && g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// abortOnCancel reports an interrupted command as an abort.
func abortOnCancel(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil && !errors.HasCategory(err, errors.CategoryAbort) {
		return errors.Abort(ctx.Err())
	}
	return err
}
