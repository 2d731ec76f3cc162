// Package cli implements the transformerctl command-line interface.
package cli

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// slogger returns the logger as a slog.Logger for library packages.
func (c *CLI) slogger() *slog.Logger {
	return slog.New(c.Logger)
}

// RootCommand creates the root command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "transformerctl",
		Short:        "Drive the transformer widget from the command line",
		Long:         `transformerctl loads a scene, replays pointer drags through the transformer and renders the result to PNG.`,
		SilenceUsage: true,
	}

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.handlesCommand())
	return root
}
