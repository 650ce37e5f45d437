package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/shape/internal/logging"
)

// Exit codes.
const (
	exitOK      = 0
	exitInvalid = 1
	exitError   = 2
)

// logger is configured from the persistent flags before any command runs.
var logger = logging.NewNop()

var rootCmd = &cobra.Command{
	Use:   "shape",
	Short: "Shape validates objects against compact declarative schemas",
	Long: `Shape compiles shorthand schemas (JSON or YAML) and validates objects against them,
filling defaults and pruning undeclared properties along the way.

It can validate files from the command line, store named schemas, and serve them
over HTTP or the Model Context Protocol.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelFlag, _ := cmd.Flags().GetString("log-level")
		formatFlag, _ := cmd.Flags().GetString("log-format")

		level, err := logging.ParseLevel(levelFlag)
		if err != nil {
			return usageError(err)
		}
		format, err := logging.ParseFormat(formatFlag)
		if err != nil {
			return usageError(err)
		}
		logger = logging.New(level, format)
		slog.SetDefault(logger)
		return nil
	},
}

// exitStatus lets a command choose the process exit code. A nil err exits
// silently.
type exitStatus struct {
	code int
	err  error
}

func (e *exitStatus) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitStatus) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitStatus{code: exitError, err: err}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}

	var status *exitStatus
	if errors.As(err, &status) {
		if status.err != nil {
			fmt.Fprintln(os.Stderr, "Error:", status.err)
		}
		return status.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return exitError
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}
