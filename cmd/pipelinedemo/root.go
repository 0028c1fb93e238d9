package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "pipelinedemo",
		Short:         "Runs the sample fan-out/fan-in pipeline used to exercise the runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to an rtconfig YAML file (defaults baked in when omitted)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug-level logging")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// exitCodeFor maps a top-level error to the CLI exit codes named in
// spec §6: 0 success, 1 format error, 2 I/O error on config/log, 3
// semantic error building the pipeline, 101 runtime panic.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	switch e := err.(type) {
	case *exitError:
		return e.code
	default:
		return 3
	}
}

// exitError pins a specific CLI exit code to an underlying error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}
