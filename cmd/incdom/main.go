package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/redscorpix/npf-sub003/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "incdom",
		Short: "Incremental DOM patcher",
		Long: `incdom patches HTML trees in place from JSON descriptions.

It reuses existing nodes wherever the description allows, matches
keyed children across reorders, and reports every DOM mutation it
makes. The same engine backs a small HTTP server that streams
mutation frames to live clients.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		patchCmd(),
		serveCmd(),
		configCmd(),
		easeCmd(),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, flag, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("E140").
			WithDetailf("--%s is required", flag)
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.New("E141").
			WithDetailf("--%s %s", flag, path).
			Wrap(err)
	}
	return data, nil
}
