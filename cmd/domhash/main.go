// Command domhash digests markup and compares digests from the shell.
//
//	domhash digest page.html --file
//	cat page.html | domhash digest -
//	domhash compare n1-5-0:... n1-5-0:...
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/use-agent/domhash/domhash"
)

// build is set with -ldflags "-X main.build=...".
var build = "dev"

func main() {
	cmd := newRootCommand(os.Stdin)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(stdin io.Reader) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:           "domhash",
		Short:         "Similarity-preserving digests of HTML and XML",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	cmd.AddCommand(newDigestCommand(stdin))
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "domhash v%s (%s) -> Go\n", domhash.Version, build)
		},
	}
}
