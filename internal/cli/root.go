// Package cli holds the cobra commands behind the merge executables.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/populist-vote/platform-sub000/internal/source"
)

// NewRootCmd returns the multi-source "merge" command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "merge",
		Short:         "Merge staged candidate filings into the canonical tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(usageError)
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newSourcesCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newInitStagingCmd())
	return cmd
}

// NewSourceCmd returns a flagless command that merges the source registered
// under key. It backs the per-source executables.
func NewSourceCmd(key string) *cobra.Command {
	return &cobra.Command{
		Use:           "merge-" + key,
		Short:         "Merge staged " + strings.ToUpper(key) + " candidate filings",
		Args:          exactArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := source.Lookup(key)
			if err != nil {
				return withExit(ExitUsage, err)
			}
			return runSource(cmd, src)
		},
	}
}

// Execute runs cmd until it finishes or the process is interrupted and
// returns the exit code.
func Execute(cmd *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, cmd, os.Stderr)
}

func execute(ctx context.Context, cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(stderr, err.Error())
	// cobra reports unknown subcommands as plain errors.
	if strings.HasPrefix(err.Error(), "unknown command") {
		return ExitUsage
	}
	return ExitCode(err)
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the registered ingestion sources",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, key := range source.Keys() {
				src, err := source.Lookup(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-4s %-14s staging.%s_*  slug_policy=%s\n", src.Key, src.ID, src.Namespace, src.SlugPolicy)
			}
			return nil
		},
	}
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return withExit(ExitUsage, err)
		}
		return nil
	}
}

func usageError(_ *cobra.Command, err error) error {
	return withExit(ExitUsage, err)
}
