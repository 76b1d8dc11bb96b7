// Package watch implements the watch subcommand: rebuild the prompt whenever
// project files change.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptpack/promptpack/config"
	"github.com/promptpack/promptpack/output"
	"github.com/promptpack/promptpack/pipeline"
)

type watchOptions struct {
	projectDir string
	profile    string
	outputFile string
	clipboard  bool
	debounce   time.Duration
}

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &watchOptions{
		debounce: debounceInterval,
	}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch for file changes and keep the prompt up to date",
		Long: `Watch a project directory for file changes and rebuild the prompt on every
change, writing it to a file or the clipboard. Discovery, chunking, and
rendering settings come from the project configuration, optionally narrowed
to a named profile.

Example usage:
  promptpack watch -o prompt.md
  promptpack watch --profile review --clipboard`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.projectDir, "dir", "C", ".", "Project directory")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "Configuration profile to apply")
	cmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "File to write the prompt to")
	cmd.Flags().BoolVarP(&opts.clipboard, "clipboard", "b", false, "Copy the prompt to the clipboard")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", opts.debounce, "Delay before rebuilding after a change")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions) error {
	if opts.outputFile == "" && !opts.clipboard {
		return fmt.Errorf("watch needs a destination: pass --output or --clipboard")
	}

	projectDir, err := filepath.Abs(opts.projectDir)
	if err != nil {
		return fmt.Errorf("failed to resolve project directory: %w", err)
	}

	settings, err := config.Load(projectDir, opts.profile)
	if err != nil {
		return err
	}
	if opts.outputFile != "" {
		settings.OutputFile = opts.outputFile
	}
	settings.Clipboard = opts.clipboard

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rebuild(cmd, settings)

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", projectDir)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl+C to stop\n")

	return watchAndRebuild(ctx, projectDir, opts, func() {
		rebuild(cmd, settings)
	})
}

func rebuild(cmd *cobra.Command, settings config.Settings) {
	result, err := pipeline.Run(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild error: %v\n", err)
		return
	}
	if err := output.Write(result.Prompt, settings.OutputFile, settings.Clipboard); err != nil {
		fmt.Fprintf(os.Stderr, "write error: %v\n", err)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", time.Now().Format("15:04:05"), pipeline.Describe(result))
}
