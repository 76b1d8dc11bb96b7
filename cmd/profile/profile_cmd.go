// Package profile implements the profile subcommand: list and save named
// configuration profiles in the project configuration file.
package profile

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/promptpack/promptpack/config"
)

type profileOptions struct {
	projectDir string
}

// NewCommand returns a new profile command instance.
func NewCommand() *cobra.Command {
	opts := &profileOptions{}

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage configuration profiles",
		Long: `List and save named configuration profiles. A profile is a block in the
project configuration file whose values override the base settings when
passed to --profile.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.projectDir, "dir", "C", ".", "Project directory")

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newSaveCommand(opts))

	return cmd
}

func newListCommand(opts *profileOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the profiles defined in the project configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := filepath.Abs(opts.projectDir)
			if err != nil {
				return fmt.Errorf("failed to resolve project directory: %w", err)
			}

			names, err := config.Profiles(projectDir)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no profiles defined")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newSaveCommand(opts *profileOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current effective settings as a named profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := filepath.Abs(opts.projectDir)
			if err != nil {
				return fmt.Errorf("failed to resolve project directory: %w", err)
			}

			settings, err := config.Load(projectDir, "")
			if err != nil {
				return err
			}
			if err := config.SaveProfile(projectDir, args[0], settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved profile %q\n", args[0])
			return nil
		},
	}
}
