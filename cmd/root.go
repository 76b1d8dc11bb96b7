package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/promptpack/promptpack/cmd/pack"
	"github.com/promptpack/promptpack/cmd/profile"
	"github.com/promptpack/promptpack/cmd/trace"
	"github.com/promptpack/promptpack/cmd/watch"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

var verbose bool
var debug bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "promptpack",
	Short: "Assemble LLM prompts from your codebase",
	Long: `Promptpack assembles LLM-ready prompts from a codebase: it discovers
files, optionally expands them to their Python import dependency closure,
splits them into content elements, and renders everything through a prompt
template with token counting.

Use 'promptpack --help' to see all available commands, or
'promptpack <command> --help' for detailed information about a specific
command.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetOutput(os.Stderr)
		switch {
		case debug:
			log.SetLevel(log.DebugLevel)
		case verbose:
			log.SetLevel(log.InfoLevel)
		default:
			log.SetLevel(log.WarnLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(pack.NewCommand())
	rootCmd.AddCommand(trace.NewCommand())
	rootCmd.AddCommand(watch.NewCommand())
	rootCmd.AddCommand(profile.NewCommand())

	if rootCmd.Annotations == nil {
		rootCmd.Annotations = make(map[string]string)
	}
	rootCmd.Annotations["buildDate"] = buildDate
	rootCmd.Annotations["commit"] = commit
	rootCmd.Version = version

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable informational logging")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
