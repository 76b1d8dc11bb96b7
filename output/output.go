// Package output delivers the rendered prompt to its destination and prints
// the run summary on stderr.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/promptpack/promptpack/tokens"
)

// Write delivers text to every requested destination. Stdout is used only
// when neither a file nor the clipboard was asked for.
func Write(text, filePath string, toClipboard bool) error {
	delivered := false

	if filePath != "" {
		if err := os.WriteFile(filePath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file %s: %w", filePath, err)
		}
		log.Debug("wrote prompt to file", "path", filePath, "bytes", len(text))
		delivered = true
	}

	if toClipboard {
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		log.Debug("copied prompt to clipboard", "bytes", len(text))
		delivered = true
	}

	if !delivered {
		if _, err := io.WriteString(os.Stdout, text); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}
	return nil
}

// Summary describes one completed run for the console.
type Summary struct {
	Files       int
	Elements    int
	PromptBytes int

	// TokenCount is negative when counting was not requested.
	TokenCount  int
	TokenFormat string
	Encoding    string

	OutputFile string
	Clipboard  bool
}

// PrintSummary writes a short colored run summary.
func PrintSummary(w io.Writer, s Summary) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(w, "%s %s files, %s elements, %s\n",
		bold("packed:"),
		humanize.Comma(int64(s.Files)),
		humanize.Comma(int64(s.Elements)),
		humanize.Bytes(uint64(s.PromptBytes)))

	if s.TokenCount >= 0 {
		fmt.Fprintf(w, "%s %s %s\n",
			bold("tokens:"),
			tokens.Format(s.TokenCount, s.TokenFormat),
			dim("("+s.Encoding+")"))
	}

	switch {
	case s.OutputFile != "" && s.Clipboard:
		fmt.Fprintf(w, "%s %s and clipboard\n", bold("output:"), s.OutputFile)
	case s.OutputFile != "":
		fmt.Fprintf(w, "%s %s\n", bold("output:"), s.OutputFile)
	case s.Clipboard:
		fmt.Fprintf(w, "%s clipboard\n", bold("output:"))
	}
}
