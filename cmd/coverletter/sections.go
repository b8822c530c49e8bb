package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/spf13/cobra"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections [file]",
	Short: "Show how a cover letter splits into sections",
	Long: `Split a cover letter into header, introduction, body, conclusion and
signature using its greeting and closing phrases, and print each section.
Reads stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSections,
}

var sectionsLines bool

func init() {
	sectionsCmd.Flags().BoolVar(&sectionsLines, "lines", false, "Print each line with the section it was placed in")
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read cover letter: %w", err)
	}

	text := string(data)
	set := sections.Parse(text)
	out := cmd.OutOrStdout()

	if sectionsLines {
		for _, a := range set.Assignments() {
			_, _ = fmt.Fprintf(out, "%-12s | %s\n", a.Section, a.Line)
		}
	} else {
		for _, name := range sections.Names() {
			_, _ = fmt.Fprintf(out, "== %s ==\n%s\n\n", name, set.Get(name))
		}
	}

	if sections.Degenerate(text) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Note: no greeting or closing phrase found, everything is in the header")
	}
	return nil
}
