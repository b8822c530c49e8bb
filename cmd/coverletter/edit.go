package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/cover-letter-studio/internal/api"
	"github.com/jonathan/cover-letter-studio/internal/config"
	"github.com/jonathan/cover-letter-studio/internal/editor"
	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/jonathan/cover-letter-studio/internal/types"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a cover letter section by section",
	Long: `Open a cover letter from a file (--file) or a saved version (--version)
and edit it section by section. Sections are header, introduction, body,
conclusion and signature.

Without --shell, each --set section=text (or section=@file) replaces one
section, then the letter is saved and printed. Opening a file stores it as a
new draft first.

With --shell, an interactive session reads commands from stdin. Type "help"
for the list of commands.`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

var (
	editFile        string
	editVersion     string
	editSets        []string
	editJobTitle    string
	editCompany     string
	editShell       bool
	editNoAutoSave  bool
	editOutput      string
	editDescription string
)

func init() {
	editCmd.Flags().StringVarP(&editFile, "file", "f", "", "Cover letter text file to open")
	editCmd.Flags().StringVar(&editVersion, "version", "", "Saved version to open")
	editCmd.Flags().StringArrayVar(&editSets, "set", nil, "Replace a section: section=text or section=@file (repeatable)")
	editCmd.Flags().StringVarP(&editJobTitle, "job-title", "t", "", "Job title stored with a new draft")
	editCmd.Flags().StringVarP(&editCompany, "company", "c", "", "Company name stored with a new draft")
	editCmd.Flags().BoolVar(&editShell, "shell", false, "Start an interactive editing shell")
	editCmd.Flags().BoolVar(&editNoAutoSave, "no-autosave", false, "Disable autosave in the shell")
	editCmd.Flags().StringVarP(&editOutput, "out", "o", "", "Write the saved letter to this file instead of stdout")
	editCmd.Flags().StringVar(&editDescription, "description", "", "Snapshot every replaced section with this description before saving")
	editCmd.MarkFlagsMutuallyExclusive("file", "version")
	editCmd.MarkFlagsOneRequired("file", "version")
	rootCmd.AddCommand(editCmd)
}

// sectionEdit is one parsed --set value.
type sectionEdit struct {
	name sections.Name
	text string
}

func parseSet(value string) (sectionEdit, error) {
	rawName, text, ok := strings.Cut(value, "=")
	if !ok {
		return sectionEdit{}, fmt.Errorf("invalid --set %q (expected section=text)", value)
	}
	name, err := sections.ParseName(strings.TrimSpace(rawName))
	if err != nil {
		return sectionEdit{}, err
	}
	text, err = readValue(text)
	if err != nil {
		return sectionEdit{}, err
	}
	return sectionEdit{name: name, text: strings.TrimRight(text, "\n")}, nil
}

func runEdit(cmd *cobra.Command, _ []string) error {
	if !editShell && len(editSets) == 0 {
		return fmt.Errorf("nothing to do: pass --set section=text or --shell")
	}
	edits := make([]sectionEdit, 0, len(editSets))
	for _, value := range editSets {
		e, err := parseSet(value)
		if err != nil {
			return err
		}
		edits = append(edits, e)
	}

	client, cfg, err := newClient()
	if err != nil {
		return err
	}
	ctx := context.Background()
	out := &lockedWriter{w: cmd.OutOrStdout()}
	errOut := &lockedWriter{w: cmd.ErrOrStderr()}

	session, err := openSession(ctx, client, cfg, out, errOut)
	if err != nil {
		return err
	}
	defer session.Close()

	if editShell {
		return runShell(ctx, session, cmd.InOrStdin(), out)
	}
	return applyEdits(ctx, session, edits, out, errOut)
}

// openSession loads the letter named by --file or --version into a new
// edit session.
func openSession(ctx context.Context, client *api.Client, cfg *config.Config, out, errOut io.Writer) (*editor.Session, error) {
	job := types.JobContext{
		JobTitle:       firstNonEmpty(editJobTitle, cfg.JobTitle),
		CompanyName:    firstNonEmpty(editCompany, cfg.CompanyName),
		UserBackground: cfg.UserBackground,
		UserQuestion:   cfg.UserQuestion,
	}

	var (
		versionID, text string
		stored          sections.Set
	)
	if editVersion != "" {
		doc, err := client.GetCoverLetter(ctx, editVersion)
		if err != nil {
			return nil, fmt.Errorf("failed to open version %s: %w", editVersion, err)
		}
		versionID, stored = doc.VersionID, sections.FromMap(doc.SectionContents())
		job = types.JobContext{
			JobTitle:       doc.JobTitle,
			CompanyName:    doc.CompanyName,
			UserBackground: doc.UserBackground,
			UserQuestion:   doc.UserQuestion,
		}
	} else {
		data, err := os.ReadFile(editFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", editFile, err)
		}
		text = string(data)
		if sections.Degenerate(text) {
			_, _ = fmt.Fprintln(errOut, "Warning: no greeting or closing found, the whole letter is in the header section")
		}
	}

	opts := &editor.Options{
		AutoSaveDelay:   cfg.AutoSave(),
		RequestTimeout:  cfg.Timeout(),
		DisableAutoSave: !editShell || editNoAutoSave,
		OnError: func(op string, err error) {
			_, _ = fmt.Fprintf(errOut, "[%s] %v\n", op, err)
		},
		OnAutoSave: func(savedAt time.Time) {
			_, _ = fmt.Fprintf(out, "Autosaved at %s\n", savedAt.Format("15:04:05"))
		},
	}
	session := editor.New(client, job, opts)
	if versionID != "" {
		session.OpenVersion(versionID, stored)
	} else {
		session.Open(text)
	}
	return session, nil
}

// applyEdits replaces each section, saves and prints the letter.
func applyEdits(ctx context.Context, session *editor.Session, edits []sectionEdit, out, errOut io.Writer) error {
	if err := session.BeginEdit(ctx); err != nil {
		_, _ = fmt.Fprintf(errOut, "Warning: %v; editing locally only\n", err)
	}
	for _, e := range edits {
		if err := session.EditSection(e.name, e.text); err != nil {
			return err
		}
	}
	session.Wait()

	if editDescription != "" && session.State().ActiveVersionID != "" {
		for _, e := range edits {
			if err := session.CreateSectionSnapshot(ctx, e.name, editDescription); err != nil {
				return err
			}
		}
	}

	text, err := session.Save(ctx)
	if err != nil {
		return err
	}

	if editOutput != "" {
		if err := os.WriteFile(editOutput, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", editOutput, err)
		}
		_, _ = fmt.Fprintf(out, "Wrote cover letter to %s\n", editOutput)
	} else {
		_, _ = fmt.Fprintln(out, text)
	}
	if versionID := session.State().ActiveVersionID; versionID != "" {
		_, _ = fmt.Fprintf(out, "Saved version %s\n", versionID)
	}
	return nil
}

// lockedWriter serializes writes from the shell and from background
// session callbacks.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}
