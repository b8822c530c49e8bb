package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cover-letter-studio/internal/editor"
	"github.com/jonathan/cover-letter-studio/internal/sections"
)

const shellHelp = `Commands:
  show [section]                 print the letter or one section
  edit <section> [text]          replace a section; without text, read lines until "."
  history <section|all>          list saved snapshots
  snapshot <section> [desc]      snapshot the stored content of a section
  revert <section> <version-id>  restore a section from a snapshot
  autosave on|off                toggle autosave
  status                         show the session state
  save                           save every section and print the letter
  cancel                         discard local edits
  quit                           leave the shell`

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

// shell is the line-oriented front end of an edit session.
type shell struct {
	session *editor.Session
	lines   *bufio.Scanner
	out     io.Writer
}

// runShell enters edit mode and executes commands read from in until EOF or
// "quit". Command errors are printed and the loop continues.
func runShell(ctx context.Context, session *editor.Session, in io.Reader, out io.Writer) error {
	sh := &shell{session: session, lines: bufio.NewScanner(in), out: out}

	if err := session.BeginEdit(ctx); err != nil {
		sh.printf("Warning: %v; editing locally only\n", err)
	} else {
		sh.printf("Editing version %s. Type \"help\" for commands.\n", session.State().ActiveVersionID)
	}

	for {
		sh.printf("> ")
		if !sh.lines.Scan() {
			break
		}
		line := strings.TrimSpace(sh.lines.Text())
		if line == "" {
			continue
		}
		err := sh.exec(ctx, line)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			sh.printf("Error: %v\n", err)
		}
	}
	session.Wait()

	if session.State().HasUnsavedChanges {
		sh.printf("Warning: leaving with unsaved changes\n")
	}
	return sh.lines.Err()
}

func (sh *shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(sh.out, format, args...)
}

func (sh *shell) exec(ctx context.Context, line string) error {
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch command {
	case "help":
		sh.printf("%s\n", shellHelp)
	case "show":
		return sh.show(rest)
	case "edit":
		return sh.edit(ctx, rest)
	case "history":
		return sh.history(ctx, rest)
	case "snapshot":
		rawName, description, _ := strings.Cut(rest, " ")
		name, err := sections.ParseName(rawName)
		if err != nil {
			return err
		}
		sh.session.Wait()
		if err := sh.session.CreateSectionSnapshot(ctx, name, strings.TrimSpace(description)); err != nil {
			return err
		}
		sh.printf("Snapshot of %s saved\n", name)
	case "revert":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return fmt.Errorf("usage: revert <section> <version-id>")
		}
		name, err := sections.ParseName(fields[0])
		if err != nil {
			return err
		}
		sh.session.Wait()
		if err := sh.session.RevertSection(ctx, name, fields[1]); err != nil {
			return err
		}
		sh.printf("Reverted %s\n", name)
	case "autosave":
		switch rest {
		case "on":
			sh.session.SetAutoSave(true)
		case "off":
			sh.session.SetAutoSave(false)
		default:
			return fmt.Errorf("usage: autosave on|off")
		}
		sh.printf("Autosave %s\n", rest)
	case "status":
		sh.status()
	case "save":
		sh.session.Wait()
		text, err := sh.session.Save(ctx)
		if err != nil {
			return err
		}
		sh.printf("%s\nSaved\n", text)
	case "cancel":
		sh.session.Cancel()
		sh.printf("Local edits discarded\n")
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (type \"help\")", command)
	}
	return nil
}

func (sh *shell) show(rest string) error {
	set := sh.session.State().Sections
	if rest == "" {
		sh.printf("%s\n", set.Join())
		return nil
	}
	name, err := sections.ParseName(rest)
	if err != nil {
		return err
	}
	sh.printf("%s\n", set.Get(name))
	return nil
}

func (sh *shell) edit(ctx context.Context, rest string) error {
	rawName, text, hasText := strings.Cut(rest, " ")
	name, err := sections.ParseName(rawName)
	if err != nil {
		return err
	}

	if !hasText {
		sh.printf("Enter the new %s, then a line with a single \".\":\n", name)
		var lines []string
		for sh.lines.Scan() {
			if sh.lines.Text() == "." {
				break
			}
			lines = append(lines, sh.lines.Text())
		}
		text = strings.Join(lines, "\n")
	}

	// Editing again after a save or cancel re-enters edit mode.
	if !sh.session.State().IsEditing {
		if err := sh.session.BeginEdit(ctx); err != nil {
			sh.printf("Warning: %v; editing locally only\n", err)
		}
	}
	if err := sh.session.EditSection(name, strings.TrimSpace(text)); err != nil {
		return err
	}
	sh.printf("Updated %s\n", name)
	return nil
}

func (sh *shell) history(ctx context.Context, rest string) error {
	sh.session.Wait()

	names := sections.Names()
	if rest != "all" {
		name, err := sections.ParseName(rest)
		if err != nil {
			return err
		}
		if _, err := sh.session.RequestSectionHistory(ctx, name); err != nil {
			return err
		}
		names = []sections.Name{name}
	} else if err := sh.session.RefreshAllHistories(ctx); err != nil {
		return err
	}

	for _, name := range names {
		history := sh.session.History(name)
		sh.printf("%s: %d snapshots\n", name, len(history))
		for _, snap := range history {
			description := snap.ChangeDescription
			if description == "" {
				description = "(no description)"
			}
			sh.printf("  %s  %s  %s\n", snap.VersionID, snap.CreatedAt.Format("2006-01-02 15:04:05"), description)
		}
	}
	return nil
}

func (sh *shell) status() {
	st := sh.session.State()
	versionID := st.ActiveVersionID
	if versionID == "" {
		versionID = "(not stored)"
	}
	sh.printf("Version:  %s\n", versionID)
	sh.printf("Editing:  %v\n", st.IsEditing)
	sh.printf("Unsaved:  %v\n", st.HasUnsavedChanges)
	sh.printf("Autosave: %v\n", st.AutoSaveEnabled)
	if st.LastSavedAt != nil {
		sh.printf("Saved at: %s\n", st.LastSavedAt.Format("15:04:05"))
	}
}
