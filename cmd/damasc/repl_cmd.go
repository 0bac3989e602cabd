package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/laszlokorte/damasc/internal/bag"
	"github.com/laszlokorte/damasc/internal/damascerr"
	"github.com/laszlokorte/damasc/internal/repl"
	"github.com/laszlokorte/damasc/internal/sessionconfig"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive Damasc session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runRepl implements the REPL loop (spec §4.8, §6 "REPL exit codes"): it
// reads one line per iteration, hands it to the parser collaborator, and
// dispatches whatever Command results to the REPL Kernel, printing either
// the Outcome or the error. TTY detection follows the teacher's own
// isatty-gated behaviour (funvibe-funxy/internal/evaluator/builtins_term.go):
// a non-interactive stdin (piped input) suppresses the prompt.
func runRepl(in io.Reader, out io.Writer) error {
	cfg, err := sessionconfig.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading session config: %w", err)
	}
	hist, err := sessionconfig.LoadHistory(cfg.HistoryFile)
	if err != nil {
		slog.Warn("failed to load history, starting empty", "error", err, "path", cfg.HistoryFile)
		hist = &sessionconfig.History{Path: cfg.HistoryFile}
	}

	session := repl.NewSession(bag.NewBundle())
	parser := newParser()
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

	scanner := bufio.NewScanner(in)
	exitCode := 0
	for {
		if interactive {
			fmt.Fprint(out, cfg.Prompt)
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		hist.Append(line)

		switch line {
		case ".exit":
			goto done
		case ".help":
			fmt.Fprintln(out, "commands: .help .exit .env .clearenv .pipe, or a Damasc expression")
			continue
		case ".env":
			for k, v := range session.Env() {
				fmt.Fprintf(out, "%s = %s\n", k, v.String())
			}
			continue
		case ".clearenv":
			if _, err := session.Dispatch(repl.ClearEnvCommand{}); err != nil {
				fmt.Fprintln(out, "error:", damascerr.Wrap(err))
			}
			continue
		}

		cmd, err := parser.ParseCommand(line)
		if err != nil {
			fmt.Fprintln(out, "parse error:", err)
			continue
		}
		outcome, err := session.Dispatch(cmd)
		if err != nil {
			fmt.Fprintln(out, "error:", damascerr.Wrap(err))
			continue
		}
		printOutcome(out, outcome)
	}

done:
	if err := hist.Save(); err != nil {
		slog.Error("failed to save history", "error", err, "path", hist.Path)
		exitCode = 1
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

func printOutcome(out io.Writer, o repl.Outcome) {
	for _, v := range o.Values {
		fmt.Fprintln(out, v.String())
	}
	for k, v := range o.Bindings {
		fmt.Fprintf(out, "%s = %s\n", k, v.String())
	}
}
