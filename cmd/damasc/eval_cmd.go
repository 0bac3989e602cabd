package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/laszlokorte/damasc/internal/bag"
	"github.com/laszlokorte/damasc/internal/damascerr"
	"github.com/laszlokorte/damasc/internal/repl"
)

func newEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <file>",
		Short: "Parse a file of assignments/expressions and evaluate it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(args[0], cmd.OutOrStdout())
		},
	}
}

func runEval(path string, out interface{ Write([]byte) (int, error) }) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	parser := newParser()
	exprs, err := parser.ParseExpressions(string(src))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	session := repl.NewSession(bag.NewBundle())
	outcome, err := session.Dispatch(repl.EvalCommand{Expressions: exprs})
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", path, damascerr.Wrap(err))
	}
	for _, v := range outcome.Values {
		fmt.Fprintln(out, v.String())
	}
	return nil
}
