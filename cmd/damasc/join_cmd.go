package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/laszlokorte/damasc/internal/bag"
	"github.com/laszlokorte/damasc/internal/damascerr"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/evaluator"
	"github.com/laszlokorte/damasc/internal/observability"
	"github.com/laszlokorte/damasc/internal/value"
)

// bagSnapshot is the on-disk YAML shape a join command loads (spec
// SPEC_FULL.md §4.8 "damasc join <file> — loads a join AST and bag
// bundle snapshot (YAML) and prints the resulting transactions"): a
// mapping from bag name to its member values.
type bagSnapshot map[string][]interface{}

func newJoinCmd() *cobra.Command {
	var snapshotPath string
	cmd := &cobra.Command{
		Use:   "join <file>",
		Short: "Run a multi-way pattern join against a bag bundle snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJoin(args[0], snapshotPath, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "bags", "", "YAML bag bundle snapshot to load before running the join")
	return cmd
}

func loadBundle(path string) (*bag.Bundle, error) {
	bundle := bag.NewBundle()
	if path == "" {
		return bundle, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bag snapshot %s: %w", path, err)
	}
	var snapshot bagSnapshot
	if err := yaml.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing bag snapshot %s: %w", path, err)
	}
	for name, items := range snapshot {
		b := bundle.Bag(name)
		for _, item := range items {
			v, err := value.FromYAML(item)
			if err != nil {
				return nil, fmt.Errorf("bag %q: %w", name, err)
			}
			b.Insert(v)
		}
	}
	return bundle, nil
}

func runJoin(joinPath, snapshotPath string, out interface{ Write([]byte) (int, error) }) error {
	src, err := os.ReadFile(joinPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", joinPath, err)
	}
	parser := newParser()
	j, err := parser.ParseJoin(string(src))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", joinPath, err)
	}

	bundle, err := loadBundle(snapshotPath)
	if err != nil {
		return err
	}

	// Every join runs instrumented, even this one-shot CLI invocation with
	// nowhere to scrape the registry from: it keeps the engine's own
	// enumeration/transaction counters exercised on every real code path
	// (spec SPEC_FULL.md §4.10), not just the HTTP front-end's long-lived
	// server.
	metrics := observability.NewMetrics(observability.NewRegistry())
	instrumented := observability.InstrumentedJoin{Join: j, Metrics: metrics}

	ev := evaluator.New()
	txs, err := instrumented.Run(ev, environment.New(), bundle)
	if err != nil {
		return fmt.Errorf("running join: %w", damascerr.Wrap(err))
	}
	for _, tx := range txs {
		fmt.Fprintf(out, "transaction %s: %d insertion(s), %d deletion(s)\n", tx.ID, len(tx.Insertions), len(tx.Deletions))
		for _, ins := range tx.Insertions {
			fmt.Fprintf(out, "  + %s: %s\n", ins.Bag, ins.Value.String())
		}
		for _, del := range tx.Deletions {
			fmt.Fprintf(out, "  - %s#%d\n", del.Bag, del.ID)
		}
		for _, p := range tx.Printed {
			fmt.Fprintf(out, "  print: %s\n", p.String())
		}
	}
	return nil
}
