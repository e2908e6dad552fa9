package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"reconciler/core/reconcile"
	"reconciler/core/records"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rulesPath  string
	sourcePath string
	targetPath string
	runIDField string
	jsonOutput bool
)

// reconcileCmd is the parent command for local reconciliation.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile record sets without the server",
}

// reconcileRunCmd reconciles two local JSON files.
var reconcileRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile two local record files",
	Long: `Reconcile every record of the source file against the target file.

Record files hold a JSON array of flat objects (or {"records": [...]}).
The rules file holds a JSON array of rules, for example:

  [
    {"field": "order_id", "type": "exact"},
    {"field": "amount", "type": "exact", "tolerance": 0.01},
    {"field": "customer", "type": "fuzzy", "threshold": 0.85},
    {"field": "order_date", "type": "range", "days": 2}
  ]

Examples:
  # Print the summary and every exception
  reconcile run --rules rules.json --source stripe.json --target bank.json

  # Full result as JSON on stdout
  reconcile run --rules rules.json --source stripe.json --target bank.json --json`,
	RunE: runLocalReconcile,
}

func init() {
	reconcileRunCmd.Flags().StringVar(&rulesPath, "rules", "", "Path to the rules JSON file")
	reconcileRunCmd.Flags().StringVar(&sourcePath, "source", "", "Path to the source records JSON file")
	reconcileRunCmd.Flags().StringVar(&targetPath, "target", "", "Path to the target records JSON file")
	reconcileRunCmd.Flags().StringVar(&runIDField, "id-field", "", "Record field used as identifier (default from config)")
	reconcileRunCmd.Flags().BoolVar(&jsonOutput, "json", false, "Write the full result as JSON to stdout")
	_ = reconcileRunCmd.MarkFlagRequired("rules")
	_ = reconcileRunCmd.MarkFlagRequired("source")
	_ = reconcileRunCmd.MarkFlagRequired("target")

	reconcileCmd.AddCommand(reconcileRunCmd)
	RootCmd.AddCommand(reconcileCmd)
}

func loadRules(path string) ([]reconcile.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	var specs []reconcile.RuleSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse rules %s: %w", path, err)
	}
	return reconcile.ParseRules(specs)
}

func runLocalReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	cfg, logg, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logg.Sync()

	engine, err := reconcile.NewEngine(cfg.Matching)
	if err != nil {
		return fmt.Errorf("invalid matching configuration: %w", err)
	}

	rules, err := loadRules(rulesPath)
	if err != nil {
		return err
	}

	files := records.FileSource{}
	sources, err := files.Load(ctx, sourcePath)
	if err != nil {
		return err
	}
	targets, err := files.Load(ctx, targetPath)
	if err != nil {
		return err
	}

	result, err := engine.WithIDField(runIDField).Reconcile(ctx, sources, targets, rules)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	for _, exc := range result.Exceptions {
		logg.Warn("Unmatched record",
			zap.String("source_id", exc.SourceID),
			zap.String("reason", exc.Reason),
			zap.String("severity", string(exc.Severity)),
		)
	}

	fmt.Println("\n=== Reconciliation Summary ===")
	fmt.Printf("Source Records: %d\n", result.Summary.Total)
	fmt.Printf("Target Records: %d\n", len(targets))
	fmt.Printf("Matched: %d\n", result.Summary.Matched)
	fmt.Printf("Unmatched: %d\n", result.Summary.Unmatched)
	fmt.Printf("Accuracy: %.1f%%\n", result.Summary.Accuracy)
	fmt.Printf("Average Confidence: %.1f%%\n", result.Summary.AverageConfidence)
	fmt.Printf("Execution Time: %s\n", time.Since(startTime).String())

	return nil
}
