package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"reconciler/core/config"
	"reconciler/core/database"
	"reconciler/core/reconcile"
	"reconciler/core/storage"
	"reconciler/feature/jobs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	jobName    string
	jobSource  string
	jobTarget  string
	jobRules   string
	jobIDField string
	jobsLimit  int
)

// jobsCmd is the parent command for persisted jobs.
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage persisted reconciliation jobs",
	Long:  `Create, list and run jobs stored in the configured database. Record set refs resolve against the configured bucket.`,
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a job",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJobService(cmd.Context(), func(svc *jobs.Service, logg *zap.Logger) error {
			data, err := os.ReadFile(jobRules)
			if err != nil {
				return fmt.Errorf("failed to read rules: %w", err)
			}
			var specs []reconcile.RuleSpec
			if err := json.Unmarshal(data, &specs); err != nil {
				return fmt.Errorf("failed to parse rules %s: %w", jobRules, err)
			}

			job, err := svc.CreateJob(cmd.Context(), jobs.CreateJobRequest{
				Name:      jobName,
				SourceRef: jobSource,
				TargetRef: jobTarget,
				IDField:   jobIDField,
				Rules:     specs,
			})
			if err != nil {
				return err
			}
			fmt.Println(job.ID)
			return nil
		})
	},
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJobService(cmd.Context(), func(svc *jobs.Service, logg *zap.Logger) error {
			list, err := svc.ListJobs(cmd.Context(), jobsLimit, 0)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSOURCE\tTARGET\tSTATUS\tLAST RUN")
			for _, job := range list {
				lastRun := "-"
				if job.LastRunAt != nil {
					lastRun = job.LastRunAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", job.ID, job.Name, job.SourceRef, job.TargetRef, job.Status, lastRun)
			}
			return w.Flush()
		})
	},
}

var jobsRunCmd = &cobra.Command{
	Use:   "run <job-id>",
	Short: "Run a job and print its summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJobService(cmd.Context(), func(svc *jobs.Service, logg *zap.Logger) error {
			exec, err := svc.RunJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Println("\n=== Execution Summary ===")
			fmt.Printf("Execution: %s\n", exec.ID)
			fmt.Printf("Total: %d\n", exec.Total)
			fmt.Printf("Matched: %d\n", exec.Matched)
			fmt.Printf("Unmatched: %d\n", exec.Unmatched)
			fmt.Printf("Accuracy: %.1f%%\n", exec.Accuracy)
			fmt.Printf("Average Confidence: %.1f%%\n", exec.AverageConfidence)
			return nil
		})
	},
}

func init() {
	jobsCreateCmd.Flags().StringVar(&jobName, "name", "", "Job name")
	jobsCreateCmd.Flags().StringVar(&jobSource, "source", "", "Source record set ref")
	jobsCreateCmd.Flags().StringVar(&jobTarget, "target", "", "Target record set ref")
	jobsCreateCmd.Flags().StringVar(&jobRules, "rules", "", "Path to the rules JSON file")
	jobsCreateCmd.Flags().StringVar(&jobIDField, "id-field", "", "Record field used as identifier")
	_ = jobsCreateCmd.MarkFlagRequired("name")
	_ = jobsCreateCmd.MarkFlagRequired("source")
	_ = jobsCreateCmd.MarkFlagRequired("target")
	_ = jobsCreateCmd.MarkFlagRequired("rules")

	jobsListCmd.Flags().IntVar(&jobsLimit, "limit", 50, "Maximum number of jobs to list")

	jobsCmd.AddCommand(jobsCreateCmd, jobsListCmd, jobsRunCmd)
	RootCmd.AddCommand(jobsCmd)
}

// withJobService wires the job service against the required database and runs fn.
func withJobService(ctx context.Context, fn func(*jobs.Service, *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logg, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logg.Sync()

	svc, closeFn, err := buildJobService(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer closeFn()

	return fn(svc, logg)
}

func buildJobService(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*jobs.Service, func(), error) {
	engine, err := reconcile.NewEngine(cfg.Matching)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid matching configuration: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection required: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	svc, locker, err := newJobService(ctx, cfg, logg, db, client, engine)
	if err != nil {
		return nil, nil, err
	}
	return svc, func() { closeLocker(locker, logg) }, nil
}
