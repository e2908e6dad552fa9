package cmd

import (
	"context"
	"fmt"

	"reconciler/core/database"
	"reconciler/core/storage"
	"reconciler/feature/integrity"
	"reconciler/feature/integrity/checks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on record storage and the job database",
	Long:  `Checks that the bucket holds the records prefix and that the job tables match their models.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return cmd.Help()
		}
		return runIntegrityChecks(cmd.Context(), true, true)
	},
}

// storageCheckCmd represents the integrity storage command
var storageCheckCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the record storage layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false)
	},
}

// databaseCheckCmd represents the integrity database command
var databaseCheckCmd = &cobra.Command{
	Use:   "database",
	Short: "Check the job database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(storageCheckCmd, databaseCheckCmd)

	storageCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket and records prefix when missing")
}

func runIntegrityChecks(ctx context.Context, runStorage, runDatabase bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logg, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logg.Sync()

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	var db *gorm.DB
	if runDatabase {
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			db = conn
		}
	}

	svc := integrity.NewService(client, cfg.Storage.Bucket, cfg.Storage.RecordsPrefix, logg, db)

	if runStorage {
		logg.Info("Checking record storage...", zap.String("bucket", cfg.Storage.Bucket))
		report, err := svc.CheckStorage(ctx)
		if err != nil {
			return fmt.Errorf("storage check failed: %w", err)
		}

		if report.Status == checks.StatusOK {
			logg.Info("Record storage is intact.", zap.String("prefix", report.Prefix))
		} else {
			logg.Warn("Record storage incomplete",
				zap.Bool("bucket_exists", report.BucketExists),
				zap.Bool("prefix_present", report.PrefixPresent))

			if fixFlag {
				logg.Info("Fixing record storage...")
				if err := svc.FixStorage(ctx, report); err != nil {
					return fmt.Errorf("failed to fix storage: %w", err)
				}
				logg.Info("Record storage fixed successfully.")
			} else {
				logg.Info("Run 'integrity storage --fix' to create what is missing.")
			}
		}
	}

	if runDatabase && db != nil {
		logg.Info("Checking database schema...", zap.String("driver", cfg.Database.Driver))
		report, err := svc.CheckDatabase()
		if err != nil {
			return fmt.Errorf("database check failed: %w", err)
		}

		if report.Matched {
			logg.Info("Database schema matches the job models.")
			return nil
		}

		logg.Warn("Database schema mismatches found")
		for table, tbl := range report.Tables {
			if tbl.Status == checks.StatusOK {
				continue
			}
			if len(tbl.MissingColumns) > 0 {
				logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
			}
			if len(tbl.TypeMismatches) > 0 {
				logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tbl.TypeMismatches))
			}
		}
		for _, e := range report.Errors {
			logg.Error("Inspection Error", zap.String("error", e))
		}
	}

	return nil
}
