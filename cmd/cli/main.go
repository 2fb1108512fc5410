package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/steward-shift/internal/config"
	"github.com/jakechorley/steward-shift/pkg/clients/sheetsclient"
	"github.com/jakechorley/steward-shift/pkg/core/model"
	"github.com/jakechorley/steward-shift/pkg/core/services"
	"github.com/jakechorley/steward-shift/pkg/export"
	"github.com/jakechorley/steward-shift/pkg/lp"
	"github.com/jakechorley/steward-shift/pkg/postgres"
	"github.com/jakechorley/steward-shift/pkg/report"
	"github.com/jakechorley/steward-shift/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	logger *zap.Logger
	ctx    context.Context
}

var (
	quiet bool
	app   *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "steward-shift",
		Short: "Steward Shift - Optimize employee shift schedules",
		Long: `A CLI tool that builds provably optimal shift schedules from a YAML
configuration using integer linear programming.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Reduce report and log output")

	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up the logger and base context
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger("steward-shift", quiet)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

func solveCmd() *cobra.Command {
	var (
		csvPath    string
		matrixPath string
		timeout    time.Duration
		storeURL   string
	)

	cmd := &cobra.Command{
		Use:   "solve <config.yaml>",
		Short: "Generate an optimal schedule from a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromPath(args[0])
			if err != nil {
				return err
			}

			for _, warning := range config.OutOfRangeVacations(cfg) {
				app.logger.Warn(warning)
			}

			ctx := app.ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			result, err := services.GenerateSchedule(ctx, cfg, lp.NewBranchBound(), app.logger)
			if err != nil {
				return err
			}

			reporter := report.New(os.Stdout)
			reporter.Quiet = quiet
			if err := reporter.Write(result); err != nil {
				return err
			}

			if result.IsOptimal() {
				if csvPath != "" {
					if err := exportToFile(csvPath, export.SimpleCSV{}, result); err != nil {
						return err
					}
					app.logger.Info("Exported simple CSV", zap.String("path", csvPath))
				}
				if matrixPath != "" {
					if err := exportToFile(matrixPath, export.MatrixCSV{}, result); err != nil {
						return err
					}
					app.logger.Info("Exported matrix CSV", zap.String("path", matrixPath))
				}
			}

			if storeURL != "" {
				store, err := postgres.Connect(ctx, storeURL)
				if err != nil {
					return fmt.Errorf("failed to connect to store: %w", err)
				}
				defer store.Close()

				runID, err := services.SaveRun(ctx, store, app.logger, result)
				if err != nil {
					return err
				}
				app.logger.Info("Run stored", zap.String("run_id", runID))
			}

			if !result.IsOptimal() {
				return fmt.Errorf("no optimal schedule found (status: %s)", result.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the schedule as a simple CSV to this path")
	cmd.Flags().StringVar(&matrixPath, "matrix-csv", "", "Write the schedule as a matrix CSV to this path")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort solving after this duration (e.g. 30s, 5m)")
	cmd.Flags().StringVar(&storeURL, "store", "", "PostgreSQL connection string for storing the run")

	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Check a configuration file without solving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromPath(args[0])
			if err != nil {
				return err
			}

			for _, warning := range config.OutOfRangeVacations(cfg) {
				app.logger.Warn(warning)
			}

			fmt.Println("Configuration is valid.")
			fmt.Println(config.Summary(cfg))
			return nil
		},
	}
}

func publishCmd() *cobra.Command {
	var (
		spreadsheetID   string
		credentialsPath string
		timeout         time.Duration
	)

	cmd := &cobra.Command{
		Use:   "publish <config.yaml>",
		Short: "Solve and publish the schedule to Google Sheets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromPath(args[0])
			if err != nil {
				return err
			}

			ctx := app.ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			result, err := services.GenerateSchedule(ctx, cfg, lp.NewBranchBound(), app.logger)
			if err != nil {
				return err
			}
			if !result.IsOptimal() {
				return fmt.Errorf("no optimal schedule found (status: %s)", result.Status)
			}

			app.logger.Info("Initializing sheets client")
			client, err := sheetsclient.NewClient(ctx, credentialsPath)
			if err != nil {
				return fmt.Errorf("failed to create sheets client: %w", err)
			}

			tab, err := client.PublishSchedule(spreadsheetID, result)
			if err != nil {
				return err
			}

			app.logger.Info("Schedule published",
				zap.String("spreadsheet_id", spreadsheetID),
				zap.String("tab", tab))
			return nil
		},
	}

	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet", "", "Target spreadsheet ID")
	cmd.Flags().StringVar(&credentialsPath, "credentials", "credentials.json", "Google OAuth client credentials file")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort solving after this duration")
	cmd.MarkFlagRequired("spreadsheet")

	return cmd
}

func historyCmd() *cobra.Command {
	var storeURL string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored optimization runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := postgres.Connect(app.ctx, storeURL)
			if err != nil {
				return fmt.Errorf("failed to connect to store: %w", err)
			}
			defer store.Close()

			runs, err := services.ListRuns(app.ctx, store, app.logger)
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Println("No stored runs.")
				return nil
			}

			for _, run := range runs {
				fmt.Printf("%s  %s  %s  %d weeks from %s  objective %.2f  %d shifts\n",
					run.CreatedAt.Format("2006-01-02 15:04"),
					run.ID,
					run.Status,
					run.DurationWeeks,
					run.StartDate,
					run.ObjectiveValue,
					run.TotalShifts)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storeURL, "store", "", "PostgreSQL connection string")
	cmd.MarkFlagRequired("store")

	return cmd
}

func exportToFile(path string, exporter export.Exporter, result *model.ScheduleResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := exporter.Export(f, result); err != nil {
		f.Close()
		return fmt.Errorf("failed to export schedule: %w", err)
	}
	return f.Close()
}
