package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"churnflow/internal/cli/ui"
	"churnflow/internal/config"
	"churnflow/internal/export"
	"churnflow/internal/ingest"
	"churnflow/internal/logger"
	"churnflow/internal/predictor"
	"churnflow/internal/service"
	"churnflow/internal/stats"
)

var (
	runOut          string
	runFormat       string
	runPredictorURL string
	runDialect      string
	runTimeout      time.Duration
	runVerbose      bool
)

// runCmd is the run command
var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "predict churn for every customer in a CSV or JSON file",
	Long: `Run a customer file through the churn prediction service.

The file format is taken from its suffix (.csv or .json). Every record is sent
in a single request; records that fail local type checks or are rejected by the
service are reported individually and never abort the batch.`,
	Example: `  $ churnctl run customers.csv
  $ churnctl run customers.csv --dialect rfc4180 --out predictions.csv
  $ churnctl run customers.json --format xlsx --predictor-url http://ml:5000`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "Output file path (default churn_predictions_<timestamp>.<ext>)")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "csv", "Output format: csv or xlsx")
	runCmd.Flags().StringVar(&runPredictorURL, "predictor-url", "", "Prediction service base URL (env: CHURNFLOW_PREDICTOR_BASE_URL)")
	runCmd.Flags().StringVar(&runDialect, "dialect", "", "CSV dialect: simple or rfc4180 (env: CHURNFLOW_BATCH_CSV_DIALECT)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Prediction request timeout (env: CHURNFLOW_PREDICTOR_TIMEOUT_SECS)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Log pipeline details to stderr")

	// Silence usage to avoid showing help on every error
	runCmd.SilenceUsage = true
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}
	if runPredictorURL != "" {
		cfg.Predictor.BaseURL = runPredictorURL
	}
	if runDialect != "" {
		cfg.Batch.CSVDialect = runDialect
	}
	if runTimeout > 0 {
		cfg.Predictor.TimeoutSecs = int(runTimeout.Seconds())
	}

	level := "warn"
	if runVerbose {
		level = "debug"
	}
	if err := logger.SetupWriter(config.LogConfig{Level: level, Format: "text"}, os.Stderr); err != nil {
		return err
	}

	dialect, err := ingest.ParseDialect(cfg.Batch.CSVDialect)
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("invalid dialect")
	}
	format, err := export.Lookup(runFormat)
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("invalid format")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		ui.PrintError("failed to read %s: %v", path, err)
		return fmt.Errorf("read failed")
	}

	svc := service.NewBatchService(predictor.NewClient(&cfg.Predictor), nil, service.BatchServiceConfig{
		SoftLimit: cfg.Batch.SoftLimit,
		Ingest: ingest.Options{
			Dialect:  dialect,
			MaxBytes: cfg.Batch.MaxUploadBytes,
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Predictor.Timeout()+10*time.Second)
	defer cancel()

	filename := filepath.Base(path)
	ui.PrintInfo("Submitting %s to %s...", filename, cfg.Predictor.BaseURL)
	run, err := svc.Run(ctx, filename, data)
	if err != nil {
		ui.PrintErrorBox("Batch failed", err.Error())
		return fmt.Errorf("batch failed")
	}

	for _, w := range run.Warnings {
		ui.PrintWarning("%s", w)
	}

	fmt.Println()
	fmt.Println(ui.RenderSummary(filename, stats.Aggregate(run.Result)))
	if failures := ui.RenderFailures(run.Result); failures != "" {
		fmt.Println()
		fmt.Print(failures)
	}
	fmt.Println()

	out := runOut
	if out == "" {
		out = export.BuildFilename(export.DefaultPrefix, format.Extension, time.Now())
	}
	var buf bytes.Buffer
	if err := format.Write(&buf, run.Result); err != nil {
		ui.PrintError("failed to render %s: %v", format.Name, err)
		return fmt.Errorf("export failed")
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		ui.PrintError("failed to write %s: %v", out, err)
		return fmt.Errorf("export failed")
	}

	ui.PrintSuccess("Wrote %d results to %s", len(run.Result), out)
	return nil
}
