package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"indiamart-audit/internal/app"
	"indiamart-audit/internal/audit"
)

func runCmd() *cobra.Command {
	var (
		recordsPath    string
		thresholdsPath string
		prompt         string
		promptFile     string
		sessionID      string
		outputPath     string
		noProgress     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Audit a lead file against a threshold file",
		Long: `Classify every lead deterministically, collect an advisory LLM opinion for
each one in bounded batches, persist the results and print a summary.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if prompt == "" && promptFile != "" {
				b, err := os.ReadFile(promptFile)
				if err != nil {
					return fmt.Errorf("read prompt file: %w", err)
				}
				prompt = string(b)
			}
			if sessionID == "" {
				sessionID = uuid.New().String()
			}

			req, err := buildRequest(sessionID, prompt, recordsPath, thresholdsPath)
			if err != nil {
				return err
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			services, err := app.Build(ctx, cfg, app.Options{ServiceName: "audit-cli"}, log)
			if err != nil {
				return err
			}
			defer services.Close()

			var progress audit.ProgressFunc
			if !noProgress {
				bar := progressbar.NewOptions(len(req.Records),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionShowCount(),
					progressbar.OptionShowElapsedTimeOnFinish(),
					progressbar.OptionSetWidth(40),
					progressbar.OptionSetDescription("Auditing leads"),
					progressbar.OptionThrottle(100*time.Millisecond),
				)
				defer func() { _ = bar.Finish() }()
				progress = func(done, _ int) { _ = bar.Set(done) }
			}

			report, runErr := services.Engine.Execute(ctx, req, progress)
			if report == nil {
				return runErr
			}

			if outputPath != "" {
				if err := writeJSON(outputPath, report.Results); err != nil {
					return err
				}
			}
			printSummary(cmd.OutOrStdout(), report.Summary)
			return runErr
		},
	}

	cmd.Flags().StringVar(&recordsPath, "records", "", "JSON file with the lead records (array)")
	cmd.Flags().StringVar(&thresholdsPath, "thresholds", "", "JSON file with the category thresholds (array)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "audit instructions for the advisory model")
	cmd.Flags().StringVar(&promptFile, "prompt-file", "", "file holding the audit instructions")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default: a new UUID)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write all results as JSON to this file")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	cmd.Flags().Int("batch-size", 0, "records per advisory batch")
	cmd.Flags().Int("concurrency", 0, "advisory calls in flight per batch")
	cmd.Flags().String("model", "", "advisory model name")

	_ = cmd.MarkFlagRequired("records")
	_ = cmd.MarkFlagRequired("thresholds")
	_ = viper.BindPFlag("audit.batch_size", cmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("audit.concurrency", cmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("llm.model", cmd.Flags().Lookup("model"))

	return cmd
}

// buildRequest assembles a run request from input files and checks it against
// the request schema.
func buildRequest(sessionID, prompt, recordsPath, thresholdsPath string) (*audit.Request, error) {
	records, err := readJSONArray(recordsPath)
	if err != nil {
		return nil, err
	}
	thresholds, err := readJSONArray(thresholdsPath)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]interface{}{
		"sessionId":   sessionID,
		"auditPrompt": prompt,
		"rawRecords":  records,
		"thresholds":  thresholds,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := audit.DecodeRequest(body)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func readJSONArray(path string) (json.RawMessage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("%s must hold a JSON array: %w", path, err)
	}
	return b, nil
}

func writeJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
