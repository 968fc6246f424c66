package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesocyclon/docxpipeline/internal/auditor"
	"github.com/mesocyclon/docxpipeline/pkg/pipeline"
)

// batchEntry records one file's outcome within a batch run.
type batchEntry struct {
	Path           string         `json:"path"`
	Status         auditor.Status `json:"status"`
	AuditDirectory string         `json:"audit_directory,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// batchSummary is written to <audit_dir>/batch_summary.json after every
// file in the directory has been processed.
type batchSummary struct {
	Intent    string       `json:"intent"`
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Entries   []batchEntry `json:"entries"`
}

func newBatchCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "batch <dir> \"<intent>\"",
		Short: "Process every .docx file in a directory with the same intent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, intent := args[0], args[1]

			cfg, err := loadConfig(cfgPath)
			if err != nil {
				fatalf(exitError, "%v", err)
			}

			matches, err := filepath.Glob(filepath.Join(dir, "*.docx"))
			if err != nil {
				fatalf(exitError, "%v", err)
			}
			if len(matches) == 0 {
				fatalf(exitError, "no .docx files found in %s", dir)
			}

			opts := newPipelineOptions(cfg)
			summary := batchSummary{Intent: intent, Total: len(matches)}

			for _, path := range matches {
				result, err := pipeline.ProcessDocument(context.Background(), path, intent, opts)
				entry := batchEntry{Path: path}
				switch {
				case err != nil:
					entry.Status = auditor.Status("ERROR")
					entry.Error = err.Error()
					summary.Failed++
				case result.Status == auditor.StatusSuccess:
					entry.Status = result.Status
					entry.AuditDirectory = result.AuditDirectory
					summary.Succeeded++
				default:
					entry.Status = result.Status
					entry.AuditDirectory = result.AuditDirectory
					if len(result.Errors) > 0 {
						entry.Error = result.Errors[0]
					}
					summary.Failed++
				}
				summary.Entries = append(summary.Entries, entry)
			}

			summaryPath := filepath.Join(cfg.AuditDir, fmt.Sprintf("batch_summary_%d.json", time.Now().Unix()))
			if err := writeBatchSummary(summaryPath, summary); err != nil {
				fatalf(exitError, "%v", err)
			}
			fmt.Println(summaryPath)

			if summary.Failed > 0 {
				os.Exit(exitError)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "path to a pipeline config YAML file")
	return cmd
}

func writeBatchSummary(path string, summary batchSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
