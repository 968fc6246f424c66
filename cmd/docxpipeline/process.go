package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesocyclon/docxpipeline/pkg/pipeline"
)

func newProcessCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "process <docx> \"<intent>\"",
		Short: "Run the full extract/plan/execute/validate/audit pipeline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docxPath, intent := args[0], args[1]

			cfg, err := loadConfig(cfgPath)
			if err != nil {
				fatalf(exitError, "%v", err)
			}

			result, err := pipeline.ProcessDocument(context.Background(), docxPath, intent, newPipelineOptions(cfg))
			if err != nil {
				fatalf(exitError, "%v", err)
			}

			printResult(&result)
			os.Exit(exitCodeFor(result.Status))
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "path to a pipeline config YAML file")
	return cmd
}

func printResult(result *pipeline.Result) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("encoding result", slog.String("error", err.Error()))
		fmt.Println(result.Status)
		return
	}
	fmt.Println(string(data))
}
