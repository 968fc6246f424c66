package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesocyclon/docxpipeline/pkg/pipeline"
)

func newDryRunCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "dry-run <docx> \"<intent>\"",
		Short: "Extract and plan without executing; write plan.v1.json only",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docxPath, intent := args[0], args[1]

			cfg, err := loadConfig(cfgPath)
			if err != nil {
				fatalf(exitError, "%v", err)
			}

			result, err := pipeline.DryRunDocument(context.Background(), docxPath, intent, newPipelineOptions(cfg))
			if err != nil {
				fmt.Println(result.AuditDirectory)
				fatalf(exitInvalidPlan, "%v", err)
			}

			data, mErr := json.MarshalIndent(result, "", "  ")
			if mErr != nil {
				fmt.Println(result.AuditDirectory)
				return nil
			}
			fmt.Println(string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "path to a pipeline config YAML file")
	return cmd
}
