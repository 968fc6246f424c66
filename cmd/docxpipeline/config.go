package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesocyclon/docxpipeline/internal/config"
)

func newConfigCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "config",
		Short: "Inspect or template pipeline run configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print a run configuration, defaults applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadRunConfig(args[0])
			if err != nil {
				fatalf(exitError, "%v", err)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}

	createCmd := &cobra.Command{
		Use:   "create <path>",
		Short: "Write a starter run configuration template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil {
				fatalf(exitError, "%s already exists", path)
			}
			if err := config.WriteTemplate(path); err != nil {
				fatalf(exitError, "%v", err)
			}
			fmt.Println(path)
			return nil
		},
	}

	root.AddCommand(showCmd, createCmd)
	return root
}
