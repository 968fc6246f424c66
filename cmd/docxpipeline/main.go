package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

func main() {
	root := &cobra.Command{
		Use:   "docxpipeline",
		Short: "Automate chapter-level DOCX edits through a language model",
	}

	root.AddCommand(
		newProcessCmd(),
		newBatchCmd(),
		newDryRunCmd(),
		newStatusCmd(),
		newConfigCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUnknown)
	}
}
