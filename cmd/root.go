package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// logger is shared by all subcommands; set by Execute.
var logger *zap.Logger

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "densify",
	Short: "Densify converts a codebase into dense, LLM-ready PDFs",
	Long: `Densify walks a source tree, packs its files into a bounded number of
groups, and renders each group as a dense, OCR-friendly PDF document
suitable for ingestion by large-context multimodal language models.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute(l *zap.Logger) error {
	logger = l
	return RootCmd.Execute()
}
