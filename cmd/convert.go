package cmd

import (
	"fmt"
	"os"

	"densify/pkg/grouping"
	"densify/pkg/logging"
	"densify/pkg/pipeline"
	"densify/pkg/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// convertFlags holds the flag surface of the convert command.
type convertFlags struct {
	output     string
	exclude    []string
	maxPDFs    int
	maxPages   int
	maxSizeMB  int
	totalPages int
	workers    int
	verbose    bool
}

var convertOpts convertFlags

// convertCmd runs the full conversion: discovery, grouping, PDF rendering.
var convertCmd = &cobra.Command{
	Use:   "convert <source-dir>",
	Short: "Convert a codebase into at most N dense PDFs",
	Long: `Convert walks the source directory, packs the discovered files into at
most --max-pdfs groups (directory boundaries preserved where possible, key
project folders prioritized), and renders one PDF per group.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceDir := args[0]
		if err := validateSource(sourceDir); err != nil {
			return err
		}

		if err := logging.Setup(convertOpts.verbose, "Densify", version.Get().Version); err != nil {
			logger.Warn("Falling back to default logger", zap.Error(err))
		} else {
			logger = logging.Logger
		}

		outputDir := convertOpts.output
		if outputDir == "" {
			outputDir = sourceDir + "_pdf_ready"
		}

		result, err := pipeline.Run(pipeline.Options{
			SourceDir:  sourceDir,
			OutputDir:  outputDir,
			Exclusions: convertOpts.exclude,
			MaxWorkers: convertOpts.workers,
			Grouping: grouping.Config{
				MaxPDFs:         convertOpts.maxPDFs,
				MaxPagesPerPDF:  convertOpts.maxPages,
				MaxSizePerPDFMB: convertOpts.maxSizeMB,
				MaxTotalPages:   convertOpts.totalPages,
			},
		}, logger)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}

		fmt.Print(result.Summary())

		if result.Error != "" {
			return fmt.Errorf("%s", result.Error)
		}
		fmt.Printf("PDFs ready at: %s\n", outputDir)
		return nil
	},
}

// validateSource checks that the source path exists and is a directory.
func validateSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("source directory does not exist: %s", path)
	}
	if !info.IsDir() {
		return fmt.Errorf("source path is not a directory: %s", path)
	}
	return nil
}

func init() {
	convertCmd.Flags().StringVarP(&convertOpts.output, "output", "o", "", "Output directory for PDFs (default: <source>_pdf_ready)")
	convertCmd.Flags().StringArrayVar(&convertOpts.exclude, "exclude", nil, "Additional exclusion patterns (gitignore syntax, repeatable)")
	convertCmd.Flags().IntVar(&convertOpts.maxPDFs, "max-pdfs", 10, "Hard cap on the number of output PDFs")
	convertCmd.Flags().IntVar(&convertOpts.maxPages, "max-pages", 100, "Advisory page limit per PDF")
	convertCmd.Flags().IntVar(&convertOpts.maxSizeMB, "max-size-mb", 10, "Source-size ceiling per PDF in MB (0 disables)")
	convertCmd.Flags().IntVar(&convertOpts.totalPages, "max-total-pages", 1000, "Advisory total page limit across all PDFs")
	convertCmd.Flags().IntVar(&convertOpts.workers, "workers", 0, "Rendering workers (default: number of CPUs)")
	convertCmd.Flags().BoolVarP(&convertOpts.verbose, "verbose", "v", false, "Verbose output")

	RootCmd.AddCommand(convertCmd)
}
