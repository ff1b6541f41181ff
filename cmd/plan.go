package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"densify/pkg/discovery"
	"densify/pkg/grouping"
	"densify/pkg/tokens"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	planHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	planNameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	planDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var (
	planMaxPDFs  int
	planShowTree bool
)

// planCmd shows the grouping plan without writing any PDFs.
var planCmd = &cobra.Command{
	Use:   "plan <source-dir>",
	Short: "Show the grouping plan without generating PDFs",
	Long: `Plan runs discovery and the grouping engine, then prints the PDFs that a
convert run would produce: one line per group with its file count, total
size, priority, and token estimate. Nothing is written to disk.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceDir := args[0]
		if err := validateSource(sourceDir); err != nil {
			return err
		}

		scanner, err := discovery.NewScanner(sourceDir, nil, logger)
		if err != nil {
			return err
		}
		files, err := scanner.Discover()
		if err != nil {
			return fmt.Errorf("file discovery failed: %w", err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no supported files discovered in %s", sourceDir)
		}

		if planShowTree {
			fmt.Println(discovery.RenderTree(filepath.Base(scanner.Root()), files))
		}

		engine := grouping.NewEngine(grouping.Config{MaxPDFs: planMaxPDFs})
		groups := engine.GroupFiles(files)
		logger.Debug("Computed grouping plan",
			zap.Int("files", len(files)),
			zap.Int("groups", len(groups)))

		estimator := tokens.NewEstimator(logger)

		fmt.Println(planHeaderStyle.Render(fmt.Sprintf(
			"Plan: %d files -> %d PDFs (cap %d)", len(files), len(groups), engine.Config().MaxPDFs)))
		fmt.Println()

		var totalTokens int
		for _, group := range groups {
			var size int64
			var groupTokens int
			for _, f := range group.Files {
				size += f.Size
				if raw, err := os.ReadFile(f.Path); err == nil {
					groupTokens += estimator.Count(string(raw))
				}
			}
			totalTokens += groupTokens

			fmt.Printf("  %s  %s\n",
				planNameStyle.Render(fmt.Sprintf("%-32s", group.Name)),
				planDimStyle.Render(fmt.Sprintf("%4d files  %10s  priority %4d  ~%d tokens",
					len(group.Files), discovery.FormatSize(size), group.Priority, groupTokens)))
		}

		post := tokens.EstimatePostCompression(totalTokens)
		fmt.Println()
		fmt.Println(planDimStyle.Render(fmt.Sprintf(
			"Estimated tokens: %d original, ~%d after compression", totalTokens, post.EstimatedTokens)))
		return nil
	},
}

func init() {
	planCmd.Flags().IntVar(&planMaxPDFs, "max-pdfs", 10, "Hard cap on the number of output PDFs")
	planCmd.Flags().BoolVar(&planShowTree, "tree", false, "Print the discovered file tree before the plan")
	RootCmd.AddCommand(planCmd)
}
