package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [doc-id]",
	Short: "Generate and store a document summary",
	Long: `Asks the generation model for a short summary of an ingested
document and stores it on the document for later viewing.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	summary, err := answerService.Summarize(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}

	cmd.Println(summary)
	return nil
}
