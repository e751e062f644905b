package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

var (
	askLimit   int
	askRerank  bool
	askSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about indexed content",
	Long: `Retrieves the chunks most relevant to the question and generates a
grounded answer from them. Fails rather than answering from thin air.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "chunks to retrieve (0 = default)")
	askCmd.Flags().BoolVar(&askRerank, "rerank", true, "rerank retrieved chunks by lexical overlap")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "list the chunks the answer is grounded on")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if retrievalService == nil || answerService == nil {
		return errors.New("query services not configured")
	}

	ctx := context.Background()
	question := args[0]

	result, err := retrievalService.Retrieve(ctx, question, domain.RetrievalOptions{
		K:      askLimit,
		Rerank: askRerank,
	})
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}
	if len(result.Chunks) == 0 {
		cmd.Println("Nothing indexed matches the question.")
		return nil
	}

	answer, err := answerService.Answer(ctx, question, result)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationFailed) {
			return fmt.Errorf("generation failed after retries: %w", err)
		}
		return fmt.Errorf("answer failed: %w", err)
	}

	cmd.Println(answer.Text)

	if askSources {
		cmd.Println()
		cmd.Println("Sources:")
		for _, id := range answer.ChunkIDs {
			cmd.Printf("  %s\n", id)
		}
	}

	return nil
}
