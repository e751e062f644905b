// Package cli implements the corpus command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired in by main before Execute runs. Commands check for
// nil so unconfigured setups fail with a clear message instead of a
// panic.
var (
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	answerService    driving.AnswerService
	documentStore    driven.DocumentStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Ingest content and ask questions about it",
	Long: `corpus ingests text, markup, audio and video files into a local
searchable index and answers questions grounded in the indexed content.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
}

// Services bundles everything the commands need.
type Services struct {
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
	Documents driven.DocumentStore
}

// SetServices wires core services into the command tree.
func SetServices(s Services) {
	ingestService = s.Ingest
	retrievalService = s.Retrieval
	answerService = s.Answer
	documentStore = s.Documents
}

// SetVersion sets the version string shown by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
