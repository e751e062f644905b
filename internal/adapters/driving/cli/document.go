package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List, view, check or purge ingested documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print extracted document text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentStatusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Show ingestion progress for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentStatus,
}

var documentPurgeCmd = &cobra.Command{
	Use:   "purge [doc-id]",
	Short: "Remove a document and its index records",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentPurge,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentStatusCmd)
	documentCmd.AddCommand(documentPurgeCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentStore == nil {
		return errors.New("document store not configured")
	}

	docs, err := documentStore.ListDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	for _, doc := range docs {
		title := doc.Title
		if title == "" {
			title = doc.URI
		}
		cmd.Printf("  %s  %-8s %-10s %s\n", doc.ID, doc.Kind, doc.Status, title)
	}
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentStore == nil {
		return errors.New("document store not configured")
	}

	doc, err := documentStore.GetDocument(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("getting document: %w", err)
	}

	cmd.Printf("ID:      %s\n", doc.ID)
	cmd.Printf("Kind:    %s\n", doc.Kind)
	cmd.Printf("URI:     %s\n", doc.URI)
	cmd.Printf("Title:   %s\n", doc.Title)
	cmd.Printf("Status:  %s\n", doc.Status)
	cmd.Printf("Created: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("Updated: %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	if summary, ok := doc.Metadata["summary"].(string); ok && summary != "" {
		cmd.Printf("Summary: %s\n", summary)
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentStore == nil {
		return errors.New("document store not configured")
	}

	doc, err := documentStore.GetDocument(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("getting document: %w", err)
	}

	cmd.Println(doc.Content)
	return nil
}

func runDocumentStatus(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	status, err := ingestService.Status(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("getting status: %w", err)
	}

	cmd.Printf("Status: %s\n", status.Status)
	if status.ChunksIndexed > 0 {
		cmd.Printf("Chunks indexed: %d\n", status.ChunksIndexed)
	}
	return nil
}

func runDocumentPurge(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if err := ingestService.Purge(context.Background(), args[0]); err != nil {
		return fmt.Errorf("purging document: %w", err)
	}

	cmd.Printf("Document %s purged.\n", args[0])
	return nil
}
