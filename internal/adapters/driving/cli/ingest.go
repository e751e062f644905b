package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

var ingestRecursive bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest files into the index",
	Long: `Reads files, detects their content type, extracts text and indexes
the result. Directories are ingested file by file; pass --recursive to
descend into subdirectories.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestRecursive, "recursive", "r", false, "descend into subdirectories")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()

	paths, err := collectPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		cmd.Println("Nothing to ingest.")
		return nil
	}

	var failed int
	for _, path := range paths {
		if err := ingestOne(ctx, cmd, path); err != nil {
			failed++
			cmd.Printf("  %s: %v\n", path, err)
		}
	}

	cmd.Printf("Ingested %d of %d files.\n", len(paths)-failed, len(paths))
	if failed > 0 {
		return fmt.Errorf("%d files failed", failed)
	}
	return nil
}

func ingestOne(ctx context.Context, cmd *cobra.Command, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	doc, err := ingestService.Ingest(ctx, &domain.RawInput{
		URI:          "file://" + abs,
		FilenameHint: filepath.Base(path),
		Content:      content,
	})
	if err != nil {
		if errors.Is(err, domain.ErrOverloaded) {
			return fmt.Errorf("pipeline overloaded, retry later")
		}
		return err
	}

	cmd.Printf("  %s -> %s (%s, %s)\n", path, doc.ID, doc.Kind, doc.Status)
	return nil
}

// collectPaths expands arguments into the list of files to ingest.
// Hidden files and directories are skipped.
func collectPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if strings.HasPrefix(d.Name(), ".") && path != arg {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != arg && !ingestRecursive {
					return filepath.SkipDir
				}
				return nil
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return paths, nil
}
