package main

import (
	"fmt"

	"github.com/matsen/flowline/internal/loader"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <dir> [source]",
	Short: "Write a timeline document as a JSONL directory",
	Long: `Load a timeline document and write it as projects.jsonl and
connections.jsonl under dir, one record per line. The directory can be
passed back to any command as a source.

The document is normalized first, so a document that would not render is
not exported. Existing files in dir are replaced.

Examples:
  flowline export ./timeline https://example.com/data/projects.json
  flowline layout ./timeline`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	dir := args[0]

	doc, err := loadDocument(cmd.Context(), sourceArg(args, 1))
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	g, err := normalizeDocument(doc)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if err := loader.WriteDir(dir, doc); err != nil {
		return fmt.Errorf("writing %s: %w", dir, err)
	}

	if humanOutput {
		outputHuman("Exported %d projects and %d connections to %s\n", len(doc.Projects), len(doc.Connections), dir)
		return nil
	}
	return outputJSON(WrittenResponse{
		Output: dir,
		Nodes:  len(g.Nodes),
		Edges:  len(g.Edges),
	})
}
