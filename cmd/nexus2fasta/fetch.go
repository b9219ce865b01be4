package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nexus2fasta/internal/treebase"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <study-id> [output.nexus]",
	Short: "Download a study's NEXUS export from TreeBASE",
	Long: "Fetch downloads the NEXUS export of a TreeBASE study, for example\n" +
		"S1925 or TB2:S1925, to a file or stdout. Fetched documents are cached\n" +
		"under the user cache directory so repeated runs stay off the network.",
	Args: cobra.RangeArgs(1, 2),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Bool("no-cache", false, "bypass the on-disk study cache")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		treebase.SetCacheEnabled(false)
	}

	id, err := treebase.NormalizeStudyID(args[0])
	if err != nil {
		return err
	}

	logger.Info("fetching study", "study", id)
	doc, err := treebase.FetchStudy(cmd.Context(), id)
	if err != nil {
		return err
	}

	if len(args) == 2 && args[1] != "-" {
		if err := os.WriteFile(args[1], []byte(doc), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", args[1], err)
		}
		logger.Info("wrote study export", "study", id, "path", args[1], "bytes", len(doc))
		return nil
	}
	fmt.Print(doc)
	return nil
}
