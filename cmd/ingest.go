package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/baotran/ragchat-be/config"
	"github.com/baotran/ragchat-be/database"

	"github.com/spf13/cobra"
)

var ingestCorpusDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the vector index from a document corpus",
	Long: `ingest walks the corpus directory, tags every document with the
department named in its path, chunks and embeds the text, and writes a
fresh index. Documents without a department segment are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		corpusDir := ingestCorpusDir
		if corpusDir == "" {
			corpusDir = cfg.Ingest.CorpusDir
		}

		embedder, err := newEmbedder(cmd.Context(), cfg.Embedding)
		if err != nil {
			return err
		}
		manager := database.NewIndexManager(nil)
		ingestService, err := newIngestService(cfg, embedder, manager)
		if err != nil {
			return err
		}

		report, err := ingestService.Ingest(context.Background(), corpusDir)
		if err != nil {
			return err
		}

		fmt.Printf("indexed %d documents (%d chunks) with model %s in %.1fs\n",
			report.Documents, report.Chunks, report.Model, report.DurationSec)
		if len(report.Skipped) > 0 {
			fmt.Printf("skipped %d documents without a department segment:\n  %s\n",
				len(report.Skipped), strings.Join(report.Skipped, "\n  "))
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestCorpusDir, "corpus", "", "corpus directory (overrides config)")
	rootCmd.AddCommand(ingestCmd)
}
