package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docqa/internal/index"
	"github.com/ziadkadry99/docqa/internal/loader"
)

var indexCmd = &cobra.Command{
	Use:   "index [files...]",
	Short: "Build and save a vector index",
	Long: `Loads, splits and embeds the given files and saves the index to --out so
later ask, shell, web and mcp runs can reuse it without embedding again.
The index remembers its embedding model and refuses to load under another.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringP("out", "o", "docqa-index", "directory to write the index to")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outDir, _ := cmd.Flags().GetString("out")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, false)
	if err != nil {
		return err
	}
	defer p.Close()

	paths, err := loader.ExpandPaths(args)
	if err != nil {
		return err
	}

	sess := p.newSession()
	summary, err := processWithProgress(ctx, sess, paths, os.Stderr)
	if err != nil {
		return err
	}

	if err := sess.Current().Save(outDir); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}

	manifest, err := index.ReadManifest(outDir)
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d file(s) into %s\n", len(summary.Files), outDir)
	fmt.Printf("  Documents:  %d\n", summary.Documents)
	fmt.Printf("  Segments:   %d\n", manifest.Segments)
	fmt.Printf("  Model:      %s (%d dimensions)\n", manifest.Model, manifest.Dimensions)
	return nil
}
