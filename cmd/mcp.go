package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpserver "github.com/ziadkadry99/docqa/internal/mcp"
	"github.com/ziadkadry99/docqa/internal/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [files...]",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio exposing
ask_documents, search_documents and list_documents over the given files
or a saved index.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().String("index", "", "use a saved index directory instead of files")
	mcpCmd.Flags().Bool("watch", false, "rebuild the index when input files change")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	indexDir, _ := cmd.Flags().GetString("index")
	watch, _ := cmd.Flags().GetBool("watch")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := newPipeline(cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Stdout carries the protocol; progress and logs go to stderr.
	sess, paths, err := p.openSession(ctx, indexDir, args, os.Stderr)
	if err != nil {
		return err
	}

	if watch && len(paths) > 0 {
		go func() {
			if err := sess.Watch(ctx, paths, session.DefaultDebounce, logger, nil); err != nil {
				logger.Error("watch stopped", zap.Error(err))
			}
		}()
	}

	mcpserver.Version = Version

	summary, _ := sess.Summary()
	fmt.Fprintf(os.Stderr, "docqa MCP server started on stdio (segments=%d, model=%s)\n", summary.Segments, summary.Model)

	return mcpserver.NewServer(sess, logger).Serve()
}
