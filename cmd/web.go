package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/docqa/internal/dashboard"
	"github.com/ziadkadry99/docqa/internal/server"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the browser UI",
	Long: `Starts an HTTP server with a form to upload documents, process them and
ask questions. Every browser gets its own index.`,
	RunE: runWeb,
}

func init() {
	webCmd.Flags().Int("port", 0, "port to listen on (overrides web.port)")
	webCmd.Flags().String("upload-dir", "", "directory for uploaded batches (default: system temp dir)")
	rootCmd.AddCommand(webCmd)
}

func runWeb(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Web.Port = port
	}
	uploadDir, _ := cmd.Flags().GetString("upload-dir")

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

	srv := server.New(server.Config{
		Port:     cfg.Web.Port,
		AllowAll: cfg.Web.AllowAllOrigins,
	}, logger)

	dash := dashboard.New(p.newSession, uploadDir, logger)
	defer dash.Close()
	dash.RegisterRoutes(srv.Router())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	fmt.Fprintf(os.Stderr, "Open http://localhost:%d in your browser\n", cfg.Web.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}
	return nil
}
