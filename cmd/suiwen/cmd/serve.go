package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/f3rmion/suiwen/internal/logger"
	"github.com/f3rmion/suiwen/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the reader over HTTP for a browser front end.

Every client gets its own session (text, selection, mastered characters,
vocabulary notebook and practice state). Idle sessions are dropped after
server.session_ttl. Speech is returned as directives for the browser's TTS.

Example:
  suiwen serve --addr :8080
  SUIWEN_SERVER_ADDR=127.0.0.1:9000 suiwen serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().String("text", "", "starting text of new sessions (overrides reader.default_text)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, d, err := setup("json", "")
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Named("server")

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	text := cfg.Reader.DefaultText
	if t, _ := cmd.Flags().GetString("text"); t != "" {
		text = t
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(d, cfg.Server, text, log)
	log.Info("starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.Int("entries", d.Size()),
		zap.Duration("session_ttl", cfg.Server.SessionTTL))

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	log.Info("server stopped")
	return nil
}
