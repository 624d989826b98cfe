package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpggio/vantage/internal/mcp"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run the MCP server over stdio (default) or streamable HTTP, depending on
transport.mode. An empty database is seeded from fixtures.path first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.seedIfEmpty(cmd.Context(), cfg.Fixtures.Path); err != nil {
			return err
		}

		mcpServer := mcp.NewServer(mcp.Config{
			Services: a.mcpServices(),
			Version:  Version,
			Logger:   logger,
		})

		if cfg.Transport.Mode == "stdio" {
			return runStdioMode(logger, mcpServer)
		}
		return runHTTPMode(logger, mcpServer, cfg.Server.Host, cfg.Server.Port)
	},
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

// newRouter serves MCP over streamable HTTP at /mcp next to a /health probe.
func newRouter(mcpServer *sdkmcp.Server) http.Handler {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return router
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           newRouter(mcpServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(logger, httpServer, errCh)
}

func waitForShutdown(logger *slog.Logger, server *http.Server, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
