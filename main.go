package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidsparrow/config"
	"vidsparrow/internal/handler"
	"vidsparrow/internal/history"
	"vidsparrow/internal/model"
	"vidsparrow/internal/notify"
	"vidsparrow/internal/service"
	"vidsparrow/internal/session"
	"vidsparrow/internal/storage"
	"vidsparrow/internal/tui"
	"vidsparrow/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	mode := flag.String("mode", "tui", "front end to run: tui or panel")
	flag.Parse()
	if !validMode(*mode) {
		fmt.Fprintf(os.Stderr, "unknown mode %q (want tui or panel)\n", *mode)
		os.Exit(2)
	}

	// Load configuration
	cfg := config.Load()
	if *mode == "tui" {
		// the terminal owns stdout
		cfg.Logging.Console = false
	}

	// Initialize logger
	if err := logger.Init(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting vidsparrow",
		zap.String("mode", *mode),
		zap.String("remote", cfg.Remote.BaseURL),
		zap.String("transport", cfg.Remote.Transport),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage manager
	storageManager := storage.NewManager(&cfg.Storage)
	if err := storageManager.EnsureDownloadDir(); err != nil {
		logger.Logger.Fatal("Failed to create download directory", zap.Error(err))
	}
	storageManager.Start()
	defer storageManager.Stop()

	// Remote service client
	transport, err := service.NewTransport(cfg.Remote.Transport, cfg.Remote.Timeout)
	if err != nil {
		logger.Logger.Fatal("Failed to create transport", zap.Error(err))
	}
	remote := service.NewRemoteService(cfg.Remote.BaseURL, transport)

	// Session components
	reporter := notify.NewReporter(time.Duration(cfg.Session.ToastSeconds) * time.Second)
	proxy := history.NewProxy(remote, reporter, cfg.Session.HistoryLimit)
	controller := session.NewController(&cfg.Session, remote, storage.NewRetriever(remote, storageManager), proxy, reporter)
	dispatcher := session.NewDispatcher(controller, proxy, reporter)

	switch *mode {
	case "tui":
		err = tui.Run(ctx, dispatcher,
			reporter.Subscribe,
			controller.OnChange,
			proxy.OnChange,
		)
		if err != nil && ctx.Err() == nil {
			logger.Logger.Error("Terminal UI failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "vidsparrow: %v\n", err)
		}
	case "panel":
		runPanel(ctx, &cfg.Panel, dispatcher)
	}
}

// validMode reports whether mode names a front end
func validMode(mode string) bool {
	return mode == "tui" || mode == "panel"
}

func runPanel(ctx context.Context, cfg *model.PanelConfig, dispatcher *session.Dispatcher) {
	gin.SetMode(gin.ReleaseMode)

	panelHandler := handler.NewPanelHandler(ctx, dispatcher)
	router := handler.NewRouter(panelHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Timeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Timeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Logger.Info("Panel listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Logger.Info("Shutting down panel...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}
	panelHandler.Wait()

	logger.Logger.Info("Panel stopped")
}
