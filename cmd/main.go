package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "bikeshare/docs"
	"bikeshare/internal/config"
	"bikeshare/internal/handlers"
	"bikeshare/internal/logger"
	"bikeshare/internal/repository"
	"bikeshare/internal/repository/db"
	"bikeshare/internal/server"
	"bikeshare/internal/service"
	"bikeshare/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title                       Bikeshare
// @version                     1.0
// @description                 Bike listing site: posts with bike details and optional images.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level)
	if cfg.Log.Level != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// open DB
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	deps := service.Deps{
		UploadPolicy: service.UploadPolicy{Enabled: cfg.Upload.Enabled, Strict: cfg.Upload.Strict},
		SigningKey:   cfg.Auth.SigningKey,
		TokenTTL:     cfg.Auth.TokenTTL,
		Log:          log,
	}
	settings := handlers.Settings{
		CookieName:         cfg.Auth.CookieName,
		SecureCookie:       cfg.Auth.SecureCookie,
		TokenTTL:           cfg.Auth.TokenTTL,
		FeedLimit:          cfg.Feed.RecentLimit,
		MaxMultipartMemory: cfg.Upload.MaxMultipartMemory(),
	}
	if cfg.Upload.Enabled {
		store, err := storage.NewOSStore(cfg.Upload.Folder)
		if err != nil {
			log.Fatalw("failed to prepare upload folder", "err", err, "folder", cfg.Upload.Folder)
		}
		deps.Uploads = store
		settings.Uploads = store.FileSystem()
	}

	repos := repository.NewRepository(conn)
	services := service.NewService(repos, deps)
	apiHandler := handlers.NewHandlerWithSettings(services, log, settings)

	// start HTTP server
	srv := server.New(server.Timeouts{
		ReadHeader: cfg.Server.ReadHeaderTimeout,
		Write:      cfg.Server.WriteTimeout,
		Idle:       cfg.Server.IdleTimeout,
	})
	runHTTPServer(srv, cfg.Port, apiHandler, log)
	log.Infow("server started", "port", cfg.Port, "uploads", cfg.Upload.Enabled, "strict_uploads", cfg.Upload.Strict)

	// graceful shutdown
	waitForShutdown(srv, cfg.Server.ShutdownTimeout, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
