package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pensario-server/internal/config"
	"pensario-server/internal/database"
	"pensario-server/internal/handler"
	"pensario-server/internal/logger"
	"pensario-server/internal/repository"
	"pensario-server/internal/service"
	"pensario-server/internal/storage"

	"github.com/sirupsen/logrus"
)

const serviceName = "pensario-server"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Logging.Level, cfg.Logging.Format)

	db, err := database.New(cfg.Database.URL, cfg.Database.SQLitePath, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("failed to access database handle")
	}
	defer sqlDB.Close()

	blobs, err := storage.NewLocalStore(cfg.Storage.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("failed to prepare upload directory")
	}

	store := repository.NewStore(db)
	timeout := cfg.Database.Timeout

	authService, err := service.NewAuthService(store.Users(), service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		BcryptCost: cfg.JWT.BcryptCost,
		Timeout:    timeout,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialise auth service")
	}
	noteService := service.NewNoteService(store, blobs, timeout, log)
	reminderService := service.NewReminderService(store, timeout, log)
	revisionService := service.NewRevisionService(store, timeout, log)
	policy := service.NewAttachmentPolicy(cfg.Storage.MaxUploadBytes, cfg.Storage.AllowedExtensions)
	attachmentService := service.NewAttachmentService(store, blobs, policy, timeout, log)

	scanner := service.NewOrphanScanner(blobs, store.Attachments(), timeout, log)
	if cfg.OrphanScan.Enabled {
		if err := scanner.Start(cfg.OrphanScan.Schedule); err != nil {
			log.WithError(err).Fatal("invalid ORPHAN_SCAN_SCHEDULE")
		}
		defer scanner.Stop()
	}

	router := handler.NewRouter(handler.Handlers{
		Auth:        handler.NewAuthHandler(authService, log),
		Notes:       handler.NewNoteHandler(noteService, log),
		Reminders:   handler.NewReminderHandler(reminderService, log),
		Attachments: handler.NewAttachmentHandler(attachmentService, log),
		Revisions:   handler.NewRevisionHandler(revisionService, log),
	}, handler.RouterConfig{
		Verifier:       authService,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
		ServiceName:    serviceName,
	}, log)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr": addr,
			"env":  cfg.Server.Env,
		}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		return
	}

	log.Info("server stopped gracefully")
}
