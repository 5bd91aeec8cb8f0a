package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"stockbot/src/api"
	apicontrollers "stockbot/src/api/controllers"
	apihandlers "stockbot/src/api/handlers"
	"stockbot/src/config"
	"stockbot/src/database"
	"stockbot/src/services"
	"stockbot/src/utils"
	aws_handler "stockbot/src/utils/aws"
	"stockbot/src/worker"
	workercontrollers "stockbot/src/worker/controllers"
	workerhandlers "stockbot/src/worker/handlers"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}
	logger := utils.NewLoggerFromConfig(cfg.Logging)

	if cfg.Secrets.DiscordTokenARN != "" {
		awsHandler, err := aws_handler.NewAWSHandler(cfg.Secrets.AWSRegion)
		if err != nil {
			logger.Fatalf("Error while creating aws session: %v", err)
		}
		if err := config.ResolveSecrets(cfg, awsHandler.SecretManager); err != nil {
			logger.Fatalf("Error while resolving secrets: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = utils.WithLogger(ctx, logger)

	httpServer, cleanup, errC, err := run(ctx, cfg, logger)
	if err != nil {
		logger.Errorf("Couldn't run: %v", err)
		return
	}
	defer cleanup()

	select {
	case err := <-errC:
		if err != nil {
			logger.Errorf("Error while running: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Error while shutting down: %v", err)
		}
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*http.Server, func(), <-chan error, error) {
	errC := make(chan error, 1)

	db, err := database.SetupDB(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	svc, err := services.NewFromConfig(ctx, cfg, db, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		if err := svc.Close(); err != nil {
			logger.Warnf("Error while closing services: %v", err)
		}
	}

	var httpServer *http.Server
	if cfg.Service.Type == config.API {
		controller := apicontrollers.NewController(svc, cfg.Valuation.LeaderboardSize)
		server := api.NewServer(apihandlers.NewHandler(controller), logger)
		httpServer = api.NewHTTPServer(server, cfg.Service.Port)
	} else {
		controller := workercontrollers.NewController(cfg, svc)
		if err := controller.Start(ctx); err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		stopWorker := cleanup
		cleanup = func() {
			controller.Stop()
			stopWorker()
		}
		server := worker.NewServer(workerhandlers.NewHandler(controller), logger)
		httpServer = worker.NewHTTPServer(server, cfg.Service.Port)
	}

	go func() {
		logger.WithField("type", cfg.Service.Type).Infof("Starting server on port %s", cfg.Service.Port)

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()
	return httpServer, cleanup, errC, nil
}
