package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"resume-analyzer/config"
	"resume-analyzer/extractor"
	"resume-analyzer/infrastructure"
	"resume-analyzer/interfaces"
	"resume-analyzer/worker"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config", "err", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error("creating upload dir", "err", err)
		os.Exit(1)
	}

	db, err := infrastructure.NewMySQLConnection(cfg.DatabaseDSN)
	if err != nil {
		logger.Error("connecting to database", "err", err)
		os.Exit(1)
	}
	store := infrastructure.NewGormJobStore(db)

	queue, err := infrastructure.NewQueue(cfg.RabbitMQURL, cfg.QueueName, logger)
	if err != nil {
		logger.Error("connecting to RabbitMQ", "err", err)
		os.Exit(1)
	}
	defer queue.Close()

	ocr := extractor.NewOCREngine(cfg.OCRBinary, cfg.OCRTimeout,
		extractor.NewRateLimiter(cfg.OCRMinInterval))
	ext := extractor.New(ocr, logger)

	notifier := worker.NewNotifier()
	w := worker.New(store, store, ext, notifier, logger)
	sweeper := worker.NewSweeper(store, cfg.StaleJobLease, cfg.SweepInterval, logger)

	router := gin.Default()
	interfaces.NewHTTPHandler(router, &interfaces.HTTPHandler{
		Jobs:      store,
		Postings:  store,
		Queue:     queue,
		UploadDir: cfg.UploadDir,
		Logger:    logger,
	}, cfg.JWTSecret)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return queue.Consume(ctx, cfg.Workers, w.HandleMessage)
	})
	g.Go(func() error {
		return sweeper.Run(ctx)
	})
	g.Go(func() error {
		logger.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("shutting down", "err", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
