package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product_api/internal/config"
	"product_api/internal/handler"
	"product_api/internal/logging"
	"product_api/internal/observability"
	"product_api/internal/queue"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logging.Setup(cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Prometheus metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)
	logrus.Info("Metrics initialized")

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Minute)
	stores, err := handler.OpenStores(startupCtx, cfg, reg)
	cancelStartup()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open store")
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close store connection")
		}
	}()

	var publisher queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled() {
		conn, err := queue.SetupRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
		defer func() {
			if err := conn.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close RabbitMQ connection")
			}
		}()

		amqpPublisher, err := queue.NewAMQPPublisher(conn, cfg.RabbitMQ.Queue, metrics)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to create event publisher")
		}
		defer func() {
			if err := amqpPublisher.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close event publisher")
			}
		}()
		publisher = amqpPublisher
	} else {
		logrus.Info("RABBITMQ_URL not set, change events disabled")
	}

	r := handler.SetupHandler(handler.Dependencies{
		Config:    cfg,
		Stores:    stores,
		Publisher: publisher,
		Metrics:   metrics,
		Gatherer:  reg,
	})
	logrus.Info("Metrics endpoint exposed at /metrics")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shut down")
	}
	logrus.Info("Server exited")
}
