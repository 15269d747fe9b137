package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	pkgdb "github.com/stockroom-app/stockroom/pkg/db"
	"github.com/stockroom-app/stockroom/pkg/logging"
	loggingmw "github.com/stockroom-app/stockroom/pkg/middleware/logging"

	"github.com/stockroom-app/stockroom/internal/config"
	"github.com/stockroom-app/stockroom/internal/events"
	"github.com/stockroom-app/stockroom/internal/httpserver"
	"github.com/stockroom-app/stockroom/internal/repo"
	"github.com/stockroom-app/stockroom/internal/search"
	"github.com/stockroom-app/stockroom/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	store := repo.New(db)
	producer := events.NewProducer(cfg.KafkaBrokers)
	if producer == nil {
		logger.Warn("kafka disabled, no brokers configured")
	}

	var indexer *search.Indexer
	searchHandler := &httpserver.SearchHTTP{Index: cfg.ESIndex}
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg)
		if err != nil {
			logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		} else {
			indexer = &search.Indexer{ES: es, Index: cfg.ESIndex}
			searchHandler.ES = es
		}
	}

	orderSvc := &service.OrderService{Repo: store}
	productSvc := &service.ProductService{Repo: store}
	authSvc := &service.AuthService{Repo: store, JWTSecret: cfg.JWTSecret}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc, Repo: store, Producer: producer},
		ProductHandler: &httpserver.ProductHTTP{Svc: productSvc, Repo: store, Producer: producer, Indexer: indexer},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orderSvc, Repo: store, Producer: producer},
		SearchHandler:  searchHandler,
		JWTSecret:      cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = producer.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("stopped")
}
