package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/innovativedesigner773/sharecart/internal/config"
	"github.com/innovativedesigner773/sharecart/internal/events"
	"github.com/innovativedesigner773/sharecart/internal/httpserver"
	"github.com/innovativedesigner773/sharecart/internal/repo"
	"github.com/innovativedesigner773/sharecart/internal/service"
	"github.com/innovativedesigner773/sharecart/internal/sweeper"
	itoken "github.com/innovativedesigner773/sharecart/internal/token"
	"github.com/innovativedesigner773/sharecart/pkg/logging"
	loggingmw "github.com/innovativedesigner773/sharecart/pkg/middleware/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(loggingmw.RequestLogger(logger))
	e.Validator = httpserver.NewValidator()

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	Repo := &repo.GormRepo{
		DB: db,
	}

	var producer service.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		p := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer p.Close()
		producer = p
	}

	shareService := &service.ShareService{
		Repo:     Repo,
		Tokens:   &itoken.Generator{Exists: Repo.TokenExists},
		Producer: producer,
		Cfg: service.Config{
			PaidWindow:      cfg.PaidWindow,
			ExpiredWindow:   cfg.ExpiredWindow,
			AccessWindow:    cfg.AccessWindow,
			AccessThreshold: cfg.AccessThreshold,
		},
	}

	shareHandler := &httpserver.ShareHTTP{
		Svc:     shareService,
		BaseURL: cfg.PublicBaseURL,
	}

	httpserver.Register(e, &httpserver.Deps{
		ShareHandler: shareHandler,
		JWTSecret:    cfg.JWTSecret,
	})

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sw := &sweeper.Sweeper{
		Repo:          Repo,
		Log:           logger.With("component", "sweeper"),
		SweepInterval: cfg.SweepInterval,
		PurgeInterval: cfg.PurgeInterval,
		RetainFor:     cfg.RetainFor,
	}
	go sw.Run(sweepCtx)

	go func() {
		log.Printf("Starting sharecart service on port %d...", cfg.ServerPort)
		if err := e.Start(fmt.Sprintf(":%d", cfg.ServerPort)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	log.Println("Shutting down server...")

	stopSweeper()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}

	log.Println("Server stopped")
}
