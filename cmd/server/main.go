package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avdonin/shop_backend/internal/config"
	"github.com/avdonin/shop_backend/internal/es"
	"github.com/avdonin/shop_backend/internal/httpserver"
	"github.com/avdonin/shop_backend/internal/logging"
	"github.com/avdonin/shop_backend/internal/mailer"
	"github.com/avdonin/shop_backend/internal/middleware"
	"github.com/avdonin/shop_backend/internal/mykafka"
	"github.com/avdonin/shop_backend/internal/repo"
	"github.com/avdonin/shop_backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	esClient, err := es.NewClient(cfg)
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}

	producer := mykafka.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	store := repo.NewStore(db)
	dispatcher := mailer.NewKafkaDispatcher(producer, cfg.EmailTopic, cfg.FrontendURL, logger)
	session := service.NewSessionService(store, cfg.JWTSecret, cfg.AccessTokenExpires, cfg.RefreshTokenExpires, dispatcher)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Session: session,
		AuthHandler: &httpserver.AuthHandler{
			Svc:         session,
			Producer:    producer,
			EventsTopic: cfg.EventsTopic,
		},
		UserHandler: &httpserver.UserHandler{Repo: store},
		ProductHandler: &httpserver.ProductHandler{
			DB:       db,
			Producer: producer,
			Topic:    "product_events",
			ES:       esClient,
			Index:    cfg.ESIndex,
		},
		CategoryHandler: &httpserver.CategoryHandler{DB: db},
		OrderHandler:    &httpserver.OrderHandler{DB: db},
		CartItemHandler: &httpserver.CartItemHandler{DB: db},
		CommentHandler:  &httpserver.CommentHandler{DB: db},
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
