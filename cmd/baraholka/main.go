package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"baraholka/internal/app/flows"
	"baraholka/internal/app/moderation"
	"baraholka/internal/app/relay"
	"baraholka/internal/domain/chat"
	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
	"baraholka/internal/flow"
	"baraholka/internal/infra/broker/kafka"
	"baraholka/internal/infra/config"
	"baraholka/internal/infra/db/mongo"
	"baraholka/internal/infra/delivery"
	"baraholka/internal/infra/events"
	ginserver "baraholka/internal/infra/http/gin"
	"baraholka/internal/infra/obs"
	"baraholka/internal/infra/security"
	"baraholka/internal/infra/storage/memory"
	"baraholka/internal/infra/storage/s3"
	"baraholka/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger := obs.NewLogger("dev")
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	var (
		users      user.Repository
		listings   listing.Repository
		favourites listing.FavouriteRepository
		chats      chat.Repository
		ready      func() error
	)
	if cfg.StorageMode == "mongo" {
		client, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo init failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(closeCtx); err != nil {
				logger.Warn("mongo close failed", "error", err)
			}
		}()
		users = mongo.NewUserRepository(client.DB)
		listings = mongo.NewListingRepository(client.DB)
		favourites = mongo.NewFavouriteRepository(client.DB)
		chats = mongo.NewChatRepository(client.DB)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
	} else {
		users = memory.NewUserRepository()
		listings = memory.NewListingRepository()
		favourites = memory.NewFavouriteRepository()
		chats = memory.NewChatRepository()
		ready = func() error { return nil }
	}
	sessions := memory.NewSessionStore()

	var broker events.Broker
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka close failed", "error", err)
			}
		}()
		broker = producer
	} else {
		logger.Info("kafka brokers not configured, event stream disabled")
	}
	publisher := events.NewPublisher(broker, logger)

	sink := &delivery.Client{
		HTTP:     &http.Client{Timeout: cfg.DeliveryTimeout},
		Endpoint: cfg.DeliveryURL,
		Logger:   logger,
	}

	var uploader s3.Uploader
	s3Client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
	if err != nil {
		logger.Warn("s3 init failed, photo uploads disabled", "error", err)
		uploader = s3.NoopUploader{}
	} else {
		uploader = s3Client
	}

	renderer := session.NewRenderer(sink, logger)
	chatRelay := &relay.Relay{
		Chats:  chats,
		Users:  users,
		Sink:   sink,
		Events: publisher,
		Logger: logger,
	}
	gate := &moderation.Gate{
		Admin:    user.ID(cfg.AdminID),
		Listings: listings,
		Sink:     sink,
		Events:   publisher,
		Logger:   logger,
	}
	bot := &flows.Bot{
		Users:      users,
		Listings:   listings,
		Favourites: favourites,
		Relay:      chatRelay,
		Gate:       gate,
		Renderer:   renderer,
		Sink:       sink,
		Logger:     logger,
	}

	engine := flow.NewEngine(sessions, logger)
	if err := bot.Register(engine); err != nil {
		logger.Error("flow registration failed", "error", err)
		os.Exit(1)
	}

	handlers := ginserver.Handlers{
		Events: ginserver.EventHandler{Engine: engine, Logger: logger},
		Photos: ginserver.PhotoHandler{Uploader: uploader, Logger: logger},
	}
	if cfg.AdminTokenHash != "" {
		handlers.Admin = ginserver.AdminHandler{Gate: gate, Admin: user.ID(cfg.AdminID)}
		handlers.AdminAuth = ginserver.AdminAuth{
			TokenHash: cfg.AdminTokenHash,
			Hasher:    security.TokenHasher{},
			Logger:    logger,
		}.Handle
	} else {
		logger.Info("admin token hash not configured, moderation REST disabled")
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("baraholka starting", "addr", cfg.HTTPAddr, "env", cfg.Env, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("baraholka stopped")
}
