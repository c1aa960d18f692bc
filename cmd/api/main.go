package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hanu-sports/storefront/internal/auth"
	"github.com/hanu-sports/storefront/internal/cache"
	"github.com/hanu-sports/storefront/internal/config"
	"github.com/hanu-sports/storefront/internal/events"
	httpapi "github.com/hanu-sports/storefront/internal/http"
	"github.com/hanu-sports/storefront/internal/repository"
	"github.com/hanu-sports/storefront/internal/service"
)

func main() {
	cfg := config.Load()

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "storefront-api").
		Logger()
	if cfg.IsDevelopment() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	if err := repository.EnsureIndexes(ctx, mongoDB); err != nil {
		logger.Fatal().Err(err).Msg("failed to create indexes")
	}
	logger.Info().Str("uri", cfg.MongoURI).Msg("connected to MongoDB")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("Redis connection failed")
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		publisher = events.NewKafkaPublisher(
			strings.Split(cfg.KafkaBrokers, ","),
			cfg.KafkaTopic,
			"storefront-api",
			logger,
		)
		logger.Info().Str("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("order events enabled")
	}
	defer publisher.Close()

	productRepo := repository.NewProductMongoRepository(mongoDB)
	orderRepo := repository.NewOrderMongoRepository(mongoDB)
	cartRepo := repository.NewCartMongoRepository(mongoDB)
	userRepo := repository.NewUserMongoRepository(mongoDB)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	cartSvc := service.NewCartService(cartRepo, cache.NewRedisCache(redisClient), logger)
	userSvc := service.NewUserService(userRepo, tokens, logger)
	productSvc := service.NewProductService(productRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo, cartSvc, publisher, logger)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Auth:     httpapi.NewAuthHandler(userSvc),
		Products: httpapi.NewProductHandler(productSvc, userSvc),
		Cart:     httpapi.NewCartHandler(cartSvc),
		Orders:   httpapi.NewOrdersHandler(orderSvc),
		Tokens:   tokens,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("storefront API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}
	logger.Info().Msg("server stopped")
}
