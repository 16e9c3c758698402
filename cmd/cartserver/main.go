package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/server/cache"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/server/httpapi"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/server/poller"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/server/repository"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/server/service"
	"github.com/0xVantrex/hillersons-spaces-sub000/pkg/logger"
	"github.com/0xVantrex/hillersons-spaces-sub000/pkg/shutdown"
)

type Config struct {
	HTTPPort        string
	CartStore       string // "mongo" or "memory"
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    string
	AuthTokens      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		CartStore:       getEnv("CART_STORE", "mongo"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "cartdb"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		AuthTokens:      getEnv("AUTH_TOKENS", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	log := logger.New(logger.Options{
		Service: "cart-server",
		Env:     getEnv("APP_ENV", "dev"),
		Level:   getEnv("LOG_LEVEL", "info"),
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	var repo repository.CartRepository
	switch cfg.CartStore {
	case "memory":
		repo = repository.NewMemoryRepository()
		log.Info("using in-memory cart store")
	default:
		mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Error("failed to connect to MongoDB", "err", err)
			os.Exit(1)
		}
		defer mongoDB.Client().Disconnect(context.Background())

		mongoRepo := repository.NewMongoRepository(mongoDB)
		if err := mongoRepo.CreateIndexes(ctx); err != nil {
			log.Error("failed to create indexes", "err", err)
			os.Exit(1)
		}
		repo = mongoRepo
		log.Info("connected to MongoDB", "uri", cfg.MongoURI)
	}

	cartCache := cache.Disabled()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("redis connection failed", "err", err)
			os.Exit(1)
		}
		cartCache = cache.NewRedisCache(redisClient)
		log.Info("connected to Redis", "addr", cfg.RedisAddr)
	}

	svc := service.NewCartService(repo, cartCache, log)

	if cfg.KafkaBrokers != "" {
		p := poller.New(svc, log, cfg.KafkaBrokers)
		defer p.Close()
		go p.Run(ctx)
		log.Info("order-completed poller started", "brokers", cfg.KafkaBrokers)
	}

	verifier := httpapi.NewStaticVerifier(cfg.AuthTokens)
	handler := httpapi.NewCartHandler(svc, log)
	router := httpapi.NewRouter(handler, verifier, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("cart server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down cart server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "err", err)
	}

	log.Info("cart server stopped")
}
