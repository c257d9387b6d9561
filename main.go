package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"diploma360/config"
	"diploma360/db"
	"diploma360/jobs"
	"diploma360/media"
	"diploma360/metrics"
	"diploma360/middlewares"
	"diploma360/models"
	"diploma360/routes"
	"diploma360/utils"
)

func main() {
	cfg := config.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger

	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mongo
	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		logger.Fatal().Err(err).Msg("index bootstrap failed")
	}

	users := models.NewMongoUserRepository(database.Collection("users"))
	events := models.NewMongoEventRepository(database.Collection("events"))

	// Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	inv := utils.NewCacheInvalidator(rdb)

	// Media host
	uploader, err := media.NewS3Uploader(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("media uploader setup failed")
	}

	metrics.Register()
	jobs.KeepAlive(ctx, cfg.KeepAliveURL, cfg.KeepAliveInterval, logger)

	corsPolicy := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	server := gin.New()
	server.Use(gin.Recovery())
	server.Use(middlewares.RequestLogging(logger))
	server.Use(metrics.Middleware())
	server.Use(func(c *gin.Context) {
		corsPolicy.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
	server.Use(middlewares.ResponseCache(rdb, cfg.CacheTTL))

	server.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "HELLO FROM DIPLOMA360 SERVER")
	})
	server.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.RegisterRoutes(server, users, events, uploader, rdb, inv, cfg)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info().Str("addr", cfg.Addr).Msg("diploma360 server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}
