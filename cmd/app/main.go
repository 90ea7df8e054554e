package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dare_webapp/internal/bot"
	"dare_webapp/internal/config"
	"dare_webapp/internal/db"
	"dare_webapp/internal/domain"
	httpServer "dare_webapp/internal/http"
	"dare_webapp/internal/http/middleware"
	"dare_webapp/internal/logger"
	"dare_webapp/internal/repository"
	"dare_webapp/internal/service"
	"dare_webapp/internal/storage"
	"dare_webapp/internal/ws"
)

// Version is set at build time
var Version = "dev"

func main() {
	cfg := config.Load()

	logger.Init(cfg.LogLevel, cfg.LogFormat == "json")
	log := logger.Get()

	service.InitJWT()

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	r := gin.Default()

	// CORS for the frontend living on another domain
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var proofFiles *storage.ProofStore
	if cfg.S3Endpoint != "" {
		var err error
		proofFiles, err = storage.NewProofStore(context.Background(), storage.Config{
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			AccessKeySecret: cfg.S3AccessKeySecret,
			Bucket:          cfg.S3Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
		})
		if err != nil {
			logger.Fatal("proof store init failed", "error", err)
		}
		log.Info("proof store initialized", "bucket", cfg.S3Bucket)
	} else {
		log.Warn("object storage not configured, proof file uploads disabled")
	}

	hub := ws.NewHub()
	h := httpServer.RegisterRoutes(r, dbPool, hub, proofFiles)

	// moderation alert bot, wired in before the server starts so the
	// review callback is never observed half-set
	var adminBot *bot.AdminBot
	if cfg.AdminBotEnabled && cfg.AdminBotToken != "" && len(cfg.AdminTelegramIDs) > 0 {
		var err error
		adminBot, err = bot.NewAdminBot(cfg.AdminBotToken, repository.NewSwitchGameRepository(dbPool), cfg.AdminTelegramIDs)
		if err != nil {
			log.Error("failed to start admin bot", "error", err)
		} else {
			go adminBot.Start()
			h.Switches.SetReviewAlertCallback(func(gameID int64, action domain.ReviewAction, feedback string) {
				adminBot.NotifyProofRejected(gameID, string(action), feedback)
			})
			log.Info("admin bot started", "admin_ids", cfg.AdminTelegramIDs)
		}
	}

	sweeper := service.NewContentSweeper(dbPool, proofFiles)
	if err := sweeper.Start(cfg.SweepInterval); err != nil {
		logger.Fatal("content sweeper start failed", "error", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	if adminBot != nil {
		adminBot.Stop()
	}
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
