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

	"github.com/emrahsandernet/kasarcim/config"
	"github.com/emrahsandernet/kasarcim/internal/cache"
	"github.com/emrahsandernet/kasarcim/internal/cleanup"
	"github.com/emrahsandernet/kasarcim/internal/database"
	"github.com/emrahsandernet/kasarcim/internal/hashing"
	"github.com/emrahsandernet/kasarcim/internal/logger"
	"github.com/emrahsandernet/kasarcim/internal/notify"
	"github.com/emrahsandernet/kasarcim/internal/producer"
	"github.com/emrahsandernet/kasarcim/internal/repository"
	"github.com/emrahsandernet/kasarcim/internal/router"
	"github.com/emrahsandernet/kasarcim/internal/service"
	"github.com/emrahsandernet/kasarcim/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// @Title Kaşarcım API
// @Version 1.0
// @Description Storefront, order and content API for the Kaşarcım cheese shop
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	var (
		cacheClient = service.NopCache()
		readThrough = service.NopReadThrough()
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second, log)
		if err != nil {
			log.Fatal("failed to create redis client", zap.Error(err))
		}
		defer redisClient.Close()
		cacheClient, readThrough = redisClient, redisClient
		log.Info("Redis cache enabled")
	} else {
		log.Info("Redis cache disabled")
	}

	var events service.EventBus = service.NopEventBus{}
	emailProducer, err := producer.New(cfg.Notify)
	if err != nil {
		log.Fatal("failed to create email producer", zap.Error(err))
	}
	if emailProducer != nil {
		defer emailProducer.Close()
		notifier := notify.NewEmailNotifier(emailProducer, cfg.FrontendURL, log)
		defer notifier.Wait()
		events = notifier
		log.Info("email notifications enabled", zap.String("transport", cfg.Notify.Transport))
	} else {
		log.Info("email notifications disabled")
	}

	hasher := hashing.NewBcrypt(0)
	tokens := token.NewHSProvider(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)

	r := router.Router(router.Services{
		Catalog:   service.NewCatalogService(repos, readThrough, log),
		Reviews:   service.NewReviewService(repos, log),
		Coupons:   service.NewCouponService(repos, log),
		Orders:    service.NewOrderService(repos, events, log),
		Payments:  service.NewPaymentService(repos, events, log),
		Shipments: service.NewShipmentService(repos, events, log),
		Users: service.NewUserService(repos, hasher, tokens, cacheClient, events, service.UserServiceOptions{
			AccessTTL:   cfg.JWT.AccessExp,
			FrontendURL: cfg.FrontendURL,
		}, log),
		Addresses:     service.NewAddressService(repos, log),
		Contact:       service.NewContactService(repos, cacheClient, log),
		Announcements: service.NewAnnouncementService(repos, readThrough, log),
		Blog:          service.NewBlogService(repos, log),
		Tokens:        tokens,
		Denylist:      cacheClient,
	}, cfg.CORSOrigins, log)

	cleanupSvc := cleanup.NewCleanupService(repos.PasswordResets, log)
	scheduler := cleanup.NewScheduler(cleanupSvc, cleanup.DefaultIntervals(), log)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	scheduler.Start(cleanupCtx)

	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down HTTP server...")

	scheduler.Stop()
	cleanupCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	log.Info("HTTP server stopped gracefully")
}
