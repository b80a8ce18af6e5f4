package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ottercare/pebble/analytics"
	"github.com/ottercare/pebble/api/rest"
	"github.com/ottercare/pebble/cache"
	"github.com/ottercare/pebble/cloud"
	"github.com/ottercare/pebble/config"
	dbadapter "github.com/ottercare/pebble/db"
	mw "github.com/ottercare/pebble/middleware"
	"github.com/ottercare/pebble/model"
	"github.com/ottercare/pebble/pet/actions"
	"github.com/ottercare/pebble/pet/gifts"
	"github.com/ottercare/pebble/pet/stats"
	"github.com/ottercare/pebble/pet/store"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// ---- Cloud database (optional) ----
	var gateway cloud.Gateway
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if db != nil {
		if err := model.AutoMigrate(db); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		gateway = cloud.NewGormGateway(db)
		logger.Info("cloud store initialized", zap.String("mode", cfg.Database.Mode))
	} else {
		logger.Warn("cloud sync disabled; running fully local")
	}

	// ---- Cache / PubSub ----
	cacheConfig := cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("cache initialized")

	// ---- Pet state ----
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rules := gifts.New(rng.Float64)
	rules.ThresholdHours = cfg.Game.GiftThresholdHours
	rules.MissChance = cfg.Game.GiftMissChance

	st := store.New(c, pubsub, gateway, rules, logger, store.Options{
		Rates: stats.Rates{
			Hunger:    cfg.Game.DecayHungerPerHour,
			Happiness: cfg.Game.DecayHappinessPerHour,
			Energy:    cfg.Game.DecayEnergyPerHour,
			Clean:     cfg.Game.DecayCleanPerHour,
		},
		SyncDebounce:  cfg.Game.SyncDebounce,
		MinOfflineGap: cfg.Game.MinOfflineGap,
	})
	ctx := context.Background()
	if err := st.Boot(ctx); err != nil {
		log.Fatalf("store boot: %v", err)
	}
	if result := st.OfflineProgress(ctx); result != nil {
		logger.Info("welcome back",
			zap.Float64("hours_away", result.HoursAway),
			zap.String("gift", result.Gift),
		)
	}
	st.SyncCloud(ctx)

	an := analytics.New(c, cfg.Game.AnalyticsOptIn, logger)
	svc := actions.New(st, an, logger)

	// ---- HTTP ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		mw.TraceID(),
		mw.Logger(logger),
		mw.Recovery(logger),
		mw.RateLimit(rate.Limit(cfg.Game.RateLimitRPS), cfg.Game.RateLimitBurst),
	)
	petH := rest.NewPetHandler(st, svc, an)
	petH.RegisterRoutes(r.Group("/api"))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		logger.Info("listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	// ---- Graceful shutdown: flush the last writes to the cloud ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	st.Flush(shutdownCtx)
	st.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}
