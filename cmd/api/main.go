package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"hotelbooking/internal/config"
	"hotelbooking/internal/database"
	"hotelbooking/internal/jobs"
	"hotelbooking/internal/middleware"
	"hotelbooking/internal/modules/availability"
	"hotelbooking/internal/modules/booking"
	"hotelbooking/internal/modules/catalog"
	"hotelbooking/internal/modules/pricing"
	"hotelbooking/internal/modules/wallet"
	"hotelbooking/internal/modules/withdrawal"
	jwtsvc "hotelbooking/internal/pkg/jwt"
	"hotelbooking/internal/pkg/logger"
	"hotelbooking/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	opts := database.Options{MaxOpenConns: cfg.DBMaxOpenConns, MaxIdleConns: cfg.DBMaxIdleConns}
	if !database.IsPostgres(cfg.DatabaseURL) {
		// SQLite has no row locks; one connection serializes writers.
		opts.MaxOpenConns = 1
	}
	db, err := database.Connect(cfg.DatabaseURL, opts)
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	pricingRepo := pricing.NewRepository(db)
	var rules pricing.RuleSource = pricingRepo
	if rdb := connectRedis(cfg.RedisURL); rdb != nil {
		defer rdb.Close()
		rules = pricing.NewCachedRuleSource(pricingRepo, rdb, cfg.PricingCacheTTL)
	}
	pricingService := pricing.NewService(pricingRepo, rules, roomRepo)

	checker := availability.NewChecker(db)
	ledger := wallet.NewLedger(db)
	walletService := wallet.NewService(db, ledger)
	withdrawalService := withdrawal.NewService(db, withdrawal.Config{
		MinAmount: cfg.WithdrawalMinAmount,
		TokenTTL:  cfg.WithdrawalTokenTTL,
	})
	bookingService := booking.NewService(db, bookingRepo, roomRepo, checker, pricingService)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.ErrorLogger(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	user := v1.Group("")
	user.Use(middleware.JWTAuth(j))
	staff := v1.Group("/staff")
	staff.Use(middleware.JWTAuth(j), middleware.StaffOnly())

	catalog.NewHandler(catalog.NewService(roomRepo)).RegisterRoutes(v1, staff)
	pricing.NewHandler(pricingService).RegisterRoutes(v1, staff)
	availability.NewHandler(checker).RegisterRoutes(v1)
	wallet.NewHandler(ledger, walletService).RegisterRoutes(user, staff)
	withdrawal.NewHandler(withdrawalService).RegisterRoutes(user, staff)
	booking.NewHandler(bookingService).RegisterRoutes(user, staff)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler, err := jobs.NewScheduler(ledger, cfg.LedgerAuditSchedule)
	if err != nil {
		log.WithError(err).Fatal("scheduler setup failed")
	}
	if err := scheduler.Start(ctx); err != nil {
		log.WithError(err).Fatal("scheduler start failed")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP shutdown failed")
	}
	scheduler.Stop()
}

// connectRedis returns nil when the cache is disabled or unreachable.
func connectRedis(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.WithError(err).Warn("invalid REDIS_URL, pricing cache disabled")
		return nil
	}
	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable, pricing cache disabled")
		_ = rdb.Close()
		return nil
	}
	log.Info("pricing rule cache enabled")
	return rdb
}
