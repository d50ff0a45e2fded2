package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"omnibridge-console/billing"
	"omnibridge-console/config"
	"omnibridge-console/controllers"
	"omnibridge-console/crm"
	"omnibridge-console/database"
	"omnibridge-console/logger"
	"omnibridge-console/metrics"
	"omnibridge-console/middlewares"
	"omnibridge-console/routes"
	"omnibridge-console/utils"
	"omnibridge-console/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zl := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zl.Sync() }()
	log := logger.NewZapAdapter(zl).WithFields(map[string]interface{}{"app": cfg.App.Name, "env": cfg.App.Environment})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Error("database connection failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Error("database migration failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	if cfg.Seed.Enabled {
		if err := database.SeedDev(ctx, db, cfg.Seed, log); err != nil {
			log.Error("seeding failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}

	clock := utils.SystemClock{}
	store := database.NewStore(db, clock)

	// ---- Providers
	billingClient := billing.NewClient(cfg.Stripe, log)
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, price cache disabled", map[string]interface{}{"error": err.Error()})
		} else {
			ttl := time.Duration(cfg.Redis.PriceCacheTTL) * time.Second
			billingClient = billing.NewCachedClient(billingClient, rdb, ttl, log)
		}
	}

	crmClient, err := crm.NewClient(cfg.Salesforce, log)
	if err != nil {
		log.Error("salesforce client setup failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	executor := workflow.NewExecutor(store, billingClient, workflow.Options{
		Clock:  clock,
		IDs:    utils.UUIDGenerator{},
		Logger: log,
		KeyTTL: cfg.Workflow.IdempotencyTTL(),
	})

	tokens := middlewares.NewTokens(cfg.Auth)
	ctl := controllers.New(controllers.Deps{
		Store:    store,
		Tokens:   tokens,
		Billing:  billingClient,
		CRM:      crmClient,
		Executor: executor,
		Ping:     func(ctx context.Context) error { return database.Ping(ctx, db) },
		Clock:    clock,
		Logger:   log,
	})

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: middlewares.ErrorHandler(log),
		BodyLimit:    cfg.App.BodyLimitBytes,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middlewares.RequestLogger(log))

	// ---- CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.AllowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     strings.Join([]string{"Origin", "Content-Type", "Accept", "Authorization", middlewares.IdempotencyHeader}, ", "),
	}))

	// ---- Global rate limiter (default KeyGenerator = client IP)
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.App.RateLimitMax,
		Expiration: time.Duration(cfg.App.RateLimitWindowSeconds) * time.Second,
	}))

	routes.Register(app, ctl, tokens)

	go purgeExpiredKeys(ctx, store, time.Duration(cfg.App.PurgeIntervalSeconds)*time.Second, log)
	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Warn("shutdown", map[string]interface{}{"error": err.Error()})
		}
	}()

	log.Info("API server starting", map[string]interface{}{"port": cfg.App.Port})
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		log.Error("server stopped", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

// purgeExpiredKeys removes expired idempotency reservations until ctx is done.
func purgeExpiredKeys(ctx context.Context, store *database.Store, every time.Duration, log logger.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PurgeExpiredKeys(ctx, now.UTC())
			if err != nil {
				log.Warn("idempotency key purge failed", map[string]interface{}{"error": err.Error()})
				continue
			}
			if n > 0 {
				metrics.IdempotencyKeysPurged.Add(float64(n))
				log.Debug("purged expired idempotency keys", map[string]interface{}{"count": n})
			}
		}
	}
}
