package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/maktabat-alamal/storefront/internal/carousel"
	"github.com/maktabat-alamal/storefront/internal/cart"
	"github.com/maktabat-alamal/storefront/internal/contact"
	"github.com/maktabat-alamal/storefront/internal/domain/auth"
	"github.com/maktabat-alamal/storefront/internal/domain/category"
	"github.com/maktabat-alamal/storefront/internal/domain/content"
	"github.com/maktabat-alamal/storefront/internal/domain/order"
	"github.com/maktabat-alamal/storefront/internal/domain/product"
	"github.com/maktabat-alamal/storefront/internal/handler"
	"github.com/maktabat-alamal/storefront/internal/mail"
	"github.com/maktabat-alamal/storefront/internal/storage/file"
	"github.com/maktabat-alamal/storefront/internal/storage/postgres"
	"github.com/maktabat-alamal/storefront/internal/storage/redisstore"
	"github.com/maktabat-alamal/storefront/pkg/health"
	"github.com/maktabat-alamal/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Cart storage and sessions: Redis when configured, otherwise local
	// fallbacks (file-backed carts, in-process sessions).
	var (
		slots    cart.SlotFactory
		sessions auth.SessionStore
	)
	if cfg.RedisURL != "" {
		client, err := redisstore.NewClient(cfg.RedisURL)
		if err != nil {
			return errors.Wrap(err, "create redis client")
		}
		defer func() {
			_ = client.Close()
		}()
		healthSvc.AddReadinessCheck("redis", 5*time.Second, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		slots = redisstore.NewSlotFactory(client)
		sessions = redisstore.NewSessionStore(client)
	} else {
		lg.Warn("Redis not configured, using local cart and session storage")
		dir := cfg.CartDir
		if dir == "" {
			dir = "carts"
		}
		factory, err := file.NewSlotFactory(dir)
		if err != nil {
			return errors.Wrap(err, "create cart directory")
		}
		slots = factory
		sessions = auth.NewMemorySessions()
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Document store and repositories.
	docs := postgres.NewDocumentStore(pool)
	productRepo := product.NewRepository(docs)
	categoryRepo := category.NewRepository(docs)
	contentRepo := content.NewRepository(docs)
	orderRepo := order.NewRepository(docs)
	accounts := auth.NewAccounts(docs)

	// Domain services.
	orderService := order.NewService(productRepo, orderRepo)
	authService := auth.NewService(accounts, sessions, []byte(cfg.SessionSecret))
	mailer := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	contactService := contact.NewService(mailer, cfg.ContactTo)
	carts := cart.NewManager(slots, lg.Named("cart"))

	// The rotator is sized to one slide at boot; the featured listing
	// handler resizes it to the current product count.
	featured := carousel.New(1, carousel.DefaultInterval)
	defer featured.Stop()

	// HTTP routes.
	h := handler.New(handler.Deps{
		Products:   productRepo,
		Categories: categoryRepo,
		Content:    contentRepo,
		Orders:     orderService,
		Carts:      carts,
		Contact:    contactService,
		Auth:       authService,
		Featured:   featured,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", http.StripPrefix("/api", h.Routes()))

	instrumented := otelhttp.NewHandler(mux, "storefront-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(instrumented,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
