package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/storefront/internal/catalog"
	"github.com/ariefcatur/storefront/internal/checkout"
	"github.com/ariefcatur/storefront/internal/config"
	"github.com/ariefcatur/storefront/internal/httpx"
	"github.com/ariefcatur/storefront/internal/identity"
	kafkax "github.com/ariefcatur/storefront/internal/kafka"
	"github.com/ariefcatur/storefront/internal/logging"
	"github.com/ariefcatur/storefront/internal/orders"
	"github.com/ariefcatur/storefront/internal/payment"
	"github.com/ariefcatur/storefront/internal/postgres"
	"github.com/ariefcatur/storefront/internal/reconcile"
	"github.com/ariefcatur/storefront/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// setup loads configuration and the root logger. On error the returned
// logger is a default one that can still report the failure.
func setup() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, logging.New("storefront-api", "info", false), err
	}
	return cfg, logging.New(cfg.ServiceName, cfg.LogLevel, cfg.LogPretty), nil
}

func main() {
	_ = godotenv.Load()

	cfg, log, err := setup()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer, optional
	events := &orders.Notifier{Producer: cfg.ServiceName}
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
		prod.Start()
		events.Pub = prod
	} else {
		log.Info().Msg("KAFKA_BROKERS empty, lifecycle events disabled")
	}

	products := &catalog.Cached{
		Next:  catalog.NewFileSource(cfg.CatalogPath),
		Redis: rdb,
		TTL:   redisx.TTLCatalog,
		Log:   log.With().Str("component", "catalog").Logger(),
	}
	store := &orders.Store{DB: db, Currency: cfg.Currency}

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.GatewayTimeout)
	if !gateway.Configured() {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, checkout will fail")
	}
	verifier := payment.NewWebhookVerifier(cfg.StripeWebhookSecret)
	if verifier.Mode() == payment.ModeUnverified {
		log.Warn().Msg("STRIPE_WEBHOOK_SECRET not set, webhook signatures are NOT verified (dev only)")
	}

	checkoutSvc := &checkout.Service{
		Catalog:  products,
		Store:    store,
		Gateway:  gateway,
		Events:   events,
		Replay:   &checkout.ReplayCache{Redis: rdb, TTL: redisx.TTLIdempotency},
		Currency: cfg.Currency,
		BaseURL:  cfg.PublicBaseURL,
		Log:      log.With().Str("component", "checkout").Logger(),
	}
	reconciler := &reconcile.Reconciler{
		Verifier:    verifier,
		Store:       store,
		Events:      events,
		Dedup:       rdb,
		DedupTTL:    redisx.TTLDedup,
		ServiceName: cfg.ServiceName,
		Log:         log.With().Str("component", "reconcile").Logger(),
	}
	operator := identity.NewOperatorToken(cfg.AdminToken)
	if !operator.Enabled() {
		log.Warn().Msg("ADMIN_TOKEN not set, admin endpoints refuse every request")
	}

	router := httpx.NewRouter(log, cfg.CORSAllowedOrigins)
	(&httpx.CatalogHandler{Catalog: products, Log: log}).Register(router)
	(&httpx.CheckoutHandler{
		Service: checkoutSvc,
		Buyers:  identity.NewBuyerTokens(cfg.JWTSecret),
		Log:     log,
	}).Register(router)
	(&httpx.WebhookHandler{Reconciler: reconciler, Log: log}).Register(router)
	(&httpx.AdminHandler{
		Orders:       store,
		Operator:     operator,
		DefaultLimit: cfg.AdminListLimit,
		Log:          log,
	}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	// longer than the router's handler timeout so in-flight checkouts finish
	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if prod != nil {
		prod.Close() // flush inbox then close writer
	}
}
