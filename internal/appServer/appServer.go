package appServer

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/shortlink/config"
	repository "github.com/ds124wfegd/shortlink/internal/database/postgres"
	rediscache "github.com/ds124wfegd/shortlink/internal/database/redis"
	"github.com/ds124wfegd/shortlink/internal/pkg/geoip"
	"github.com/ds124wfegd/shortlink/internal/pkg/metrics"
	"github.com/ds124wfegd/shortlink/internal/pkg/ratelimit"
	"github.com/ds124wfegd/shortlink/internal/service"
	"github.com/ds124wfegd/shortlink/internal/transport"
	"github.com/ds124wfegd/shortlink/internal/worker"

	"github.com/ds124wfegd/shortlink/pkg/postgres"
	"github.com/ds124wfegd/shortlink/pkg/queue"
	"github.com/ds124wfegd/shortlink/pkg/redis"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	linkRepo := repository.NewLinkRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	redisClient := redis.NewRedisClient(&cfg.Redis)
	defer redisClient.Close()

	cache := rediscache.NewCacheRepository(redisClient, cfg.App.CacheTTL)
	limiter := ratelimit.NewLimiter(ratelimit.NewRedisStore(redisClient))
	appMetrics := metrics.NewMetrics()

	// Initialize geo resolver
	var geoResolver geoip.Resolver
	if cfg.GeoIP.DBPath != "" {
		geoResolver, err = geoip.NewMaxMindResolver(cfg.GeoIP.DBPath)
		if err != nil {
			logrus.Errorf("Failed to open geoip database: %v. Continuing without geo resolution...", err)
			geoResolver = geoip.NewNoopResolver()
		} else {
			logrus.Info("GeoIP resolver initialized")
		}
	} else {
		logrus.Warn("GeoIP database not configured, click origins will be Unknown")
		geoResolver = geoip.NewNoopResolver()
	}
	defer geoResolver.Close()

	// Initialize click queue backend
	var clickQueue queue.Queue
	var queueErr error
	switch cfg.Queue.Backend {
	case "amqp":
		clickQueue, queueErr = queue.NewAmqpQueue(queue.AmqpQueueConfig{
			URL:         cfg.Queue.AmqpURL,
			Name:        cfg.Queue.Name,
			MaxRetries:  cfg.Queue.MaxRetries,
			BaseDelay:   cfg.Queue.BaseDelay,
			Concurrency: cfg.Queue.Concurrency,
		})
	case "none":
		clickQueue = queue.NewDiscardQueue()
	default:
		clickQueue, queueErr = queue.NewRedisQueue(redisClient, &queue.RedisQueueConfig{
			Name:        cfg.Queue.Name,
			MaxRetries:  cfg.Queue.MaxRetries,
			BaseDelay:   cfg.Queue.BaseDelay,
			Concurrency: cfg.Queue.Concurrency,
		})
	}
	if queueErr != nil {
		logrus.Errorf("Failed to initialize click queue: %v. Continuing without click analytics...", queueErr)
		clickQueue = queue.NewDiscardQueue()
	}
	defer clickQueue.Close()

	// Initialize services
	redirectService := service.NewRedirectService(linkRepo, cache, clickQueue, appMetrics, cfg.App.CacheTTL)
	linkService := service.NewLinkService(linkRepo, analyticsRepo, cache, &service.LinkServiceConfig{
		ShortCodeLength: cfg.App.ShortCodeLength,
		BaseURL:         cfg.App.BaseURL,
		CacheTTL:        cfg.App.CacheTTL,
	})
	analyticsService := service.NewAnalyticsService(analyticsRepo, linkRepo)

	// Start click worker consumers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clickWorker := worker.NewClickWorker(linkRepo, analyticsRepo, geoResolver, appMetrics)
	if err := clickQueue.Subscribe(ctx, clickWorker.HandleJob); err != nil {
		logrus.Errorf("Queue subscriber error: %v", err)
	} else {
		logrus.Info("Click worker started")
	}

	// Initialize handlers
	linkHandler := transport.NewLinkHandler(linkService, redirectService, limiter, cfg.RateLimit.Guest)
	analyticsHandler := transport.NewAnalyticsHandler(analyticsService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		routes := transport.InitRoutes(linkHandler, analyticsHandler, limiter, appMetrics, &cfg.RateLimit)
		if err := srv.Run(cfg, routes); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
