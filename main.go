package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"social-service/internal/cache"
	"social-service/internal/config"
	"social-service/internal/db"
	"social-service/internal/events"
	grpcsvc "social-service/internal/grpc"
	"social-service/internal/handlers"
	"social-service/internal/kafka"
	"social-service/internal/metrics"
	"social-service/internal/middleware"
	"social-service/internal/observability"
	"social-service/internal/rabbitmq"
	"social-service/internal/repositories"
	"social-service/internal/services"
	"social-service/internal/telemetry"
	"social-service/internal/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.ServiceName, cfg.Environment, cfg.OTelEndpoint)
	if err != nil {
		log.Printf("warning: tracing disabled: %v", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("tracer shutdown error: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()

	publisher := newEventPublisher(cfg)
	defer publisher.Close()

	auditPublisher := events.NewNoopPublisher("audit publishing disabled")
	if cfg.EventsBackend == "rabbitmq" {
		pub, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.LogsExchange)
		if err != nil {
			log.Printf("warning: failed to initialize RabbitMQ audit publisher: %v", err)
		} else {
			auditPublisher = pub
		}
	}
	defer auditPublisher.Close()

	var slotCache services.SlotCache
	if cfg.RedisAddr != "" {
		client, err := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("warning: slot cache disabled: %v", err)
		} else {
			defer client.Close()
			slotCache = cache.NewSlotCache(client, cfg.SlotCacheTTL)
		}
	}

	var users services.UserDirectory
	if cfg.UserServiceURL != "" {
		users = services.NewUserService(cfg.UserServiceURL)
	} else {
		log.Printf("warning: USER_SERVICE_URL not set; listings return ids only")
	}

	retry := services.DefaultRetryPolicy()
	retry.MaxTries = cfg.ConflictMaxRetries
	clock := services.SystemClock{}

	friendRepo := repositories.NewFriendRepository(database, publisher)
	communityRepo := repositories.NewCommunityRepository(database, publisher)
	postRepo := repositories.NewPostRepository(database, publisher)
	reservationRepo := repositories.NewReservationRepository(database, publisher)

	friendSvc := services.NewFriendService(friendRepo, users, clock, retry)
	communitySvc := services.NewCommunityService(communityRepo, clock)
	postSvc := services.NewPostService(postRepo, reservationRepo, communityRepo, slotCache, clock)
	joinSvc := services.NewJoinCoordinator(postRepo, reservationRepo, communityRepo, slotCache, clock, retry)
	lifecycle := services.NewReservationLifecycle(reservationRepo, clock, retry)

	observability.InitMetrics(prometheus.DefaultRegisterer)
	metrics.RegisterDomainMetrics()

	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, cfg.ServiceName, cfg.Environment)
	userHandler := handlers.NewUserHandler(users, friendSvc)
	friendHandler := handlers.NewFriendHandler(friendSvc, users, auditEmitter)
	communityHandler := handlers.NewCommunityHandler(communitySvc, postSvc, auditEmitter)
	postHandler := handlers.NewPostHandler(postSvc, joinSvc, auditEmitter)
	reservationHandler := handlers.NewReservationHandler(lifecycle, auditEmitter)

	grpcServer, err := grpcsvc.NewServer(cfg.GRPCAddr, friendSvc, postSvc)
	if err != nil {
		log.Fatalf("failed to start gRPC server: %v", err)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), otelgin.Middleware(cfg.ServiceName), middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", healthz(database))

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	auth := r.Group("", middleware.JWTAuth(cfg.JWTSecret), middleware.RateLimit(limiter))
	auth.GET("/users/me", userHandler.GetMe)
	auth.POST("/friends/request", friendHandler.SendRequest)
	auth.GET("/friends/requests/incoming", friendHandler.ListIncoming)
	auth.POST("/friends/requests/:id/accept", friendHandler.AcceptRequest)
	auth.POST("/friends/requests/:id/reject", friendHandler.RejectRequest)
	auth.GET("/friends", friendHandler.ListFriends)
	auth.DELETE("/friends/:friend_id", friendHandler.DeleteFriend)

	auth.POST("/communities", communityHandler.Create)
	auth.POST("/communities/:id/members", communityHandler.Join)
	auth.POST("/communities/:id/posts", communityHandler.CreatePost)
	auth.GET("/posts/:id", postHandler.Get)
	auth.GET("/posts/:id/participants", postHandler.Participants)
	auth.POST("/posts/:id/join", postHandler.Join)

	auth.POST("/reservations", reservationHandler.Create)
	auth.GET("/reservations/:id", reservationHandler.Get)
	auth.POST("/reservations/:id/status", reservationHandler.ChangeStatus)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return grpcServer.Serve(gctx)
	})
	g.Go(func() error {
		return limiter.Run(gctx, time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("server error: %v", err)
	}
}

// newEventPublisher picks the domain event sink, falling back to a noop
// publisher when the broker cannot be reached.
func newEventPublisher(cfg *config.Config) events.Publisher {
	switch cfg.EventsBackend {
	case "kafka":
		return kafka.NewProducer(kafka.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
	case "rabbitmq":
		pub, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.EventsExchange)
		if err != nil {
			log.Printf("warning: failed to initialize RabbitMQ publisher: %v", err)
			return events.NewNoopPublisher("rabbitmq unavailable")
		}
		return pub
	default:
		return events.NewNoopPublisher("event publishing disabled")
	}
}

func healthz(database *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
