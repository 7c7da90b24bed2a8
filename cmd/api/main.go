package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/nkosi-ncube/CareIQ/internal/cache"
	"github.com/nkosi-ncube/CareIQ/internal/config"
	"github.com/nkosi-ncube/CareIQ/internal/email"
	authHandler "github.com/nkosi-ncube/CareIQ/internal/handler/auth"
	consultationHandler "github.com/nkosi-ncube/CareIQ/internal/handler/consultation"
	"github.com/nkosi-ncube/CareIQ/internal/handler/health"
	medicalHandler "github.com/nkosi-ncube/CareIQ/internal/handler/medical"
	patientHandler "github.com/nkosi-ncube/CareIQ/internal/handler/patient"
	"github.com/nkosi-ncube/CareIQ/internal/handler/professional"
	summaryHandler "github.com/nkosi-ncube/CareIQ/internal/handler/summary"
	transcriptionHandler "github.com/nkosi-ncube/CareIQ/internal/handler/transcription"
	triageHandler "github.com/nkosi-ncube/CareIQ/internal/handler/triage"
	userHandler "github.com/nkosi-ncube/CareIQ/internal/handler/user"
	"github.com/nkosi-ncube/CareIQ/internal/llm"
	"github.com/nkosi-ncube/CareIQ/internal/middleware"
	"github.com/nkosi-ncube/CareIQ/internal/repository/postgres"
	"github.com/nkosi-ncube/CareIQ/internal/router"
	authService "github.com/nkosi-ncube/CareIQ/internal/service/auth"
	consultationService "github.com/nkosi-ncube/CareIQ/internal/service/consultation"
	"github.com/nkosi-ncube/CareIQ/internal/service/matcher"
	medicalService "github.com/nkosi-ncube/CareIQ/internal/service/medical"
	"github.com/nkosi-ncube/CareIQ/internal/service/notification"
	patientService "github.com/nkosi-ncube/CareIQ/internal/service/patient"
	summaryService "github.com/nkosi-ncube/CareIQ/internal/service/summary"
	transcriptionService "github.com/nkosi-ncube/CareIQ/internal/service/transcription"
	triageService "github.com/nkosi-ncube/CareIQ/internal/service/triage"
	userService "github.com/nkosi-ncube/CareIQ/internal/service/user"
	"github.com/nkosi-ncube/CareIQ/internal/transcode"
	"github.com/nkosi-ncube/CareIQ/internal/translate"
	"github.com/nkosi-ncube/CareIQ/pkg/auth"
	"github.com/nkosi-ncube/CareIQ/pkg/logger"
	"github.com/nkosi-ncube/CareIQ/pkg/messaging"
	"github.com/nkosi-ncube/CareIQ/pkg/messaging/redis"
	"github.com/nkosi-ncube/CareIQ/pkg/metrics"
	"github.com/nkosi-ncube/CareIQ/pkg/security"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLog := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.Logging.JSON,
	})
	log.Logger = *appLog.Zerolog()
	zerolog.SetGlobalLevel(logger.ParseLevel(cfg.Logging.Level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.New("careiq")
	if err := pipelineMetrics.Register(registry); err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}

	// Initialize repositories
	base := postgres.NewBaseRepository(db, pipelineMetrics)
	userRepo := postgres.NewUserRepository(base)
	consultationRepo := postgres.NewConsultationRepository(base)
	alertRepo := postgres.NewAlertRepository(base)
	testRepo := postgres.NewDiagnosticTestRepository(base)

	// View invalidation broker
	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redis.NewRedisBroker(ctx, cfg.Redis.Config, appLog.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}
	views := cache.NewViews(cfg.Cache.ViewTTL, cfg.Cache.CleanupInterval, broker, appLog, pipelineMetrics)
	if err := views.Listen(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to view invalidations")
	}

	// External collaborators
	openai := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:             cfg.Secrets.OpenAIKey,
		BaseURL:            cfg.AI.BaseURL,
		ChatModel:          cfg.AI.ChatModel,
		TranscriptionModel: cfg.AI.TranscriptionModel,
		Temperature:        cfg.AI.Temperature,
	}, appLog, pipelineMetrics)

	translator, err := translate.NewLelapaClient(translate.Config{
		BaseURL:          cfg.Translation.BaseURL,
		Token:            cfg.Secrets.LelapaToken,
		SourceLanguage:   cfg.Translation.SourceLanguage,
		Timeout:          cfg.Translation.Timeout,
		HalfOpenRequests: cfg.Translation.HalfOpenRequests,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure translation")
	}

	var mailer email.Service = email.Noop{}
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	jwtSvc := auth.NewJWTService(cfg.Secrets.JWTSecret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	// Initialize services
	authSvc := authService.NewService(userRepo, security.NewBcryptHasher(0), jwtSvc, appLog)
	userSvc := userService.NewService(userRepo)
	triageSvc := triageService.NewService(openai, userRepo, appLog)
	transcriptionSvc := transcriptionService.NewService(transcode.NewFFmpeg(cfg.Transcode.FFmpegPath), openai, appLog)
	matcherSvc := matcher.NewService(userRepo, cfg.Matcher.FilterBySpecialty)
	notifier := notification.NewService(userRepo, alertRepo, mailer, appLog)
	consultationSvc := consultationService.NewService(consultationRepo, userRepo, views, notifier, pipelineMetrics, appLog)
	medicalSvc := medicalService.NewService(openai, consultationRepo, appLog)
	summarySvc := summaryService.NewService(openai, translator, consultationRepo, pipelineMetrics, appLog)
	patientSvc := patientService.NewService(alertRepo, testRepo)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authSvc, cfg.JWT.CookieName)

	// Setup router
	r, err := router.NewRouter(authMiddleware, router.Handlers{
		Health: health.NewHandler(db, registry),
		Auth: authHandler.NewHandler(authSvc, authHandler.CookieConfig{
			Name:   cfg.JWT.CookieName,
			Secure: cfg.JWT.SecureCookie,
		}),
		Protected: []router.Handler{
			userHandler.NewHandler(userSvc),
			triageHandler.NewHandler(triageSvc),
			transcriptionHandler.NewHandler(transcriptionSvc),
			professional.NewHandler(matcherSvc),
			consultationHandler.NewHandler(consultationSvc),
			medicalHandler.NewHandler(medicalSvc),
			summaryHandler.NewHandler(summarySvc),
			patientHandler.NewHandler(patientSvc),
		},
	}, router.RouterConfig{
		RateLimit:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:      cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     middleware.DefaultCORSConfig(cfg.CORS.AllowedOrigins),
		SizeLimit:      middleware.DefaultSizeLimitConfig(),
		MetricsPrefix:  "careiq_http",
		Registerer:     registry,
		Debug:          cfg.Server.Mode == "debug",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := notifier.Drain(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("pending notification emails dropped")
	}

	log.Info().Msg("server exited")
}
