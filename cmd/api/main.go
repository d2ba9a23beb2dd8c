package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/dyslexiacare/screening/internal/application"
	appreports "github.com/dyslexiacare/screening/internal/application/reports"
	appscreenings "github.com/dyslexiacare/screening/internal/application/screenings"
	apptts "github.com/dyslexiacare/screening/internal/application/tts"
	"github.com/dyslexiacare/screening/internal/config"
	domai "github.com/dyslexiacare/screening/internal/domain/ai"
	repdomain "github.com/dyslexiacare/screening/internal/domain/reports"
	screenerrdomain "github.com/dyslexiacare/screening/internal/domain/screenerrors"
	domain "github.com/dyslexiacare/screening/internal/domain/screenings"
	ttsdomain "github.com/dyslexiacare/screening/internal/domain/tts"
	localai "github.com/dyslexiacare/screening/internal/infra/ai/local"
	openaiCli "github.com/dyslexiacare/screening/internal/infra/ai/openai"
	"github.com/dyslexiacare/screening/internal/infra/analyzers"
	mysqlp "github.com/dyslexiacare/screening/internal/infra/db/mysql"
	postgresp "github.com/dyslexiacare/screening/internal/infra/db/postgres"
	"github.com/dyslexiacare/screening/internal/infra/httpserver"
	minioStore "github.com/dyslexiacare/screening/internal/infra/storage"
	ttsinfra "github.com/dyslexiacare/screening/internal/infra/tts"
	"github.com/dyslexiacare/screening/internal/middleware"
)

func main() {
	// path config.yaml (CONFIG_PATH overrides)
	path := "config.yaml"

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database per configured driver
	var db *sql.DB
	var sessionRepo domain.Repository
	var reportRepo repdomain.Repository
	var errorRepo screenerrdomain.Repository
	var ttsRepo ttsdomain.Repository

	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		sessionRepo = postgresp.NewSessionRepository(db)
		reportRepo = postgresp.NewReportRepository(db)
		errorRepo = postgresp.NewModalityErrorRepository(db)
		ttsRepo = postgresp.NewTTSRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		sessionRepo = mysqlp.NewSessionRepository(db)
		reportRepo = mysqlp.NewReportRepository(db)
		errorRepo = mysqlp.NewModalityErrorRepository(db)
		ttsRepo = mysqlp.NewTTSRepository(db)
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init AI backends; without an API key the service still runs with the
	// text analyzer and the local narrator
	var narrator domai.Client
	registry := analyzers.NewRegistry(
		analyzers.NewTextAnalyzer(), nil, nil,
		time.Duration(cfg.Analysis.ModalityTimeoutSeconds)*time.Second,
	)
	if cfg.OpenAI.APIKey != "" {
		cli := openaiCli.NewClient(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.ChatModel,
			cfg.OpenAI.VisionModel,
			cfg.OpenAI.TranscribeModel,
		)
		narrator = cli
		registry = analyzers.NewRegistry(
			analyzers.NewTextAnalyzer(),
			analyzers.NewHandwritingAnalyzer(cli),
			analyzers.NewSpeechAnalyzer(cli),
			time.Duration(cfg.Analysis.ModalityTimeoutSeconds)*time.Second,
		)
	} else {
		log.Println("no OpenAI API key configured, using text analyzer and local narrator only")
		narrator = localai.NewNarrator()
	}

	thresholds := domain.DefaultThresholds()
	if cfg.Analysis.HighThreshold > 0 {
		thresholds.High = cfg.Analysis.HighThreshold
	}
	if cfg.Analysis.MediumThreshold > 0 {
		thresholds.Medium = cfg.Analysis.MediumThreshold
	}

	screeningsSvc := &appscreenings.Service{
		Repo:       sessionRepo,
		Analyzers:  registry,
		Artifacts:  store,
		Errors:     errorRepo,
		Aggregator: domain.NewAggregator(thresholds, cfg.Analysis.VariancePenaltyCap),
		Clock:      application.SystemClock{},
	}

	reportsSvc := &appreports.Service{
		Client:   narrator,
		Repo:     reportRepo,
		Sessions: sessionRepo,
		Clock:    application.SystemClock{},
	}

	ttsSvc := &apptts.Service{
		Synth:     ttsinfra.NewSynthesizer(cfg.OpenAI.APIKey, cfg.OpenAI.TTSModel, cfg.OpenAI.TTSVoice),
		Repo:      ttsRepo,
		Artifacts: store,
		Clock:     application.SystemClock{},
	}

	// init router + middleware chain
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if cfg.Auth.Enabled {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	if cfg.RateLimit.Enabled {
		mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	}

	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"storage":  &middleware.StorageHealthChecker{Client: store.Client(), Bucket: store.Bucket()},
	}))
	mux.Mount("/", httpserver.NewRouter(screeningsSvc, reportsSvc, ttsSvc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // uploads + model calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
