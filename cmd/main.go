package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/procurehub/procurement-service/internal/ai"
	"github.com/procurehub/procurement-service/internal/auth"
	"github.com/procurehub/procurement-service/internal/db"
	"github.com/procurehub/procurement-service/internal/handlers"
	"github.com/procurehub/procurement-service/internal/repository"
	"github.com/procurehub/procurement-service/internal/router"
	"github.com/procurehub/procurement-service/internal/router/config"
	"github.com/procurehub/procurement-service/internal/services"
	"github.com/procurehub/procurement-service/internal/storage"

	"github.com/getsentry/sentry-go"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.Fatalf("error initializing sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)
	timeout := time.Duration(cfg.RequestTimeout) * time.Second

	requestRepo := repository.NewPostgresRequestRepository(dbPool)
	proposalRepo := repository.NewPostgresProposalRepository(dbPool)
	feedbackRepo := repository.NewPostgresFeedbackRepository(dbPool)
	awardRepo := repository.NewPostgresAwardRepository(dbPool)
	notificationRepo := repository.NewPostgresNotificationRepository(dbPool)
	directoryRepo := repository.NewPostgresDirectoryRepository(dbPool)

	resolver, err := auth.NewResolver(directoryRepo, auth.NewIdentityClient(cfg.AuthBaseURL), logger)
	if err != nil {
		log.Fatalf("error initializing identity resolver: %v", err)
	}

	store := storage.New(cfg.StorageBaseURL)
	analysisClient := ai.New(cfg.AnalysisURL)

	requestService := services.NewRequestService(requestRepo, directoryRepo, notificationRepo, logger)
	proposalService := services.NewProposalService(proposalRepo, requestRepo, directoryRepo, notificationRepo, store, logger)
	feedbackService := services.NewFeedbackService(feedbackRepo, requestRepo, directoryRepo, logger)
	awardService := services.NewAwardService(awardRepo, requestRepo, proposalRepo, directoryRepo, notificationRepo, logger)
	notificationService := services.NewNotificationService(notificationRepo, directoryRepo, logger)
	analysisService := services.NewAnalysisService(analysisClient, requestRepo, proposalRepo, directoryRepo, logger)

	requestHandler := handlers.NewRequestHandler(requestService, resolver, logger, timeout)
	proposalHandler := handlers.NewProposalHandler(proposalService, resolver, logger, timeout)
	roundHandler := handlers.NewRoundHandler(feedbackService, resolver, logger, timeout)
	awardHandler := handlers.NewAwardHandler(awardService, resolver, logger, timeout)
	notificationHandler := handlers.NewNotificationHandler(notificationService, resolver, logger, timeout)
	analysisHandler := handlers.NewAnalysisHandler(analysisService, resolver, logger, 90*time.Second)

	routes := router.InitRoutes(requestHandler, proposalHandler, roundHandler, awardHandler, notificationHandler, analysisHandler)

	log.Printf("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}
