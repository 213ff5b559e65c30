package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mtl-infra/capworks-backend/internal/db"
	"github.com/mtl-infra/capworks-backend/internal/handlers"
	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/middleware"
	"github.com/mtl-infra/capworks-backend/internal/notifier"
	"github.com/mtl-infra/capworks-backend/internal/repos"
	"github.com/mtl-infra/capworks-backend/internal/server"
	"github.com/mtl-infra/capworks-backend/internal/services"
	"github.com/mtl-infra/capworks-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	port := utils.GetEnv("PORT", "8080", log)
	objectivesPath := utils.GetEnv("OBJECTIVE_DEFINITIONS_PATH", "", log)
	shutdownTimeout := utils.GetEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 15, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if utils.GetEnvAsBool("AUTO_MIGRATE", true, log) {
		if err = postgresService.AutoMigrateAll(); err != nil {
			log.Error("Postgres auto migration failed", "error", err)
			os.Exit(1)
		}
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	projectRepo := repos.NewProjectRepo(thePG, log)
	interventionRepo := repos.NewInterventionRepo(thePG, log)
	programBookRepo := repos.NewProgramBookRepo(thePG, log)
	annualProgramRepo := repos.NewAnnualProgramRepo(thePG, log)
	historyRepo := repos.NewHistoryRepo(thePG, log)

	// Notifier
	bus, err := notifier.NewRedisBus(log)
	if err != nil {
		log.Warn("Redis notifier unavailable, decisions will not be broadcast", "error", err)
		bus = notifier.NewNopBus()
	}
	defer bus.Close()

	// Services
	log.Info("Setting up Services from main...")
	objectiveDefs, err := services.LoadObjectiveDefinitions(objectivesPath, log)
	if err != nil {
		log.Warn("Could not load objective definitions", "error", err)
	} else if len(objectiveDefs) > 0 {
		log.Info("Loaded objective definitions", "count", len(objectiveDefs))
	}
	budgetService := services.NewBudgetService(log)
	distributionService := services.NewDistributionService(log, budgetService)
	interventionStatusService := services.NewInterventionStatusService(log)
	projectStatusService := services.NewProjectStatusService(log, distributionService, interventionStatusService)
	programBookService := services.NewProgramBookService(log, projectRepo, objectiveDefs)
	annualProgramService := services.NewAnnualProgramService(log, annualProgramRepo, programBookRepo)
	consistencyService := services.NewConsistencyService(log, programBookRepo, programBookService, annualProgramService, bus)
	projectService := services.NewProjectService(
		thePG,
		log,
		projectRepo,
		interventionRepo,
		programBookRepo,
		projectStatusService,
		distributionService,
		programBookService,
	)
	interventionService := services.NewInterventionService(thePG, log, interventionRepo, interventionStatusService)
	decisionService := services.NewDecisionService(
		thePG,
		log,
		projectRepo,
		interventionRepo,
		programBookRepo,
		historyRepo,
		projectStatusService,
		interventionStatusService,
		distributionService,
		consistencyService,
		bus,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	projectHandler := handlers.NewProjectHandler(log, projectService)
	interventionHandler := handlers.NewInterventionHandler(log, interventionService)
	decisionHandler := handlers.NewDecisionHandler(log, decisionService)

	// Middleware
	log.Info("Setting up middleware from main...")
	actorMiddleware := middleware.NewActorMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ActorMiddleware:     actorMiddleware,
		ProjectHandler:      projectHandler,
		InterventionHandler: interventionHandler,
		DecisionHandler:     decisionHandler,
	})

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("Server listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}
