package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mtl-infra/capworks-backend/internal/handlers"
	"github.com/mtl-infra/capworks-backend/internal/middleware"
)

type RouterConfig struct {
	ActorMiddleware     *middleware.ActorMiddleware
	ProjectHandler      *handlers.ProjectHandler
	InterventionHandler *handlers.InterventionHandler
	DecisionHandler     *handlers.DecisionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Actor", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || API       ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.ActorMiddleware.RequireActor())
	{
		// Projects
		api.POST("/projects", cfg.ProjectHandler.CreateProject)
		api.GET("/projects/:id", cfg.ProjectHandler.GetProject)
		api.POST("/projects/:id/programBooks", cfg.ProjectHandler.AddToProgramBook)
		api.POST("/projects/:id/decisions", cfg.DecisionHandler.AddProjectDecision)
		// Interventions
		api.POST("/interventions", cfg.InterventionHandler.CreateIntervention)
		api.GET("/interventions/:id", cfg.InterventionHandler.GetIntervention)
		api.POST("/interventions/:id/submit", cfg.InterventionHandler.SubmitIntervention)
		api.POST("/interventions/:id/decisions", cfg.DecisionHandler.AddInterventionDecision)
	}

	return router
}
