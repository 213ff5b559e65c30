package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/requestdata"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireActor_ThreadsHeaderIntoContext(t *testing.T) {
	mw := NewActorMiddleware(logger.NewNop())

	var captured *requestdata.RequestData
	router := gin.New()
	router.Use(mw.RequireActor())
	router.GET("/probe", func(c *gin.Context) {
		captured = requestdata.GetRequestData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Actor", "  planner.pilon  ")
	router.ServeHTTP(httptest.NewRecorder(), req)

	if captured == nil {
		t.Fatalf("expected request data in context")
	}
	if captured.Actor != "planner.pilon" {
		t.Fatalf("actor: want=planner.pilon got=%q", captured.Actor)
	}
	if captured.RequestID == "" {
		t.Fatalf("expected a request id")
	}
}

func TestRequireActor_MissingHeaderFallsBackToSystem(t *testing.T) {
	mw := NewActorMiddleware(logger.NewNop())

	var actor string
	router := gin.New()
	router.Use(mw.RequireActor())
	router.GET("/probe", func(c *gin.Context) {
		actor = requestdata.ActorOrSystem(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if actor != "system" {
		t.Fatalf("actor: want=system got=%q", actor)
	}
}
