package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/requestdata"
)

type ActorMiddleware struct {
	log *logger.Logger
}

func NewActorMiddleware(log *logger.Logger) *ActorMiddleware {
	return &ActorMiddleware{log: log.With("middleware", "ActorMiddleware")}
}

// RequireActor threads the acting user from the X-Actor header into the
// request context. Mutating services read the actor from there; nothing
// reads an ambient current user.
func (m *ActorMiddleware) RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader("X-Actor"))
		if actor == "" {
			m.log.Debug("Request without X-Actor header")
		}
		rd := &requestdata.RequestData{
			Actor:     actor,
			RequestID: uuid.NewString(),
		}
		c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}
