package endpoints

import (
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api/challenge/packets"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/session"
)

func HealthModule(hub *session.Hub) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/health", func(*gin.Context) (any, *api.APIError) {
			return packets.HealthResponse{Status: "ok", Sessions: hub.Len()}, nil
		})
	})
}
