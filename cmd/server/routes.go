package main

import (
	"html/template"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/config"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/db"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api"
	challengeapi "github.com/Nixie-Tech-LLC/doodeurim/internal/http/api/challenge/endpoints"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/identity"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/session"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, hub *session.Hub, issuer *identity.Issuer, users db.Store, calendar challengeapi.Calendar, tmpl *template.Template) {
	r.SetHTMLTemplate(tmpl)
	secure := cfg.Environment == "production"

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: true,
	}))

	api.MountGroup(r, api.GroupConfig{},
		challengeapi.PageModule(hub, issuer, calendar, secure),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
	},
		challengeapi.SessionPublicModule(hub, secure),
		challengeapi.ProfileModule(cfg.Challenge.GroupSuffix, secure),
		challengeapi.HealthModule(hub),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
		Auth:   middleware.JWTMiddleware(issuer, users),
	},
		challengeapi.SessionModule(hub, secure),
		challengeapi.ChallengeModule(hub, calendar),
	)
}
