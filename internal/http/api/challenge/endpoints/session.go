package endpoints

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api/challenge/packets"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/session"
)

const sessionCookieAge = 72 * 60 * 60

type SessionController struct {
	hub    *session.Hub
	secure bool
}

// SessionPublicModule mounts sign-in, which needs no bearer token.
func SessionPublicModule(hub *session.Hub, secure bool) api.Module {
	ctl := &SessionController{hub: hub, secure: secure}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/session", ctl.startSession)
	})
}

// SessionModule mounts sign-out.
func SessionModule(hub *session.Hub, secure bool) api.Module {
	ctl := &SessionController{hub: hub, secure: secure}
	return api.ModuleFunc(func(c *api.Controller) {
		c.DELETE("/session", ctl.endSession)
	})
}

// POST /api/session
func (s *SessionController) startSession(ctx *gin.Context) (any, *api.APIError) {
	var request packets.StartSessionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	tr, token, err := s.hub.Start(request.Token)
	if err != nil {
		log.Error().Err(err).Msg("could not start session")
		return nil, progressError(err)
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookie, token, sessionCookieAge, "/", "", s.secure, true)
	return packets.SessionResponse{Token: token, UserID: tr.UserID()}, nil
}

// DELETE /api/session
func (s *SessionController) endSession(ctx *gin.Context, uid string) (any, *api.APIError) {
	s.hub.End(uid)
	ctx.SetCookie(middleware.SessionCookie, "", -1, "/", "", s.secure, true)
	return gin.H{"ok": true}, nil
}
