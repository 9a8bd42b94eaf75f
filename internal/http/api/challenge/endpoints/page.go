package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api/challenge/packets"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/identity"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/profile"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/progress"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/session"
)

// PageTemplate is the name the page handlers render.
const PageTemplate = "index.html"

const configErrorMessage = "설정 오류: 서버 구성 정보를 찾을 수 없습니다."

// PageData feeds the page template. Exactly one of the states applies:
// configuration error, authentication error, registration, or calendar.
type PageData struct {
	Title       string
	Tagline     string
	ConfigError string
	AuthError   string
	Registered  bool
	Greeting    string
	GroupSuffix string
	Challenge   *packets.ChallengeResponse
}

type PageController struct {
	hub      *session.Hub
	issuer   *identity.Issuer
	calendar Calendar
	secure   bool
}

// PageModule mounts the calendar page at the group root.
func PageModule(hub *session.Hub, issuer *identity.Issuer, calendar Calendar, secure bool) api.Module {
	ctl := &PageController{hub: hub, issuer: issuer, calendar: calendar, secure: secure}
	return api.ModuleFunc(func(c *api.Controller) {
		c.Group.GET("/", ctl.page)
	})
}

// GET /
func (p *PageController) page(ctx *gin.Context) {
	data := PageData{
		Title:       p.calendar.Text.Title,
		Tagline:     p.calendar.Text.Tagline,
		GroupSuffix: p.calendar.Rules.GroupSuffix,
	}

	who, registered := profile.Load(cookieStorage{ctx: ctx})
	if !registered {
		ctx.HTML(http.StatusOK, PageTemplate, data)
		return
	}
	data.Registered = true
	data.Greeting = greeting(who)

	tr, err := p.sessionTracker(ctx)
	if err != nil {
		log.Error().Err(err).Msg("page sign-in failed")
		data.AuthError = err.Error()
		ctx.HTML(http.StatusServiceUnavailable, PageTemplate, data)
		return
	}
	view := p.calendar.View(tr.Progress(), who, true)
	data.Challenge = &view
	ctx.HTML(http.StatusOK, PageTemplate, data)
}

// sessionTracker resumes the session named by the cookie, or starts a new
// one and sets the cookie.
func (p *PageController) sessionTracker(ctx *gin.Context) (*progress.Tracker, error) {
	if token, ok := middleware.BearerToken(ctx); ok {
		if uid, err := p.issuer.Verify(token); err == nil {
			if tr, err := p.hub.Get(ctx.Request.Context(), uid); err == nil {
				return tr, nil
			}
		}
	}

	tr, token, err := p.hub.Start("")
	if err != nil {
		return nil, err
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookie, token, sessionCookieAge, "/", "", p.secure, true)
	return tr, nil
}

// ConfigErrorHandler answers every request with the fixed configuration
// error page. It is the whole server when credentials are missing.
func ConfigErrorHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.HTML(http.StatusServiceUnavailable, PageTemplate, PageData{ConfigError: configErrorMessage})
	}
}
