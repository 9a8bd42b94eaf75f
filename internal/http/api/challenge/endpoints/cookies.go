package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/profile"
)

const profileCookieAge = 365 * 24 * 60 * 60

// cookieStorage is the browser's device storage for the profile.
type cookieStorage struct {
	ctx    *gin.Context
	secure bool
}

var _ profile.DeviceStorage = cookieStorage{}

func (s cookieStorage) Get(key string) (string, bool) {
	v, err := s.ctx.Cookie(key)
	if err != nil {
		return "", false
	}
	return v, true
}

func (s cookieStorage) Set(key, value string) error {
	s.ctx.SetSameSite(http.SameSiteLaxMode)
	s.ctx.SetCookie(key, value, profileCookieAge, "/", "", s.secure, true)
	return nil
}
