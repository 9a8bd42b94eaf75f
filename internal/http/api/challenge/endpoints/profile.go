package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api/challenge/packets"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/model"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/profile"
)

type ProfileController struct {
	suffix string
	secure bool
}

// ProfileModule mounts registration. The profile lives in cookies on the
// user's device, so no session is needed.
func ProfileModule(groupSuffix string, secure bool) api.Module {
	ctl := &ProfileController{suffix: groupSuffix, secure: secure}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/profile", ctl.getProfile)
		c.PUBLIC_POST("/profile", ctl.register)
	})
}

// GET /api/profile
func (p *ProfileController) getProfile(ctx *gin.Context) (any, *api.APIError) {
	who, ok := profile.Load(cookieStorage{ctx: ctx})
	return profileResponse(who, ok), nil
}

// POST /api/profile
func (p *ProfileController) register(ctx *gin.Context) (any, *api.APIError) {
	var request packets.RegisterRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	who, err := profile.Register(request.DisplayName, request.GroupName, p.suffix)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := profile.Save(cookieStorage{ctx: ctx, secure: p.secure}, who); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return profileResponse(who, true), nil
}

func profileResponse(who model.UserProfile, registered bool) packets.ProfileResponse {
	if !registered {
		return packets.ProfileResponse{}
	}
	return packets.ProfileResponse{
		Registered:  true,
		DisplayName: who.DisplayName,
		GroupName:   who.GroupName,
		Greeting:    greeting(who),
	}
}
