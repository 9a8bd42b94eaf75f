package endpoints

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/api/challenge/packets"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/model"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/profile"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/progress"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/session"
)

type ChallengeController struct {
	hub      *session.Hub
	calendar Calendar
}

func newChallengeController(hub *session.Hub, calendar Calendar) *ChallengeController {
	return &ChallengeController{hub: hub, calendar: calendar}
}

// ChallengeModule mounts the calendar endpoints for the signed-in user.
func ChallengeModule(hub *session.Hub, calendar Calendar) api.Module {
	ctl := newChallengeController(hub, calendar)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/challenge", ctl.getChallenge)
		c.POST("/challenge/days/:day/select", ctl.selectDay)
		c.DELETE("/challenge/selection", ctl.closeDay)
		c.POST("/challenge/days/:day/declare", ctl.declare)
		c.POST("/challenge/days/:day/pray", ctl.pray)
		c.DELETE("/challenge/completion", ctl.dismissCompletion)

		c.Group.GET("/challenge/live", ctl.live)
	})
}

func (c *ChallengeController) tracker(ctx context.Context, uid string) (*progress.Tracker, *api.APIError) {
	tr, err := c.hub.Get(ctx, uid)
	if err != nil {
		return nil, progressError(err)
	}
	return tr, nil
}

func dayParam(ctx *gin.Context) (int, *api.APIError) {
	day, err := strconv.Atoi(ctx.Param("day"))
	if err != nil {
		return 0, &api.APIError{Code: http.StatusBadRequest, Message: "invalid day"}
	}
	return day, nil
}

func (c *ChallengeController) view(ctx *gin.Context, tr *progress.Tracker) packets.ChallengeResponse {
	who, ok := profile.Load(cookieStorage{ctx: ctx})
	return c.calendar.View(tr.Progress(), who, ok)
}

// GET /api/challenge
func (c *ChallengeController) getChallenge(ctx *gin.Context, uid string) (any, *api.APIError) {
	tr, apiErr := c.tracker(ctx.Request.Context(), uid)
	if apiErr != nil {
		return nil, apiErr
	}
	return c.view(ctx, tr), nil
}

// POST /api/challenge/days/:day/select
func (c *ChallengeController) selectDay(ctx *gin.Context, uid string) (any, *api.APIError) {
	if _, ok := profile.Load(cookieStorage{ctx: ctx}); !ok {
		return nil, errNotRegistered
	}
	day, apiErr := dayParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	tr, apiErr := c.tracker(ctx.Request.Context(), uid)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := tr.SelectDay(day); err != nil {
		return nil, progressError(err)
	}
	return c.calendar.Day(tr.Progress().Days[day-1]), nil
}

// DELETE /api/challenge/selection
func (c *ChallengeController) closeDay(ctx *gin.Context, uid string) (any, *api.APIError) {
	tr, apiErr := c.tracker(ctx.Request.Context(), uid)
	if apiErr != nil {
		return nil, apiErr
	}
	tr.CloseDay()
	return c.view(ctx, tr), nil
}

// POST /api/challenge/days/:day/declare
func (c *ChallengeController) declare(ctx *gin.Context, uid string) (any, *api.APIError) {
	return c.act(ctx, uid, (*progress.Tracker).Declare)
}

// POST /api/challenge/days/:day/pray
func (c *ChallengeController) pray(ctx *gin.Context, uid string) (any, *api.APIError) {
	return c.act(ctx, uid, (*progress.Tracker).Pray)
}

type dayAction func(*progress.Tracker, context.Context, int) (model.DayStatus, error)

func (c *ChallengeController) act(ctx *gin.Context, uid string, action dayAction) (any, *api.APIError) {
	who, ok := profile.Load(cookieStorage{ctx: ctx})
	if !ok {
		return nil, errNotRegistered
	}
	day, apiErr := dayParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	tr, apiErr := c.tracker(ctx.Request.Context(), uid)
	if apiErr != nil {
		return nil, apiErr
	}
	if _, err := action(tr, ctx.Request.Context(), day); err != nil {
		return nil, progressError(err)
	}

	p := tr.Progress()
	out := packets.DayActionResponse{
		Day:               c.calendar.Day(p.Days[day-1]),
		ChallengeComplete: p.ChallengeComplete,
		SelectedDay:       p.SelectedDay,
	}
	if p.ChallengeComplete {
		out.CompletionMessage = completionMessage(who)
	}
	return out, nil
}

// DELETE /api/challenge/completion
func (c *ChallengeController) dismissCompletion(ctx *gin.Context, uid string) (any, *api.APIError) {
	tr, apiErr := c.tracker(ctx.Request.Context(), uid)
	if apiErr != nil {
		return nil, apiErr
	}
	tr.DismissCompletion()
	return c.view(ctx, tr), nil
}
