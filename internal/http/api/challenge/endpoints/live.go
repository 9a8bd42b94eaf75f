package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/profile"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /api/challenge/live
//
// Streams the challenge view every time the user's progress changes,
// including changes written from another device.
func (c *ChallengeController) live(ctx *gin.Context) {
	uid, ok := middleware.GetCurrentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	// the lease keeps the session from being swept while the socket is open
	tr, release, err := c.hub.Acquire(ctx.Request.Context(), uid)
	if err != nil {
		apiErr := progressError(err)
		ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
		return
	}
	defer release()
	who, registered := profile.Load(cookieStorage{ctx: ctx})

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("user", uid).Msg("websocket upgrade failed")
		return
	}

	signal := make(chan struct{}, 1)
	stop := tr.Watch(func() {
		select {
		case signal <- struct{}{}:
		default:
		}
	})
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	defer func() {
		conn.Close()
		<-done
	}()

	log.Debug().Str("user", uid).Msg("live view connected")
	for {
		if err := conn.WriteJSON(c.calendar.View(tr.Progress(), who, registered)); err != nil {
			log.Debug().Err(err).Str("user", uid).Msg("live view disconnected")
			return
		}
		select {
		case <-done:
			return
		case <-tr.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			log.Debug().Str("user", uid).Msg("live view closed with session")
			return
		case <-signal:
		}
	}
}
