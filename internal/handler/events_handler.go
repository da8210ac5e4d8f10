package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"studyflow/backend/internal/service"
)

const keepAliveInterval = 20 * time.Second

type EventsHandler struct {
	sessionService *service.SessionService
}

func NewEventsHandler(sessionService *service.SessionService) *EventsHandler {
	return &EventsHandler{sessionService: sessionService}
}

// Stream pushes "session" and "timer" events until the client goes away. The
// current state is sent first so a fresh page needs no extra request.
func (h *EventsHandler) Stream(c *gin.Context) {
	sessions, cancelSessions := h.sessionService.SubscribeSession()
	defer cancelSessions()
	timers, cancelTimers := h.sessionService.SubscribeTimer()
	defer cancelTimers()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	view := h.sessionService.State()
	c.SSEvent("session", view.Session)
	c.SSEvent("timer", view.Timer)
	c.Writer.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sessions:
			if !ok {
				return
			}
			c.SSEvent("session", snap)
		case status, ok := <-timers:
			if !ok {
				return
			}
			c.SSEvent("timer", status)
		case <-keepAlive.C:
			c.SSEvent("ping", gin.H{"time": time.Now().UTC()})
		}
		c.Writer.Flush()
	}
}
