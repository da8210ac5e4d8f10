package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyflow/backend/internal/service"
	"studyflow/backend/internal/session"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

type quickTaskRequest struct {
	Subject         string `json:"subject"`
	DurationMinutes int    `json:"durationMinutes"`
}

type editTaskRequest struct {
	Subject *string `json:"subject"`
	Note    *string `json:"note"`
}

type durationRequest struct {
	DurationMinutes int `json:"durationMinutes"`
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) GetState(c *gin.Context) {
	writeSession(c, http.StatusOK, h.sessionService.State())
}

func (h *SessionHandler) QuickAdd(c *gin.Context) {
	var req quickTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	task, view, apiErr := h.sessionService.QuickAdd(service.QuickTaskInput{
		Subject:         req.Subject,
		DurationMinutes: req.DurationMinutes,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"task":    task,
		"session": view.Session,
		"timer":   view.Timer,
	})
}

func (h *SessionHandler) EditTask(c *gin.Context) {
	var req editTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	view, apiErr := h.sessionService.EditTask(c.Param("id"), session.TaskPatch{
		Subject: req.Subject,
		Note:    req.Note,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	writeSession(c, http.StatusOK, *view)
}

func (h *SessionHandler) SetDuration(c *gin.Context) {
	var req durationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	view, apiErr := h.sessionService.SetDuration(c.Param("id"), req.DurationMinutes)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	writeSession(c, http.StatusOK, *view)
}

func (h *SessionHandler) SelectTask(c *gin.Context) {
	view, apiErr := h.sessionService.SelectTask(c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	writeSession(c, http.StatusOK, *view)
}

func (h *SessionHandler) DeleteTask(c *gin.Context) {
	view, apiErr := h.sessionService.DeleteTask(c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	writeSession(c, http.StatusOK, *view)
}

func (h *SessionHandler) Start(c *gin.Context) {
	writeSession(c, http.StatusOK, h.sessionService.StartTimer())
}

func (h *SessionHandler) Pause(c *gin.Context) {
	writeSession(c, http.StatusOK, h.sessionService.PauseTimer())
}

func (h *SessionHandler) Reset(c *gin.Context) {
	writeSession(c, http.StatusOK, h.sessionService.ResetTimer())
}

func (h *SessionHandler) Skip(c *gin.Context) {
	writeSession(c, http.StatusOK, h.sessionService.SkipTimer())
}
