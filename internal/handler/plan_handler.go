package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyflow/backend/internal/service"
)

type PlanHandler struct {
	planService    *service.PlanService
	sessionService *service.SessionService
}

type generatePlanRequest struct {
	Subjects             []string `json:"subjects"`
	AvailableTimeMinutes int      `json:"availableTimeMinutes"`
}

func NewPlanHandler(planService *service.PlanService, sessionService *service.SessionService) *PlanHandler {
	return &PlanHandler{planService: planService, sessionService: sessionService}
}

// Generate asks the model for a plan and, only when that works, replaces the
// session's plan with it.
func (h *PlanHandler) Generate(c *gin.Context) {
	var req generatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	plan, apiErr := h.planService.Generate(c.Request.Context(), service.PlanInput{
		Subjects:             service.SplitSubjects(req.Subjects...),
		AvailableTimeMinutes: req.AvailableTimeMinutes,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	view := h.sessionService.ApplyPlan(plan.Plan)
	c.JSON(http.StatusOK, gin.H{
		"plan":    plan.Plan,
		"session": view.Session,
		"timer":   view.Timer,
	})
}
