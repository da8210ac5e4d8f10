package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "studyflow/backend/internal/errors"
	"studyflow/backend/internal/service"
)

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	if apiErr == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    apperrors.CodeInternal,
				"message": "internal server error",
			},
		})
		return
	}

	errorBody := gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	}
	if apiErr.Details != nil {
		errorBody["details"] = apiErr.Details
	}

	c.JSON(apiErr.Status, gin.H{
		"error": errorBody,
	})
}

func writeInvalidJSON(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{"code": apperrors.CodeInvalidJSON, "message": "invalid request body"},
	})
}

func writeSession(c *gin.Context, status int, view service.SessionView) {
	c.JSON(status, gin.H{"session": view.Session, "timer": view.Timer})
}
