package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyflow/backend/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

type askRequest struct {
	Query string `json:"query"`
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	answer, apiErr := h.chatService.Ask(c.Request.Context(), service.ChatInput{Query: req.Query})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answer":   answer.Answer,
		"messages": h.chatService.Messages(),
	})
}

func (h *ChatHandler) Messages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": h.chatService.Messages()})
}
