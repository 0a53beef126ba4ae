package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskpilot/internal/service"
	"taskpilot/internal/store"
)

const errContentRequired = "Message content is required"

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ListMessages 取最近 limit 条，按时间正序返回
func (h *ChatHandler) ListMessages(c *gin.Context) {
	limit := store.DefaultChatLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	messages, err := h.chatService.ListMessages(c.Request.Context(), limit)
	if err != nil {
		internalError(c, "Failed to fetch messages", err)
		return
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	c.JSON(http.StatusOK, messages)
}

// SendMessage 一轮对话；操作失败通过 operationResult 返回，HTTP 仍为 200
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req struct {
		Content *string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errContentRequired})
		return
	}

	turn, err := h.chatService.HandleMessage(c.Request.Context(), *req.Content)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errContentRequired})
			return
		}
		internalError(c, "Failed to process chat message", err)
		return
	}
	c.JSON(http.StatusOK, turn)
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
