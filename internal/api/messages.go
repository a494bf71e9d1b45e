package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

// StartMessage handles POST /api/messages/start: opens (or reuses) a
// conversation between two factories and posts the first message.
func (h *Handler) StartMessage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.StartMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}
	if req.TargetFactoryID == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "target_factory_id required",
		})
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Message body required",
		})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	fromFactory := req.FromFactoryID
	if fromFactory == 0 {
		first, err := h.DB.FirstUserFactoryID(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Failed to resolve sender factory",
				Message: err.Error(),
			})
			return
		}
		if first == 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: "You don't have any factories to send from. Create one first.",
			})
			return
		}
		fromFactory = first
	}

	targetOwner, err := h.DB.FactoryOwner(ctx, req.TargetFactoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to resolve target factory",
			Message: err.Error(),
		})
		return
	}
	if targetOwner == 0 {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Target factory not found",
		})
		return
	}

	conversationID, err := h.DB.GetOrCreateConversation(ctx, fromFactory, req.TargetFactoryID, userID, targetOwner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to open conversation",
			Message: err.Error(),
		})
		return
	}
	if err := h.DB.InsertMessage(ctx, conversationID, userID, strings.TrimSpace(req.Body)); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to send message",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"conversation_id": conversationID,
		"ok":              true,
	})
}

// ListThreads handles GET /api/messages/threads.
func (h *Handler) ListThreads(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	threads, err := h.DB.ListThreads(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load threads",
			Message: err.Error(),
		})
		return
	}
	if threads == nil {
		threads = []models.Thread{}
	}
	c.JSON(http.StatusOK, threads)
}

// GetConversation handles GET /api/messages/:id.
func (h *Handler) GetConversation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid conversation id",
		})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	participant, err := h.DB.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load conversation",
			Message: err.Error(),
		})
		return
	}
	if !participant {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error: "Not a participant",
		})
		return
	}

	participants, err := h.DB.Participants(ctx, conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load participants",
			Message: err.Error(),
		})
		return
	}
	messages, err := h.DB.ConversationMessages(ctx, conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load messages",
			Message: err.Error(),
		})
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	c.JSON(http.StatusOK, models.Conversation{
		ConversationID: conversationID,
		Participants:   participants,
		Messages:       messages,
	})
}

// SendInConversation handles POST /api/messages/:id.
func (h *Handler) SendInConversation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Invalid conversation id",
		})
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Message body required",
		})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	participant, err := h.DB.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load conversation",
			Message: err.Error(),
		})
		return
	}
	if !participant {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error: "Not a participant",
		})
		return
	}

	if err := h.DB.InsertMessage(ctx, conversationID, userID, strings.TrimSpace(req.Body)); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to send message",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}
