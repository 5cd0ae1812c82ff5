package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amiral-e/esp-back-sub001/internal/chat"
	"github.com/amiral-e/esp-back-sub001/internal/common"
)

func (h *Handler) ListConversations(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	convs, err := h.ChatSvc.List(c.Request.Context(), identity.UserID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.OK(c, gin.H{"conversations": convs})
}

type createConversationReq struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) CreateConversation(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	var req createConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "name required")
		return
	}

	conv, err := h.ChatSvc.Create(c.Request.Context(), identity.UserID, req.Name)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.OK(c, conv)
}

func (h *Handler) GetConversation(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	conv, err := h.ChatSvc.Get(c.Request.Context(), identity.UserID, c.Param("conv_id"))
	if err != nil {
		common.FailStore(c, err, "No conversation found")
		return
	}
	common.OK(c, conv)
}

func (h *Handler) RenameConversation(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	var req createConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "name required")
		return
	}

	convID := c.Param("conv_id")
	if err := h.ChatSvc.Rename(c.Request.Context(), identity.UserID, convID, req.Name); err != nil {
		common.FailStore(c, err, "No conversation found")
		return
	}
	common.OK(c, gin.H{"message": "Conversation renamed"})
}

func (h *Handler) DeleteConversation(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	if err := h.ChatSvc.Delete(c.Request.Context(), identity.UserID, c.Param("conv_id")); err != nil {
		common.FailStore(c, err, "No conversation found")
		return
	}
	common.OK(c, gin.H{"message": "Conversation deleted"})
}

type sendMessageReq struct {
	Message string `json:"message" binding:"required"`
}

// SendConversationMessage runs the append protocol against the conversation
// in the path; the sentinel id "0" creates a new conversation instead.
func (h *Handler) SendConversationMessage(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "Missing credential")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		common.Fail(c, http.StatusBadRequest, "message required")
		return
	}

	convID, reply, err := h.ChatSvc.SendMessage(c.Request.Context(), identity.UserID, c.Param("conv_id"), req.Message)
	if err != nil {
		var ue *chat.UpstreamError
		if errors.As(err, &ue) {
			h.Log.Error().Err(ue.Err).Str("user_id", identity.UserID).Msg("chat service call failed")
			common.Fail(c, http.StatusInternalServerError, "chat service unavailable")
			return
		}
		common.FailStore(c, err, "No conversation found")
		return
	}

	common.OK(c, gin.H{
		"conv_id": convID,
		"content": reply,
	})
}
