package handler

import (
	"net/http"
	"strconv"

	"Connectify/middleware"
	midsec "Connectify/middleware/security"
	"Connectify/module/chat/model"
	"Connectify/module/chat/service"
	"Connectify/tools/errs"

	"github.com/gin-gonic/gin"
)

// Chat is the Query Facade: thin REST composition over the guard,
// registry and message service. No chat invariant lives here.
type Chat struct {
	Channels *service.Channels
	Messages *service.Messages

	// Broadcast, when set, pushes a REST-originated mutation to the
	// live topic so socket subscribers converge without polling. Wired
	// to the gateway in main.
	Broadcast func(channelID, event string, data any)
}

func NewChat(channels *service.Channels, messages *service.Messages) *Chat {
	return &Chat{Channels: channels, Messages: messages}
}

func (h *Chat) notify(channelID, event string, data any) {
	if h.Broadcast != nil {
		h.Broadcast(channelID, event, data)
	}
}

// GET /api/chat/channels
func (h *Chat) GetChannels(c *gin.Context) {
	channels, err := h.Channels.ListForUser(c.Request.Context(), midsec.UserID(c))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	middleware.OK(c, http.StatusOK, "", gin.H{"channels": channels})
}

type createChannelReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	MemberIDs   []string `json:"memberIds"`
}

// POST /api/chat/channels
func (h *Chat) CreateChannel(c *gin.Context) {
	var req createChannelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, errs.Validation("invalid request body"))
		return
	}
	ch, err := h.Channels.Create(c.Request.Context(), midsec.UserID(c),
		req.Name, req.Description, req.Type, req.MemberIDs)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	middleware.OK(c, http.StatusCreated, "Channel created successfully", gin.H{"channel": ch})
}

// GET /api/chat/channels/:channelId/messages?page&limit
func (h *Chat) GetChannelMessages(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", service.DefaultPageSize)

	messages, pagination, err := h.Messages.List(c.Request.Context(),
		midsec.UserID(c), c.Param("channelId"), page, limit)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	middleware.OK(c, http.StatusOK, "", gin.H{
		"messages":   messages,
		"pagination": pagination,
	})
}

type sendMessageReq struct {
	Content     string             `json:"content"`
	Type        string             `json:"type"`
	ReplyTo     string             `json:"replyTo"`
	Attachments []model.Attachment `json:"attachments"`
}

// POST /api/chat/channels/:channelId/messages
func (h *Chat) SendMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, errs.Validation("invalid request body"))
		return
	}
	channelID := c.Param("channelId")
	msg, err := h.Messages.Create(c.Request.Context(), midsec.UserID(c), service.CreateInput{
		Channel:     channelID,
		Kind:        req.Type,
		Content:     req.Content,
		ReplyTo:     req.ReplyTo,
		Attachments: req.Attachments,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	h.notify(channelID, "new-message", msg)
	middleware.OK(c, http.StatusCreated, "Message sent successfully", gin.H{"message": msg})
}

type editMessageReq struct {
	Content string `json:"content"`
}

// PUT /api/chat/messages/:messageId
func (h *Chat) EditMessage(c *gin.Context) {
	var req editMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, errs.Validation("invalid request body"))
		return
	}
	msg, err := h.Messages.Edit(c.Request.Context(), midsec.UserID(c), c.Param("messageId"), req.Content)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	h.notify(msg.Channel, "message-updated", msg)
	middleware.OK(c, http.StatusOK, "Message updated successfully", gin.H{"message": msg})
}

// DELETE /api/chat/messages/:messageId
func (h *Chat) DeleteMessage(c *gin.Context) {
	m, err := h.Messages.SoftDelete(c.Request.Context(), midsec.UserID(c), c.Param("messageId"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	h.notify(m.Channel, "message-deleted", gin.H{"messageId": m.ID, "channelId": m.Channel})
	middleware.OK(c, http.StatusOK, "Message deleted successfully", nil)
}

type reactionReq struct {
	Emoji string `json:"emoji"`
}

// POST /api/chat/messages/:messageId/reactions
func (h *Chat) AddReaction(c *gin.Context) {
	var req reactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, errs.Validation("invalid request body"))
		return
	}
	msg, added, err := h.Messages.ToggleReaction(c.Request.Context(),
		midsec.UserID(c), c.Param("messageId"), req.Emoji)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	verdict := "Reaction removed"
	if added {
		verdict = "Reaction added"
	}
	h.notify(msg.Channel, "message-updated", msg)
	middleware.OK(c, http.StatusOK, verdict, gin.H{"message": msg})
}

// GET /api/chat/search?q&channelId&page&limit
func (h *Chat) SearchMessages(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", service.SearchPageSize)

	messages, pagination, err := h.Messages.Search(c.Request.Context(),
		midsec.UserID(c), c.Query("q"), c.Query("channelId"), page, limit)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	middleware.OK(c, http.StatusOK, "", gin.H{
		"messages":   messages,
		"pagination": pagination,
	})
}

func queryInt(c *gin.Context, key string, def int64) int64 {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return def
	}
	return n
}
