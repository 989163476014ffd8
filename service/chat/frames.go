package chat

import (
	"encoding/json"
	"errors"

	"Connectify/logger"
	"Connectify/module/chat/model"
	"Connectify/tools/errs"
)

// Frame is the single wire shape of the live protocol:
// {"event": "...", "data": {...}}. Inbound data stays untyped until the
// matching handler decodes it into its payload struct.
type Frame struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// ===== inbound event names =====
const (
	EvJoinChannels  = "join-channels"
	EvJoinChannel   = "join-channel"
	EvLeaveChannel  = "leave-channel"
	EvSendMessage   = "send-message"
	EvTypingStart   = "typing-start"
	EvTypingStop    = "typing-stop"
	EvAddReaction   = "add-reaction"
	EvEditMessage   = "edit-message"
	EvDeleteMessage = "delete-message"
	EvUpdateStatus  = "update-status"
)

// ===== outbound event names =====
const (
	EvNewMessage        = "new-message"
	EvMessageUpdated    = "message-updated"
	EvMessageDeleted    = "message-deleted"
	EvUserTyping        = "user-typing"
	EvUserStoppedTyping = "user-stopped-typing"
	EvUserOnline        = "user-online"
	EvUserOffline       = "user-offline"
	EvUserStatusChanged = "user-status-changed"
	EvError             = "error"
)

// ===== inbound payloads (field names follow the client protocol) =====

type channelPayload struct {
	ChannelID string `json:"channelId"`
}

type sendMessagePayload struct {
	ChannelID   string             `json:"channelId"`
	Content     string             `json:"content"`
	Type        string             `json:"type"`
	ReplyTo     string             `json:"replyTo"`
	Attachments []model.Attachment `json:"attachments"`
}

type reactionPayload struct {
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
}

type editMessagePayload struct {
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
}

type deleteMessagePayload struct {
	MessageID string `json:"messageId"`
}

type statusPayload struct {
	Status string `json:"status"`
}

func ParseFrame(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	if f.Event == "" {
		return nil, errors.New("frame missing event")
	}
	return &f, nil
}

// EncodeFrame marshals an outbound frame. A marshal failure is a
// programming error on our own view types, so it is logged and the
// frame dropped rather than killing the connection.
func EncodeFrame(event string, data any) []byte {
	raw, err := json.Marshal(struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}{Event: event, Data: data})
	if err != nil {
		logger.Errorf("encode frame event=%s: %v", event, err)
		return nil
	}
	return raw
}

// errorFrame renders a handler failure for the offending client only.
// Store and unclassified errors stay opaque, same as the REST facade.
func errorFrame(err error) []byte {
	msg := "Server error"
	var ce *errs.CodeError
	if errors.As(err, &ce) {
		switch ce.Code {
		case errs.CodeValidation, errs.CodeUnauthorized, errs.CodeNotFoundOrDenied:
			msg = ce.Msg
		default:
			logger.Errorf("gateway error: %s", ce.Error())
		}
	} else {
		logger.Errorf("gateway error: %v", err)
	}
	return EncodeFrame(EvError, map[string]any{"message": msg})
}
