package chat

import (
	"context"
	"time"

	"Connectify/logger"
	chatservice "Connectify/module/chat/service"
	usermodel "Connectify/module/user/model"
	"Connectify/tools/decode"
	"Connectify/tools/errs"
)

const handlerTimeout = 5 * time.Second

func registerHandlers(d *Dispatcher) {
	d.Register(EvJoinChannels, handleJoinChannels)
	d.Register(EvJoinChannel, handleJoinChannel)
	d.Register(EvLeaveChannel, handleLeaveChannel)
	d.Register(EvSendMessage, handleSendMessage)
	d.Register(EvTypingStart, handleTypingStart)
	d.Register(EvTypingStop, handleTypingStop)
	d.Register(EvAddReaction, handleAddReaction)
	d.Register(EvEditMessage, handleEditMessage)
	d.Register(EvDeleteMessage, handleDeleteMessage)
	d.Register(EvUpdateStatus, handleUpdateStatus)
}

func handlerCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), handlerTimeout)
}

// handleJoinChannels subscribes the connection to every channel the
// user is a member of and announces the user as online to everyone
// else. The joining connection itself is caught up: it receives the
// current online roster and any in-flight typing indicators, so a late
// joiner converges without waiting for the next transition.
func handleJoinChannels(s *Server, c *Client, _ *Frame) error {
	ctx, cancel := handlerCtx()
	defer cancel()

	channels, err := s.Channels.Store.FindActiveByMember(ctx, c.UserID)
	if err != nil {
		return errs.WrapStore(err, "find member channels")
	}
	for _, ch := range channels {
		s.Registry.Subscribe(c, ch.ID)
		s.sendTypists(ctx, c, ch.ID)
	}

	summary := usermodel.Summary{ID: c.UserID, Username: c.Username, Status: usermodel.StatusOnline}
	if u, err := s.Users.Get(ctx, c.UserID); err == nil && u != nil {
		summary = u.Summary()
	}
	s.Registry.BroadcastAll(EncodeFrame(EvUserOnline, map[string]any{
		"userId": c.UserID,
		"user":   summary,
	}), c.ConnID)

	s.sendOnlineRoster(ctx, c)
	return nil
}

// handleJoinChannel subscribes to a single channel topic. Membership is
// re-derived here; a bare channel id is not enough to listen in.
func handleJoinChannel(s *Server, c *Client, f *Frame) error {
	p, err := decode.Payload[channelPayload](f.Data)
	if err != nil || p.ChannelID == "" {
		return errs.Validation("channelId is required")
	}
	ctx, cancel := handlerCtx()
	defer cancel()
	if _, err := s.Guard.CanAccess(ctx, c.UserID, p.ChannelID); err != nil {
		return err
	}
	s.Registry.Subscribe(c, p.ChannelID)
	s.sendTypists(ctx, c, p.ChannelID)
	return nil
}

func handleLeaveChannel(s *Server, c *Client, f *Frame) error {
	p, err := decode.Payload[channelPayload](f.Data)
	if err != nil || p.ChannelID == "" {
		return errs.Validation("channelId is required")
	}
	s.Registry.Unsubscribe(c, p.ChannelID)
	s.Typing.Stop(p.ChannelID, c.UserID)
	return nil
}

func handleSendMessage(s *Server, c *Client, f *Frame) error {
	p, err := decode.Payload[sendMessagePayload](f.Data)
	if err != nil {
		return errs.Validation("malformed send-message payload")
	}
	ctx, cancel := handlerCtx()
	defer cancel()

	msg, err := s.Messages.Create(ctx, c.UserID, chatservice.CreateInput{
		Channel:     p.ChannelID,
		Kind:        p.Type,
		Content:     p.Content,
		ReplyTo:     p.ReplyTo,
		Attachments: p.Attachments,
	})
	if err != nil {
		return err
	}

	// The sender gets the canonical rendering too.
	s.Registry.BroadcastChannel(p.ChannelID, EncodeFrame(EvNewMessage, msg), "")
	return nil
}

// Typing relays carry no persistence; membership is still checked so a
// non-member cannot inject indicators into a channel.
func handleTypingStart(s *Server, c *Client, f *Frame) error {
	p, err := decode.Payload[channelPayload](f.Data)
	if err != nil || p.ChannelID == "" {
		return errs.Validation("channelId is required")
	}
	ctx, cancel := handlerCtx()
	defer cancel()
	if _, err := s.Guard.CanAccess(ctx, c.UserID, p.ChannelID); err != nil {
		return err
	}
	s.Typing.Start(p.ChannelID, c.UserID)
	s.Registry.BroadcastChannel(p.ChannelID, EncodeFrame(EvUserTyping, map[string]any{
		"userId":    c.UserID,
		"username":  c.Username,
		"channelId": p.ChannelID,
	}), c.ConnID)
	return nil
}

func handleTypingStop(s *Server, c *Client, f *Frame) error {
	p, err := decode.Payload[channelPayload](f.Data)
	if err != nil || p.ChannelID == "" {
		return errs.Validation("channelId is required")
	}
	s.Typing.Stop(p.ChannelID, c.UserID)
	s.Registry.BroadcastChannel(p.ChannelID, EncodeFrame(EvUserStoppedTyping, map[string]any{
		"userId":    c.UserID,
		"channelId": p.ChannelID,
	}), c.ConnID)
	return nil
}

func handleAddReaction(s *Server, c *Client, f *Frame) error {
	p, err := decode.Payload[reactionPayload](f.Data)
	if err != nil || p.MessageID == "" {
		return errs.Validation("messageId is required")
	}
	ctx, cancel := handlerCtx()
	defer cancel()

	msg, _, err := s.Messages.ToggleReaction(ctx, c.UserID, p.MessageID, p.Emoji)
	if err != nil {
		return err
	}
	s.Registry.BroadcastChannel(msg.Channel, EncodeFrame(EvMessageUpdated, msg), "")
	return nil
}

func handleEditMessage(s *Server, c *Client, f *Frame) error {
	p, err := decode.Payload[editMessagePayload](f.Data)
	if err != nil || p.MessageID == "" {
		return errs.Validation("messageId is required")
	}
	ctx, cancel := handlerCtx()
	defer cancel()

	msg, err := s.Messages.Edit(ctx, c.UserID, p.MessageID, p.Content)
	if err != nil {
		return err
	}
	s.Registry.BroadcastChannel(msg.Channel, EncodeFrame(EvMessageUpdated, msg), "")
	return nil
}

func handleDeleteMessage(s *Server, c *Client, f *Frame) error {
	p, err := decode.Payload[deleteMessagePayload](f.Data)
	if err != nil || p.MessageID == "" {
		return errs.Validation("messageId is required")
	}
	ctx, cancel := handlerCtx()
	defer cancel()

	m, err := s.Messages.SoftDelete(ctx, c.UserID, p.MessageID)
	if err != nil {
		return err
	}
	s.Registry.BroadcastChannel(m.Channel, EncodeFrame(EvMessageDeleted, map[string]any{
		"messageId": m.ID,
		"channelId": m.Channel,
	}), "")
	return nil
}

// handleUpdateStatus persists the new status and tells every channel
// the user belongs to.
func handleUpdateStatus(s *Server, c *Client, f *Frame) error {
	p, err := decode.Payload[statusPayload](f.Data)
	if err != nil || !usermodel.ValidStatus(p.Status) {
		return errs.Validation("invalid status")
	}
	ctx, cancel := handlerCtx()
	defer cancel()

	if err := s.Users.SetStatus(ctx, c.UserID, p.Status, time.Now().UnixMilli()); err != nil {
		return errs.WrapStore(err, "set status")
	}
	s.Presence.SetStatus(c.UserID, p.Status)

	channels, err := s.Channels.Store.FindActiveByMember(ctx, c.UserID)
	if err != nil {
		return errs.WrapStore(err, "find member channels")
	}
	frame := EncodeFrame(EvUserStatusChanged, map[string]any{
		"userId": c.UserID,
		"status": p.Status,
	})
	for _, ch := range channels {
		s.Registry.BroadcastChannel(ch.ID, frame, "")
	}

	// The user's own devices converge too, even ones that never sent
	// join-channels and so sit outside every topic.
	for _, own := range s.Registry.ListByUser(c.UserID) {
		reached := false
		for _, ch := range channels {
			if s.Registry.Subscribed(own.ConnID, ch.ID) {
				reached = true
				break
			}
		}
		if !reached {
			own.enqueue(frame)
		}
	}
	return nil
}

// sendOnlineRoster replays the current presence map to one connection
// as individual user-online frames, the shape a client already handles
// for live transitions.
func (s *Server) sendOnlineRoster(ctx context.Context, c *Client) {
	var others []string
	for _, id := range s.Presence.OnlineUsers() {
		if id != c.UserID {
			others = append(others, id)
		}
	}
	if len(others) == 0 {
		return
	}
	users, err := s.Users.GetMany(ctx, others)
	if err != nil {
		logger.Warnf("resolve online roster user=%s: %v", c.UserID, err)
		return
	}
	for _, id := range others {
		entry := s.Presence.Get(id)
		if entry == nil {
			continue
		}
		summary := usermodel.Summary{ID: id}
		if u, ok := users[id]; ok {
			summary = u.Summary()
		}
		// The live entry wins over whatever the store last saw.
		summary.Status = entry.Status
		summary.LastSeen = entry.LastSeen
		c.enqueue(EncodeFrame(EvUserOnline, map[string]any{
			"userId": id,
			"user":   summary,
		}))
	}
}

// sendTypists replays in-flight typing indicators of a channel to a
// fresh subscriber.
func (s *Server) sendTypists(ctx context.Context, c *Client, channelID string) {
	var others []string
	for _, id := range s.Typing.In(channelID) {
		if id != c.UserID {
			others = append(others, id)
		}
	}
	if len(others) == 0 {
		return
	}
	users, err := s.Users.GetMany(ctx, others)
	if err != nil {
		logger.Warnf("resolve typists channel=%s: %v", channelID, err)
		return
	}
	for _, id := range others {
		username := id
		if u, ok := users[id]; ok {
			username = u.Username
		}
		c.enqueue(EncodeFrame(EvUserTyping, map[string]any{
			"userId":    id,
			"username":  username,
			"channelId": channelID,
		}))
	}
}
