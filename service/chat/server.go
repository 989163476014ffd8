package chat

import (
	"context"
	"net/http"
	"time"

	"Connectify/logger"
	midsec "Connectify/middleware/security"
	chatservice "Connectify/module/chat/service"
	usermodel "Connectify/module/user/model"
	userservice "Connectify/module/user/service"
	userstore "Connectify/module/user/store"
	"Connectify/service/storage"
	"Connectify/tools/ids"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Options tunes per-connection buffers.
type Options struct {
	SendQueueSize int
	ReadLimit     int64
}

func DefaultOptions() Options {
	return Options{SendQueueSize: 256, ReadLimit: 1 << 20}
}

// Server is the realtime gateway. It owns the handshake, the per
// connection pumps and the topic registry; every mutation it performs
// goes through the same services the REST facade calls.
type Server struct {
	Auth     *userservice.Auth
	Users    userstore.UserStore
	Guard    *chatservice.Guard
	Channels *chatservice.Channels
	Messages *chatservice.Messages
	Presence *storage.Presence
	Typing   *storage.Typing
	Registry *Registry

	disp *Dispatcher
	opts Options
}

func NewServer(auth *userservice.Auth, users userstore.UserStore,
	guard *chatservice.Guard, channels *chatservice.Channels,
	messages *chatservice.Messages, presence *storage.Presence,
	typing *storage.Typing, opts Options) *Server {

	if opts.SendQueueSize <= 0 {
		opts.SendQueueSize = DefaultOptions().SendQueueSize
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = DefaultOptions().ReadLimit
	}
	s := &Server{
		Auth:     auth,
		Users:    users,
		Guard:    guard,
		Channels: channels,
		Messages: messages,
		Presence: presence,
		Typing:   typing,
		Registry: NewRegistry(),
		disp:     NewDispatcher(),
		opts:     opts,
	}
	registerHandlers(s.disp)
	return s
}

// BroadcastChannel publishes an event to a channel topic. The REST
// facade calls this after its mutations so socket subscribers see the
// same canonical result either way.
func (s *Server) BroadcastChannel(channelID, event string, data any) {
	s.Registry.BroadcastChannel(channelID, EncodeFrame(event, data), "")
}

// HandleWS upgrades GET /ws?token= and runs the read pump until the
// peer goes away. The token is checked before the upgrade; an
// unauthenticated request never becomes a socket.
func (s *Server) HandleWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = midsec.BearerToken(c.GetHeader("Authorization"))
	}
	userID, err := s.Auth.VerifyToken(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false, "message": "invalid or expired token",
		})
		return
	}
	u, err := s.Users.Get(c.Request.Context(), userID)
	if err != nil || u == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false, "message": "invalid or expired token",
		})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("upgrade websocket error: %v", err)
		return
	}
	ws.SetReadLimit(s.opts.ReadLimit)

	cl := NewClient(ids.GenerateString(), userID, u.Username, ws, s.opts.SendQueueSize)
	s.Registry.Add(cl)
	s.Presence.Connect(cl.UserID, cl.ConnID)
	s.setUserStatus(cl.UserID, usermodel.StatusOnline)
	logger.Infof("connected user=%s conn=%s", cl.Username, cl.ConnID)

	go cl.writePump()
	s.readPump(cl)
	s.teardown(cl)
}

func (s *Server) readPump(cl *Client) {
	for {
		mt, raw, err := cl.WS.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("peer closed user=%s conn=%s", cl.UserID, cl.ConnID)
			} else {
				logger.Infof("read err user=%s conn=%s err=%v", cl.UserID, cl.ConnID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		f, err := ParseFrame(raw)
		if err != nil {
			logger.Infof("bad frame user=%s conn=%s err=%v", cl.UserID, cl.ConnID, err)
			cl.enqueue(EncodeFrame(EvError, map[string]any{"message": "malformed frame"}))
			continue
		}

		// A handler error answers the offending client and keeps the
		// session alive.
		if err := s.disp.Dispatch(s, cl, f); err != nil {
			cl.enqueue(errorFrame(err))
		}
	}
}

// teardown runs once the read pump exits: typing notices are retracted,
// the registry entry dropped, and, when this was the user's live
// presence connection, the user goes offline for everyone else.
func (s *Server) teardown(cl *Client) {
	for _, channelID := range s.Typing.StopAll(cl.UserID) {
		s.Registry.BroadcastChannel(channelID, EncodeFrame(EvUserStoppedTyping, map[string]any{
			"userId":    cl.UserID,
			"channelId": channelID,
		}), cl.ConnID)
	}

	s.Registry.Remove(cl)

	if s.Presence.Disconnect(cl.UserID, cl.ConnID) {
		s.setUserStatus(cl.UserID, usermodel.StatusOffline)
		s.Registry.BroadcastAll(EncodeFrame(EvUserOffline, map[string]any{
			"userId": cl.UserID,
		}), cl.ConnID)
	}

	cl.Close()
	logger.Infof("disconnected user=%s conn=%s", cl.Username, cl.ConnID)
}

// setUserStatus persists the status transition best-effort; presence is
// authoritative for the live view either way.
func (s *Server) setUserStatus(userID, status string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Users.SetStatus(ctx, userID, status, time.Now().UnixMilli()); err != nil {
		logger.Warnf("set status user=%s status=%s: %v", userID, status, err)
	}
}
