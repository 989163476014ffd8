package main

import (
	"context"
	"os"
	"time"

	"Connectify/data/database/mgo/mongoutil"
	"Connectify/global"
	"Connectify/logger"
	"Connectify/middleware"
	chathandler "Connectify/module/chat/handler"
	chatservice "Connectify/module/chat/service"
	chatstore "Connectify/module/chat/store"
	userhandler "Connectify/module/user/handler"
	userservice "Connectify/module/user/service"
	userstore "Connectify/module/user/store"
	gateway "Connectify/service/chat"
	"Connectify/service/storage"
	storageredis "Connectify/service/storage/redis"
	"Connectify/tools/ids"
	"Connectify/tools/security"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := global.Load("")
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}
	ids.SetNodeID(cfg.Gateway.NodeID)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	mongoClient, err := mongoutil.NewMongoDB(ctx, &mongoutil.Config{
		Uri:         cfg.Mongo.Uri,
		Address:     cfg.Mongo.Address,
		Database:    cfg.Mongo.Database,
		Username:    cfg.Mongo.Username,
		Password:    cfg.Mongo.Password,
		AuthSource:  cfg.Mongo.AuthSource,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
		MaxRetry:    cfg.Mongo.MaxRetry,
	})
	cancel()
	if err != nil {
		logger.Errorf("connect mongo: %v", err)
		os.Exit(1)
	}
	db := mongoClient.GetDB()

	if err := storageredis.InitRedis(storageredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}); err != nil {
		logger.Errorf("connect redis: %v", err)
		os.Exit(1)
	}
	defer func() { _ = storageredis.CloseRedis() }()

	// ===== stores =====
	users := userstore.NewMongoUserStore(db)
	channels := chatstore.NewMongoChannelStore(db)
	messages := chatstore.NewMongoMessageStore(db)

	// ===== services =====
	jwtOpts := security.Options{Secret: []byte(cfg.JWT.Secret), Alg: cfg.JWT.Alg, TTL: cfg.JWT.TTL}
	auth := userservice.NewAuth(users, userservice.NewRedisSessionStore(), jwtOpts)

	guard := chatservice.NewGuard(channels)
	channelSvc := chatservice.NewChannels(channels, messages, users)
	messageSvc := chatservice.NewMessages(messages, guard, channelSvc, users)
	messageSvc.ReactionRequiresMembership = cfg.Chat.ReactionRequiresMembership

	presence := storage.NewPresence()
	typing := storage.NewTyping()

	gw := gateway.NewServer(auth, users, guard, channelSvc, messageSvc, presence, typing,
		gateway.Options{
			SendQueueSize: cfg.Gateway.SendQueueSize,
			ReadLimit:     cfg.Gateway.ReadLimit,
		})

	// ===== handlers =====
	authHandler := userhandler.NewAuth(auth)
	chatHandler := chathandler.NewChat(channelSvc, messageSvc)
	chatHandler.Broadcast = gw.BroadcastChannel

	// ===== routes =====
	r := gin.Default()
	rt := &middleware.Router{Auth: auth}

	api := r.Group("/api")
	rt.POST(api, "/auth/register", authHandler.Register, middleware.RouteOpt{})
	rt.POST(api, "/auth/login", authHandler.Login, middleware.RouteOpt{})
	rt.POST(api, "/auth/logout", authHandler.Logout, middleware.RouteOpt{IsAuth: true})

	rt.GET(api, "/chat/channels", chatHandler.GetChannels, middleware.RouteOpt{IsAuth: true})
	rt.POST(api, "/chat/channels", chatHandler.CreateChannel, middleware.RouteOpt{IsAuth: true})
	rt.GET(api, "/chat/channels/:channelId/messages", chatHandler.GetChannelMessages, middleware.RouteOpt{IsAuth: true})
	rt.POST(api, "/chat/channels/:channelId/messages", chatHandler.SendMessage, middleware.RouteOpt{IsAuth: true})
	rt.PUT(api, "/chat/messages/:messageId", chatHandler.EditMessage, middleware.RouteOpt{IsAuth: true})
	rt.DELETE(api, "/chat/messages/:messageId", chatHandler.DeleteMessage, middleware.RouteOpt{IsAuth: true})
	rt.POST(api, "/chat/messages/:messageId/reactions", chatHandler.AddReaction, middleware.RouteOpt{IsAuth: true})
	rt.GET(api, "/chat/search", chatHandler.SearchMessages, middleware.RouteOpt{IsAuth: true})

	r.GET("/ws", gw.HandleWS)

	logger.Infof("listening on %s", cfg.HTTP.Addr)
	if err := r.Run(cfg.HTTP.Addr); err != nil {
		logger.Errorf("http server: %v", err)
		os.Exit(1)
	}
}
