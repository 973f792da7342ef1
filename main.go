package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"social-service/internal/config"
	"social-service/internal/db"
	"social-service/internal/handlers"
	"social-service/internal/middleware"
	"social-service/internal/observability"
	"social-service/internal/rabbitmq"
	"social-service/internal/repositories"
	"social-service/internal/security"
	"social-service/internal/telemetry"
	"social-service/internal/ws"
)

const serviceName = "social-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := telemetry.InitTracing(context.Background(), serviceName, cfg.OTLPAddr)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("publisher mode=%s reason=%q", rabbitmq.PublisherMode(publisher), rabbitmq.PublisherNoopReason(publisher))

	if cfg.AMQPURL != "" {
		if eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err != nil {
			log.Printf("event publisher disabled: %v", err)
		} else {
			observability.SetPublisher(eventPublisher)
			defer eventPublisher.Close()
		}
	}

	audit := telemetry.NewAuditEmitter(publisher, "audit.social", serviceName, cfg.Environment)

	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repositories.NewUserRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	postRepo := repositories.NewPostRepo(database)
	storyRepo := repositories.NewStoryRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)

	registry := ws.NewRegistry()
	dispatcher := ws.NewDispatcher(registry)
	presence := ws.NewPresenceHandler(registry, dispatcher, tokens)

	authHandler := handlers.NewAuthHandler(userRepo, tokens, audit)
	chatHandler := handlers.NewChatHandler(userRepo, messageRepo, dispatcher, audit)
	profileHandler := handlers.NewProfileHandler(userRepo, postRepo, notificationRepo, audit)
	postHandler := handlers.NewPostHandler(userRepo, postRepo, notificationRepo, audit)
	storyHandler := handlers.NewStoryHandler(userRepo, storyRepo)
	notificationHandler := handlers.NewNotificationHandler(userRepo, notificationRepo)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(otelgin.Middleware(serviceName))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)

	authRequired := middleware.AuthMiddleware(tokens)
	api := router.Group("/", authRequired)
	{
		api.GET("/auth/verify", authHandler.Verify)

		api.GET("/chats", chatHandler.ListConversations)
		api.GET("/chats/:user_id/messages", chatHandler.GetConversation)
		api.POST("/chats/:user_id/messages", chatHandler.SendMessage)
		api.POST("/chats/:user_id/read", chatHandler.MarkConversationRead)
		api.DELETE("/chats/messages/:message_id", chatHandler.DeleteMessage)

		api.GET("/users/search", profileHandler.SearchUsers)
		api.GET("/users/:user_id", profileHandler.GetProfile)
		api.PUT("/users/me", profileHandler.UpdateProfile)
		api.POST("/users/:user_id/follow", profileHandler.FollowToggle)
		api.GET("/users/:user_id/followers", profileHandler.Followers)
		api.GET("/users/:user_id/following", profileHandler.Following)
		api.GET("/users/:user_id/posts", postHandler.PostsByUser)

		api.POST("/posts", postHandler.CreatePost)
		api.GET("/posts/feed", postHandler.Feed)
		api.GET("/posts/search", postHandler.SearchPosts)
		api.GET("/posts/:post_id", postHandler.GetPost)
		api.DELETE("/posts/:post_id", postHandler.DeletePost)
		api.POST("/posts/:post_id/like", postHandler.ToggleLike)
		api.GET("/posts/:post_id/comments", postHandler.Comments)
		api.POST("/posts/:post_id/comments", postHandler.AddComment)
		api.POST("/posts/comments/:comment_id/like", postHandler.ToggleCommentLike)

		api.POST("/stories", storyHandler.CreateStory)
		api.GET("/stories/feed", storyHandler.StoryFeed)
		api.POST("/stories/:story_id/view", storyHandler.ViewStory)
		api.DELETE("/stories/:story_id", storyHandler.DeleteStory)

		api.GET("/notifications", notificationHandler.List)
		api.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		api.POST("/notifications/:notification_id/read", notificationHandler.MarkRead)
		api.DELETE("/notifications/:notification_id", notificationHandler.Delete)
	}

	router.GET("/ws", presence.Handle)

	handlers.RegisterDebugRoutes(router, audit, registry, cfg.Debug)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
