package cmd

import (
	"context"
	"log"
	"time"

	"github.com/baotran/ragchat-be/config"
	"github.com/baotran/ragchat-be/database"
	"github.com/baotran/ragchat-be/handler"
	"github.com/baotran/ragchat-be/middleware"
	"github.com/baotran/ragchat-be/repository"
	"github.com/baotran/ragchat-be/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the chat API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		return runServer(cfg)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runServer(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := database.NewMongoClient(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	db := mongoClient.Database(cfg.MongoDatabase)

	manager, err := newIndexManager(cfg.VectorIndex, cfg.Embedding)
	if err != nil {
		return err
	}
	// One embedder serves both the query engine and ingestion, so the
	// index model id always matches what queries are embedded with.
	embedder, err := newEmbedder(context.Background(), cfg.Embedding)
	if err != nil {
		return err
	}
	ai, err := newAIService(cfg.Generation)
	if err != nil {
		return err
	}
	ingestService, err := newIngestService(cfg, embedder, manager)
	if err != nil {
		return err
	}

	permissions := service.NewPermissionService()
	rag := service.NewRAGService(manager, embedder, ai, permissions, service.RAGConfig{
		TopK:            cfg.Query.TopK,
		ContextSize:     cfg.Query.ContextSize,
		MaxContextChars: cfg.Query.MaxContextChars,
		MMRLambda:       cfg.Query.MMRLambda,
	})

	userRepo := repository.NewUserRepo(db.Collection("users"))
	userService := service.NewUserService(userRepo)
	chatStore := database.NewMongoChatStore(db)
	wsService := service.NewWebSocketService(rag)

	loginHandler := handler.NewLoginHandler(userService)
	chatHandler := handler.NewChatHandler(rag, chatStore)
	searchHandler := handler.NewSearchHandler(rag)
	ingestHandler := handler.NewIngestHandler(ingestService, cfg.Ingest.CorpusDir)
	userHandler := handler.NewUserManageHandler(userService)
	wsHandler := handler.NewWebSocketHandler(wsService)

	r := gin.Default()
	r.Use(handler.CORSMiddleware())

	api := r.Group("/api/v1")
	{
		api.POST("/login", loginHandler.Login)

		authed := api.Group("", middleware.AuthMiddleware())
		{
			authed.POST("/chat", chatHandler.Chat)
			authed.GET("/chat/history", chatHandler.ListChats)
			authed.GET("/chat/history/:id", chatHandler.GetMessages)
			authed.DELETE("/chat/history/:id", chatHandler.DeleteChat)
			authed.POST("/documents/search", searchHandler.Search)
			authed.GET("/ws/chat", wsHandler.Chat)
		}
	}

	admin := r.Group("/admin/api/v1", middleware.AdminAuthMiddleware())
	{
		admin.POST("/ingest", ingestHandler.Ingest)
		admin.POST("/users", userHandler.CreateUser)
		admin.POST("/users/batch", userHandler.BatchCreateUser)
		admin.GET("/users", userHandler.PaginateUser)
		admin.GET("/users/:id", userHandler.GetUser)
		admin.PUT("/users", userHandler.UpdateUser)
		admin.DELETE("/users/:id", userHandler.DeleteUser)
	}

	log.Printf("listening on :%s", cfg.Port)
	return r.Run(":" + cfg.Port)
}
