package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/matcheco/matcheco/backend/portal-service/internal/api"
	"github.com/matcheco/matcheco/backend/portal-service/internal/db"
	"github.com/matcheco/matcheco/backend/portal-service/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.SetOutput(os.Stdout)
	log.Println("Portal service starting")

	// Initialize database connection (non-fatal; allow process to start for /live)
	database, err := db.NewDatabase()
	if err != nil {
		log.Printf("[WARN] Database initialization failed at startup: %v", err)
	}
	if database != nil {
		defer database.Close()
		if err := database.InitSchema(context.Background()); err != nil {
			log.Printf("[WARN] Failed to initialize schema: %v", err)
		}
	}
	if database == nil {
		log.Println("[WARN] Database unavailable at startup; health will report accordingly")
	}

	handler := api.NewHandler(database)
	router := setupRouter(handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting portal service on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down portal service...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[WARN] Forced shutdown: %v", err)
	}
}

func setupRouter(handler *api.Handler) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())
	router.Use(logging.RequestID())
	router.Use(cors.New(corsConfig()))

	router.GET("/", handler.Root)
	router.GET("/health", handler.Health)
	router.GET("/live", handler.Live)

	// Public matching endpoints: the portal form posts records directly.
	router.POST("/match", handler.Match)
	router.POST("/api/match", handler.Match)

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
		auth.GET("/me", api.AuthMiddleware(), handler.Me)
	}

	protected := router.Group("/api")
	protected.Use(api.AuthMiddleware())
	{
		protected.POST("/factories", handler.SaveSnapshot)
		protected.POST("/factories/full", handler.SaveFactoryFull)
		protected.DELETE("/factories/:id", handler.DeleteFactory)

		protected.GET("/waste-materials", handler.ListWasteMaterials)
		protected.GET("/waste-materials/export", handler.ExportWasteMaterials)

		protected.GET("/match/all", handler.MatchAll)
		protected.GET("/match/export", handler.ExportMatches)

		protected.POST("/cycles", handler.Cycles)

		protected.POST("/demo/cyclic-data", handler.DemoCyclicData)
		protected.POST("/demo/cycles/db", handler.DemoCyclesFromDB)
		protected.POST("/demo/cycles/graph", handler.DemoCyclesOnGraph)

		protected.POST("/messages/start", handler.StartMessage)
		protected.GET("/messages/threads", handler.ListThreads)
		protected.GET("/messages/:id", handler.GetConversation)
		protected.POST("/messages/:id", handler.SendInConversation)
	}

	return router
}

func corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}
	if origins := os.Getenv("FRONTEND_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, o)
			}
		}
	} else {
		cfg.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	return cfg
}
