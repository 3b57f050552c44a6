package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"datachat-backend/internal/agent"
	"datachat-backend/internal/session"
)

type Config struct {
	Port      string
	DBPath    string
	APIKey    string
	BaseURL   string
	Model     string
	UploadDir string
}

type App struct {
	Config   *Config
	Sessions *session.Manager
	Agents   *agent.Cache
	Router   *gin.Engine
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:      getEnv("PORT", "8080"),
		DBPath:    getEnv("DATACHAT_DB_PATH", "university.db"),
		APIKey:    getEnv("OPENAI_API_KEY", ""),
		BaseURL:   getEnv("OPENAI_BASE_URL", agent.DefaultBaseURL),
		Model:     getEnv("OPENAI_MODEL", agent.DefaultModel),
		UploadDir: getEnv("UPLOAD_DIR", os.TempDir()),
	}

	app := &App{
		Config:   config,
		Sessions: session.NewManager(),
		Agents:   agent.NewCache(),
	}

	app.InitRouter()

	addr := ":" + config.Port
	log.Printf("HTTP server starting on port %s", config.Port)
	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("Failed to start HTTP server: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (app *App) InitRouter() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	app.Router = gin.New()
	app.Router.Use(gin.Logger())
	app.Router.Use(gin.Recovery())

	// CORS configuration
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Session-ID", "X-API-Key"}
	app.Router.Use(cors.New(config))

	// Health check
	app.Router.GET("/api/health", app.healthHandler)

	api := app.Router.Group("/api")
	{
		api.POST("/connect", app.connectHandler)
		api.POST("/upload", app.uploadHandler)
		api.GET("/schema", app.schemaHandler)
		api.GET("/insights", app.insightsHandler)
		api.GET("/overview", app.overviewHandler)
		api.GET("/suggestions", app.suggestionsHandler)
		api.GET("/messages", app.messagesHandler)
		api.POST("/chat", app.chatHandler)
		api.POST("/clear", app.clearHandler)
		api.GET("/analytics", app.analyticsHandler)
		api.GET("/export/results.csv", app.exportResultsHandler)
		api.GET("/export/history.csv", app.exportHistoryHandler)
	}

	// WebSocket chat transport
	app.Router.GET("/ws/chat", app.wsChatHandler)
}
