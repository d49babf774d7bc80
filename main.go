package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/paintlink/paintlink-api/config"
	"github.com/paintlink/paintlink-api/controllers"
	"github.com/paintlink/paintlink-api/middleware"
	"github.com/paintlink/paintlink-api/models"
)

func main() {
	// Basic logging
	log.Println("Starting PaintLink API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Lead{},
		&models.Bid{},
		&models.Conversation{},
		&models.Message{},
		&models.LeadStatusHistory{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize Gin router
	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the router with all routes and middleware
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	auth := middleware.EnsureValidToken(cfg)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// User profile endpoints
		v1.POST("/users", auth, controllers.CreateUser)
		v1.GET("/users/me", auth, controllers.GetMyProfile)
		v1.PUT("/users/me", auth, controllers.UpdateMyProfile)

		// Lead endpoints
		v1.POST("/leads", auth, controllers.CreateLead)
		v1.GET("/leads", auth, controllers.ListLeads)
		v1.GET("/leads/:id", auth, controllers.GetLead)
		v1.DELETE("/leads/:id", auth, controllers.DeleteLead)
		v1.PUT("/leads/:id/status", auth, controllers.SetLeadStatus)
		v1.GET("/leads/:id/history", auth, controllers.GetLeadHistory)

		// Bid endpoints
		v1.POST("/leads/:id/bids", auth, controllers.CreateBid)
		v1.GET("/leads/:id/bids", auth, controllers.ListBids)
		v1.GET("/leads/:id/bids/stats", auth, controllers.GetBidStats)
		v1.PATCH("/bids/:id", auth, controllers.UpdateBid)
		v1.DELETE("/bids/:id", auth, controllers.DeleteBid)
		v1.POST("/bids/:id/accept", auth, controllers.AcceptBid)
		v1.POST("/bids/:id/reject", auth, controllers.RejectBid)
		v1.POST("/bids/:id/withdraw", auth, controllers.WithdrawBid)

		// Conversation endpoints
		v1.POST("/leads/:id/conversation", auth, controllers.GetOrCreateConversation)
		v1.GET("/conversations/:id", auth, controllers.GetConversation)
		v1.GET("/conversations/:id/messages", auth, controllers.ListMessages)
		v1.POST("/conversations/:id/messages", auth, controllers.SendMessage)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "PaintLink API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
