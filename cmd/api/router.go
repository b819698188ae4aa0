package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	notificationHandler "library-gateway/internal/domains/notification/handler"
	"library-gateway/internal/shared/middleware"
	"library-gateway/internal/shared/response"
	"library-gateway/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.AllowedOrigins),
	)

	// Browsers open the notification socket on the server root.
	router.GET("/", rootHandler(c))
	router.GET("/ws", c.WebSocketHandler.Connect)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	router.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "Route not found")
	})

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.POST("/login", c.AuthHandler.Login)
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	user := v1.Group("/user")
	{
		user.GET("/books/search", c.BookHandler.SearchBooks)
		user.POST("/book-request", c.RequestHandler.CreateRequest)

		user.GET("/:user_id/book-requests", c.RequestHandler.ListUserRequests)
		user.GET("/:user_id/transactions", c.TransactionHandler.ListUserTransactions)
		user.GET("/:user_id/stats", c.UserHandler.GetStats)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	{
		// Book requests
		admin.GET("/book-requests", c.RequestHandler.ListPendingRequests)
		admin.POST("/book-requests/:request_id/approve", c.RequestHandler.ApproveRequest)
		admin.POST("/book-requests/:request_id/reject", c.RequestHandler.RejectRequest)

		// Transactions
		admin.GET("/transactions", c.TransactionHandler.ListTransactions)
		admin.POST("/issue-book", c.TransactionHandler.IssueBook)
		admin.POST("/return-book", c.TransactionHandler.ReturnBook)
		admin.GET("/stats", c.TransactionHandler.GetStats)

		// Books
		admin.GET("/books", c.BookHandler.ListBooks)
		admin.POST("/books", c.BookHandler.CreateBook)
		admin.PUT("/books/:book_id", c.BookHandler.UpdateBook)
		admin.DELETE("/books/:book_id", c.BookHandler.DeleteBook)

		// Users
		admin.GET("/users", c.UserHandler.ListUsers)
		admin.POST("/users", c.UserHandler.CreateUser)
		admin.PUT("/users/:user_id", c.UserHandler.UpdateUser)
	}
}

// ========================================
// INFO & HEALTH
// ========================================

func rootHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if notificationHandler.IsUpgrade(ctx) {
			c.WebSocketHandler.Connect(ctx)
			return
		}

		ctx.JSON(http.StatusOK, gin.H{
			"message":      c.Config.App.Name + " is running",
			"version":      c.Config.App.Version,
			"grpc_backend": c.Config.BackendAddress(),
		})
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services": gin.H{
				"backend": c.BackendState(),
				"redis":   c.RedisState(ctx.Request.Context()),
			},
			"connections": c.Hub.Count(),
		})
	}
}
