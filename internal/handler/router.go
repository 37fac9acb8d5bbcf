package handler

import (
	"net/http"

	"github.com/Baaaki/yamdb/internal/middleware"
	"github.com/Baaaki/yamdb/internal/models"
	"github.com/Baaaki/yamdb/internal/service"
	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer depends on.
type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Catalog  *service.CatalogService
	Titles   *service.TitleService
	Reviews  *service.ReviewService
	Comments *service.CommentService
}

// RegisterRoutes mounts the API under /api/v1. authLimit guards the signup and
// token endpoints; pass nil to leave them unlimited.
//
// Review and comment writes are not gated here: the services check that the
// parent exists before asking who the caller is, so a missing title is a 404
// even for anonymous callers.
func RegisterRoutes(router *gin.Engine, svc Services, authLimit gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Signup and token stay outside Authenticate so a stale bearer header
	// cannot block the only way to get a fresh token.
	authHandler := NewAuthHandler(svc.Auth)
	auth := router.Group("/api/v1/auth")
	if authLimit != nil {
		auth.Use(authLimit)
	}
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/token", authHandler.Token)

	api := router.Group("/api/v1")
	api.Use(middleware.Authenticate(svc.Auth))

	admin := middleware.RequireRole(models.RoleAdmin)

	userHandler := NewUserHandler(svc.Users)
	api.GET("/users/me", middleware.RequireAuth(), userHandler.Me)
	api.PATCH("/users/me", middleware.RequireAuth(), userHandler.UpdateMe)
	api.GET("/users", admin, userHandler.List)
	api.POST("/users", admin, userHandler.Create)
	api.GET("/users/:username", admin, userHandler.Get)
	api.PATCH("/users/:username", admin, userHandler.Update)
	api.DELETE("/users/:username", admin, userHandler.Delete)

	catalogWrites := middleware.RequireRoleForWrites(models.RoleAdmin)

	catalogHandler := NewCatalogHandler(svc.Catalog)
	categories := api.Group("/categories", catalogWrites)
	categories.GET("", catalogHandler.ListCategories)
	categories.POST("", catalogHandler.CreateCategory)
	categories.DELETE("/:slug", catalogHandler.DeleteCategory)
	genres := api.Group("/genres", catalogWrites)
	genres.GET("", catalogHandler.ListGenres)
	genres.POST("", catalogHandler.CreateGenre)
	genres.DELETE("/:slug", catalogHandler.DeleteGenre)

	titleHandler := NewTitleHandler(svc.Titles)
	titles := api.Group("/titles", catalogWrites)
	titles.GET("", titleHandler.List)
	titles.POST("", titleHandler.Create)
	titles.GET("/:title_id", titleHandler.Get)
	titles.PATCH("/:title_id", titleHandler.Update)
	titles.DELETE("/:title_id", titleHandler.Delete)

	reviewHandler := NewReviewHandler(svc.Reviews)
	reviews := api.Group("/titles/:title_id/reviews")
	reviews.GET("", reviewHandler.List)
	reviews.POST("", reviewHandler.Create)
	reviews.GET("/:review_id", reviewHandler.Get)
	reviews.PATCH("/:review_id", reviewHandler.Update)
	reviews.DELETE("/:review_id", reviewHandler.Delete)

	commentHandler := NewCommentHandler(svc.Comments)
	comments := reviews.Group("/:review_id/comments")
	comments.GET("", commentHandler.List)
	comments.POST("", commentHandler.Create)
	comments.GET("/:comment_id", commentHandler.Get)
	comments.PATCH("/:comment_id", commentHandler.Update)
	comments.DELETE("/:comment_id", commentHandler.Delete)
}
