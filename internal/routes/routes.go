package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskdesk/internal/authz"
	"taskdesk/internal/handlers"
	"taskdesk/internal/middleware"
)

type AuthOptions struct {
	Secret []byte
	Leeway time.Duration
}

func SetupRoutes(
	r *gin.Engine,
	auth AuthOptions,
	taskHandler *handlers.TaskHandler,
	commentHandler *handlers.CommentHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ---- protected
	r.Use(middleware.AuthMiddleware(auth.Secret, auth.Leeway))

	tasks := r.Group("/tasks", middleware.RequireRoles(authz.RoleUser, authz.RoleAdmin))
	{
		tasks.POST("", taskHandler.Create)
		tasks.GET("/employees/tasks", taskHandler.List)
		tasks.PUT("/assign/:id", taskHandler.Assign)
		tasks.PUT("/reorder", taskHandler.Reorder)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.DELETE("/:id", taskHandler.Delete)
		tasks.PATCH("/:id/status", taskHandler.ChangeStatus)
		tasks.PUT("/:id/status", taskHandler.ChangeStatus)
		tasks.POST("/:id/comments", commentHandler.Create)
		tasks.GET("/:id/comments", commentHandler.List)
	}

	return r
}
