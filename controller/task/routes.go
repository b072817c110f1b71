package task

import (
	"github.com/gin-gonic/gin"

	"tasky/middleware"
	"tasky/services"
)

// TaskController registers the task routes under /api/task. Every route needs a
// valid access token; mutations other than activity posts need an admin token.
func TaskController(router *gin.Engine, svc *services.TaskService, secret []byte) {
	routes := router.Group("/api/task", middleware.AccessTokenMiddleware(secret))
	admin := middleware.AdminMiddleware()
	{
		routes.POST("/create", admin, func(c *gin.Context) {
			CreateTask(c, svc)
		})
		routes.POST("/duplicate/:id", admin, func(c *gin.Context) {
			DuplicateTask(c, svc)
		})
		routes.POST("/activity/:id", func(c *gin.Context) {
			PostActivity(c, svc)
		})
		routes.GET("/dashboard", func(c *gin.Context) {
			DashboardStatistics(c, svc)
		})
		routes.GET("", func(c *gin.Context) {
			ListTasks(c, svc)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetTask(c, svc)
		})
		routes.PUT("/create-subtask/:id", admin, func(c *gin.Context) {
			CreateSubTask(c, svc)
		})
		routes.PUT("/update/:id", admin, func(c *gin.Context) {
			UpdateTask(c, svc)
		})
		routes.PUT("/:id", admin, func(c *gin.Context) {
			TrashTask(c, svc)
		})
		routes.DELETE("/delete-restore/:id", admin, func(c *gin.Context) {
			DeleteRestoreTask(c, svc)
		})
	}
}
