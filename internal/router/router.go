package router

import (
	"taskpilot/internal/handler"
	"taskpilot/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(svcCtx *service.ServiceContext) *gin.Engine {
	r := gin.Default()

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	handler.RegisterValidation()

	taskHandler := handler.NewTaskHandler(svcCtx.TaskService)
	chatHandler := handler.NewChatHandler(svcCtx.ChatService)

	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)

		// 任务相关
		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.GET("/:id/activities", taskHandler.ListActivities)
			tasks.POST("/:id/activities", taskHandler.CreateActivity)
		}

		// 对话相关
		chat := api.Group("/chat")
		{
			chat.GET("/messages", chatHandler.ListMessages)
			chat.POST("", chatHandler.SendMessage)
		}
	}

	return r
}
