package routes

import (
	"github.com/mazza92/creator-dashboard-backend-sub000/handlers/notifications"
	"github.com/mazza92/creator-dashboard-backend-sub000/middleware"

	"github.com/gin-gonic/gin"
)

func NotificationsRoutes(r *gin.Engine) {
	group := r.Group("/notifications")
	group.Use(middleware.JWTAuth())
	{
		group.GET("", notifications.ListNotifications)
		group.PUT("/:id/read", notifications.MarkNotificationRead)
	}
}
