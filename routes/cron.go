package routes

import (
	"net/http"
	"os"

	"github.com/mazza92/creator-dashboard-backend-sub000/handlers/subscriptions"

	"github.com/gin-gonic/gin"
)

// CronRoutes are invoked by the external scheduler, authenticated by a shared
// secret header instead of a user token.
func CronRoutes(r *gin.Engine) {
	group := r.Group("/cron")
	group.Use(cronSecretAuth())
	{
		group.POST("/renew-subscriptions", subscriptions.RenewDue)
	}
}

func cronSecretAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := os.Getenv("CRON_SECRET")
		if secret == "" || c.GetHeader("X-Cron-Secret") != secret {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid cron secret"})
			c.Abort()
			return
		}
		c.Next()
	}
}
