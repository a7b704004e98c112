package notifications

import (
	"net/http"

	"github.com/mazza92/creator-dashboard-backend-sub000/db"
	"github.com/mazza92/creator-dashboard-backend-sub000/models"
	"github.com/mazza92/creator-dashboard-backend-sub000/utils"

	"github.com/gin-gonic/gin"
)

func contextID(c *gin.Context, key string) string {
	value, exists := c.Get(key)
	if !exists {
		return ""
	}
	id, _ := value.(string)
	return id
}

// @Summary List notifications
// @Description List the authenticated user's notifications, newest first
// @Tags notifications
// @Produce json
// @Success 200 {object} utils.Response
// @Security BearerAuth
// @Router /notifications [get]
func ListNotifications(c *gin.Context) {
	userID := contextID(c, "user_id")

	var out []models.Notification
	err := db.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&out).Error
	if err != nil {
		utils.LogError(err, "Error listing notifications")
		utils.SendError(c, http.StatusInternalServerError, "Error listing notifications")
		return
	}

	utils.SendSuccess(c, http.StatusOK, "Notifications retrieved", out)
}

// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Security BearerAuth
// @Router /notifications/{id}/read [put]
func MarkNotificationRead(c *gin.Context) {
	userID := contextID(c, "user_id")

	res := db.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		Update("is_read", true)
	if res.Error != nil {
		utils.LogError(res.Error, "Error marking the notification as read")
		utils.SendError(c, http.StatusInternalServerError, "Error marking the notification as read")
		return
	}
	if res.RowsAffected == 0 {
		utils.SendError(c, http.StatusNotFound, "Notification not found")
		return
	}

	utils.SendSuccess(c, http.StatusOK, "Notification marked as read", nil)
}
