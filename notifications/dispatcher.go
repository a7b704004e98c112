// Package notifications creates durable, deduplicated notification records.
// Delivery (email, push) is a separate consumer of the rows; this package's
// contract ends at the insert.
package notifications

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/mazza92/creator-dashboard-backend-sub000/models"
	"github.com/mazza92/creator-dashboard-backend-sub000/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DedupWindow suppresses repeat notifications: no two rows share
// (user_id, user_role, event_type) created within this window.
const DedupWindow = 5 * time.Minute

// Notify renders the template for (event, role) and inserts one notification
// row on tx. A missing template is a logged no-op, as is a duplicate within
// the dedup window; both return an empty id and nil error. Callers run this
// inside the parent transaction but never let a dispatcher error roll the
// parent back.
func Notify(tx *gorm.DB, userID string, role models.Role, event models.EventType, data map[string]string) (string, error) {
	tpl, ok := lookupTemplate(event, role)
	if !ok {
		utils.LogInfo("No notification template for event " + string(event) + " and role " + string(role) + ", skipping")
		return "", nil
	}

	var existing models.Notification
	err := tx.Where("user_id = ? AND user_role = ? AND event_type = ? AND created_at > ?",
		userID, role, event, time.Now().Add(-DedupWindow)).
		First(&existing).Error
	if err == nil {
		return "", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	payload := map[string]string{}
	for k, v := range data {
		payload[k] = v
	}
	if tpl.RenderAction != nil {
		payload["action"] = tpl.RenderAction(data)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	notification := models.Notification{
		UserID:    userID,
		UserRole:  role,
		EventType: event,
		Message:   tpl.RenderMessage(data),
		Data:      datatypes.JSON(raw),
	}
	if err := tx.Create(&notification).Error; err != nil {
		return "", err
	}
	return notification.ID, nil
}

// NotifyBoth emits the same event to the brand and creator sides of an
// engagement. Errors are logged and swallowed: a notification failure never
// rolls back the parent operation.
func NotifyBoth(tx *gorm.DB, brandUserID, creatorUserID string, event models.EventType, data map[string]string) {
	if _, err := Notify(tx, brandUserID, models.BrandRole, event, data); err != nil {
		utils.LogError(err, "Failed to create brand notification for event "+string(event))
	}
	if _, err := Notify(tx, creatorUserID, models.CreatorRole, event, data); err != nil {
		utils.LogError(err, "Failed to create creator notification for event "+string(event))
	}
}
