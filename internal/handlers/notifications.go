package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// NotificationHandler handles per-user notifications.
type NotificationHandler struct {
	DB *gorm.DB
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{DB: db}
}

// GetNotifications lists the current user's notifications, newest first.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	principalID, ok := middleware.GetPrincipalID(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	query := h.DB.Where("user_id = ?", principalID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch notifications: "+err.Error())
		return
	}
	utils.Success(c, "Notifications fetched successfully", notifications)
}

// MarkNotificationRead marks one of the current user's notifications as read.
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	principalID, ok := middleware.GetPrincipalID(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var notification models.Notification
	err := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), principalID).
		First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Notification not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	notification.IsRead = true
	if err := h.DB.Save(&notification).Error; err != nil {
		utils.InternalServerError(c, "Failed to update notification: "+err.Error())
		return
	}

	utils.Success(c, "Notification marked as read", notification)
}

// MarkAllNotificationsRead marks every unread notification as read.
func (h *NotificationHandler) MarkAllNotificationsRead(c *gin.Context) {
	principalID, ok := middleware.GetPrincipalID(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", principalID, false).
		Update("is_read", true).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to update notifications: "+err.Error())
		return
	}

	utils.Success(c, "All notifications marked as read", nil)
}
