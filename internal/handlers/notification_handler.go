package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fourviews/backend/internal/inbox"
	"github.com/fourviews/backend/internal/models"
	"github.com/fourviews/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	inboxService *inbox.Service
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(inboxService *inbox.Service) *NotificationHandler {
	return &NotificationHandler{inboxService: inboxService}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.POST("/notifications/mark-read/:id", h.MarkAsRead)
	g.POST("/notifications/mark-read", h.MarkAllAsRead)
}

// GetNotifications returns the user's inbox, unseen first, with unread count
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID, err := strconv.ParseUint(c.QueryParam("user_id"), 10, 32)
	if err != nil || userID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	feed, err := h.inboxService.List(uint(userID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": feed.Notifications,
			"unread_count":  feed.UnreadCount,
		},
	})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	notifID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.inboxService.MarkSeen(uint(notifID)); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"seen": true}})
}

// MarkAllAsRead marks all of a user's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	var req models.MarkAllReadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.inboxService.MarkAllSeen(req.UserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"seen": true}})
}
