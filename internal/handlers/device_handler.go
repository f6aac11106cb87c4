package handlers

import (
	"errors"
	"net/http"

	"github.com/fourviews/backend/internal/models"
	"github.com/fourviews/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// DeviceHandler handles device token registration
type DeviceHandler struct {
	userRepository repositories.UserRepository
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(userRepo repositories.UserRepository) *DeviceHandler {
	return &DeviceHandler{userRepository: userRepo}
}

// RegisterDeviceRoutes registers device-related routes
func (h *DeviceHandler) RegisterDeviceRoutes(g *echo.Group) {
	g.POST("/users/device-token", h.SetDeviceToken)
}

// SetDeviceToken stores the user's FCM token. The write goes straight to the
// directory, so the next delivery attempt sees the new token.
func (h *DeviceHandler) SetDeviceToken(c echo.Context) error {
	var req models.SetDeviceTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.userRepository.SetDeviceToken(req.UserID, req.FCMToken); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"user_id": req.UserID}})
}
