package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/seojunlee/teamlive/internal/model"
	"github.com/seojunlee/teamlive/internal/repository"
)

// DeviceHandler handles push-token registration endpoints
type DeviceHandler struct {
	deviceRepo *repository.DeviceRepository
}

func NewDeviceHandler(deviceRepo *repository.DeviceRepository) *DeviceHandler {
	return &DeviceHandler{deviceRepo: deviceRepo}
}

// RegisterDevice godoc
// @Summary Register or refresh a push token for the caller's device
// @Description Upserts (user, token). Re-sending the same token only refreshes last_active_at.
// @Tags Devices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.RegisterDeviceRequest true "Push token and device type"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /devices [post]
func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	var req model.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.StatusResponse{Status: "error", Message: err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	if err := h.deviceRepo.Upsert(userID, req.Token, req.DeviceType); err != nil {
		c.JSON(http.StatusInternalServerError, model.StatusResponse{Status: "error", Message: "Failed to register device"})
		return
	}

	c.JSON(http.StatusOK, model.StatusResponse{Status: "success"})
}

// ListDevices godoc
// @Summary List the caller's registered devices
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.UserDevice
// @Router /devices [get]
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	devices, err := h.deviceRepo.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to list devices"})
		return
	}

	c.JSON(http.StatusOK, devices)
}
