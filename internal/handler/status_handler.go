package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/seojunlee/teamlive/internal/model"
	"github.com/seojunlee/teamlive/internal/service"
)

// StatusHandler receives account status reports from the game-data tracker
type StatusHandler struct {
	rosterService *service.RosterService
}

func NewStatusHandler(rosterService *service.RosterService) *StatusHandler {
	return &StatusHandler{rosterService: rosterService}
}

// UpdateAccountStatus godoc
// @Summary Report an account's in-game status
// @Description Called by the game-data tracker. A real transition is broadcast on the change feed; going online also triggers subscriber pushes.
// @Tags Tracker
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Game account ID"
// @Param body body model.UpdateStatusRequest true "New status"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /internal/accounts/{id}/status [put]
func (h *StatusHandler) UpdateAccountStatus(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid account ID"})
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.rosterService.UpdateAccountStatus(c.Request.Context(), accountID, req.IsOnline); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, model.StatusResponse{Status: "success"})
}

// UpdateAccountStatusByPUUID godoc
// @Summary Report an account's in-game status by PUUID
// @Description Same as the id-based report, keyed by the game API identity trackers actually hold.
// @Tags Tracker
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param puuid path string true "Game API account identity"
// @Param body body model.UpdateStatusRequest true "New status"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /internal/accounts/by-puuid/{puuid}/status [put]
func (h *StatusHandler) UpdateAccountStatusByPUUID(c *gin.Context) {
	puuid := c.Param("puuid")

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.rosterService.UpdateAccountStatusByPUUID(c.Request.Context(), puuid, req.IsOnline); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, model.StatusResponse{Status: "success"})
}
