package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/seojunlee/teamlive/internal/model"
	"github.com/seojunlee/teamlive/internal/service"
)

// RosterHandler handles team and roster HTTP endpoints
type RosterHandler struct {
	rosterService *service.RosterService
}

func NewRosterHandler(rosterService *service.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rosterService}
}

// viewerID extracts the authenticated user id when present; anonymous
// viewers get uuid.Nil
func viewerID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// GetTeams godoc
// @Summary List all teams
// @Tags Teams
// @Produce json
// @Success 200 {array} model.Team
// @Router /teams [get]
func (h *RosterHandler) GetTeams(c *gin.Context) {
	teams, err := h.rosterService.GetTeams()
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to get teams"})
		return
	}

	c.JSON(http.StatusOK, teams)
}

// GetRoster godoc
// @Summary Get a team's roster with live status
// @Description One entry per player: the surfaced account, its online flag, and whether the caller follows the player.
// @Tags Teams
// @Produce json
// @Param abbr path string true "Team abbreviation (e.g. T1)"
// @Success 200 {array} model.RosterEntry
// @Failure 404 {object} model.ErrorResponse
// @Router /teams/{abbr}/roster [get]
func (h *RosterHandler) GetRoster(c *gin.Context) {
	abbr := c.Param("abbr")

	roster, err := h.rosterService.GetRoster(abbr, viewerID(c))
	if err != nil {
		if errors.Is(err, service.ErrTeamNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "Team not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to get roster"})
		return
	}

	c.JSON(http.StatusOK, roster)
}

// GetPlayerAccounts godoc
// @Summary List a player's game accounts
// @Description All accounts of the player, primary account first. Useful for showing alt accounts.
// @Tags Teams
// @Produce json
// @Param id path string true "Player ID"
// @Success 200 {array} model.GameAccount
// @Failure 404 {object} model.ErrorResponse
// @Router /players/{id}/accounts [get]
func (h *RosterHandler) GetPlayerAccounts(c *gin.Context) {
	playerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid player ID"})
		return
	}

	accounts, err := h.rosterService.GetPlayerAccounts(playerID)
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "Player not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to get accounts"})
		return
	}

	c.JSON(http.StatusOK, accounts)
}

// ListSubscriptions godoc
// @Summary List the players the caller follows
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} string
// @Router /subscriptions [get]
func (h *RosterHandler) ListSubscriptions(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	playerIDs, err := h.rosterService.ListSubscriptions(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to list subscriptions"})
		return
	}

	c.JSON(http.StatusOK, playerIDs)
}

// Subscribe godoc
// @Summary Follow a player for push notifications
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.SubscribeRequest true "Player to follow"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /subscriptions [post]
func (h *RosterHandler) Subscribe(c *gin.Context) {
	var req model.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	if err := h.rosterService.Subscribe(userID, req.PlayerID); err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "Player not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to subscribe"})
		return
	}

	c.JSON(http.StatusOK, model.StatusResponse{Status: "success"})
}

// Unsubscribe godoc
// @Summary Stop following a player
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param playerId path string true "Player ID"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /subscriptions/{playerId} [delete]
func (h *RosterHandler) Unsubscribe(c *gin.Context) {
	playerID, err := uuid.Parse(c.Param("playerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid player ID"})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	if err := h.rosterService.Unsubscribe(userID, playerID); err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to unsubscribe"})
		return
	}

	c.JSON(http.StatusOK, model.StatusResponse{Status: "success"})
}
