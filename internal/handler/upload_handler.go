package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seojunlee/teamlive/internal/model"
	"github.com/seojunlee/teamlive/pkg/storage"
)

// Max upload size: 5MB is plenty for logos and avatars
const maxUploadSize = 5 << 20

// UploadHandler handles asset upload endpoints
type UploadHandler struct {
	storage *storage.MinIOStorage
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(storage *storage.MinIOStorage) *UploadHandler {
	return &UploadHandler{storage: storage}
}

// UploadTeamLogo godoc
// @Summary Upload a team logo image
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Logo image"
// @Success 200 {object} storage.UploadResult
// @Failure 400 {object} model.ErrorResponse
// @Failure 413 {object} model.ErrorResponse
// @Router /uploads/team-logo [post]
func (h *UploadHandler) UploadTeamLogo(c *gin.Context) {
	h.uploadImage(c, "team-logos")
}

// UploadPlayerAvatar godoc
// @Summary Upload a player avatar image
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Avatar image"
// @Success 200 {object} storage.UploadResult
// @Failure 400 {object} model.ErrorResponse
// @Failure 413 {object} model.ErrorResponse
// @Router /uploads/player-avatar [post]
func (h *UploadHandler) UploadPlayerAvatar(c *gin.Context) {
	h.uploadImage(c, "player-avatars")
}

func (h *UploadHandler) uploadImage(c *gin.Context, folder string) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "Storage not available"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "No file provided", Message: err.Error()})
		return
	}

	if header.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{Error: "File too large"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Failed to open file"})
		return
	}
	defer file.Close()

	result, err := h.storage.UploadImage(c.Request.Context(), file, header, folder)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Upload failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
