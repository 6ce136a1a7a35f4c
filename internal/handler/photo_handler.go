package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"listing-marketplace/internal/middleware"
	"listing-marketplace/internal/service"
)

// MaxPhotoBytes bounds a single upload.
const MaxPhotoBytes = 10 << 20

type PhotoHandler struct {
	Listings *service.ListingService
}

func (h *PhotoHandler) RegisterRoutes(rg, auth *gin.RouterGroup) {
	auth.POST("/ads/:id/photos", h.UploadPhoto)
	auth.DELETE("/ads/:id/photos/:fileId", h.RemovePhoto)
	rg.GET("/photos/:fileId", h.DownloadPhoto)
}

func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > MaxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open file"})
		return
	}
	defer file.Close()

	listingID := c.Param("id")
	filename := fmt.Sprintf("listing_%s_%s", listingID, filepath.Base(fileHeader.Filename))

	photoID, err := h.Listings.UploadPhoto(c.Request.Context(), c.GetString(middleware.UserIDKey), listingID, filename, file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"photo_id": photoID, "url": "/api/photos/" + photoID})
}

func (h *PhotoHandler) RemovePhoto(c *gin.Context) {
	err := h.Listings.RemovePhoto(c.Request.Context(), c.GetString(middleware.UserIDKey), c.Param("id"), c.Param("fileId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *PhotoHandler) DownloadPhoto(c *gin.Context) {
	data, filename, err := h.Listings.Photo(c.Request.Context(), c.Param("fileId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
