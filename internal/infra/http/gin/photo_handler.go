package ginserver

import (
	"log/slog"
	"net/http"
	"path"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"baraholka/internal/infra/storage/s3"
)

// PhotoHandler stores uploaded listing photos and returns the ref the
// conversation flow attaches to a listing.
type PhotoHandler struct {
	Uploader s3.Uploader
	Logger   *slog.Logger
}

func (h PhotoHandler) Upload(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo storage unavailable"})
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	key := "photos/" + uuid.NewString() + path.Ext(file.Filename)
	contentType := file.Header.Get("Content-Type")
	ref, err := h.Uploader.Upload(c.Request.Context(), key, src, contentType)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("photo upload failed", "key", key, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ref": ref})
}

var _ PhotoHTTP = PhotoHandler{}
