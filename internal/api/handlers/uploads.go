package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amit-3245/campus-complaint-portal/internal/storage"
)

// UploadHandler serves stored complaint images by exact name.
type UploadHandler struct {
	storage *storage.Client
}

func NewUploadHandler(st *storage.Client) *UploadHandler {
	return &UploadHandler{storage: st}
}

func (h *UploadHandler) Serve(c *gin.Context) {
	name := c.Param("filename")

	obj, err := h.storage.Retrieve(name)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	if err != nil {
		slog.Error("failed to open upload", "file", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return
	}
	defer obj.Body.Close()

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	if obj.ContentType != "" {
		c.Header("Content-Type", obj.ContentType)
	}

	if seeker, ok := obj.Body.(io.ReadSeeker); ok {
		http.ServeContent(c.Writer, c.Request, name, obj.LastModified, seeker)
		return
	}

	// Remote objects are not seekable; stream them as-is.
	c.DataFromReader(http.StatusOK, obj.ContentLength, obj.ContentType, obj.Body, map[string]string{
		"Accept-Ranges": "none",
	})
}
