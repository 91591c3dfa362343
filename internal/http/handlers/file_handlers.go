package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/emrsvc/domain"
	"go.uber.org/zap"
)

// FileHandlers serves upload, download and removal of stored files
type FileHandlers struct {
	files  domain.FileStore
	logger *zap.Logger
}

// NewFileHandlers creates new file handlers
func NewFileHandlers(files domain.FileStore, logger *zap.Logger) *FileHandlers {
	return &FileHandlers{files: files, logger: logger.Named("files")}
}

// Upload stores the multipart "file" under the optional "folder"
func (h *FileHandlers) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		if bodyTooLarge(err) {
			respondTooLarge(c)
			return
		}
		respondError(c, http.StatusBadRequest, "No file provided")
		return
	}
	folder := c.DefaultPostForm("folder", "uploads")

	f, err := fh.Open()
	if err != nil {
		internalError(c, h.logger, "File upload", err)
		return
	}
	defer f.Close()

	stored, err := h.files.Save(folder, fh.Filename, f)
	if err != nil {
		if !respondFileError(c, err) {
			internalError(c, h.logger, "File upload", err)
		}
		return
	}

	h.logger.Info("file uploaded", zap.String("filename", stored.Filename), zap.Int64("size", stored.Size))
	c.JSON(http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"data":    stored,
		"success": true,
	})
}

// Serve streams a stored file
func (h *FileHandlers) Serve(c *gin.Context) {
	full, err := h.files.Resolve(c.Param("path"))
	if err != nil {
		if !respondFileError(c, err) {
			internalError(c, h.logger, "File download", err)
		}
		return
	}
	c.File(full)
}

// Delete removes a stored file
func (h *FileHandlers) Delete(c *gin.Context) {
	if err := h.files.Delete(c.Param("path")); err != nil {
		if !respondFileError(c, err) {
			internalError(c, h.logger, "File deletion", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully", "success": true})
}

// respondFileError answers the known file store errors and reports whether it did
func respondFileError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, domain.ErrNoFile):
		respondError(c, http.StatusBadRequest, "No file selected")
	case errors.Is(err, domain.ErrFileType):
		respondError(c, http.StatusBadRequest, "File type not allowed")
	case errors.Is(err, domain.ErrFileTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, "File too large")
	case errors.Is(err, domain.ErrFilePathInvalid):
		respondError(c, http.StatusBadRequest, "Invalid file path")
	case errors.Is(err, domain.ErrFileNotFound):
		respondError(c, http.StatusNotFound, "File not found")
	default:
		return false
	}
	return true
}
