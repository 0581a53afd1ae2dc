package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Revanthgowda45/CityFix1/storage"

	"github.com/gin-gonic/gin"
)

// UploadController serves report photo uploads.
type UploadController struct {
	blob *storage.BlobService
}

func NewUploadController(blob *storage.BlobService) *UploadController {
	return &UploadController{blob: blob}
}

// UploadImage accepts a multipart image and returns its public URL
func (uc *UploadController) UploadImage(c *gin.Context) {
	if uc.blob == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image file"})
		return
	}
	defer file.Close()

	if header.Size > storage.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 1.5MB upload limit"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	url, err := uc.blob.Upload(c.Request.Context(), data, header.Header.Get("Content-Type"), "reports")
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) || errors.Is(err, storage.ErrInvalidFileType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// DeleteImage removes a previously uploaded photo by its public URL
func (uc *UploadController) DeleteImage(c *gin.Context) {
	if uc.blob == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
		return
	}

	var input struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := uc.blob.Delete(c.Request.Context(), input.URL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}
