package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tailorworks/alterations-api/services"
	"github.com/tailorworks/alterations-api/utils"
)

// UploadGarmentPhoto handles POST /api/v1/orders/:id/garments/:index/photos - stores
// a photo of the garment and records its key on the order
func UploadGarmentPhoto(c *gin.Context) {
	index, ok := garmentIndexParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "A photo file is required")
		return
	}

	images := services.GetImageService()
	if images == nil {
		respondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Photo storage is not configured")
		return
	}

	store := orderStore()
	ctx := c.Request.Context()

	order, err := store.GetOrder(ctx, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if index >= len(order.Garments) {
		respondServiceError(c, services.ErrGarmentNotFound)
		return
	}

	key, err := images.UploadGarmentPhoto(ctx, order.ID, index, fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}
		log.Printf("Failed to upload photo for order %s: %v", order.ID, err)
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to upload photo")
		return
	}

	updated, err := store.AddGarmentPhoto(ctx, order.ID, index, key)
	if err != nil {
		// do not leave an unreferenced object behind
		if delErr := images.DeleteImage(ctx, key); delErr != nil {
			log.Printf("warning: failed to remove orphaned photo %s: %v", key, delErr)
		}
		respondServiceError(c, err)
		return
	}

	url, err := images.GetImageURL(ctx, key)
	if err != nil {
		log.Printf("warning: failed to presign photo %s: %v", key, err)
	}

	respondData(c, http.StatusCreated, gin.H{
		"order": updated,
		"key":   key,
		"url":   url,
	})
}

// GetGarmentPhotos handles GET /api/v1/orders/:id/garments/:index/photos - presigned
// links for a garment's photos
func GetGarmentPhotos(c *gin.Context) {
	index, ok := garmentIndexParam(c)
	if !ok {
		return
	}

	images := services.GetImageService()
	if images == nil {
		respondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Photo storage is not configured")
		return
	}

	ctx := c.Request.Context()
	order, err := orderStore().GetOrder(ctx, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if index >= len(order.Garments) {
		respondServiceError(c, services.ErrGarmentNotFound)
		return
	}

	photos := make([]gin.H, 0, len(order.Garments[index].GarmentInfo.Photos))
	for _, key := range order.Garments[index].GarmentInfo.Photos {
		url, err := images.GetImageURL(ctx, key)
		if err != nil {
			log.Printf("warning: failed to presign photo %s: %v", key, err)
			continue
		}
		photos = append(photos, gin.H{"key": key, "url": url})
	}

	respondData(c, http.StatusOK, photos)
}
