package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tailorworks/alterations-api/services"
)

func newPhotoRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("photo", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func setupUploadRouter() *gin.Engine {
	router := setupTestRouter()
	router.POST("/orders/:id/garments/:index/photos", UploadGarmentPhoto)
	router.GET("/orders/:id/garments/:index/photos", GetGarmentPhotos)
	return router
}

func TestUploadGarmentPhoto_Success(t *testing.T) {
	db := setupCalendarTestDB(t)
	seedBridalOrder(t, db, "order-1")

	mockS3 := services.NewMockS3Service()
	services.InitImageService(mockS3)
	router := setupUploadRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newPhotoRequest(t, "/orders/order-1/garments/0/photos", "bodice.jpg", []byte("jpeg bytes")))
	require.Equal(t, http.StatusCreated, w.Code, "Response body: %s", w.Body.String())

	data := decodeResponse(t, w)["data"].(map[string]any)
	key := data["key"].(string)
	assert.Contains(t, key, "orders/order-1/garments/0/")
	assert.Contains(t, data["url"], key)
	assert.True(t, mockS3.FileExists(key))

	stored := loadOrder(t, db, "order-1")
	assert.Equal(t, []string{key}, stored.Garments[0].GarmentInfo.Photos)

	w = doJSON(router, http.MethodGet, "/orders/order-1/garments/0/photos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	photos := decodeResponse(t, w)["data"].([]any)
	require.Len(t, photos, 1)
	assert.Equal(t, key, photos[0].(map[string]any)["key"])
}

func TestUploadGarmentPhoto_Errors(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		filename       string
		expectedStatus int
		expectedError  string
	}{
		{name: "Missing file", path: "/orders/order-1/garments/0/photos", expectedStatus: http.StatusBadRequest, expectedError: "VALIDATION_ERROR"},
		{name: "Unsupported format", path: "/orders/order-1/garments/0/photos", filename: "bodice.gif", expectedStatus: http.StatusBadRequest, expectedError: "INVALID_FILE_FORMAT"},
		{name: "Unknown order", path: "/orders/missing/garments/0/photos", filename: "bodice.png", expectedStatus: http.StatusNotFound, expectedError: "ORDER_NOT_FOUND"},
		{name: "Unknown garment", path: "/orders/order-1/garments/5/photos", filename: "bodice.png", expectedStatus: http.StatusNotFound, expectedError: "GARMENT_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupCalendarTestDB(t)
			seedBridalOrder(t, db, "order-1")
			mockS3 := services.NewMockS3Service()
			services.InitImageService(mockS3)
			router := setupUploadRouter()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, newPhotoRequest(t, tt.path, tt.filename, []byte("bytes")))

			assert.Equal(t, tt.expectedStatus, w.Code, "Response body: %s", w.Body.String())
			assert.Equal(t, tt.expectedError, errorCode(t, w))
			assert.Empty(t, mockS3.GetUploadedFiles())
		})
	}
}

func TestUploadGarmentPhoto_StorageNotConfigured(t *testing.T) {
	db := setupCalendarTestDB(t)
	seedBridalOrder(t, db, "order-1")
	services.SetImageService(nil)
	router := setupUploadRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newPhotoRequest(t, "/orders/order-1/garments/0/photos", "bodice.png", []byte("png")))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORAGE_UNAVAILABLE", errorCode(t, w))
}
