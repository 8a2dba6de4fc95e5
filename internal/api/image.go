package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipebox/backend/internal/apperr"
	"github.com/pageza/recipebox/backend/internal/service"
)

// ImageHandler serves recipe image endpoints
type ImageHandler struct {
	images   service.IImageService
	auth     gin.HandlerFunc
	limiter  gin.HandlerFunc
	maxBytes int64
}

// NewImageHandler creates a new image handler. limiter may be nil.
func NewImageHandler(images service.IImageService, auth, limiter gin.HandlerFunc, maxBytes int64) *ImageHandler {
	return &ImageHandler{images: images, auth: auth, limiter: limiter, maxBytes: maxBytes}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	upload := []gin.HandlerFunc{h.auth}
	if h.limiter != nil {
		upload = append(upload, h.limiter)
	}
	router.POST("/recipe/:id/image", append(upload, h.UploadImage)...)
	router.GET("/recipe/:id/image/:imageId", h.GetImage)
	router.DELETE("/recipe/:id/image/:imageId", h.auth, h.DeleteImage)
}

func (h *ImageHandler) UploadImage(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	data, err := h.firstFile(c.Request)
	if err != nil {
		_ = c.Error(err)
		return
	}

	image, err := h.images.Upload(c.Request.Context(), recipeID, userID, data)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, image)
}

func (h *ImageHandler) GetImage(c *gin.Context) {
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(c, "imageId")
	if !ok {
		return
	}

	image, err := h.images.Get(c.Request.Context(), recipeID, imageID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, image)
}

func (h *ImageHandler) DeleteImage(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(c, "imageId")
	if !ok {
		return
	}

	if err := h.images.Delete(c.Request.Context(), recipeID, imageID, userID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// firstFile reads the first file part of a multipart body. At most one byte
// past the size limit is read so the service can reject oversized uploads.
func (h *ImageHandler) firstFile(r *http.Request) ([]byte, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, apperr.NewValidationError("file", "multipart/form-data body is required")
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, apperr.NewValidationError("file", "is required")
		}
		if err != nil {
			return nil, apperr.NewValidationError("file", "malformed multipart body")
		}
		if part.FileName() == "" {
			_ = part.Close()
			continue
		}

		var src io.Reader = part
		if h.maxBytes > 0 {
			src = io.LimitReader(part, h.maxBytes+1)
		}
		data, err := io.ReadAll(src)
		_ = part.Close()
		if err != nil {
			return nil, apperr.NewValidationError("file", "could not be read")
		}
		return data, nil
	}
}
