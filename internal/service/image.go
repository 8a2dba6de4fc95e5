package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/apperr"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/storage"
	"github.com/pageza/recipebox/backend/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var allowedImageTypes = []string{"image/jpeg", "image/png"}

// ImageService handles image upload and storage operations
type ImageService struct {
	db       *gorm.DB
	objects  ObjectStore
	maxBytes int64
	log      *zap.Logger
}

var _ IImageService = (*ImageService)(nil)

// NewImageService creates a new ImageService instance
func NewImageService(db *gorm.DB, objects ObjectStore, maxBytes int64, logger *zap.Logger) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageService{db: db, objects: objects, maxBytes: maxBytes, log: logger.Named("images")}
}

// Upload stores data as a new image of the recipe. Only the author may add
// images, and only JPEG or PNG content is accepted.
func (s *ImageService) Upload(ctx context.Context, recipeID, callerID uuid.UUID, data []byte) (*types.ImageRef, error) {
	recipe, err := findRecipe(ctx, s.db, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != callerID {
		return nil, apperr.ErrNotAuthor
	}

	if len(data) == 0 {
		return nil, apperr.NewValidationError("file", "is required")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, apperr.NewValidationError("file", fmt.Sprintf("must not exceed %d bytes", s.maxBytes))
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return nil, apperr.NewValidationError("file", "must be in jpeg or png format")
	}

	imageID := uuid.New()
	key := imageID.String() + mt.Extension()
	obj, err := s.objects.Upload(ctx, key, data, mt.String())
	if err != nil {
		return nil, err
	}

	image := models.RecipeImage{
		ID:        imageID,
		URL:       obj.Location,
		MD5:       obj.Fingerprint,
		Size:      obj.Size,
		RecipeID:  recipeID,
		CreatedAt: models.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&image).Error; err != nil {
		if derr := s.objects.Delete(ctx, key); derr != nil {
			s.log.Error("failed to remove orphaned image object", zap.String("key", key), zap.Error(derr))
		}
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	s.log.Info("uploaded recipe image",
		zap.String("recipe_id", recipeID.String()),
		zap.String("image_id", imageID.String()),
		zap.Int64("size", obj.Size),
	)
	return types.NewImageRef(&image), nil
}

func (s *ImageService) Get(ctx context.Context, recipeID, imageID uuid.UUID) (*types.ImageRef, error) {
	image, err := s.find(ctx, recipeID, imageID)
	if err != nil {
		return nil, err
	}
	return types.NewImageRef(image), nil
}

// Delete removes the stored object first, then the image row.
func (s *ImageService) Delete(ctx context.Context, recipeID, imageID, callerID uuid.UUID) error {
	image, err := s.find(ctx, recipeID, imageID)
	if err != nil {
		return err
	}
	recipe, err := findRecipe(ctx, s.db, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != callerID {
		return apperr.ErrNotAuthor
	}

	if key := storage.KeyFromURL(image.URL); key != "" {
		if err := s.objects.Delete(ctx, key); err != nil {
			return err
		}
	}
	if err := s.db.WithContext(ctx).Delete(&models.RecipeImage{}, "id = ? AND recipe_id = ?", imageID, recipeID).Error; err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	s.log.Info("deleted recipe image", zap.String("recipe_id", recipeID.String()), zap.String("image_id", imageID.String()))
	return nil
}

func (s *ImageService) find(ctx context.Context, recipeID, imageID uuid.UUID) (*models.RecipeImage, error) {
	var image models.RecipeImage
	err := s.db.WithContext(ctx).Where("id = ? AND recipe_id = ?", imageID, recipeID).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return &image, nil
}
