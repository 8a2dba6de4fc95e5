package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/storage"
	"github.com/pageza/recipebox/backend/internal/types"
)

// RecipeCache is the generation-checked recipe cache. *cache.Cache[types.RecipeSnapshot]
// implements it.
type RecipeCache interface {
	Get(ctx context.Context, id string) (types.RecipeSnapshot, bool, error)
	SnapshotGen(ctx context.Context, id string) (uint64, error)
	SetWithGen(ctx context.Context, id string, v types.RecipeSnapshot, gen uint64) error
	Invalidate(ctx context.Context, id string) error
}

// ObjectStore stores image objects. *storage.ObjectStore implements it.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (storage.StoredObject, error)
	Delete(ctx context.Context, key string) error
}

// IUserService defines the interface for account operations
type IUserService interface {
	Create(ctx context.Context, req *types.CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, req *types.UpdateUserRequest) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*types.RecipeSnapshot, error)
	Get(ctx context.Context, id uuid.UUID) (*types.RecipeDetail, error)
	Update(ctx context.Context, id, callerID uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeSnapshot, error)
	Delete(ctx context.Context, id, callerID uuid.UUID) error
	List(ctx context.Context) ([]types.RecipeDetail, error)
	Latest(ctx context.Context) (*types.RecipeDetail, error)
}

// IImageService defines the interface for recipe image operations
type IImageService interface {
	Upload(ctx context.Context, recipeID, callerID uuid.UUID, data []byte) (*types.ImageRef, error)
	Get(ctx context.Context, recipeID, imageID uuid.UUID) (*types.ImageRef, error)
	Delete(ctx context.Context, recipeID, imageID, callerID uuid.UUID) error
}
