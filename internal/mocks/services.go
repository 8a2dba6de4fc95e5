package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock implementation of the user service
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, req *types.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, req *types.UpdateUserRequest) (*models.User, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*types.RecipeSnapshot, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeSnapshot), args.Error(1)
}

func (m *MockRecipeService) Get(ctx context.Context, id uuid.UUID) (*types.RecipeDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeDetail), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, id, callerID uuid.UUID, req *types.UpdateRecipeRequest) (*types.RecipeSnapshot, error) {
	args := m.Called(ctx, id, callerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeSnapshot), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	args := m.Called(ctx, id, callerID)
	return args.Error(0)
}

func (m *MockRecipeService) List(ctx context.Context) ([]types.RecipeDetail, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeDetail), args.Error(1)
}

func (m *MockRecipeService) Latest(ctx context.Context) (*types.RecipeDetail, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeDetail), args.Error(1)
}

// MockImageService is a mock implementation of the image service
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Upload(ctx context.Context, recipeID, callerID uuid.UUID, data []byte) (*types.ImageRef, error) {
	args := m.Called(ctx, recipeID, callerID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ImageRef), args.Error(1)
}

func (m *MockImageService) Get(ctx context.Context, recipeID, imageID uuid.UUID) (*types.ImageRef, error) {
	args := m.Called(ctx, recipeID, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ImageRef), args.Error(1)
}

func (m *MockImageService) Delete(ctx context.Context, recipeID, imageID, callerID uuid.UUID) error {
	args := m.Called(ctx, recipeID, imageID, callerID)
	return args.Error(0)
}
