package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/mocks"
	"github.com/pageza/recipebox/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type healthy struct{}

func (healthy) HealthCheck(context.Context) error { return nil }

func TestSetupRouter_AuthGate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recipes := new(mocks.MockRecipeService)
	images := new(mocks.MockImageService)
	router := SetupRouter(Dependencies{
		Users:   new(mocks.MockUserService),
		Recipes: recipes,
		Images:  images,
		DB:      healthy{},
	})

	id := uuid.New()
	recipes.On("Get", mock.Anything, id).Return(&types.RecipeDetail{}, nil)
	recipes.On("List", mock.Anything).Return([]types.RecipeDetail{}, nil)
	recipes.On("Latest", mock.Anything).Return(&types.RecipeDetail{}, nil)
	images.On("Get", mock.Anything, id, id).Return(&types.ImageRef{}, nil)

	public := []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/healthz"},
		{http.MethodGet, "/v1/recipe/" + id.String()},
		{http.MethodGet, "/v1/recipe/" + id.String() + "/image/" + id.String()},
		{http.MethodGet, "/v1/allRecipes"},
		{http.MethodGet, "/v1/recipes"},
	}
	for _, tt := range public {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
	}

	protected := []struct{ method, path string }{
		{http.MethodGet, "/v1/user/self"},
		{http.MethodPut, "/v1/user/self"},
		{http.MethodPost, "/v1/recipe"},
		{http.MethodPut, "/v1/recipe/" + id.String()},
		{http.MethodDelete, "/v1/recipe/" + id.String()},
		{http.MethodPost, "/v1/recipe/" + id.String() + "/image"},
		{http.MethodDelete, "/v1/recipe/" + id.String() + "/image/" + id.String()},
	}
	for _, tt := range protected {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tt.method, tt.path)
	}

	recipes.AssertExpectations(t)
	images.AssertExpectations(t)
}
