package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipebox/backend/internal/cache"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/mocks"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
	"github.com/pageza/recipebox/backend/internal/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv wires real services over an in-memory SQLite store.
type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	provider *mocks.MemoryProvider
	objects  *mocks.MockObjectStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	provider := mocks.NewMemoryProvider()
	recipeCache, err := cache.New(cache.Options[types.RecipeSnapshot]{Namespace: "recipe", Provider: provider})
	require.NoError(t, err)
	t.Cleanup(func() { _ = recipeCache.Close(context.Background()) })
	objects := new(mocks.MockObjectStore)

	users := service.NewUserService(db, bcrypt.MinCost, nil)
	recipes := service.NewRecipeService(db, recipeCache, objects, nil)
	images := service.NewImageService(db, objects, 1<<20, nil)

	return &testEnv{
		router:   newRouter(users, recipes, images),
		db:       db,
		provider: provider,
		objects:  objects,
	}
}

func newRouter(users service.IUserService, recipes service.IRecipeService, images service.IImageService) *gin.Engine {
	auth := middleware.BasicAuth(users)
	r := gin.New()
	r.Use(middleware.ErrorHandler(zap.NewNop()))
	v1 := r.Group("/v1")
	NewUserHandler(users, auth).RegisterRoutes(v1)
	NewRecipeHandler(recipes, auth).RegisterRoutes(v1)
	NewImageHandler(images, auth, nil, 1<<20).RegisterRoutes(v1)
	return r
}

func (e *testEnv) user(t *testing.T, email string) *models.User {
	t.Helper()
	return testhelpers.CreateTestUser(t, e.db, email)
}

func (e *testEnv) do(method, path string, body []byte, user *models.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", testhelpers.BasicAuth(user.Email, testhelpers.TestPassword))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "ignored"))
	if filename != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, path string, data []byte, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, "file", "photo.png", data)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	if user != nil {
		req.Header.Set("Authorization", testhelpers.BasicAuth(user.Email, testhelpers.TestPassword))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
