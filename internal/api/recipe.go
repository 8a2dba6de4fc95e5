package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

// RecipeHandler serves recipe endpoints
type RecipeHandler struct {
	recipes service.IRecipeService
	auth    gin.HandlerFunc
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(recipes service.IRecipeService, auth gin.HandlerFunc) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, auth: auth}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/recipe", h.auth, h.CreateRecipe)
	router.GET("/recipe/:id", h.GetRecipe)
	router.PUT("/recipe/:id", h.auth, h.UpdateRecipe)
	router.DELETE("/recipe/:id", h.auth, h.DeleteRecipe)
	router.GET("/allRecipes", h.ListRecipes)
	router.GET("/recipes", h.LatestRecipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		_ = c.Error(types.TranslateBindingError(err))
		return
	}
	req, err := types.ParseCreateRecipeRequest(body)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// UpdateRecipe hands the parsed payload to the service even when it is
// invalid: existence and authorship are checked before the payload.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		_ = c.Error(types.TranslateBindingError(err))
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), id, userID, types.ParseUpdateRecipeRequest(body))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), id, userID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) LatestRecipe(c *gin.Context) {
	recipe, err := h.recipes.Latest(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}
