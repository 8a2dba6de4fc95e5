package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

// UserHandler serves account endpoints
type UserHandler struct {
	users service.IUserService
	auth  gin.HandlerFunc
}

// NewUserHandler creates a new user handler
func NewUserHandler(users service.IUserService, auth gin.HandlerFunc) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/user", h.CreateUser)

	self := router.Group("/user/self", h.auth)
	{
		self.GET("", h.GetSelf)
		self.PUT("", h.UpdateSelf)
	}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req types.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(types.TranslateBindingError(err))
		return
	}

	user, err := h.users.Create(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetSelf(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateSelf(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		_ = c.Error(types.TranslateBindingError(err))
		return
	}
	req, err := types.ParseUpdateUserRequest(body)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), userID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}
