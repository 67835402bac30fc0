package handlers

import (
	"github.com/gin-gonic/gin"

	"prodtrack/internal/domain/auth"
	"prodtrack/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication and user endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, _, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, token)
}

// Register handles POST /users
// Anonymous callers may create regular users; only an administrator may
// create another administrator.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromUser(user))
}

// Me handles GET /users/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.CurrentUser(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(user))
}

// RegisterRoutes registers auth and user routes.
// The optional group carries OptionalAuth, the protected group Auth.
func (h *AuthHandler) RegisterRoutes(public, optional, protected *gin.RouterGroup) {
	public.POST("/auth/login", h.Login)
	optional.POST("/users", h.Register)
	protected.GET("/users/me", h.Me)
}
