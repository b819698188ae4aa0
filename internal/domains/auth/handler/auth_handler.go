package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-gateway/internal/domains/auth/model"
	"library-gateway/internal/domains/auth/service"
	"library-gateway/internal/shared/response"
)

type AuthHandler struct {
	authService service.ServiceInterface
}

func NewAuthHandler(authService service.ServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login POST /api/v1/login
// Bad credentials are 401 with the backend's message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.BackendError(c, err, http.StatusUnauthorized)
		return
	}

	response.JSON(c, http.StatusOK, resp)
}
