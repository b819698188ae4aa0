package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-gateway/internal/domains/user/model"
	"library-gateway/internal/domains/user/service"
	"library-gateway/internal/shared/response"
	"library-gateway/internal/shared/utils"
)

type UserHandler struct {
	userService service.ServiceInterface
}

func NewUserHandler(userService service.ServiceInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers GET /api/v1/admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, users)
}

// CreateUser POST /api/v1/admin/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req model.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, resp)
}

// UpdateUser PUT /api/v1/admin/users/:user_id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, err := utils.ParseID(c.Param("user_id"))
	if err != nil {
		h.handleError(c, model.ErrInvalidUserID)
		return
	}

	var req model.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.userService.Update(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Message(c, http.StatusOK, msg)
}

// GetStats GET /api/v1/user/:user_id/stats
func (h *UserHandler) GetStats(c *gin.Context) {
	userID, err := utils.ParseID(c.Param("user_id"))
	if err != nil {
		h.handleError(c, model.ErrInvalidUserID)
		return
	}

	stats, err := h.userService.Stats(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats)
}

func (h *UserHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidUserID):
		response.BadRequest(c, err.Error())

	default:
		response.BackendError(c, err, http.StatusBadRequest)
	}
}
