package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-gateway/internal/domains/request/model"
	"library-gateway/internal/domains/request/service"
	"library-gateway/internal/shared/response"
	"library-gateway/internal/shared/utils"
)

// =====================================================
// BOOK REQUEST HANDLER
// =====================================================

type RequestHandler struct {
	requestService service.ServiceInterface
}

func NewRequestHandler(requestService service.ServiceInterface) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
	}
}

// CreateRequest files an ISSUE or RETURN request for a user.
// POST /api/v1/user/book-request
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req model.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.requestService.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, resp)
}

// ListUserRequests returns a user's requests joined with book details.
// GET /api/v1/user/:user_id/book-requests
func (h *RequestHandler) ListUserRequests(c *gin.Context) {
	userID, err := utils.ParseID(c.Param("user_id"))
	if err != nil {
		h.handleError(c, model.ErrInvalidUserID)
		return
	}

	views, err := h.requestService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, views)
}

// ListPendingRequests returns every PENDING request for the admin queue.
// GET /api/v1/admin/book-requests
func (h *RequestHandler) ListPendingRequests(c *gin.Context) {
	views, err := h.requestService.ListPending(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, views)
}

// ApproveRequest responds as soon as the backend approved; the requester is
// notified in the background.
// POST /api/v1/admin/book-requests/:request_id/approve
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	requestID, err := utils.ParseID(c.Param("request_id"))
	if err != nil {
		h.handleError(c, model.ErrInvalidRequestID)
		return
	}

	msg, err := h.requestService.Approve(c.Request.Context(), requestID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Message(c, http.StatusOK, msg)
}

// RejectRequest accepts an optional {"notes": "..."} body.
// POST /api/v1/admin/book-requests/:request_id/reject
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	requestID, err := utils.ParseID(c.Param("request_id"))
	if err != nil {
		h.handleError(c, model.ErrInvalidRequestID)
		return
	}

	var req model.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.requestService.Reject(c.Request.Context(), requestID, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Message(c, http.StatusOK, msg)
}

func (h *RequestHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidRequestID),
		errors.Is(err, model.ErrInvalidUserID):
		response.BadRequest(c, err.Error())

	default:
		response.BackendError(c, err, http.StatusBadRequest)
	}
}
