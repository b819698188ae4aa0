package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-gateway/internal/domains/transaction/model"
	"library-gateway/internal/domains/transaction/service"
	"library-gateway/internal/shared/response"
	"library-gateway/internal/shared/utils"
)

type TransactionHandler struct {
	transactionService service.ServiceInterface
}

func NewTransactionHandler(transactionService service.ServiceInterface) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// IssueBook POST /api/v1/admin/issue-book
func (h *TransactionHandler) IssueBook(c *gin.Context) {
	var req model.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.transactionService.Issue(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, resp)
}

// ReturnBook POST /api/v1/admin/return-book
func (h *TransactionHandler) ReturnBook(c *gin.Context) {
	var req model.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.transactionService.Return(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, resp)
}

// ListTransactions GET /api/v1/admin/transactions?user_id=&status=&page=&limit=
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	page, limit := utils.ParsePageParams(c.Query("page"), c.Query("limit"))

	result, err := h.transactionService.ListAdmin(c.Request.Context(), model.ListFilter{
		UserID: utils.ParseOptionalID(c.Query("user_id")),
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result)
}

// ListUserTransactions GET /api/v1/user/:user_id/transactions?status=
func (h *TransactionHandler) ListUserTransactions(c *gin.Context) {
	userID, err := utils.ParseID(c.Param("user_id"))
	if err != nil {
		h.handleError(c, model.ErrInvalidUserID)
		return
	}

	views, err := h.transactionService.ListForUser(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, views)
}

// GetStats GET /api/v1/admin/stats
func (h *TransactionHandler) GetStats(c *gin.Context) {
	stats, err := h.transactionService.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats)
}

func (h *TransactionHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidUserID),
		errors.Is(err, model.ErrInvalidStatus):
		response.BadRequest(c, err.Error())

	default:
		response.BackendError(c, err, http.StatusBadRequest)
	}
}
