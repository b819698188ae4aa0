package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-gateway/internal/domains/book/model"
	"library-gateway/internal/domains/book/service"
	"library-gateway/internal/shared/response"
	"library-gateway/internal/shared/utils"
)

type BookHandler struct {
	bookService service.ServiceInterface
}

func NewBookHandler(bookService service.ServiceInterface) *BookHandler {
	return &BookHandler{
		bookService: bookService,
	}
}

// SearchBooks GET /api/v1/user/books/search?q=
func (h *BookHandler) SearchBooks(c *gin.Context) {
	results, err := h.bookService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, results)
}

// ListBooks GET /api/v1/admin/books?q=
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.bookService.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, books)
}

// CreateBook POST /api/v1/admin/books
func (h *BookHandler) CreateBook(c *gin.Context) {
	req, ok := bindBook(c)
	if !ok {
		return
	}

	resp, err := h.bookService.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, resp)
}

// UpdateBook PUT /api/v1/admin/books/:book_id
func (h *BookHandler) UpdateBook(c *gin.Context) {
	bookID, err := utils.ParseID(c.Param("book_id"))
	if err != nil {
		h.handleError(c, model.ErrInvalidBookID)
		return
	}

	req, ok := bindBook(c)
	if !ok {
		return
	}

	msg, err := h.bookService.Update(c.Request.Context(), bookID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Message(c, http.StatusOK, msg)
}

// DeleteBook DELETE /api/v1/admin/books/:book_id
func (h *BookHandler) DeleteBook(c *gin.Context) {
	bookID, err := utils.ParseID(c.Param("book_id"))
	if err != nil {
		h.handleError(c, model.ErrInvalidBookID)
		return
	}

	msg, err := h.bookService.Delete(c.Request.Context(), bookID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Message(c, http.StatusOK, msg)
}

func bindBook(c *gin.Context) (model.BookRequest, bool) {
	var req model.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return req, false
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return req, false
	}
	return req, true
}

func (h *BookHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidBookID):
		response.BadRequest(c, err.Error())

	default:
		response.BackendError(c, err, http.StatusBadRequest)
	}
}
