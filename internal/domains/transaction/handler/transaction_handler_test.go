package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-gateway/internal/domains/transaction/service"
	"library-gateway/internal/infrastructure/backend"
	"library-gateway/internal/infrastructure/backend/backendtest"
)

func setup(t *testing.T) (*backendtest.Fake, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := backendtest.New()
	fake.Books = []backend.Book{{BookID: 1, Title: "Dune", Author: "Frank Herbert", AvailableCopies: 1}}
	fake.Users = []backend.User{{UserID: 7, Username: "alice"}}
	for i := int64(1); i <= 3; i++ {
		fake.Transactions = append(fake.Transactions, backend.Transaction{
			TransactionID: i, MemberID: 7, BookID: 1, Status: "BORROWED",
		})
	}

	h := NewTransactionHandler(service.NewTransactionService(fake, 1))
	r := gin.New()
	r.POST("/admin/issue-book", h.IssueBook)
	r.POST("/admin/return-book", h.ReturnBook)
	r.GET("/admin/transactions", h.ListTransactions)
	r.GET("/admin/stats", h.GetStats)
	r.GET("/user/:user_id/transactions", h.ListUserTransactions)
	return fake, r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func Test_ListTransactions_PageShape(t *testing.T) {
	_, r := setup(t)

	w := serve(r, http.MethodGet, "/admin/transactions?page=2&limit=2", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Transactions []map[string]any `json:"transactions"`
		TotalCount   int              `json:"total_count"`
		Page         int              `json:"page"`
		Limit        int              `json:"limit"`
		TotalPages   int              `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Transactions, 1)
	assert.Equal(t, 3, body.TotalCount)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 2, body.Limit)
	assert.Equal(t, 2, body.TotalPages)
	assert.Equal(t, "alice", body.Transactions[0]["username"])
}

func Test_ListTransactions_DefaultsOnGarbageParams(t *testing.T) {
	_, r := setup(t)

	w := serve(r, http.MethodGet, "/admin/transactions?page=abc&limit=0", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"page":1`)
	assert.Contains(t, w.Body.String(), `"limit":20`)
}

func Test_ListTransactions_BeyondLastPage_IsEmptyArray(t *testing.T) {
	_, r := setup(t)

	w := serve(r, http.MethodGet, "/admin/transactions?page=9", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"transactions":[]`)
	assert.Contains(t, w.Body.String(), `"total_count":3`)
}

func Test_ListTransactions_MaxLimit_IsEmptySecondPage(t *testing.T) {
	_, r := setup(t)

	w := serve(r, http.MethodGet, "/admin/transactions?page=2&limit=9223372036854775807", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Transactions []map[string]any `json:"transactions"`
		TotalPages   int              `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Transactions)
	assert.NotNil(t, body.Transactions)
	assert.Equal(t, 1, body.TotalPages)
}

func Test_ListTransactions_InvalidStatus(t *testing.T) {
	_, r := setup(t)

	w := serve(r, http.MethodGet, "/admin/transactions?status=LOST", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_IssueBook_Created(t *testing.T) {
	_, r := setup(t)

	w := serve(r, http.MethodPost, "/admin/issue-book", `{"book_id":1,"user_id":7}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"transaction_id"`)
}

func Test_IssueBook_MissingFields(t *testing.T) {
	fake, r := setup(t)

	w := serve(r, http.MethodPost, "/admin/issue-book", `{"book_id":1}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, fake.CallCount("IssueBook"))
}

func Test_IssueBook_Unavailable(t *testing.T) {
	fake, r := setup(t)
	fake.FailWith("IssueBook", backendtest.Unavailable("IssueBook"))

	w := serve(r, http.MethodPost, "/admin/issue-book", `{"book_id":1,"user_id":7}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Service unavailable"}`, w.Body.String())
}

func Test_ReturnBook_AlreadyReturned(t *testing.T) {
	fake, r := setup(t)
	fake.Transactions[0].Status = "RETURNED"

	w := serve(r, http.MethodPost, "/admin/return-book", `{"transaction_id":1}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Book already returned"}`, w.Body.String())
}

func Test_ReturnBook_OK(t *testing.T) {
	_, r := setup(t)

	w := serve(r, http.MethodPost, "/admin/return-book", `{"transaction_id":2}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"transaction_id":2`)
	assert.Contains(t, w.Body.String(), `"fine_amount"`)
}

func Test_GetStats_OK(t *testing.T) {
	_, r := setup(t)

	w := serve(r, http.MethodGet, "/admin/stats", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"borrowed_books":3,"overdue_books":0}`, w.Body.String())
}

func Test_ListUserTransactions_InvalidUser(t *testing.T) {
	_, r := setup(t)

	w := serve(r, http.MethodGet, "/user/zero/transactions", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
