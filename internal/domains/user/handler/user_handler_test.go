package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-gateway/internal/domains/user/service"
	"library-gateway/internal/infrastructure/backend"
	"library-gateway/internal/infrastructure/backend/backendtest"
)

func setup(t *testing.T) (*backendtest.Fake, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := backendtest.New()
	fake.Users = []backend.User{
		{UserID: 1, Username: "admin", Email: "admin@library.test", Role: "ADMIN", IsActive: true},
		{UserID: 7, Username: "alice", Email: "alice@library.test", Role: "USER", IsActive: true},
	}
	fake.Stats[7] = backend.GetUserStatsResponse{
		TotalBooksTaken:   4,
		CurrentlyBorrowed: 1,
		OverdueBooks:      1,
		TotalFine:         decimal.RequireFromString("12.50"),
	}

	h := NewUserHandler(service.NewUserService(fake))
	r := gin.New()
	r.GET("/admin/users", h.ListUsers)
	r.POST("/admin/users", h.CreateUser)
	r.PUT("/admin/users/:user_id", h.UpdateUser)
	r.GET("/user/:user_id/stats", h.GetStats)
	return fake, r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func Test_ListUsers_OK(t *testing.T) {
	_, r := setup(t)

	w := serve(r, http.MethodGet, "/admin/users", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"user_id":1,"username":"admin","email":"admin@library.test","role":"ADMIN","is_active":true},
		{"user_id":7,"username":"alice","email":"alice@library.test","role":"USER","is_active":true}
	]`, w.Body.String())
}

func Test_CreateUser_Created(t *testing.T) {
	fake, r := setup(t)

	w := serve(r, http.MethodPost, "/admin/users",
		`{"username":"bob","email":"Bob@Library.test","password":"secret","role":"user"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id"`)
	require.Len(t, fake.Users, 3)
	assert.Equal(t, "USER", fake.Users[2].Role)
	assert.Equal(t, "bob@library.test", fake.Users[2].Email)
}

func Test_CreateUser_Duplicate_IsBadRequest(t *testing.T) {
	_, r := setup(t)

	w := serve(r, http.MethodPost, "/admin/users",
		`{"username":"alice","email":"a2@library.test","password":"secret","role":"USER"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Username already exists"}`, w.Body.String())
}

func Test_CreateUser_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad email", `{"username":"bob","email":"nope","password":"x","role":"USER"}`},
		{"bad role", `{"username":"bob","email":"b@l.test","password":"x","role":"LIBRARIAN"}`},
		{"missing password", `{"username":"bob","email":"b@l.test","role":"USER"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, r := setup(t)

			w := serve(r, http.MethodPost, "/admin/users", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 0, fake.CallCount("CreateUser"))
		})
	}
}

func Test_UpdateUser_Deactivates(t *testing.T) {
	fake, r := setup(t)

	w := serve(r, http.MethodPut, "/admin/users/7",
		`{"username":"alice","email":"alice@library.test","role":"USER","is_active":false}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, fake.Users[1].IsActive)
}

func Test_UpdateUser_Unavailable(t *testing.T) {
	fake, r := setup(t)
	fake.FailWith("UpdateUser", backendtest.Unavailable("UpdateUser"))

	w := serve(r, http.MethodPut, "/admin/users/7",
		`{"username":"alice","email":"alice@library.test","role":"USER","is_active":true}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func Test_GetStats_OK(t *testing.T) {
	_, r := setup(t)

	w := serve(r, http.MethodGet, "/user/7/stats", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		TotalBooksTaken   int32           `json:"total_books_taken"`
		CurrentlyBorrowed int32           `json:"currently_borrowed"`
		OverdueBooks      int32           `json:"overdue_books"`
		TotalFine         decimal.Decimal `json:"total_fine"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int32(4), body.TotalBooksTaken)
	assert.Equal(t, int32(1), body.OverdueBooks)
	assert.True(t, decimal.RequireFromString("12.5").Equal(body.TotalFine))
}

func Test_GetStats_InvalidUser(t *testing.T) {
	fake, r := setup(t)

	w := serve(r, http.MethodGet, "/user/0/stats", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, fake.CallCount("GetUserStats"))
}
