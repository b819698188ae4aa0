package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"library-gateway/internal/domains/auth/service"
	"library-gateway/internal/infrastructure/backend"
	"library-gateway/internal/infrastructure/backend/backendtest"
)

func setup(t *testing.T) (*backendtest.Fake, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := backendtest.New()
	fake.Users = []backend.User{{UserID: 7, Username: "alice", Email: "alice@library.test", Role: "USER", IsActive: true}}
	fake.Credentials["alice"] = "wonderland"

	h := NewAuthHandler(service.NewAuthService(fake))
	r := gin.New()
	r.POST("/login", h.Login)
	return fake, r
}

func login(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func Test_Login_OK(t *testing.T) {
	_, r := setup(t)

	w := login(r, `{"username":"alice","password":"wonderland"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"username":"alice","email":"alice@library.test","role":"USER","message":"Login successful"}`, w.Body.String())
}

func Test_Login_WrongPassword_Is401(t *testing.T) {
	_, r := setup(t)

	w := login(r, `{"username":"alice","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid username or password"}`, w.Body.String())
}

func Test_Login_BackendDown_Is500(t *testing.T) {
	fake, r := setup(t)
	fake.FailWith("AuthenticateUser", backendtest.Unavailable("AuthenticateUser"))

	w := login(r, `{"username":"alice","password":"wonderland"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Service unavailable"}`, w.Body.String())
}

func Test_Login_MissingFields_Is400(t *testing.T) {
	fake, r := setup(t)

	w := login(r, `{"username":"alice"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, fake.CallCount("AuthenticateUser"))
}
