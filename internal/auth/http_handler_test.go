package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookcatalog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthHandler() *HTTPHandler {
	return NewHTTPHandler(NewService(testSecret, time.Hour, NewMemoryRepo()))
}

func TestHTTPHandlerRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler := newAuthHandler()
		w := httptest.NewRecorder()
		handler.Register(w, testutil.NewRequest(http.MethodPost, "/api/v1/auth/register",
			map[string]string{"username": "alice", "password": "hunter22"}))

		assert.Equal(t, http.StatusCreated, w.Code)
		body := testutil.DecodeBody(w)
		assert.Equal(t, true, body["success"])

		data := body["data"].(map[string]interface{})
		assert.Equal(t, "alice", data["username"])
		assert.NotContains(t, data, "password_hash")
	})

	t.Run("duplicate username", func(t *testing.T) {
		handler := newAuthHandler()
		req := map[string]string{"username": "alice", "password": "hunter22"}

		w := httptest.NewRecorder()
		handler.Register(w, testutil.NewRequest(http.MethodPost, "/api/v1/auth/register", req))
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		handler.Register(w, testutil.NewRequest(http.MethodPost, "/api/v1/auth/register", req))
		assert.Equal(t, http.StatusConflict, w.Code)
		errObj := testutil.DecodeBody(w)["error"].(map[string]interface{})
		assert.Equal(t, "USER_EXISTS", errObj["code"])
	})

	t.Run("validation failure", func(t *testing.T) {
		handler := newAuthHandler()
		w := httptest.NewRecorder()
		handler.Register(w, testutil.NewRequest(http.MethodPost, "/api/v1/auth/register",
			map[string]string{"username": "al", "password": "x"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		errObj := testutil.DecodeBody(w)["error"].(map[string]interface{})
		assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
		assert.NotEmpty(t, errObj["details"])
	})

	t.Run("malformed body", func(t *testing.T) {
		handler := newAuthHandler()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)
		w := httptest.NewRecorder()
		handler.Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandlerLogin(t *testing.T) {
	handler := newAuthHandler()

	w := httptest.NewRecorder()
	handler.Register(w, testutil.NewRequest(http.MethodPost, "/api/v1/auth/register",
		map[string]string{"username": "alice", "password": "hunter22"}))
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, testutil.NewRequest(http.MethodPost, "/api/v1/auth/login",
			map[string]string{"username": "alice", "password": "hunter22"}))

		assert.Equal(t, http.StatusOK, w.Code)
		data := testutil.DecodeBody(w)["data"].(map[string]interface{})
		assert.NotEmpty(t, data["access_token"])
		assert.NotEmpty(t, data["expires_at"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, testutil.NewRequest(http.MethodPost, "/api/v1/auth/login",
			map[string]string{"username": "alice", "password": "wrong"}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		errObj := testutil.DecodeBody(w)["error"].(map[string]interface{})
		assert.Equal(t, "UNAUTHORIZED", errObj["code"])
	})

	t.Run("missing fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Login(w, testutil.NewRequest(http.MethodPost, "/api/v1/auth/login",
			map[string]string{"username": "alice"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
