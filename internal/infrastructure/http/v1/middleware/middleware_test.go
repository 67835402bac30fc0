package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodtrack/internal/core/apperror"
	appctx "prodtrack/internal/core/context"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.Use(mw...)
	return r
}

func do(t *testing.T, r http.Handler, req *http.Request) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body errorBody
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not found", err: apperror.NewNotFound("order", "x"), wantStatus: http.StatusNotFound, wantCode: apperror.CodeNotFound},
		{name: "has dependents", err: apperror.NewHasDependents("customer", "x", "orders"), wantStatus: http.StatusUnprocessableEntity, wantCode: apperror.CodeHasDependents},
		{name: "allocation failed", err: apperror.NewAllocationFailed("order-sequence", errors.New("boom")), wantStatus: http.StatusInternalServerError, wantCode: apperror.CodeAllocationFailed},
		{name: "wrapped app error", err: errors.Join(errors.New("ctx"), apperror.NewValidation("bad")), wantStatus: http.StatusBadRequest, wantCode: apperror.CodeValidation},
		{name: "deadline", err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout, wantCode: apperror.CodeTimeout},
		{name: "plain error", err: errors.New("driver exploded"), wantStatus: http.StatusInternalServerError, wantCode: apperror.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine()
			r.GET("/x", func(c *gin.Context) {
				_ = c.Error(tt.err)
				c.Abort()
			})

			w, body := do(t, r, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, body.Code)
			if tt.wantStatus >= http.StatusInternalServerError {
				assert.NotEmpty(t, body.Details["request_id"])
				assert.NotContains(t, w.Body.String(), "boom")
				assert.NotContains(t, w.Body.String(), "driver exploded")
			}
		})
	}
}

func TestErrorHandler_KeepsWrittenResponse(t *testing.T) {
	r := newEngine()
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusTeapot, "short and stout")
		_ = c.Error(errors.New("late"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "short and stout", w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := newEngine()
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })

	w, body := do(t, r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, body.Code)
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestTrace_PropagatesRequestID(t *testing.T) {
	r := newEngine()
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = appctx.GetRequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
}

type stubValidator struct {
	user *appctx.UserContext
}

func (v stubValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return v.user, nil
}

func TestAuth(t *testing.T) {
	validator := stubValidator{user: &appctx.UserContext{UserID: "u-1", Email: "a@b.c"}}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK},
		{name: "scheme is case insensitive", header: "bearer good", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(Auth(validator))
			r.GET("/me", func(c *gin.Context) {
				c.String(http.StatusOK, appctx.GetUserID(c.Request.Context()))
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "u-1", w.Body.String())
			}
		})
	}
}

func TestOptionalAuth_IgnoresBadToken(t *testing.T) {
	r := newEngine(OptionalAuth(stubValidator{user: &appctx.UserContext{UserID: "u-1"}}))
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, "user=%s", appctx.GetUserID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user=", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "user=u-1", w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		user       *appctx.UserContext
		wantStatus int
	}{
		{name: "anonymous", wantStatus: http.StatusUnauthorized},
		{name: "regular user", user: &appctx.UserContext{UserID: "u"}, wantStatus: http.StatusForbidden},
		{name: "admin", user: &appctx.UserContext{UserID: "u", IsAdmin: true}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(func(c *gin.Context) {
				if tt.user != nil {
					c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), tt.user))
				}
				c.Next()
			}, RequireAdmin())
			r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestTimeout(t *testing.T) {
	r := newEngine(Timeout(20 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(20*time.Millisecond), deadline, time.Second)

		<-c.Request.Context().Done()
		_ = c.Error(c.Request.Context().Err())
	})

	w, body := do(t, r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, apperror.CodeTimeout, body.Code)
}

func TestTimeout_Disabled(t *testing.T) {
	r := newEngine(Timeout(0))
	r.GET("/x", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.False(t, ok)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
