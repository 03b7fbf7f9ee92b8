package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/test", nil)
	handler(c)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return resp
}

func TestSuccess(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Success(c, map[string]string{"name": "riverside remodel"})
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
	if resp.Message != "ok" {
		t.Errorf("expected message 'ok', got %q", resp.Message)
	}
}

func TestCreated(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Created(c, map[string]int{"id": 1})
	})

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestError_AppError(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"bad request", NewBadRequest("missing email"), http.StatusBadRequest},
		{"unauthorized", NewUnauthorized("no session"), http.StatusUnauthorized},
		{"forbidden", NewForbidden("role insufficient"), http.StatusForbidden},
		{"not found", NewNotFound("no such change order"), http.StatusNotFound},
		{"conflict", NewConflict("already invited"), http.StatusConflict},
		{"gone", NewGone("link expired"), http.StatusGone},
		{"server error", NewServerError("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := performRequest(func(c *gin.Context) {
				Error(c, tc.err)
			})

			if w.Code != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, w.Code)
			}

			resp := parseResponse(t, w)
			if resp.Code != tc.err.Code {
				t.Errorf("expected code %d, got %d", tc.err.Code, resp.Code)
			}
			if resp.Message != tc.err.Message {
				t.Errorf("expected message %q, got %q", tc.err.Message, resp.Message)
			}
		})
	}
}

func TestError_WrappedAppError(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), NewGone("link already used"))

	w := performRequest(func(c *gin.Context) {
		Error(c, wrapped)
	})

	if w.Code != http.StatusGone {
		t.Errorf("expected status %d, got %d", http.StatusGone, w.Code)
	}
}

func TestError_GenericError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, errors.New("database exploded"))
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Code != 500 {
		t.Errorf("expected code 500, got %d", resp.Code)
	}
}

func TestGone(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Gone(c, "this link has expired")
	})

	if w.Code != http.StatusGone {
		t.Errorf("expected status %d, got %d", http.StatusGone, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Code != 410 {
		t.Errorf("expected code 410, got %d", resp.Code)
	}
}

func TestAppError_ErrorInterface(t *testing.T) {
	err := NewConflict("a member with this email already exists")
	if err.Error() != "a member with this email already exists" {
		t.Errorf("Error() = %q", err.Error())
	}
}
