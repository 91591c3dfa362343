package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/emrsvc/domain"
	"github.com/you/emrsvc/internal/http/middleware"
)

var testCookies = middleware.CookieConfig{Name: "token", FederatedName: "fb_session"}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	return bytes.NewReader(b)
}

func newJSONRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		r = jsonBody(t, body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// serve runs req through a one-route engine
func serve(method, route string, req *http.Request, chain ...gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, route, chain...)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// withUser stands in for the JWT guard
func withUser(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := &domain.TokenClaims{UserID: userID, Role: role, SessionID: "sess-1"}
		c.Set(middleware.CtxUserID, userID)
		c.Set(middleware.CtxUserRole, role)
		c.Set(middleware.CtxSessionID, "sess-1")
		c.Set(middleware.CtxClaims, claims)
		c.Set(middleware.CtxUser, createTestUserForHandler(userID, role))
		c.Next()
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response body %q: %v", w.Body.String(), err)
	}
	return body
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func createTestUserForHandler(id, role string) *domain.User {
	return &domain.User{
		ID:        id,
		Email:     "test@example.com",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// validateValue compares nested maps and values
func validateValue(t *testing.T, key string, expected, actual interface{}) {
	t.Helper()

	expectedMap, expectedIsMap := expected.(map[string]interface{})
	actualMap, actualIsMap := actual.(map[string]interface{})

	if expectedIsMap && actualIsMap {
		for nestedKey, nestedExpected := range expectedMap {
			if nestedActual, exists := actualMap[nestedKey]; !exists {
				t.Errorf("expected key %s.%s not found in response", key, nestedKey)
			} else {
				validateValue(t, key+"."+nestedKey, nestedExpected, nestedActual)
			}
		}
	} else if expected != actual {
		t.Errorf("for key %s, expected %v, got %v", key, expected, actual)
	}
}

func assertBody(t *testing.T, w *httptest.ResponseRecorder, expected map[string]interface{}) {
	t.Helper()
	body := decode(t, w)
	for key, expectedValue := range expected {
		if actualValue, exists := body[key]; !exists {
			t.Errorf("expected key %s not found in response", key)
		} else {
			validateValue(t, key, expectedValue, actualValue)
		}
	}
}
