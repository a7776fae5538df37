package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccessAndErrorResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Success(c, map[string]string{"trackingCode": "K7Q2ZD"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, "success", body["status"])
	require.Equal(t, "K7Q2ZD", body["data"].(map[string]any)["trackingCode"])

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Created(c, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, decode(t, w), "data")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	NotFound(c, "Report not found", "REPORT_NOT_FOUND")
	require.Equal(t, http.StatusNotFound, w.Code)
	body = decode(t, w)
	require.Equal(t, "Report not found", body["error"])
	require.Equal(t, "REPORT_NOT_FOUND", body["code"])
}

func TestErrorWithoutCodeOmitsField(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Error(c, http.StatusTeapot, "short and stout")

	require.Equal(t, http.StatusTeapot, w.Code)
	require.NotContains(t, decode(t, w), "code")
}

func TestNamedHelpers(t *testing.T) {
	cases := []struct {
		name   string
		write  func(*gin.Context)
		status int
		code   string
	}{
		{"bind", func(c *gin.Context) { BindJSONError(c, errors.New("unexpected EOF in \"title\"")) }, http.StatusBadRequest, "INVALID_JSON"},
		{"validation", func(c *gin.Context) { ValidationFailed(c, "title is required") }, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"database", func(c *gin.Context) { DatabaseError(c, "store unavailable") }, http.StatusInternalServerError, "DATABASE_ERROR"},
		{"authn", func(c *gin.Context) { AuthenticationError(c, "bad credentials") }, http.StatusUnauthorized, "AUTH_FAILED"},
		{"authz", func(c *gin.Context) { AuthorizationError(c, "teacher access required") }, http.StatusForbidden, "FORBIDDEN"},
		{"unavailable", func(c *gin.Context) { ServiceUnavailable(c, "try later", "LOOKUP_FAILED") }, http.StatusServiceUnavailable, "LOOKUP_FAILED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tc.write(c)

			require.Equal(t, tc.status, w.Code)
			body := decode(t, w)
			require.Equal(t, tc.code, body["code"])
			require.NotContains(t, body["error"], "EOF")
		})
	}
}
