package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, allowed []string, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(New(allowed))
	router.Any("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowList(t *testing.T) {
	allowed := []string{"https://placements.college.edu", "*.preview.college.edu"}

	rec := serve(t, allowed, http.MethodGet, "https://placements.college.edu/")
	assert.Equal(t, "https://placements.college.edu", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(t, allowed, http.MethodGet, "https://pr-12.preview.college.edu")
	assert.Equal(t, "https://pr-12.preview.college.edu", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(t, allowed, http.MethodGet, "https://evil.example.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	rec := serve(t, nil, http.MethodOptions, "https://any.example.com")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://any.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
