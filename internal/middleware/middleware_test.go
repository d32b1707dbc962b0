package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trizen-careers/internal/auth"
	"trizen-careers/internal/profile"
	"trizen-careers/internal/storage"
	"trizen-careers/internal/utilities"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.SecretKey = "middleware-test-secret"
	m.Run()
}

func profileEngine(reg *profile.Registry) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", ProfileIdentity(reg), func(c *gin.Context) {
		p, err := utilities.ExtractProfile(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.ID})
	})
	return r
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestProfileIdentityIssuesTokenForNewVisitor(t *testing.T) {
	reg := profile.NewRegistry(storage.NewMemoryStore(), nil)
	r := profileEngine(reg)

	rec := get(r, "/whoami", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	token := rec.Header().Get(utilities.ProfileTokenHeader)
	require.NotEmpty(t, token)
	id, err := auth.ProfileID(token)
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), id)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == utilities.ProfileCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestProfileIdentityReusesValidToken(t *testing.T) {
	reg := profile.NewRegistry(storage.NewMemoryStore(), nil)
	r := profileEngine(reg)

	id := uuid.New()
	token, err := auth.GenerateProfileToken(id)
	require.NoError(t, err)

	rec := get(r, "/whoami", map[string]string{utilities.ProfileTokenHeader: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(utilities.ProfileTokenHeader))
	assert.Contains(t, rec.Body.String(), id.String())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: utilities.ProfileCookieName, Value: token})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), id.String())
	assert.Equal(t, 1, reg.Len())
}

func TestProfileIdentityReplacesInvalidToken(t *testing.T) {
	reg := profile.NewRegistry(storage.NewMemoryStore(), nil)
	r := profileEngine(reg)

	rec := get(r, "/whoami", map[string]string{utilities.ProfileTokenHeader: "forged.token.value"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(utilities.ProfileTokenHeader))
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/limited", newRateLimiter(time.Minute, 2), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, get(r, "/limited", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterKeysByProfile(t *testing.T) {
	reg := profile.NewRegistry(storage.NewMemoryStore(), nil)
	r := gin.New()
	r.GET("/limited", ProfileIdentity(reg), newRateLimiter(time.Minute, 1), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	tokenA, err := auth.GenerateProfileToken(uuid.New())
	require.NoError(t, err)
	tokenB, err := auth.GenerateProfileToken(uuid.New())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(r, "/limited", map[string]string{utilities.ProfileTokenHeader: tokenA}).Code)
	assert.Equal(t, http.StatusOK, get(r, "/limited", map[string]string{utilities.ProfileTokenHeader: tokenB}).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/limited", map[string]string{utilities.ProfileTokenHeader: tokenA}).Code)
}

func TestRateLimiterKeysTokenlessRequestsByIP(t *testing.T) {
	reg := profile.NewRegistry(storage.NewMemoryStore(), nil)
	r := gin.New()
	r.POST("/limited", ProfileIdentity(reg), newRateLimiter(time.Minute, 1), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	rejected := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/limited", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			rejected++
		}
	}
	assert.Equal(t, 19, rejected)

	req := httptest.NewRequest(http.MethodPost, "/limited", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEnvRateLimitMiddlewareAllowsTraffic(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS_PER_SECOND", "not-a-number")
	r := gin.New()
	r.GET("/limited", EnvRateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, get(r, "/limited", nil).Code)
}

func TestSafeHeader(t *testing.T) {
	r := gin.New()
	r.Use(SafeHeader())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := get(r, "/", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.POST("/upload", SizeLimit(16), func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Entity too large"})
			return
		}
		c.Status(http.StatusOK)
	})

	post := func(body io.Reader, length int64) int {
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.ContentLength = length
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post(strings.NewReader("small"), 5))
	assert.Equal(t, http.StatusRequestEntityTooLarge, post(bytes.NewReader(make([]byte, 64)), 64))
	// unknown length still capped while reading
	assert.Equal(t, http.StatusRequestEntityTooLarge, post(bytes.NewReader(make([]byte, 64)), -1))
}
