package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestNilRateLimiterAllowsEverything(t *testing.T) {
	limiter := NewRecipeCreationRateLimiter(nil, nil)
	require.Nil(t, limiter)

	r := gin.New()
	r.GET("/", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiterWithRedis(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	limiter := NewRateLimiter(client, RateLimitConfig{
		Window:    time.Minute,
		Limit:     2,
		KeyPrefix: "rate_limit:test:" + uuid.NewString(),
	}, nil)
	fixed := time.Date(2024, 5, 1, 10, 0, 30, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	userID := uuid.New()
	r := gin.New()
	r.POST("/",
		func(c *gin.Context) { c.Set(userIDKey, userID); c.Next() },
		limiter.Middleware(),
		func(c *gin.Context) { c.Status(http.StatusCreated) },
	)

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		r.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/", nil))
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "30", last.Header().Get("Retry-After"))

	remaining, reset, err := limiter.Remaining(context.Background(), "user:"+userID.String())
	require.NoError(t, err)
	assert.Zero(t, remaining)
	assert.Equal(t, fixed.Truncate(time.Minute).Add(time.Minute), reset)

	remaining, _, err = limiter.Remaining(context.Background(), "user:"+uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestRateLimiterPerParam(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	limiter := NewRateLimiter(client, RateLimitConfig{
		Window:    time.Hour,
		Limit:     1,
		KeyPrefix: "rate_limit:test:" + uuid.NewString(),
		PerParam:  "id",
	}, nil)

	r := gin.New()
	r.PATCH("/recipes/:id", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	patch := func(id string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/recipes/"+id, nil))
		return w.Code
	}
	assert.Equal(t, http.StatusOK, patch("a"))
	assert.Equal(t, http.StatusTooManyRequests, patch("a"))
	assert.Equal(t, http.StatusOK, patch("b"), "each recipe has its own budget")
}
