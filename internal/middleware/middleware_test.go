package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-service/internal/models"
)

const testSecret = "secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/whoami", func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "role": actor.Role})
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doGet(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthSetsActor(t *testing.T) {
	r := newRouter(JWTAuth(testSecret))

	w := doGet(r, "/whoami", signToken(t, jwt.MapClaims{"user_id": 7, "role": "staff"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"role":"staff"}`, w.Body.String())

	w = doGet(r, "/whoami", signToken(t, jwt.MapClaims{"user_id": 8}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":8,"role":"customer"}`, w.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	r := newRouter(JWTAuth(testSecret))

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/whoami", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/whoami", "not-a-token").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/whoami", signToken(t, jwt.MapClaims{"role": "staff"})).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/whoami", signToken(t, jwt.MapClaims{"user_id": 1, "role": "admin"})).Code)

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1}).SignedString([]byte("other"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/whoami", other).Code)

	assert.Equal(t, http.StatusOK, doGet(r, "/healthz", "").Code)
}

func TestActorFromContextWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := ActorFromContext(c)
	assert.False(t, ok)

	c.Set(ContextUserID, int64(3))
	actor, ok := ActorFromContext(c)
	require.True(t, ok)
	assert.Equal(t, models.Actor{UserID: 3, Role: models.RoleCustomer}, actor)
}

func TestRateLimitPerUser(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := newRouter(JWTAuth(testSecret), RateLimit(rl))
	alice := signToken(t, jwt.MapClaims{"user_id": 1})
	bob := signToken(t, jwt.MapClaims{"user_id": 2})

	assert.Equal(t, http.StatusOK, doGet(r, "/whoami", alice).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/whoami", alice).Code)
	w := doGet(r, "/whoami", alice)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, doGet(r, "/whoami", bob).Code)
}

func TestRateLimiterSweepDropsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	rl.limiter("user:1")
	clock = clock.Add(10 * time.Minute)
	rl.limiter("user:2")

	assert.Equal(t, 1, rl.Sweep(5*time.Minute))
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "user:2")
}
