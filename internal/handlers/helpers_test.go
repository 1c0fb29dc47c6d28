package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"social-service/internal/middleware"
	"social-service/internal/models"
	"social-service/internal/services"
)

var now = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

var fastRetry = services.RetryPolicy{MaxTries: 3, InitialInterval: time.Millisecond}

// asActor stands in for JWTAuth. The X-Test-User and X-Test-Role headers pick the caller.
func asActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User"); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			c.Set(middleware.ContextUserID, id)
			role := models.RoleCustomer
			if r, ok := models.ParseActorRole(c.GetHeader("X-Test-Role")); ok {
				role = r
			}
			c.Set(middleware.ContextRole, role)
		}
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(asActor())
	return r
}

type caller struct {
	userID int64
	role   models.ActorRole
}

var anonymous = caller{}

func customer(id int64) caller { return caller{userID: id, role: models.RoleCustomer} }

func staff(id int64) caller { return caller{userID: id, role: models.RoleStaff} }

func do(t *testing.T, r http.Handler, who caller, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if who.userID != 0 {
		req.Header.Set("X-Test-User", strconv.FormatInt(who.userID, 10))
		req.Header.Set("X-Test-Role", string(who.role))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return string(decode[errorResponse](t, rec).Code)
}

func newDirectory(t *testing.T, names map[int64]string) services.UserDirectory {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/auth/user/"), 10, 64)
		name, ok := names[id]
		if err != nil || !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(services.UserDTO{ID: id, Username: name})
	}))
	t.Cleanup(srv.Close)
	return services.NewUserService(srv.URL)
}
