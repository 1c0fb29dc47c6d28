package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-service/internal/metrics"
	"social-service/internal/mocks"
	"social-service/internal/models"
)

func setupFriendsMetricsRouter(handler *FriendHandler) *gin.Engine {
	r := newTestRouter()
	r.POST("/friends/request", handler.SendRequest)
	r.POST("/friends/requests/:id/accept", handler.AcceptRequest)
	r.POST("/friends/requests/:id/reject", handler.RejectRequest)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func fetchMetrics(t *testing.T, router http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

// metricValue finds name{labels} in a text exposition, labels written as
// `status="failed"` or `code="SLOTS_FULL",status="failed"`.
func metricValue(metricsBody, name, labels string) (float64, bool) {
	target := name + `{` + labels + `}`
	for _, line := range strings.Split(metricsBody, "\n") {
		if strings.HasPrefix(line, target+" ") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return 0, false
			}
			value, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return 0, false
			}
			return value, true
		}
	}
	return 0, false
}

func assertMetricIncrement(t *testing.T, router http.Handler, name, labels string, call func()) {
	t.Helper()
	before, _ := metricValue(fetchMetrics(t, router), name, labels)
	call()
	after, found := metricValue(fetchMetrics(t, router), name, labels)
	require.True(t, found)
	require.Greater(t, after, before)
}

func TestFriendRequestMetricsFailed(t *testing.T) {
	metrics.RegisterFriendMetrics()
	router := setupFriendsMetricsRouter(newFriendHandler(new(mocks.MockFriendRepository), nil, nil))

	assertMetricIncrement(t, router, "friend_requests_total", `status="failed"`, func() {
		rec := do(t, router, customer(1), http.MethodPost, "/friends/request", `{"to_user_id":"bad"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFriendAcceptMetricsFailed(t *testing.T) {
	metrics.RegisterFriendMetrics()
	repo := new(mocks.MockFriendRepository)
	router := setupFriendsMetricsRouter(newFriendHandler(repo, nil, nil))

	repo.On("GetRequest", mock.Anything, int64(10)).
		Return(&models.FriendRequest{ID: 10, FromUserID: 2, ToUserID: 3, Status: models.FriendRequestPending}, nil)

	assertMetricIncrement(t, router, "friend_accepts_total", `status="failed"`, func() {
		rec := do(t, router, customer(1), http.MethodPost, "/friends/requests/10/accept", "")
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestFriendRejectMetricsSuccess(t *testing.T) {
	metrics.RegisterFriendMetrics()
	repo := new(mocks.MockFriendRepository)
	router := setupFriendsMetricsRouter(newFriendHandler(repo, nil, nil))

	repo.On("GetRequest", mock.Anything, int64(11)).
		Return(&models.FriendRequest{ID: 11, FromUserID: 2, ToUserID: 1, Status: models.FriendRequestPending}, nil)
	repo.On("RejectRequest", mock.Anything, int64(11), now).Return(nil).Once()

	assertMetricIncrement(t, router, "friend_rejects_total", `status="success"`, func() {
		rec := do(t, router, customer(1), http.MethodPost, "/friends/requests/11/reject", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
