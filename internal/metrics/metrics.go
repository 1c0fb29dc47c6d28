package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

var (
	friendMetricsOnce sync.Once
	domainMetricsOnce sync.Once

	friendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_requests_total",
			Help: "Total number of friend request attempts",
		},
		[]string{"status"},
	)

	friendAcceptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_accepts_total",
			Help: "Total number of friend request accept attempts",
		},
		[]string{"status"},
	)

	friendRejectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_rejects_total",
			Help: "Total number of friend request reject attempts",
		},
		[]string{"status"},
	)

	postJoinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_joins_total",
			Help: "Total number of open reservation join attempts",
		},
		[]string{"status", "code"},
	)

	reservationStatusChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_status_changes_total",
			Help: "Total number of reservation status change attempts",
		},
		[]string{"status", "target"},
	)
)

func RegisterFriendMetrics() {
	friendMetricsOnce.Do(func() {
		prometheus.MustRegister(friendRequestsTotal, friendAcceptsTotal, friendRejectsTotal)
	})
}

func RegisterDomainMetrics() {
	RegisterFriendMetrics()
	domainMetricsOnce.Do(func() {
		prometheus.MustRegister(postJoinsTotal, reservationStatusChangesTotal)
	})
}

func IncFriendRequest(status string) {
	RegisterFriendMetrics()
	friendRequestsTotal.WithLabelValues(status).Inc()
}

func IncFriendAccept(status string) {
	RegisterFriendMetrics()
	friendAcceptsTotal.WithLabelValues(status).Inc()
}

func IncFriendReject(status string) {
	RegisterFriendMetrics()
	friendRejectsTotal.WithLabelValues(status).Inc()
}

// IncPostJoin counts a join attempt; code is the error code on failure and "" on success.
func IncPostJoin(status, code string) {
	RegisterDomainMetrics()
	postJoinsTotal.WithLabelValues(status, code).Inc()
}

func IncReservationStatusChange(status, target string) {
	RegisterDomainMetrics()
	reservationStatusChangesTotal.WithLabelValues(status, target).Inc()
}
