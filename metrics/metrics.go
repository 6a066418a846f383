package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CampgroundsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gocamp_campgrounds_created_total",
		Help: "Number of campgrounds created.",
	})
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gocamp_comments_created_total",
		Help: "Number of comments created.",
	})
	UsersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gocamp_users_registered_total",
		Help: "Number of registered accounts.",
	})
	PasswordResetRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gocamp_password_reset_requests_total",
		Help: "Number of password reset requests.",
	})
	PasswordResetsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gocamp_password_resets_completed_total",
		Help: "Number of completed password resets.",
	})
)
