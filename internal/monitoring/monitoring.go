package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LoginSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_success_total",
		Help: "Total successful login attempts",
	})

	LoginFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_failure_total",
		Help: "Total failed login attempts",
	}, []string{"reason"})

	RegisterSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "register_success_total",
		Help: "Total successful registrations",
	})

	PostsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "posts_created_total",
		Help: "Total posts successfully created",
	})

	VotesCast = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "votes_cast_total",
		Help: "Total votes written to the ledger",
	}, []string{"direction"})

	PasswordResetsRequested = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "password_resets_requested_total",
		Help: "Total forgot-password requests for known accounts",
	})
)

// Register attaches all collectors to the default registry. Call once at
// startup.
func Register() {
	prometheus.MustRegister(
		LoginSuccess,
		LoginFailure,
		RegisterSuccess,
		PostsCreated,
		VotesCast,
		PasswordResetsRequested,
	)
}
