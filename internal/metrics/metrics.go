// Package metrics declares the gateway's prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_logins_total",
			Help: "Login attempts by surface and outcome.",
		},
		[]string{"surface", "outcome"},
	)

	TokenRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_token_rejections_total",
			Help: "Bearer tokens rejected, by internal reason.",
		},
		[]string{"reason"},
	)

	AuthorizationDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_authorization_denials_total",
			Help: "Requests denied by the role or ability gate, by endpoint.",
		},
		[]string{"endpoint", "cause"},
	)

	TokensIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_tokens_issued_total",
		Help: "Access tokens issued, including login tokens.",
	})

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_events_published_total",
			Help: "Domain events handed to the broker, by name and outcome.",
		},
		[]string{"name", "outcome"},
	)

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})
)
