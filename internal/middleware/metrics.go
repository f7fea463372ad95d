package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// MailPublishes counts outbound mail enqueue attempts by template and outcome.
	MailPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_mail_publishes_total",
		Help: "Total number of mail queue publishes by template and outcome",
	}, []string{"template", "outcome"})

	// ConversationCreates counts conversation find-or-create outcomes.
	ConversationCreates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_conversation_creates_total",
		Help: "Total number of conversation lookups by outcome (existing, created, conflict)",
	}, []string{"outcome"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the fiberprometheus middleware for the given service
// name. Its collectors live in the global prometheus registry, so one shared
// instance is created on first use; later calls return it regardless of name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware wraps the fiberprometheus handler as a Fiber middleware.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
