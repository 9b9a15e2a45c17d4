package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

type HealthChecker struct {
	infra Infrastructure
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return &HealthChecker{
		infra: infra,
	}
}

// check pings each backing store concurrently and reports per-dependency
// results.
func (h *HealthChecker) check(ctx context.Context) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	type result struct {
		name string
		err  error
	}
	results := make(chan result, 2)

	go func() {
		results <- result{"postgres", h.infra.Postgres().Ping(ctx)}
	}()
	go func() {
		results <- result{"redis", h.infra.Redis().Ping(ctx)}
	}()

	out := make(map[string]error, 2)
	for i := 0; i < 2; i++ {
		r := <-results
		out[r.name] = r.err
	}
	return out
}

func (h *HealthChecker) Handler(c *gin.Context) {
	status := http.StatusOK
	overall := "pass"
	checks := gin.H{}

	for name, err := range h.check(c.Request.Context()) {
		if err != nil {
			status = http.StatusServiceUnavailable
			overall = "fail"
			checks[name] = err.Error()
			continue
		}
		checks[name] = "pass"
	}

	c.JSON(status, gin.H{
		"status": overall,
		"checks": checks,
	})
}
