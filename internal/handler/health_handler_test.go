package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"filewise/internal/handler"
)

func TestHealthHandler_Readiness(t *testing.T) {
	ok := handler.HealthCheck{Name: "database", Check: func(context.Context) error { return nil }}
	down := handler.HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp") }}

	h := handler.NewHealthHandler(ok)
	c, w := newJSONContext(t, http.MethodGet, "/readyz", nil)
	h.Readiness(c)
	assert.Equal(t, http.StatusOK, w.Code)

	h = handler.NewHealthHandler(ok, down)
	c, w = newJSONContext(t, http.MethodGet, "/readyz", nil)
	h.Readiness(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis not reachable")
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler()
	c, w := newJSONContext(t, http.MethodGet, "/healthz", nil)
	h.Liveness(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
