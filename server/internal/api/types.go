package api

import (
	"github.com/launchdash/launchdash/server/internal/dataset"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status  string               `json:"status"`
	Records int                  `json:"records"`
	Sites   int                  `json:"sites"`
	Payload dataset.PayloadStats `json:"payload"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
