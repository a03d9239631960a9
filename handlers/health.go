package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"
)

// HandleHealth reports that the service is up.
// Route: GET /api/mtc/health
func HandleHealth() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	}
}
