package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"mtcreport/services"
)

// HandlePrefill drafts the chemistry and mechanical tables from an analyzed
// dataset and the chosen heats, with the grade master specs applied.
// Route: POST /api/mtc/prefill
func HandlePrefill(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req services.PrefillRequest
		if err := e.BindBody(&req); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid prefill data")
		}

		draft := services.BuildPrefill(req)
		draft = services.ApplySavedSpecs(app, draft, req.Grade)
		return e.JSON(http.StatusOK, draft)
	}
}
