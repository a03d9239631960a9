package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"mtcreport/services"
)

// HandleGetSettings returns the saved style settings.
// Route: GET /api/mtc/settings
func HandleGetSettings(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s, err := services.LoadSettings(app)
		if err != nil {
			log.Printf("settings: load: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to load settings")
		}
		return e.JSON(http.StatusOK, s)
	}
}

// HandleSaveSettings stores the style settings. Options left out of the body
// keep their saved values.
// Route: POST /api/mtc/settings
func HandleSaveSettings(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body services.Settings
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid settings data")
		}

		current, err := services.LoadSettings(app)
		if err != nil {
			log.Printf("settings: load: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to load settings")
		}
		merged := current.Merge(body)
		if err := merged.Validate(); err != nil {
			return apiError(e, http.StatusBadRequest, err.Error())
		}
		if err := services.SaveSettings(app, merged); err != nil {
			log.Printf("settings: save: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to save settings")
		}
		return apiSuccess(e)
	}
}
