package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"mtcreport/services"
)

// HandleListFormats returns every saved column view keyed by name.
// Route: GET /api/mtc/formats
func HandleListFormats(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		formats, err := services.ListFormats(app)
		if err != nil {
			log.Printf("formats: list: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to load formats")
		}
		return e.JSON(http.StatusOK, formats)
	}
}

// HandleSaveFormat creates or replaces a column view.
// Route: POST /api/mtc/formats
func HandleSaveFormat(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body struct {
			Name    string   `json:"name"`
			Columns []string `json:"columns"`
		}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid format data")
		}
		if strings.TrimSpace(body.Name) == "" {
			return apiError(e, http.StatusBadRequest, "Format name is required")
		}
		if err := services.SaveFormat(app, body.Name, body.Columns); err != nil {
			log.Printf("formats: save %q: %v", body.Name, err)
			return apiError(e, http.StatusInternalServerError, "Failed to save format")
		}
		return apiSuccess(e)
	}
}

// HandleRenameFormat moves a view to a new name.
// Route: PUT /api/mtc/formats/{name}
func HandleRenameFormat(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		name := e.Request.PathValue("name")

		var body struct {
			NewName string `json:"new_name"`
		}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid rename data")
		}
		if strings.TrimSpace(body.NewName) == "" {
			return apiError(e, http.StatusBadRequest, "New name is required")
		}

		err := services.RenameFormat(app, name, body.NewName)
		if errors.Is(err, services.ErrFormatNotFound) {
			return apiError(e, http.StatusNotFound, "Format not found")
		}
		if err != nil {
			log.Printf("formats: rename %q: %v", name, err)
			return apiError(e, http.StatusInternalServerError, "Failed to rename format")
		}
		return apiSuccess(e)
	}
}

// HandleDeleteFormat removes a view.
// Route: DELETE /api/mtc/formats/{name}
func HandleDeleteFormat(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		name := e.Request.PathValue("name")
		if err := services.DeleteFormat(app, name); err != nil {
			log.Printf("formats: delete %q: %v", name, err)
			return apiError(e, http.StatusInternalServerError, "Failed to delete format")
		}
		return apiSuccess(e)
	}
}
