package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"mtcreport/services"
)

// HandleListGrades returns the grade master keyed by grade.
// Route: GET /api/mtc/grade-master
func HandleListGrades(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		master, err := services.ListGradeMaster(app)
		if err != nil {
			log.Printf("grade_master: list: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to load grade master")
		}
		return e.JSON(http.StatusOK, master)
	}
}

// HandleSaveGrade creates or replaces a grade's specifications.
// Route: POST /api/mtc/grade-master
func HandleSaveGrade(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body struct {
			Grade string              `json:"grade"`
			Specs services.GradeSpecs `json:"specs"`
		}
		if err := e.BindBody(&body); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid grade data")
		}
		if strings.TrimSpace(body.Grade) == "" {
			return apiError(e, http.StatusBadRequest, "Grade is required")
		}
		if err := services.SaveGradeSpecs(app, body.Grade, body.Specs); err != nil {
			log.Printf("grade_master: save %q: %v", body.Grade, err)
			return apiError(e, http.StatusInternalServerError, "Failed to save grade")
		}
		return apiSuccess(e)
	}
}

// HandleDeleteGrade removes a grade.
// Route: DELETE /api/mtc/grade-master/{grade}
func HandleDeleteGrade(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		grade := e.Request.PathValue("grade")
		if err := services.DeleteGrade(app, grade); err != nil {
			log.Printf("grade_master: delete %q: %v", grade, err)
			return apiError(e, http.StatusInternalServerError, "Failed to delete grade")
		}
		return apiSuccess(e)
	}
}
