package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"mtcreport/services"
	"mtcreport/templates"
)

// generateRequest is the body shared by the generate endpoints. Settings in the
// request override the saved ones option by option.
type generateRequest struct {
	Settings services.Settings   `json:"settings"`
	Data     services.MTCPayload `json:"data"`
}

// readGenerateRequest binds and validates a generate body. On failure it has
// already written the error response and returns ok=false.
func readGenerateRequest(app *pocketbase.PocketBase, e *core.RequestEvent) (services.MTCPayload, services.Settings, bool) {
	var req generateRequest
	if err := e.BindBody(&req); err != nil {
		apiError(e, http.StatusBadRequest, "Invalid report data")
		return services.MTCPayload{}, services.Settings{}, false
	}
	if err := req.Data.Validate(); err != nil {
		apiError(e, http.StatusBadRequest, err.Error())
		return services.MTCPayload{}, services.Settings{}, false
	}

	stored, err := services.LoadSettings(app)
	if err != nil {
		log.Printf("generate: load settings: %v", err)
		stored = services.DefaultSettings()
	}
	settings := stored.Merge(req.Settings)
	if err := settings.Validate(); err != nil {
		apiError(e, http.StatusBadRequest, err.Error())
		return services.MTCPayload{}, services.Settings{}, false
	}
	return req.Data, settings, true
}

// templateRoot is the directory relative template names are looked up in: the
// directory holding the app's data dir.
func templateRoot(app *pocketbase.PocketBase) string {
	return filepath.Dir(app.DataDir())
}

func reportFilename(p services.MTCPayload, ext string) string {
	if inv := sanitizeFilename(p.InvoiceNo); inv != "" {
		return "MTC_" + inv + ext
	}
	return "Generated_Report" + ext
}

// HandleGenerateExcel fills the configured certificate template.
// Route: POST /api/mtc/generate-excel
func HandleGenerateExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		payload, settings, ok := readGenerateRequest(app, e)
		if !ok {
			return nil
		}

		start := time.Now()
		path, err := services.ResolveTemplatePath(settings.TemplatePath, templateRoot(app))
		if err != nil {
			observeGeneration("xlsx", start, err)
			return apiError(e, http.StatusNotFound, "Template file not found: "+settings.TemplatePath)
		}

		xlsxBytes, err := services.GenerateMTCExcel(path, payload, settings)
		observeGeneration("xlsx", start, err)
		if errors.Is(err, services.ErrTemplateNotFound) {
			return apiError(e, http.StatusNotFound, "Template file not found: "+settings.TemplatePath)
		}
		if err != nil {
			log.Printf("generate_excel: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to generate Excel file")
		}

		return sendAttachment(e, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			reportFilename(payload, ".xlsx"), xlsxBytes)
	}
}

// HandleGenerateHTML renders the printable certificate page.
// Route: POST /api/mtc/generate-html
func HandleGenerateHTML(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		payload, settings, ok := readGenerateRequest(app, e)
		if !ok {
			return nil
		}

		start := time.Now()
		var buf bytes.Buffer
		err := templates.MTCReport(services.BuildReportView(payload, settings)).Render(e.Request.Context(), &buf)
		observeGeneration("html", start, err)
		if err != nil {
			log.Printf("generate_html: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to render report")
		}
		return e.HTML(http.StatusOK, buf.String())
	}
}

// HandleGeneratePDF renders the certificate as a PDF download.
// Route: POST /api/mtc/generate-pdf
func HandleGeneratePDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		payload, settings, ok := readGenerateRequest(app, e)
		if !ok {
			return nil
		}

		start := time.Now()
		pdfBytes, err := services.GenerateMTCPDF(payload, settings)
		observeGeneration("pdf", start, err)
		if err != nil {
			log.Printf("generate_pdf: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to generate PDF file")
		}
		return sendAttachment(e, "application/pdf", reportFilename(payload, ".pdf"), pdfBytes)
	}
}
