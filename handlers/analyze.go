package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"mtcreport/services"
)

const maxUploadSize = 32 << 20

// HandleAnalyze decodes an uploaded spectrometer export and returns its rows
// with CE% added, plus the heats and sample ids it contains.
// Form fields: file (required), clean_heat, dedupe_by (heat|sample), keep.
// Route: POST /api/mtc/analyze
func HandleAnalyze(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseMultipartForm(maxUploadSize); err != nil {
			return apiError(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return apiError(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			log.Printf("analyze: read %s: %v", header.Filename, err)
			return apiError(e, http.StatusBadRequest, "Failed to read uploaded file")
		}

		opts := services.AnalyzeOptions{
			CleanHeatSuffix: cast.ToBool(e.Request.FormValue("clean_heat")),
			DedupeBy:        e.Request.FormValue("dedupe_by"),
			KeepPerGroup:    cast.ToInt(e.Request.FormValue("keep")),
		}

		analysis, err := services.AnalyzeSpectroReport(content, opts)
		if err != nil {
			var decodeErr *services.DecodeError
			if errors.As(err, &decodeErr) {
				spectroDecodes.WithLabelValues("none").Inc()
			}
			log.Printf("analyze: %s (%s): %v", header.Filename, humanize.Bytes(uint64(len(content))), err)
			return apiError(e, http.StatusBadRequest, err.Error())
		}

		spectroDecodes.WithLabelValues(analysis.Engine).Inc()
		log.Printf("analyze: %s (%s) read with %s: %d rows, %d heats",
			header.Filename, humanize.Bytes(uint64(len(content))), analysis.Engine,
			len(analysis.Data), len(analysis.Heats))

		return e.JSON(http.StatusOK, analysis)
	}
}
