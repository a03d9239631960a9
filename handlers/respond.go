package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// apiError writes the {"detail": message} body the front end shows as an
// error toast.
func apiError(e *core.RequestEvent, statusCode int, message string) error {
	if statusCode >= http.StatusInternalServerError {
		log.Printf("api: %s %s: %s", e.Request.Method, e.Request.URL.Path, message)
	}
	return e.JSON(statusCode, map[string]string{"detail": message})
}

// apiSuccess is the acknowledgement returned by the write endpoints.
func apiSuccess(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, map[string]string{"status": "success"})
}

// sendAttachment streams a generated file as a download.
func sendAttachment(e *core.RequestEvent, contentType, filename string, data []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	e.Response.WriteHeader(http.StatusOK)
	_, err := e.Response.Write(data)
	return err
}

// sanitizeFilename replaces characters that are awkward in download names.
func sanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}
