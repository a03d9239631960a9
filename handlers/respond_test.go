package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mtcreport/testhelpers"
)

func TestAPIError(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := apiError(e, http.StatusNotFound, "Template file not found"); err != nil {
		t.Fatalf("apiError returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"detail":"Template file not found"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestSendAttachment(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := sendAttachment(e, "application/pdf", "MTC_INV-1.pdf", []byte("%PDF-")); err != nil {
		t.Fatalf("sendAttachment returned error: %v", err)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="MTC_INV-1.pdf"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if rec.Body.String() != "%PDF-" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"INV 12/2024", "INV-12-2024"},
		{`a\b:c`, "a-b-c"},
		{` "quoted" `, "quoted"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
