package services

import (
	"fmt"
	"strings"
)

// FormatObservation renders a chemistry reading for the certificate.
// Anything that parses as a number is shown with two decimals and a percent
// sign (3.4912 -> "3.49%"). Text is passed through unchanged, except that a
// bare run of digits without a percent sign gets one appended.
func FormatObservation(raw any) string {
	if raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return ""
		}
		if strings.Contains(s, "%") {
			return s
		}
		raw = s
	}
	if f, ok := toFloat(raw); ok {
		return fmt.Sprintf("%.2f%%", f)
	}
	s := strings.TrimSpace(fmt.Sprint(raw))
	if isBareNumber(s) {
		return s + "%"
	}
	return s
}

// isBareNumber reports whether s is digits with at most one decimal point.
func isBareNumber(s string) bool {
	if s == "" {
		return false
	}
	dot := false
	digits := 0
	for _, r := range s {
		switch {
		case r == '.' && !dot:
			dot = true
		case r >= '0' && r <= '9':
			digits++
		default:
			return false
		}
	}
	return digits > 0
}
