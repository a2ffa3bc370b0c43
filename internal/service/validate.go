package service

import (
	"strings"

	"github.com/cartify-platform/commerce-core/internal/apperr"
)

// required rejects empty or over-long values.
func required(entity, field, value string, maxLen int) error {
	if value == "" {
		return apperr.Field(entity, field, "is required")
	}
	if maxLen > 0 && len(value) > maxLen {
		return apperr.Field(entity, field, "must be at most %d characters", maxLen)
	}
	return nil
}

// isValidIdentifier checks a tenant or store identifier against the
// subdomain constraint: ^[a-z0-9]([a-z0-9\-]{0,61}[a-z0-9])?$
func isValidIdentifier(identifier string) bool {
	if len(identifier) < 1 || len(identifier) > 63 {
		return false
	}
	for i, r := range identifier {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '-' && i > 0 && i < len(identifier)-1:
		default:
			return false
		}
	}
	return true
}

// isValidEmail performs a basic shape check: local part, @, domain with a
// dot.
func isValidEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	if strings.IndexByte(domain, '@') >= 0 {
		return false
	}
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// isValidHexColor accepts #rgb or #rrggbb.
func isValidHexColor(color string) bool {
	if len(color) != 4 && len(color) != 7 {
		return false
	}
	if color[0] != '#' {
		return false
	}
	for _, r := range color[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// isValidCurrency accepts a three-letter uppercase ISO 4217 code.
func isValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
