package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"acme", "blue-bikes", "a", "shop42", "x-1-y"}
	for _, s := range valid {
		assert.Truef(t, isValidIdentifier(s), "%q", s)
	}
	invalid := []string{"", "Acme", "-acme", "acme-", "ac_me", "a.b", "café",
		"this-identifier-is-way-too-long-to-fit-inside-a-single-dns-label-limit"}
	for _, s := range invalid {
		assert.Falsef(t, isValidIdentifier(s), "%q", s)
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last@shop.example.com"}
	for _, s := range valid {
		assert.Truef(t, isValidEmail(s), "%q", s)
	}
	invalid := []string{"", "plain", "@b.co", "a@", "a@b", "a@b.", "a@@b.co"}
	for _, s := range invalid {
		assert.Falsef(t, isValidEmail(s), "%q", s)
	}
}

func TestIsValidHexColor(t *testing.T) {
	assert.True(t, isValidHexColor("#fff"))
	assert.True(t, isValidHexColor("#1A2b3C"))
	assert.False(t, isValidHexColor("fff"))
	assert.False(t, isValidHexColor("#12345"))
	assert.False(t, isValidHexColor("#gggggg"))
}

func TestIsValidCurrency(t *testing.T) {
	assert.True(t, isValidCurrency("USD"))
	assert.False(t, isValidCurrency("usd"))
	assert.False(t, isValidCurrency("US"))
	assert.False(t, isValidCurrency("DOLLARS"))
}
