// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

package srcref_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkowalczyk/grimoire/pkg/srcref"
)

/*
TestNormalize verifies origin stripping for self-referential URLs.
*/
func TestNormalize(t *testing.T) {
	n := srcref.New("/uploads")

	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{"http_origin", "http://localhost:4000/uploads/x.png", "/uploads/x.png"},
		{"https_origin", "https://host/uploads/x.png", "/uploads/x.png"},
		{"mixed_case_scheme", "HTTPS://host/uploads/x.png", "/uploads/x.png"},
		{"port_and_nesting", "http://10.0.0.5:8080/uploads/deep/a.csv", "/uploads/deep/a.csv"},
		{"already_relative", "/already/relative", "/already/relative"},
		{"relative_uploads", "/uploads/x.png", "/uploads/x.png"},
		{"external_url", "https://example.com/other/x.png", "https://example.com/other/x.png"},
		{"non_http_scheme", "ftp://host/uploads/x.png", "ftp://host/uploads/x.png"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.src))
		})
	}
}

/*
TestNormalize_Idempotent checks normalize(normalize(x)) == normalize(x).
*/
func TestNormalize_Idempotent(t *testing.T) {
	n := srcref.New("/uploads")

	inputs := []string{
		"http://localhost:4200/uploads/x.png",
		"/uploads/x.png",
		"https://example.com/external.pdf",
		"not-a-url",
	}

	for _, src := range inputs {
		once := n.Normalize(src)
		assert.Equal(t, once, n.Normalize(once))
	}
}

/*
TestNormalize_CustomMount checks that the mount prefix is honored exactly.
*/
func TestNormalize_CustomMount(t *testing.T) {
	n := srcref.New("/assets")

	assert.Equal(t, "/assets/x.png", n.Normalize("http://host/assets/x.png"))
	// A different mount is not touched
	assert.Equal(t, "http://host/uploads/x.png", n.Normalize("http://host/uploads/x.png"))
}

/*
TestWouldChange verifies the dry-run predicate.
*/
func TestWouldChange(t *testing.T) {
	n := srcref.New("")

	assert.True(t, n.WouldChange("http://host/uploads/x.png"))
	assert.False(t, n.WouldChange("/uploads/x.png"))
}
