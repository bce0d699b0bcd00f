// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkowalczyk/grimoire/pkg/slug"
)

/*
TestFrom verifies slug derivation across scripts and punctuation.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Necronomicon", "necronomicon"},
		{"spaces", "Liber Ivonis", "liber-ivonis"},
		{"accents", "Księga Cieni", "ksiega-cieni"},
		{"punctuation", "De Vermis Mysteriis!", "de-vermis-mysteriis"},
		{"multiple_separators", "Unaussprechlichen -- Kulten", "unaussprechlichen-kulten"},
		{"leading_trailing", "  ...Cultes des Goules...  ", "cultes-des-goules"},
		{"digits", "Pnakotic Manuscripts 2", "pnakotic-manuscripts-2"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slug.From(tt.input))
		})
	}
}

/*
TestFrom_Idempotent verifies that slugging a slug is a no-op.
*/
func TestFrom_Idempotent(t *testing.T) {
	inputs := []string{"Liber Ivonis", "Księga Cieni", "already-a-slug"}

	for _, input := range inputs {
		once := slug.From(input)
		assert.Equal(t, once, slug.From(once))
	}
}
