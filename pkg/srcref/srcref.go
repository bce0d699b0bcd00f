// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

// Package srcref rewrites self-referential asset URLs into portable
// host-relative references.
//
// # Why
//
// Page sources captured through an admin UI running against a particular
// host tend to arrive as absolute URLs ("http://localhost:4000/uploads/x.png").
// Stored that way, the catalog breaks as soon as the deployment moves.
// Normalization collapses such URLs back to their mount-relative form
// ("/uploads/x.png") while leaving genuinely external references untouched.
package srcref

import "regexp"

// DefaultMount is the asset mount prefix used when none is configured.
const DefaultMount = "/uploads"

// Normalizer strips scheme and host from absolute URLs whose path lives
// under a configured asset mount.
//
// Normalize is idempotent: a host-relative path never matches the pattern,
// so normalizing twice equals normalizing once.
type Normalizer struct {
	pattern *regexp.Regexp
}

// New builds a Normalizer for the given asset mount prefix (e.g. "/uploads").
// An empty prefix falls back to [DefaultMount].
func New(mount string) Normalizer {
	if mount == "" {
		mount = DefaultMount
	}
	return Normalizer{
		pattern: regexp.MustCompile(`(?i)^https?://[^/]+(` + regexp.QuoteMeta(mount) + `/.*)$`),
	}
}

// Normalize returns the host-relative form of src when it is an absolute
// URL pointing at the asset mount, and src unchanged otherwise.
func (n Normalizer) Normalize(src string) string {
	if match := n.pattern.FindStringSubmatch(src); match != nil {
		return match[1]
	}
	return src
}

// WouldChange reports whether Normalize(src) differs from src.
func (n Normalizer) WouldChange(src string) bool {
	return n.Normalize(src) != src
}
