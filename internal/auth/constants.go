// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// SessionTokenTTL is the duration an admin session token remains valid.
	// Twelve hours covers a working day of catalog maintenance without
	// forcing mid-session re-login.
	SessionTokenTTL = 12 * time.Hour
)
