// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

/*
Package auth implements the authentication gate for the single
administrator identity.

It handles credential verification, session token issuance, and explicit
token revocation.

Architecture:

  - Service: Orchestrates login/verify/revoke against the token service.
  - Identity: Exactly one administrator (username + secret) from config;
    the secret may be plain text or a bcrypt hash.
  - Revocation: An in-process map from raw token to natural expiry. It is
    neither persisted nor shared across instances and resets on restart,
    an accepted limitation of the single-administrator deployment.
    Naturally expired entries are pruned on every revoke and verify, so
    the map cannot outgrow the set of still-live revoked tokens.
*/
package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mkowalczyk/grimoire/internal/platform/apperr"
	"github.com/mkowalczyk/grimoire/internal/platform/constants"
	"github.com/mkowalczyk/grimoire/internal/platform/sec"
)

// # Contracts & Types

// TokenProvider defines the contract for creating and checking session tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given identity.
	GenerateAccessToken(username, role string, timeToLive time.Duration) (string, error)

	// VerifyToken checks signature and expiry and returns the embedded claims.
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// # Error Taxonomy

// Distinct codes under the shared 401 status, so clients can tell a wrong
// password from a stale or revoked session.
func errInvalidCredentials() *apperr.AppError {
	return apperr.UnauthorizedCode("INVALID_CREDENTIALS", "Invalid login credentials")
}

func errInvalidToken() *apperr.AppError {
	return apperr.UnauthorizedCode("INVALID_TOKEN", "Invalid or expired token")
}

func errRevokedToken() *apperr.AppError {
	return apperr.UnauthorizedCode("REVOKED_TOKEN", "Token has been revoked")
}

// Service implements the administrator authentication gate.
//
// # Review Process
//
// This service is critical for security. Any changes to credential
// comparison or revocation logic must be reviewed carefully.
type Service struct {
	adminUser   string
	adminSecret string
	tokens      TokenProvider
	logger      *slog.Logger

	// mu guards revoked.
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewService constructs the auth gate for the configured admin identity.
func NewService(adminUser, adminSecret string, tokens TokenProvider, logger *slog.Logger) *Service {
	return &Service{
		adminUser:   adminUser,
		adminSecret: adminSecret,
		tokens:      tokens,
		logger:      logger,
		revoked:     make(map[string]time.Time),
	}
}

// # Authentication Flow

/*
Login validates the administrator credentials and issues a session token.

Description: The username must match exactly. The secret comparison is
bcrypt when the configured value is a bcrypt hash (prefix "$2"), otherwise
constant-time string equality. Both failure modes return the same
INVALID_CREDENTIALS error to prevent probing.

Returns:
  - string: Signed JWT valid for [SessionTokenTTL]
  - error: INVALID_CREDENTIALS or signing failures
*/
func (service *Service) Login(username, password string) (string, error) {
	okUser := subtle.ConstantTimeCompare([]byte(username), []byte(service.adminUser)) == 1

	var okPass bool
	if sec.IsBcryptHash(service.adminSecret) {
		okPass = sec.CheckPasswordHash(password, service.adminSecret)
	} else {
		okPass = subtle.ConstantTimeCompare([]byte(password), []byte(service.adminSecret)) == 1
	}

	if !okUser || !okPass {
		service.logger.Warn("admin_login_rejected", slog.String("username", username))
		return "", errInvalidCredentials()
	}

	token, err := service.tokens.GenerateAccessToken(service.adminUser, constants.AdminRole, SessionTokenTTL)
	if err != nil {
		return "", fmt.Errorf("auth: failed to issue session token: %w", err)
	}

	service.logger.Info("admin_login_succeeded", slog.String("username", service.adminUser))
	return token, nil
}

/*
Verify checks a raw session token and returns the authenticated identity.

Description: Signature and expiry are checked first, then the revocation
set. Implements [middleware.TokenVerifier].

Returns:
  - *sec.AuthClaims: The authenticated admin identity
  - error: INVALID_TOKEN or REVOKED_TOKEN
*/
func (service *Service) Verify(tokenStr string) (*sec.AuthClaims, error) {
	claims, err := service.tokens.VerifyToken(tokenStr)
	if err != nil {
		return nil, errInvalidToken()
	}

	service.mu.Lock()
	service.pruneLocked()
	_, isRevoked := service.revoked[tokenStr]
	service.mu.Unlock()

	if isRevoked {
		return nil, errRevokedToken()
	}

	return claims, nil
}

/*
Revoke adds a token's raw value to the revocation set.

Description: The entry is kept until the token's natural expiry, after
which pruning removes it; a revoked token that has also expired is
rejected by the signature/expiry check alone. Revoking a token that does
not verify is a no-op: it could never be accepted anyway.
*/
func (service *Service) Revoke(tokenStr string) {
	claims, err := service.tokens.VerifyToken(tokenStr)
	if err != nil {
		return
	}

	expiry := time.Now().Add(SessionTokenTTL)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	service.mu.Lock()
	service.revoked[tokenStr] = expiry
	service.pruneLocked()
	service.mu.Unlock()

	service.logger.Info("admin_token_revoked", slog.String("username", claims.Username))
}

// RevokedCount returns the current size of the revocation set. Exposed for
// tests and diagnostics.
func (service *Service) RevokedCount() int {
	service.mu.Lock()
	defer service.mu.Unlock()
	return len(service.revoked)
}

// pruneLocked drops revocation entries whose tokens have naturally
// expired. Callers must hold mu.
func (service *Service) pruneLocked() {
	now := time.Now()
	for token, expiry := range service.revoked {
		if expiry.Before(now) {
			delete(service.revoked, token)
		}
	}
}
