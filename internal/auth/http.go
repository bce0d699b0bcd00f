// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkowalczyk/grimoire/internal/platform/apperr"
	"github.com/mkowalczyk/grimoire/internal/platform/middleware"
	requestutil "github.com/mkowalczyk/grimoire/internal/platform/request"
	"github.com/mkowalczyk/grimoire/internal/platform/respond"
	"github.com/mkowalczyk/grimoire/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /login  : Authenticates the administrator and returns a JWT.
//   - POST /logout : Revokes the presented bearer token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoint
	router.Post("/login", handler.login)

	// Protected endpoint
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

/*
POST /api/auth/login.

Description: Validates the administrator credentials and issues a signed
session token with a 12 hour expiry.

Request:
  - body: loginRequest

Response:
  - 200: loginResponse: Signed JWT
  - 400: VALIDATION_ERROR: Missing fields
  - 401: INVALID_CREDENTIALS: Wrong username or password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("username", input.Username).
		Required("password", input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.authService.Login(input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, loginResponse{Token: token})
}

/*
POST /api/auth/logout.

Description: Adds the presented bearer token to the revocation set. The
token stops working immediately, even before its natural expiry.

Response:
  - 204: Token revoked
  - 401: UNAUTHORIZED: Missing or invalid bearer token
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.BearerToken(request)
	if token == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing bearer token"))
		return
	}

	handler.authService.Revoke(token)
	respond.NoContent(writer)
}
