// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

package asset

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkowalczyk/grimoire/internal/platform/apperr"
	requestutil "github.com/mkowalczyk/grimoire/internal/platform/request"
	"github.com/mkowalczyk/grimoire/internal/platform/respond"
	"github.com/mkowalczyk/grimoire/internal/platform/validate"
)

// maxUploadBytes caps the in-memory portion of a multipart upload parse;
// larger bodies spill to temp files.
const maxUploadBytes = 32 << 20

// # Definitions & Constructors

// Handler implements the asset ingestion HTTP endpoints.
type Handler struct {
	assetService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{assetService: service}
}

// RegisterAdminRoutes attaches the ingestion endpoints to the admin router.
//
// # Endpoints
//   - POST /upload : Stores a multipart file and returns its reference.
//   - POST /mirror : Fetches a remote URL and stores a local copy.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/upload", handler.upload)
	router.Post("/mirror", handler.mirror)
}

// # Request Payloads

type mirrorRequest struct {
	URL string `json:"url"`
}

/*
POST /api/admin/upload.

Description: Accepts a single multipart file under the "file" field and
stores it under the upload mount.

Response:
  - 201: Stored: Reference, content type, and size
  - 400: VALIDATION_ERROR: Missing or unreadable file field
*/
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart payload"))
		return
	}

	file, header, err := request.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			respond.Error(writer, request, validate.RequiredError("file", "A file must be attached under this field"))
			return
		}
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart payload"))
		return
	}
	defer func() { _ = file.Close() }()

	stored, err := handler.assetService.Save(request.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, stored)
}

/*
POST /api/admin/mirror.

Description: Fetches the given URL and stores a local copy under the
upload mount. Host-relative URLs are resolved against the configured
source base.

Request:
  - body: mirrorRequest

Response:
  - 201: Stored: Reference, content type, and size
  - 400: VALIDATION_ERROR: Missing url, unreachable source, or non-2xx response
*/
func (handler *Handler) mirror(writer http.ResponseWriter, request *http.Request) {
	var input mirrorRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("url", input.URL)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	stored, err := handler.assetService.Mirror(request.Context(), input.URL)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, stored)
}
