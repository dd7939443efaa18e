package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/auth"
	"github.com/sakif/snipvault/internal/service"
)

// CollectionHandler exposes the collection operations over HTTP.
//
// Every route here sits behind auth.RequireAuth, so the userID is always in
// the request context by the time these methods run. The handler's job is
// strictly HTTP: decode the body or query, hand plain values to the
// service, and wrap whatever comes back in the response envelope.
type CollectionHandler struct {
	collections *service.CollectionService
	logger      *slog.Logger
}

// NewCollectionHandler creates a CollectionHandler.
func NewCollectionHandler(collections *service.CollectionService, logger *slog.Logger) *CollectionHandler {
	return &CollectionHandler{collections: collections, logger: logger}
}

// listResult is the data payload for list endpoints.
//
// NOTE ON Total: it is the count of the returned page, NOT the count of all
// matching rows. Callers must not use it to compute the number of pages.
// Kept this way deliberately — changing it now would silently break clients
// that already treat it as the page length.
type listResult struct {
	Items any `json:"items"`
	Total int `json:"total"`
}

// HandleCreate creates a collection.
//
// HTTP: POST /api/collections
// BODY: {"name": "...", "description"?, "icon"?, "isDefault"?}
func (h *CollectionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var in service.CreateCollectionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	collection, err := h.collections.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, collection)
}

// HandleUpdate partially updates a collection. Fields absent from the body
// are left unchanged (the input struct uses pointer fields for exactly this).
//
// HTTP: PUT /api/collections/{id}
func (h *CollectionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var in service.UpdateCollectionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	collection, err := h.collections.Update(r.Context(), userID, r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, collection)
}

// HandleList returns one page of the caller's collections, newest first.
//
// HTTP: GET /api/collections?page=1&pageSize=20
func (h *CollectionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	page, pageSize, err := paginationParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	collections, err := h.collections.List(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, listResult{
		Items: collections,
		Total: len(collections),
	})
}

// paginationParams parses the page/pageSize query parameters. Absent params
// come back as 0, which the service resolves to its defaults; anything
// non-numeric is a validation error.
func paginationParams(r *http.Request) (page, pageSize int, err error) {
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperror.ValidationFailed("page", "page must be a number")
		}
	}
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperror.ValidationFailed("pageSize", "pageSize must be a number")
		}
	}
	return page, pageSize, nil
}
