package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/auth"
	"github.com/sakif/snipvault/internal/service"
)

// SnippetHandler exposes the snippet operations over HTTP. Same contract as
// CollectionHandler: routes are auth-protected, handlers only do HTTP.
type SnippetHandler struct {
	snippets *service.SnippetService
	logger   *slog.Logger
}

// NewSnippetHandler creates a SnippetHandler.
func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

// HandleCreate creates a snippet inside one of the caller's collections.
//
// HTTP: POST /api/snippets
// BODY: {"collectionId", "title", "content", "language"?, "description"?,
//        "tags"?, "isFavorite"?}
//
// A collectionId the caller doesn't own comes back as NOT_FOUND — the same
// answer as a collection that doesn't exist, and nothing is inserted.
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var in service.CreateSnippetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	snippet, err := h.snippets.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, snippet)
}

// HandleUpdate partially updates a snippet. Absent fields stay unchanged;
// a changed collectionId is ownership-checked against the target before the
// move is applied.
//
// HTTP: PUT /api/snippets/{id}
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var in service.UpdateSnippetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	snippet, err := h.snippets.Update(r.Context(), userID, r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, snippet)
}

// HandleArchive soft-removes a snippet. The response carries only the id —
// there is no unarchive endpoint, so from the caller's point of view this
// is one-way.
//
// HTTP: POST /api/snippets/{id}/archive
func (h *SnippetHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	id := r.PathValue("id")
	if err := h.snippets.Archive(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"id": id})
}

// HandleList returns one page of the caller's snippets, most recently
// updated first.
//
// HTTP: GET /api/snippets?collectionId=&includeArchived=&page=&pageSize=
//
// Archived snippets are excluded unless includeArchived=true. A collectionId
// filter is ownership-verified before the query runs, so a bogus one fails
// fast with NOT_FOUND instead of returning an empty page.
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
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

	in := service.ListSnippetsInput{
		CollectionID:    r.URL.Query().Get("collectionId"),
		IncludeArchived: r.URL.Query().Get("includeArchived") == "true",
		Page:            page,
		PageSize:        pageSize,
	}

	snippets, err := h.snippets.List(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, listResult{
		Items: snippets,
		Total: len(snippets),
	})
}

// HandleGetByID returns a single owned snippet.
//
// HTTP: GET /api/snippets/{id}
func (h *SnippetHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	snippet, err := h.snippets.GetByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, snippet)
}
