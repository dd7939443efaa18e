package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snipvault/internal/model"
)

// createSnippet drives the real handler to seed a snippet.
func (e *testEnv) createSnippet(t *testing.T, userID, collectionID, title string) model.Snippet {
	t.Helper()

	w := httptest.NewRecorder()
	r := newRequest(t, http.MethodPost, "/api/snippets", map[string]any{
		"collectionId": collectionID,
		"title":        title,
		"content":      "SELECT 1;",
		"language":     "sql",
	}, userID)
	e.snippets.HandleCreate(w, r)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var s model.Snippet
	decodeData(t, w, &s)
	return s
}

// =========================================================================
// CREATE
// =========================================================================

func TestHandleCreateSnippet(t *testing.T) {
	env := newTestEnv(t)
	coll := env.createCollection(t, env.userID, "SQL")

	w := httptest.NewRecorder()
	r := newRequest(t, http.MethodPost, "/api/snippets", map[string]any{
		"collectionId": coll.ID,
		"title":        "Find users",
		"content":      "SELECT * FROM users;",
		"language":     "sql",
		"tags":         "sql,users",
	}, env.userID)
	env.snippets.HandleCreate(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)

	var s model.Snippet
	decodeData(t, w, &s)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Find users", s.Title)
	assert.Equal(t, coll.ID, s.CollectionID)
	assert.False(t, s.IsArchived)
}

func TestHandleCreateSnippet_UnownedCollection(t *testing.T) {
	env := newTestEnv(t)
	theirs := env.createCollection(t, env.otherUserID, "theirs")

	w := httptest.NewRecorder()
	r := newRequest(t, http.MethodPost, "/api/snippets", map[string]any{
		"collectionId": theirs.ID,
		"title":        "t",
		"content":      "x",
	}, env.userID)
	env.snippets.HandleCreate(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeEnvelope(t, w)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestHandleCreateSnippet_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	coll := env.createCollection(t, env.userID, "c")

	cases := []struct {
		name string
		body map[string]any
	}{
		{"no title", map[string]any{"collectionId": coll.ID, "content": "x"}},
		{"no content", map[string]any{"collectionId": coll.ID, "title": "t"}},
		{"no collection", map[string]any{"title": "t", "content": "x"}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := newRequest(t, http.MethodPost, "/api/snippets", tt.body, env.userID)
			env.snippets.HandleCreate(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeEnvelope(t, w)
			require.NotNil(t, body.Error)
			assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		})
	}
}

// =========================================================================
// UPDATE
// =========================================================================

func TestHandleUpdateSnippet(t *testing.T) {
	env := newTestEnv(t)
	coll := env.createCollection(t, env.userID, "c")
	created := env.createSnippet(t, env.userID, coll.ID, "before")

	w := httptest.NewRecorder()
	r := newRequest(t, http.MethodPut, "/api/snippets/"+created.ID, map[string]any{
		"title":      "after",
		"isFavorite": true,
	}, env.userID)
	r.SetPathValue("id", created.ID)
	env.snippets.HandleUpdate(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var s model.Snippet
	decodeData(t, w, &s)
	assert.Equal(t, "after", s.Title)
	assert.True(t, s.IsFavorite)
	// Absent fields survive the partial update.
	assert.Equal(t, "sql", s.Language)
	assert.Equal(t, "SELECT 1;", s.Content)
}

func TestHandleUpdateSnippet_NotOwned(t *testing.T) {
	env := newTestEnv(t)
	coll := env.createCollection(t, env.otherUserID, "theirs")
	created := env.createSnippet(t, env.otherUserID, coll.ID, "t")

	w := httptest.NewRecorder()
	r := newRequest(t, http.MethodPut, "/api/snippets/"+created.ID, map[string]any{
		"title": "hijack",
	}, env.userID)
	r.SetPathValue("id", created.ID)
	env.snippets.HandleUpdate(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =========================================================================
// ARCHIVE
// =========================================================================

func TestHandleArchiveSnippet(t *testing.T) {
	env := newTestEnv(t)
	coll := env.createCollection(t, env.userID, "c")
	created := env.createSnippet(t, env.userID, coll.ID, "t")

	w := httptest.NewRecorder()
	r := newRequest(t, http.MethodPost, "/api/snippets/"+created.ID+"/archive", nil, env.userID)
	r.SetPathValue("id", created.ID)
	env.snippets.HandleArchive(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	// The archive response carries only the id, not the full row.
	var data map[string]string
	decodeData(t, w, &data)
	assert.Equal(t, map[string]string{"id": created.ID}, data)
}

func TestHandleArchiveSnippet_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	coll := env.createCollection(t, env.userID, "c")
	created := env.createSnippet(t, env.userID, coll.ID, "t")

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r := newRequest(t, http.MethodPost, "/api/snippets/"+created.ID+"/archive", nil, env.userID)
		r.SetPathValue("id", created.ID)
		env.snippets.HandleArchive(w, r)
		assert.Equal(t, http.StatusOK, w.Code, "archive call %d", i+1)
	}
}

// =========================================================================
// LIST
// =========================================================================

func TestHandleListSnippets_ArchiveFilter(t *testing.T) {
	env := newTestEnv(t)
	coll := env.createCollection(t, env.userID, "c")
	active := env.createSnippet(t, env.userID, coll.ID, "active")
	archived := env.createSnippet(t, env.userID, coll.ID, "archived")

	w := httptest.NewRecorder()
	r := newRequest(t, http.MethodPost, "/api/snippets/"+archived.ID+"/archive", nil, env.userID)
	r.SetPathValue("id", archived.ID)
	env.snippets.HandleArchive(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Items []model.Snippet `json:"items"`
		Total int             `json:"total"`
	}

	// Default: archived rows are hidden.
	w = httptest.NewRecorder()
	r = newRequest(t, http.MethodGet, "/api/snippets", nil, env.userID)
	env.snippets.HandleList(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &result)
	require.Len(t, result.Items, 1)
	assert.Equal(t, active.ID, result.Items[0].ID)

	// includeArchived=true brings them back.
	w = httptest.NewRecorder()
	r = newRequest(t, http.MethodGet, "/api/snippets?includeArchived=true", nil, env.userID)
	env.snippets.HandleList(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &result)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, 2, result.Total)
}

func TestHandleListSnippets_CollectionFilter(t *testing.T) {
	env := newTestEnv(t)
	a := env.createCollection(t, env.userID, "a")
	b := env.createCollection(t, env.userID, "b")
	env.createSnippet(t, env.userID, a.ID, "in a")
	inB := env.createSnippet(t, env.userID, b.ID, "in b")

	w := httptest.NewRecorder()
	r := newRequest(t, http.MethodGet, "/api/snippets?collectionId="+b.ID, nil, env.userID)
	env.snippets.HandleList(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Items []model.Snippet `json:"items"`
	}
	decodeData(t, w, &result)
	require.Len(t, result.Items, 1)
	assert.Equal(t, inB.ID, result.Items[0].ID)
}

func TestHandleListSnippets_UnownedCollectionFilter(t *testing.T) {
	env := newTestEnv(t)
	theirs := env.createCollection(t, env.otherUserID, "theirs")

	w := httptest.NewRecorder()
	r := newRequest(t, http.MethodGet, "/api/snippets?collectionId="+theirs.ID, nil, env.userID)
	env.snippets.HandleList(w, r)

	// Fails fast instead of returning an empty page.
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =========================================================================
// GET
// =========================================================================

func TestHandleGetSnippetByID(t *testing.T) {
	env := newTestEnv(t)
	coll := env.createCollection(t, env.userID, "c")
	created := env.createSnippet(t, env.userID, coll.ID, "t")

	w := httptest.NewRecorder()
	r := newRequest(t, http.MethodGet, "/api/snippets/"+created.ID, nil, env.userID)
	r.SetPathValue("id", created.ID)
	env.snippets.HandleGetByID(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	var s model.Snippet
	decodeData(t, w, &s)
	assert.Equal(t, created.ID, s.ID)
}

func TestHandleGetSnippetByID_NotOwned(t *testing.T) {
	env := newTestEnv(t)
	coll := env.createCollection(t, env.otherUserID, "theirs")
	created := env.createSnippet(t, env.otherUserID, coll.ID, "t")

	w := httptest.NewRecorder()
	r := newRequest(t, http.MethodGet, "/api/snippets/"+created.ID, nil, env.userID)
	r.SetPathValue("id", created.ID)
	env.snippets.HandleGetByID(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeEnvelope(t, w)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}
