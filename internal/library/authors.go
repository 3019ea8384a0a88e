// ABOUTME: Admin endpoints for author records
// ABOUTME: Authors are unique by name and birth date and cannot be deleted while they have books

package library

import (
	"errors"
	"net/http"

	"github.com/Wox1e/LibraryAPI/internal/store"
)

// AuthorView is the JSON form of an author.
type AuthorView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	BirthDate Date   `json:"birth_date"`
	Hash      string `json:"author_hash"`
}

func authorView(a *store.Author) AuthorView {
	return AuthorView{
		ID:        a.ID,
		Name:      a.Name,
		Bio:       a.Bio,
		BirthDate: NewDate(a.BirthDate),
		Hash:      a.Hash,
	}
}

const (
	detailAuthorNotFound = "Author not found"
	detailAuthorExists   = "Author with this name and birth date already exists"
	detailAuthorInUse    = "Author still has books. Delete them first"
)

// handleCreateAuthor handles POST /author/create.
func (a *API) handleCreateAuthor(w http.ResponseWriter, r *http.Request) {
	var req AuthorRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	if rejectInvalid(w, req.validate(a.today())) {
		return
	}

	author := &store.Author{Name: req.Name, Bio: req.Bio, BirthDate: req.BirthDate.Time}
	if err := a.store.CreateAuthor(r.Context(), author); err != nil {
		if errors.Is(err, store.ErrDuplicateAuthor) {
			writeError(w, http.StatusConflict, detailAuthorExists)
			return
		}
		a.writeInternal(w, "failed to create author", err)
		return
	}
	writeOK(w, http.StatusCreated, "Author created")
}

// handleListAuthors handles GET /author.
func (a *API) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := a.store.ListAuthors(r.Context())
	if err != nil {
		a.writeInternal(w, "failed to list authors", err)
		return
	}

	views := make([]AuthorView, 0, len(authors))
	for _, au := range authors {
		views = append(views, authorView(au))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleGetAuthor handles GET /author/{id}.
func (a *API) handleGetAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	author, err := a.store.GetAuthor(r.Context(), id)
	if errors.Is(err, store.ErrAuthorNotFound) {
		writeError(w, http.StatusNotFound, detailAuthorNotFound)
		return
	}
	if err != nil {
		a.writeInternal(w, "failed to get author", err)
		return
	}
	writeJSON(w, http.StatusOK, authorView(author))
}

// handleUpdateAuthor handles PUT /author/{id}.
func (a *API) handleUpdateAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req AuthorRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	if rejectInvalid(w, req.validate(a.today())) {
		return
	}

	author := &store.Author{ID: id, Name: req.Name, Bio: req.Bio, BirthDate: req.BirthDate.Time}
	switch err := a.store.UpdateAuthor(r.Context(), author); {
	case errors.Is(err, store.ErrAuthorNotFound):
		writeError(w, http.StatusNotFound, detailAuthorNotFound)
	case errors.Is(err, store.ErrDuplicateAuthor):
		writeError(w, http.StatusConflict, detailAuthorExists)
	case err != nil:
		a.writeInternal(w, "failed to update author", err)
	default:
		writeOK(w, http.StatusOK, "Author info updated")
	}
}

// handleDeleteAuthor handles DELETE /author/{id}.
func (a *API) handleDeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch err := a.store.DeleteAuthor(r.Context(), id); {
	case errors.Is(err, store.ErrAuthorNotFound):
		writeError(w, http.StatusNotFound, detailAuthorNotFound)
	case errors.Is(err, store.ErrAuthorInUse):
		writeError(w, http.StatusConflict, detailAuthorInUse)
	case err != nil:
		a.writeInternal(w, "failed to delete author", err)
	default:
		a.logger.Info("author deleted", "author_id", id)
		writeOK(w, http.StatusOK, "Author deleted")
	}
}
