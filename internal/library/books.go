// ABOUTME: Book endpoints: admin management plus the single-book view for any signed-in user
// ABOUTME: Readers see the public summary, admins the full record

package library

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Wox1e/LibraryAPI/internal/auth"
	"github.com/Wox1e/LibraryAPI/internal/store"
)

// BookView is the full JSON form of a book, shown to admins.
type BookView struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	PublicationDate Date   `json:"publication_date"`
	AuthorID        int64  `json:"author_id"`
	Genre           string `json:"genre"`
	Quantity        int    `json:"quantity"`
	Hash            string `json:"book_hash"`
}

// PublicBookView is what readers see of a book.
type PublicBookView struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Genre           string `json:"genre"`
	PublicationDate Date   `json:"publication_date"`
	Author          string `json:"author"`
	Article         int64  `json:"article"`
}

func bookView(b *store.Book) BookView {
	return BookView{
		ID:              b.ID,
		Name:            b.Name,
		Description:     b.Description,
		PublicationDate: NewDate(b.PublicationDate),
		AuthorID:        b.AuthorID,
		Genre:           b.Genre,
		Quantity:        b.Quantity,
		Hash:            b.Hash,
	}
}

func publicBookView(s *store.BookSummary) PublicBookView {
	return PublicBookView{
		Name:            s.Name,
		Description:     s.Description,
		Genre:           s.Genre,
		PublicationDate: NewDate(s.PublicationDate),
		Author:          s.AuthorName,
		Article:         s.ID,
	}
}

const (
	detailBookNotFound = "Book not found"
	detailBookExists   = "Book with this name and publication date already exists"
	detailBookInUse    = "Book has active rents"
)

func missingAuthorDetail(authorID int64) string {
	return fmt.Sprintf("Author with author_id = %d doesn't exist.", authorID)
}

func (req *BookRequest) toBook(id int64) *store.Book {
	return &store.Book{
		ID:              id,
		Name:            req.Name,
		Description:     req.Description,
		PublicationDate: req.PublicationDate.Time,
		AuthorID:        req.AuthorID,
		Genre:           req.Genre,
		Quantity:        int(req.Quantity),
	}
}

// handleCreateBook handles POST /book/create.
func (a *API) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	if rejectInvalid(w, req.validate(a.today())) {
		return
	}

	switch err := a.store.CreateBook(r.Context(), req.toBook(0)); {
	case errors.Is(err, store.ErrAuthorNotFound):
		writeError(w, http.StatusBadRequest, missingAuthorDetail(req.AuthorID))
	case errors.Is(err, store.ErrDuplicateBook):
		writeError(w, http.StatusConflict, detailBookExists)
	case err != nil:
		a.writeInternal(w, "failed to create book", err)
	default:
		writeOK(w, http.StatusCreated, "Book was created")
	}
}

// handleListBooks handles GET /book.
func (a *API) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := a.store.ListBooks(r.Context())
	if err != nil {
		a.writeInternal(w, "failed to list books", err)
		return
	}

	views := make([]BookView, 0, len(books))
	for _, b := range books {
		views = append(views, bookView(b))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleGetBook handles GET /book/{id}.
func (a *API) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if auth.MustSessionFromContext(r.Context()).IsAdmin {
		book, err := a.store.GetBook(r.Context(), id)
		if errors.Is(err, store.ErrBookNotFound) {
			writeError(w, http.StatusNotFound, detailBookNotFound)
			return
		}
		if err != nil {
			a.writeInternal(w, "failed to get book", err)
			return
		}
		writeJSON(w, http.StatusOK, bookView(book))
		return
	}

	summary, err := a.store.GetBookSummary(r.Context(), id)
	if errors.Is(err, store.ErrBookNotFound) {
		writeError(w, http.StatusNotFound, detailBookNotFound)
		return
	}
	if err != nil {
		a.writeInternal(w, "failed to get book summary", err)
		return
	}
	writeJSON(w, http.StatusOK, publicBookView(summary))
}

// handleUpdateBook handles PUT /book/{id}.
func (a *API) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req BookRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	if rejectInvalid(w, req.validate(a.today())) {
		return
	}

	switch err := a.store.UpdateBook(r.Context(), req.toBook(id)); {
	case errors.Is(err, store.ErrBookNotFound):
		writeError(w, http.StatusNotFound, detailBookNotFound)
	case errors.Is(err, store.ErrAuthorNotFound):
		writeError(w, http.StatusBadRequest, missingAuthorDetail(req.AuthorID))
	case errors.Is(err, store.ErrDuplicateBook):
		writeError(w, http.StatusConflict, detailBookExists)
	case err != nil:
		a.writeInternal(w, "failed to update book", err)
	default:
		writeOK(w, http.StatusOK, "Book was updated")
	}
}

// handleDeleteBook handles DELETE /book/{id}.
func (a *API) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch err := a.store.DeleteBook(r.Context(), id); {
	case errors.Is(err, store.ErrBookNotFound):
		writeError(w, http.StatusNotFound, detailBookNotFound)
	case errors.Is(err, store.ErrBookInUse):
		writeError(w, http.StatusConflict, detailBookInUse)
	case err != nil:
		a.writeInternal(w, "failed to delete book", err)
	default:
		writeOK(w, http.StatusOK, "Book was deleted")
	}
}
