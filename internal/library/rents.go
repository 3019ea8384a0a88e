// ABOUTME: Admin endpoints that issue and take back book copies
// ABOUTME: The reader's rent limit is enforced by the store's RentLimiter

package library

import (
	"errors"
	"net/http"

	"github.com/Wox1e/LibraryAPI/internal/store"
)

const (
	detailReaderNotFound = "Reader not found"
	detailOutOfStock     = "No copies of this book left"
	detailRentNotFound   = "Rent not found"
)

// handleRentBook handles POST /book/rent.
func (a *API) handleRentBook(w http.ResponseWriter, r *http.Request) {
	var req RentRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	today := a.today()
	if rejectInvalid(w, req.validate(today)) {
		return
	}

	rent := &store.Rent{
		ReaderID:   req.ReaderID,
		BookID:     req.BookID,
		IssueDate:  today,
		ReturnDate: req.ReturnDate.Time,
	}
	err := a.store.RentBook(r.Context(), rent)
	switch {
	case errors.Is(err, store.ErrRentLimitExceeded):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusNotFound, detailReaderNotFound)
	case errors.Is(err, store.ErrBookNotFound):
		writeError(w, http.StatusNotFound, detailBookNotFound)
	case errors.Is(err, store.ErrOutOfStock):
		writeError(w, http.StatusConflict, detailOutOfStock)
	case err != nil:
		a.writeInternal(w, "failed to rent book", err)
	default:
		writeJSON(w, http.StatusOK, StatusBody{Status: "Ok", Detail: "Book was rented", RentID: rent.ID})
	}
}

// handleReturnBook handles POST /book/return.
func (a *API) handleReturnBook(w http.ResponseWriter, r *http.Request) {
	var req ReturnRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	if rejectInvalid(w, req.validate()) {
		return
	}

	switch err := a.store.ReturnBook(r.Context(), req.RentID); {
	case errors.Is(err, store.ErrRentNotFound):
		writeError(w, http.StatusNotFound, detailRentNotFound)
	case err != nil:
		a.writeInternal(w, "failed to return book", err)
	default:
		writeOK(w, http.StatusOK, "Book was returned")
	}
}
