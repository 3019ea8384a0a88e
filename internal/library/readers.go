// ABOUTME: Reader listing for admins and the caller's own profile
// ABOUTME: Profile routes use the gate's Validate form to reach the resolved user

package library

import (
	"errors"
	"net/http"

	"github.com/Wox1e/LibraryAPI/internal/auth"
	"github.com/Wox1e/LibraryAPI/internal/store"
)

// ReaderView is the JSON form of a reader as admins see it.
type ReaderView struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	BirthDate  Date   `json:"birth_date"`
}

// ProfileView is the caller's own profile.
type ProfileView struct {
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	BirthDate  Date   `json:"birth_date"`
}

func readerView(u *store.User) ReaderView {
	return ReaderView{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		SecondName: u.SecondName,
		BirthDate:  NewDate(u.BirthDate),
	}
}

// handleListReaders handles GET /reader.
func (a *API) handleListReaders(w http.ResponseWriter, r *http.Request) {
	readers, err := a.store.ListReaders(r.Context())
	if err != nil {
		a.writeInternal(w, "failed to list readers", err)
		return
	}

	views := make([]ReaderView, 0, len(readers))
	for _, u := range readers {
		views = append(views, readerView(u))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleGetReader handles GET /reader/{id}. Admin accounts are not readers.
func (a *API) handleGetReader(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reader, err := a.store.GetReader(r.Context(), id)
	if errors.Is(err, store.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, detailReaderNotFound)
		return
	}
	if err != nil {
		a.writeInternal(w, "failed to get reader", err)
		return
	}
	writeJSON(w, http.StatusOK, readerView(reader))
}

// profileUser runs the gate for a profile route and returns the caller.
// It writes the response itself when the gate does not allow the request.
func (a *API) profileUser(w http.ResponseWriter, r *http.Request) (*store.User, bool) {
	v := a.gate.Validate(r.Context(), auth.CredentialsFromRequest(r))
	if d := v.Check(false); !d.Allowed() {
		a.gate.WriteDecision(w, r, d)
		return nil, false
	}
	return v.User()
}

// handleGetProfile handles GET /profile.
func (a *API) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := a.profileUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ProfileView{
		Username:   user.Username,
		FirstName:  user.FirstName,
		SecondName: user.SecondName,
		BirthDate:  NewDate(user.BirthDate),
	})
}

// handleUpdateProfile handles PUT /profile.
func (a *API) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := a.profileUser(w, r)
	if !ok {
		return
	}
	var req ProfileRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	if rejectInvalid(w, req.validate(a.today())) {
		return
	}

	user.FirstName = req.FirstName
	user.SecondName = req.SecondName
	user.BirthDate = req.BirthDate.Time
	switch err := a.store.UpdateUserProfile(r.Context(), user); {
	case errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case err != nil:
		a.writeInternal(w, "failed to update profile", err)
	default:
		writeOK(w, http.StatusOK, "Your profile was updated")
	}
}
