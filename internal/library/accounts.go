// ABOUTME: Registration, login and logout endpoints
// ABOUTME: Successful register and login start a cookie session through the gate

package library

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/Wox1e/LibraryAPI/internal/store"
)

// Response details for account endpoints.
const (
	DetailAccountCreated = "Your account was created"
	DetailBadCredentials = "Wrong username or password. Check your request"
	DetailLoggedOut      = "You logged out"
	DetailUsernameTaken  = "Username is already taken"
)

// handleRegister handles POST /auth/register.
func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	if rejectInvalid(w, req.validate(a.today())) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.bcryptCost)
	if err != nil {
		a.writeInternal(w, "failed to hash password", err)
		return
	}

	user := &store.User{
		FirstName:    req.FirstName,
		SecondName:   req.SecondName,
		BirthDate:    req.BirthDate.Time,
		Username:     req.Username,
		PasswordHash: string(hash),
	}
	if err := a.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			writeError(w, http.StatusConflict, DetailUsernameTaken)
			return
		}
		a.writeInternal(w, "failed to create user", err)
		return
	}

	if _, err := a.gate.StartSession(w, user); err != nil {
		a.writeInternal(w, "failed to start session", err)
		return
	}
	a.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	writeOK(w, http.StatusCreated, DetailAccountCreated)
}

// handleLogin handles POST /auth/login.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	if rejectInvalid(w, req.validate()) {
		return
	}

	user, err := a.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		a.writeInternal(w, "failed to look up user", err)
		return
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(req.Password))
		writeError(w, http.StatusUnauthorized, DetailBadCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		a.logger.Debug("login rejected", "username", req.Username)
		writeError(w, http.StatusUnauthorized, DetailBadCredentials)
		return
	}

	if _, err := a.gate.StartSession(w, user); err != nil {
		a.writeInternal(w, "failed to start session", err)
		return
	}
	writeOK(w, http.StatusOK, "You logged in as "+user.Username)
}

// handleLogout handles GET /auth/logout. Issued tokens stay valid until they
// expire; only the cookies are cleared.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.gate.EndSession(w)
	writeOK(w, http.StatusOK, DetailLoggedOut)
}
