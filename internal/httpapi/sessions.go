// Session handlers: register, login, logout and the current-account view.
package httpapi

import (
	"encoding/json"
	"net/http"
)

func (s *Server) postRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		badRequest(w, "username and password are required")
		return
	}
	acc, err := s.sessions.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	// Registration does not establish a session; the caller logs in next.
	toJSON(w, http.StatusCreated, toAccountResponse(acc))
}

func (s *Server) postLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	acc, err := s.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	token, err := s.tokens.mint(acc.ID)
	if err != nil {
		s.log.Error("token mint failed", "err", err)
		writeErr(w, http.StatusInternalServerError, "could not issue token", "")
		return
	}
	toJSON(w, http.StatusOK, loginResponse{Token: token, Account: toAccountResponse(acc)})
}

// postLogout tears down the durable session only when it belongs to the
// bearer; logging out while the session points at someone else is a no-op.
func (s *Server) postLogout(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFrom(r.Context())
	if !ok {
		unauthorized(w, "missing bearer token")
		return
	}
	if current, active := s.sessions.AccountID(); active && current == accountID {
		if err := s.sessions.Logout(r.Context()); err != nil {
			writeDomainErr(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// getMe returns the bearer's account, always re-read from the repository so
// mutations performed elsewhere are visible.
func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDFrom(r.Context())
	if !ok {
		unauthorized(w, "missing bearer token")
		return
	}
	acc, err := s.accounts.Load(r.Context(), accountID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(acc))
}
