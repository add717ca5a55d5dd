package http

import (
	"net/http"

	applog "expensed/internal/log"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.RequireFields("username", "password"); err != nil {
		writeError(w, r, err)
		return
	}

	userID, err := s.auth.Register(r.Context(), req.String("username"), req.String("password"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered!",
		"user_id": userID,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.RequireFields("username", "password"); err != nil {
		writeError(w, r, err)
		return
	}

	username := req.String("username")
	userID, err := s.auth.Authenticate(r.Context(), username, req.String("password"))
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Login failed",
			applog.FieldUsername, username)
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful!",
		"user_id": userID,
	})
}
