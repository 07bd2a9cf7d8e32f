package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/db"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	s.respondWithToken(w, r, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.users.Login(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondWithToken(w, r, http.StatusOK, user)
}

func (s *Server) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *db.User) {
	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, status, AuthResponse{User: user, Token: token})
}
