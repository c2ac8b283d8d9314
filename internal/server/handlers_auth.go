package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/skillbuddy/internal/logging"
	"github.com/jonathan/skillbuddy/internal/service"
	"github.com/jonathan/skillbuddy/internal/types"
)

type messageResponse struct {
	Message string `json:"message"`
}

// handleRegister stores the password hash, creates the user record and issues a token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w)
		return
	}

	user, err := s.credentials.Register(r.Context(), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	token, err := s.jwt.GenerateToken(user.UID)
	if err != nil {
		logging.FromContext(r.Context(), s.logger).Error("failed to generate token",
			zap.String("userId", user.UID), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, msgInternal)
		return
	}

	bonus := req.TemporaryXP
	s.jsonResponse(w, http.StatusCreated, types.AuthResponse{
		Message: "User created successfully",
		UserID:  user.UID,
		Email:   user.Email,
		User:    user,
		Token:   token,
		XPBonus: &bonus,
	})
}

// handleLogin looks the user up by email, verifies the password and issues a token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w)
		return
	}

	user, err := s.users.Login(r.Context(), &req)
	if err != nil {
		if service.IsNotFound(err, service.KindUser) {
			s.errorResponse(w, http.StatusNotFound, msgRegisterFirst)
			return
		}
		s.serviceError(w, r, err)
		return
	}
	if err := s.credentials.Verify(r.Context(), user.UID, req.Password); err != nil {
		s.serviceError(w, r, err)
		return
	}

	token, err := s.jwt.GenerateToken(user.UID)
	if err != nil {
		logging.FromContext(r.Context(), s.logger).Error("failed to generate token",
			zap.String("userId", user.UID), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, msgInternal)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.AuthResponse{
		Message: "Login successful",
		UserID:  user.UID,
		Email:   user.Email,
		User:    user,
		Token:   token,
	})
}

// handleLogout acknowledges a logout. Tokens are stateless; clients discard them.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}
