package server

import (
	"net/http"

	"github.com/jonathan/skillbuddy/internal/server/middleware"
)

func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	s.writeProfile(w, r, r.PathValue("user_id"))
}

// handleMe returns the profile of the token's user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.writeProfile(w, r, userID)
}

func (s *Server) writeProfile(w http.ResponseWriter, r *http.Request, userID string) {
	profile, err := s.users.GetProfile(r.Context(), userID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}
