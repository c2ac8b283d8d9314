package server

import (
	"net/http"

	"github.com/jonathan/skillbuddy/internal/types"
)

type updateProfileResponse struct {
	Message     string                `json:"message"`
	UpdatedData *types.ProfileChanges `json:"updated_data"`
}

type addXPResponse struct {
	Message string         `json:"message"`
	XPData  *types.XPAward `json:"xp_data"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w)
		return
	}

	changes, err := s.users.UpdateProfile(r.Context(), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, updateProfileResponse{
		Message:     "Profile updated successfully",
		UpdatedData: changes,
	})
}

func (s *Server) handleAddXP(w http.ResponseWriter, r *http.Request) {
	var req types.AddXPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w)
		return
	}

	award, err := s.users.AddXP(r.Context(), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, addXPResponse{
		Message: "XP added successfully",
		XPData:  award,
	})
}
