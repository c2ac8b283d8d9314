package server

import (
	"net/http"

	"github.com/jonathan/skillbuddy/internal/types"
)

type feedbackResponse struct {
	Message string `json:"message"`
	*types.FeedbackReceipt
}

func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req types.FeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w)
		return
	}

	receipt, err := s.feedback.Submit(r.Context(), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, feedbackResponse{
		Message:         "Feedback submitted successfully",
		FeedbackReceipt: receipt,
	})
}
