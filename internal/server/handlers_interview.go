package server

import (
	"net/http"

	"github.com/jonathan/skillbuddy/internal/types"
)

type questionsResponse struct {
	CareerPath string           `json:"career_path"`
	Questions  []types.Question `json:"questions"`
	Total      int              `json:"total"`
}

type startInterviewResponse struct {
	Message        string                  `json:"message"`
	SessionID      string                  `json:"session_id"`
	CareerPath     string                  `json:"career_path"`
	Questions      []types.Question        `json:"questions"`
	TotalQuestions int                     `json:"total_questions"`
	Session        *types.InterviewSession `json:"session"`
}

type submitResponseResponse struct {
	Message string `json:"message"`
	*types.SessionProgress
}

type endInterviewResponse struct {
	Message string `json:"message"`
	*types.SessionCompletion
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	careerPath := r.PathValue("career_path")
	questions, err := s.interviews.Questions(careerPath)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, questionsResponse{
		CareerPath: careerPath,
		Questions:  questions,
		Total:      len(questions),
	})
}

// handleStartInterview starts a session. A missing user_id starts a guest session.
func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	var req types.StartSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w)
		return
	}

	started, err := s.interviews.Start(r.Context(), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, startInterviewResponse{
		Message:        "Interview session started",
		SessionID:      started.Session.SessionID,
		CareerPath:     started.Session.CareerPath,
		Questions:      started.Questions,
		TotalQuestions: len(started.Questions),
		Session:        started.Session,
	})
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req types.SubmitResponseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w)
		return
	}

	progress, err := s.interviews.SubmitResponse(r.Context(), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, submitResponseResponse{
		Message:         "Response submitted successfully",
		SessionProgress: progress,
	})
}

func (s *Server) handleEndInterview(w http.ResponseWriter, r *http.Request) {
	var req types.EndSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w)
		return
	}

	completion, err := s.interviews.End(r.Context(), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, endInterviewResponse{
		Message:           "Interview session completed successfully",
		SessionCompletion: completion,
	})
}
