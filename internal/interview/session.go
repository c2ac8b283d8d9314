package interview

import (
	"errors"
	"time"

	"github.com/jonathan/skillbuddy/internal/leveling"
	"github.com/jonathan/skillbuddy/internal/types"
)

const (
	defaultCategory   = "General"
	defaultDifficulty = "intermediate"
)

// ErrSessionCompleted is returned when a completed session is modified or completed again.
var ErrSessionCompleted = errors.New("session already completed")

// NewSession returns an in-progress session sized to the career path's question count.
func NewSession(id, userID, careerPath string, totalQuestions int, now time.Time) *types.InterviewSession {
	if userID == "" {
		userID = types.GuestUserID
	}
	return &types.InterviewSession{
		SessionID:      id,
		UserID:         userID,
		CareerPath:     careerPath,
		StartedAt:      now,
		Status:         types.SessionInProgress,
		TotalQuestions: totalQuestions,
		Responses:      []types.Response{},
		UpdatedAt:      now,
	}
}

// AddResponse appends r and recomputes progress. Duplicate question ids are
// accepted and each one counts.
func AddResponse(s *types.InterviewSession, r types.Response) error {
	if s.Status == types.SessionCompleted {
		return ErrSessionCompleted
	}
	if r.Category == "" {
		r.Category = defaultCategory
	}
	if r.Difficulty == "" {
		r.Difficulty = defaultDifficulty
	}

	s.Responses = append(s.Responses, r)
	s.QuestionsAnswered = len(s.Responses)
	s.CompletionPercentage = completion(s.QuestionsAnswered, s.TotalQuestions)
	return nil
}

// Complete finalizes the session and returns the XP it earned.
// Completion is terminal: a second call returns ErrSessionCompleted and awards nothing.
func Complete(s *types.InterviewSession, now time.Time) (int, error) {
	if s.Status == types.SessionCompleted {
		return 0, ErrSessionCompleted
	}

	xp := leveling.SessionXP(s.CompletionPercentage, len(s.Responses))
	s.Status = types.SessionCompleted
	s.CompletedAt = &now
	s.XPEarned = xp
	return xp, nil
}

func completion(answered, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(answered*100) / float64(total)
}
