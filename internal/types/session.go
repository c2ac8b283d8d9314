package types

import "time"

// GuestUserID owns sessions started without an account. Guest sessions never credit a user record.
const GuestUserID = "guest"

// SessionStatus is the lifecycle state of an interview session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// Question is one entry of a career path's question catalog.
type Question struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

// Response is an answer recorded against a session.
type Response struct {
	QuestionID   int       `json:"question_id"`
	QuestionText string    `json:"question_text"`
	Response     string    `json:"response"`
	Category     string    `json:"category"`
	Difficulty   string    `json:"difficulty"`
	Timestamp    time.Time `json:"timestamp"`
}

// InterviewSession is one practice attempt against a career path, keyed by SessionID.
type InterviewSession struct {
	SessionID            string        `json:"session_id"`
	UserID               string        `json:"user_id"`
	CareerPath           string        `json:"career_path"`
	StartedAt            time.Time     `json:"started_at"`
	CompletedAt          *time.Time    `json:"completed_at"`
	Status               SessionStatus `json:"status"`
	QuestionsAnswered    int           `json:"questions_answered"`
	TotalQuestions       int           `json:"total_questions"`
	Responses            []Response    `json:"responses"`
	XPEarned             int           `json:"xp_earned"`
	CompletionPercentage float64       `json:"completion_percentage"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// IsGuest reports whether the session belongs to no persistent user.
func (s *InterviewSession) IsGuest() bool {
	return s.UserID == "" || s.UserID == GuestUserID
}

// Touch stamps the record's update time.
func (s *InterviewSession) Touch(t time.Time) {
	s.UpdatedAt = t
}

// SessionStart is returned when a session is created.
type SessionStart struct {
	Session   *InterviewSession `json:"session"`
	Questions []Question        `json:"questions"`
}

// SessionProgress is returned after a response is recorded.
type SessionProgress struct {
	SessionID            string  `json:"session_id"`
	QuestionsAnswered    int     `json:"questions_answered"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// SessionCompletion is returned when a session is completed.
type SessionCompletion struct {
	Session  *InterviewSession `json:"session_data"`
	XPEarned int               `json:"xp_earned"`
	Award    *XPAward          `json:"xp_award,omitempty"`
}
