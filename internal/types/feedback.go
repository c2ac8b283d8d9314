package types

import "time"

// FeedbackBonusXP is granted to registered users for rating a session.
const FeedbackBonusXP = 25

// Feedback is an immutable rating of a session.
type Feedback struct {
	FeedbackID  string    `json:"feedback_id"`
	UserID      string    `json:"user_id"`
	SessionID   string    `json:"session_id"`
	Rating      int       `json:"rating"`
	Comments    *string   `json:"comments"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Touch stamps the record's update time.
func (f *Feedback) Touch(t time.Time) {
	f.UpdatedAt = t
}

// FeedbackReceipt confirms a feedback submission.
type FeedbackReceipt struct {
	FeedbackID string `json:"feedback_id"`
	BonusXP    int    `json:"bonus_xp"`
}
