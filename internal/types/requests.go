package types

// UpdateProfileRequest carries optional profile links and resume metadata.
// Setting ResumeUploaded to false removes the resume.
type UpdateProfileRequest struct {
	UserID          string  `json:"user_id" validate:"required"`
	GithubProfile   *string `json:"github_profile,omitempty"`
	LinkedinProfile *string `json:"linkedin_profile,omitempty"`
	ResumeUploaded  *bool   `json:"resume_uploaded,omitempty"`
	ResumeFileName  *string `json:"resume_filename,omitempty"`
	ResumeURL       *string `json:"resume_url,omitempty"`
}

// AddXPRequest grants XP to a user.
type AddXPRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	XPAmount int    `json:"xp_amount" validate:"gt=0,lte=1000000"`
	Source   string `json:"source"`
}

// StartSessionRequest starts an interview. An empty UserID means guest.
type StartSessionRequest struct {
	UserID     string `json:"user_id"`
	CareerPath string `json:"career_path" validate:"required"`
}

// SubmitResponseRequest records an answer to one question.
type SubmitResponseRequest struct {
	SessionID    string `json:"session_id" validate:"required"`
	QuestionID   *int   `json:"question_id" validate:"required"`
	QuestionText string `json:"question_text"`
	Response     string `json:"response" validate:"required"`
	Category     string `json:"category"`
	Difficulty   string `json:"difficulty"`
}

// EndSessionRequest completes an interview.
type EndSessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// FeedbackRequest rates a session.
type FeedbackRequest struct {
	UserID    string  `json:"user_id" validate:"required"`
	SessionID string  `json:"session_id" validate:"required"`
	Rating    int     `json:"rating" validate:"min=1,max=5"`
	Comments  *string `json:"comments,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error  { return validate.Struct(r) }
func (r *AddXPRequest) Validate() error          { return validate.Struct(r) }
func (r *StartSessionRequest) Validate() error   { return validate.Struct(r) }
func (r *SubmitResponseRequest) Validate() error { return validate.Struct(r) }
func (r *EndSessionRequest) Validate() error     { return validate.Struct(r) }
func (r *FeedbackRequest) Validate() error       { return validate.Struct(r) }
