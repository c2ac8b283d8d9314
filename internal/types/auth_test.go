//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request RegisterRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid request",
			request: RegisterRequest{Email: "ada@example.com", Password: "secret123", FirstName: "Ada"},
		},
		{
			name:    "valid request with guest xp",
			request: RegisterRequest{Email: "ada@example.com", Password: "secret123", TemporaryXP: 75},
		},
		{
			name:    "missing email",
			request: RegisterRequest{Password: "secret123"},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "invalid email",
			request: RegisterRequest{Email: "not-an-email", Password: "secret123"},
			wantErr: true,
			errMsg:  "email",
		},
		{
			name:    "missing password",
			request: RegisterRequest{Email: "ada@example.com"},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "negative temporary xp",
			request: RegisterRequest{Email: "ada@example.com", Password: "secret123", TemporaryXP: -1},
			wantErr: true,
			errMsg:  "gte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationErrors_UseJSONNames(t *testing.T) {
	req := RegisterRequest{Email: "ada@example.com", Password: "x", TemporaryXP: -5}
	err := req.Validate()
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "temporaryXP", verrs[0].Field())
}

func TestLoginRequest_Validation(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Email: "ada@example.com", Password: "pw"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "ada@example.com"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "ada", Password: "pw"}).Validate())
}

func TestRequestValidation(t *testing.T) {
	qid := 3
	comments := "useful"

	tests := []struct {
		name    string
		request interface{ Validate() error }
		wantErr bool
	}{
		{"add xp ok", &AddXPRequest{UserID: "u", XPAmount: 10}, false},
		{"add xp zero", &AddXPRequest{UserID: "u", XPAmount: 0}, true},
		{"add xp negative", &AddXPRequest{UserID: "u", XPAmount: -10}, true},
		{"add xp missing user", &AddXPRequest{XPAmount: 10}, true},
		{"start ok guest", &StartSessionRequest{CareerPath: "SoftwareDev"}, false},
		{"start missing path", &StartSessionRequest{UserID: "u"}, true},
		{"response ok", &SubmitResponseRequest{SessionID: "s", QuestionID: &qid, Response: "answer"}, false},
		{"response missing question", &SubmitResponseRequest{SessionID: "s", Response: "answer"}, true},
		{"response empty text", &SubmitResponseRequest{SessionID: "s", QuestionID: &qid}, true},
		{"end ok", &EndSessionRequest{SessionID: "s"}, false},
		{"end missing session", &EndSessionRequest{}, true},
		{"feedback ok", &FeedbackRequest{UserID: "u", SessionID: "s", Rating: 5, Comments: &comments}, false},
		{"feedback rating 1", &FeedbackRequest{UserID: "u", SessionID: "s", Rating: 1}, false},
		{"feedback rating 6", &FeedbackRequest{UserID: "u", SessionID: "s", Rating: 6}, true},
		{"feedback rating 0", &FeedbackRequest{UserID: "u", SessionID: "s", Rating: 0}, true},
		{"profile ok", &UpdateProfileRequest{UserID: "u"}, false},
		{"profile missing user", &UpdateProfileRequest{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://github.com/ada"))
	assert.Error(t, ValidateURL("github dot com"))
}

func TestNewUser(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	u := NewUser("ada_example_com", "ada@example.com", "Ada", "Lovelace", now)

	assert.Equal(t, StartingXP, u.XPPoints)
	assert.Equal(t, 1, u.Level)
	assert.Equal(t, now, u.CreatedAt)
	assert.NotNil(t, u.CareerPathsPracticed)
	assert.NotNil(t, u.Achievements)

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"career_paths_practiced":{}`)
	assert.Contains(t, string(data), `"achievements":[]`)
	assert.NotContains(t, string(data), "password")
}

func TestProfileChanges_Fields(t *testing.T) {
	github := "https://github.com/ada"
	uploaded := false
	empty := ""

	changes := ProfileChanges{GithubProfile: &github, ResumeUploaded: &uploaded, ResumeFileName: &empty}
	assert.Equal(t, map[string]any{
		"github_profile":   github,
		"resume_uploaded":  false,
		"resume_file_name": "",
	}, changes.Fields())
	assert.Empty(t, ProfileChanges{}.Fields())
}

func TestInterviewSession_IsGuest(t *testing.T) {
	assert.True(t, (&InterviewSession{UserID: GuestUserID}).IsGuest())
	assert.True(t, (&InterviewSession{}).IsGuest())
	assert.False(t, (&InterviewSession{UserID: "ada_example_com"}).IsGuest())
}
