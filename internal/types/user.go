// Package types provides the record schemas and request/response shapes shared by the
// skillbuddy services, stores and HTTP layer.
package types

import "time"

// StartingXP is the XP balance every new account starts with.
const StartingXP = 50

// AchievementType classifies an entry in a user's achievement log.
type AchievementType string

const (
	AchievementLevelUp      AchievementType = "level_up"
	AchievementWelcomeBonus AchievementType = "welcome_bonus"
)

// Achievement is an append-only, timestamped entry in a user's achievement log.
type Achievement struct {
	Type        AchievementType `json:"type"`
	Level       int             `json:"level,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
}

// User is the persisted user record, keyed by UID.
type User struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// XPPoints is cumulative; Level is always derived from it.
	XPPoints int `json:"xp_points"`
	Level    int `json:"level"`

	GithubProfile   string `json:"github_profile"`
	LinkedinProfile string `json:"linkedin_profile"`
	ResumeUploaded  bool   `json:"resume_uploaded"`
	ResumeFileName  string `json:"resume_file_name"`
	ResumeURL       string `json:"resume_url"`

	TotalInterviews      int            `json:"total_interviews"`
	CompletedInterviews  int            `json:"completed_interviews"`
	CareerPathsPracticed map[string]int `json:"career_paths_practiced"`

	Achievements []Achievement    `json:"achievements"`
	Preferences  map[string]string `json:"preferences"`
	TemporaryXP  int               `json:"temporary_xp"`
}

// NewUser returns a level 1 user holding the starting XP balance.
func NewUser(uid, email, firstName, lastName string, now time.Time) *User {
	return &User{
		UID:                  uid,
		Email:                email,
		FirstName:            firstName,
		LastName:             lastName,
		CreatedAt:            now,
		UpdatedAt:            now,
		XPPoints:             StartingXP,
		Level:                1,
		CareerPathsPracticed: map[string]int{},
		Achievements:         []Achievement{},
		Preferences:          map[string]string{},
	}
}

// Touch stamps the record's update time.
func (u *User) Touch(t time.Time) {
	u.UpdatedAt = t
}

// ProfileChanges lists the profile fields an update wrote. Nil fields were left alone.
type ProfileChanges struct {
	GithubProfile   *string   `json:"github_profile,omitempty"`
	LinkedinProfile *string   `json:"linkedin_profile,omitempty"`
	ResumeUploaded  *bool     `json:"resume_uploaded,omitempty"`
	ResumeFileName  *string   `json:"resume_file_name,omitempty"`
	ResumeURL       *string   `json:"resume_url,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Fields returns the changed fields keyed by their stored names.
func (c ProfileChanges) Fields() map[string]any {
	fields := map[string]any{}
	if c.GithubProfile != nil {
		fields["github_profile"] = *c.GithubProfile
	}
	if c.LinkedinProfile != nil {
		fields["linkedin_profile"] = *c.LinkedinProfile
	}
	if c.ResumeUploaded != nil {
		fields["resume_uploaded"] = *c.ResumeUploaded
	}
	if c.ResumeFileName != nil {
		fields["resume_file_name"] = *c.ResumeFileName
	}
	if c.ResumeURL != nil {
		fields["resume_url"] = *c.ResumeURL
	}
	return fields
}

// ProfileStatistics is derived from the user's recent sessions, except CareerPaths,
// which holds the completed-session counts kept on the user record.
type ProfileStatistics struct {
	TotalSessions          int            `json:"total_sessions"`
	CompletedSessions      int            `json:"completed_sessions"`
	CompletionRate         float64        `json:"completion_rate"`
	CareerPaths            map[string]int `json:"career_paths"`
	TotalQuestionsAnswered int            `json:"total_questions_answered"`
}

// XPProgress describes how far a user is through the current level.
type XPProgress struct {
	CurrentLevelXP       int     `json:"current_level_xp"`
	XPToNextLevel        int     `json:"xp_to_next_level"`
	NextLevelRequirement int     `json:"next_level_requirement"`
	ProgressPercentage   float64 `json:"progress_percentage"`
}

// Profile is the read model returned for a user's profile page.
type Profile struct {
	User           *User              `json:"user"`
	Statistics     ProfileStatistics  `json:"statistics"`
	Progress       XPProgress         `json:"xp_progress"`
	RecentSessions []InterviewSession `json:"recent_sessions"`
}

// XPAward summarises a single XP grant.
type XPAward struct {
	XPGained     int    `json:"xp_gained"`
	TotalXP      int    `json:"total_xp"`
	CurrentLevel int    `json:"current_level"`
	LevelUp      bool   `json:"level_up"`
	Source       string `json:"source"`
}

// Credentials holds the password hash for a user, stored apart from the user record.
type Credentials struct {
	UID          string    `json:"uid"`
	PasswordHash string    `json:"password_hash"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Touch stamps the record's update time.
func (c *Credentials) Touch(t time.Time) {
	c.UpdatedAt = t
}
