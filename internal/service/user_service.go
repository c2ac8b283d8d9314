package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/skillbuddy/internal/leveling"
	"github.com/jonathan/skillbuddy/internal/logging"
	"github.com/jonathan/skillbuddy/internal/store"
	"github.com/jonathan/skillbuddy/internal/types"
)

// Defaults for profile and XP operations
const (
	ManualXPSource      = "Manual"
	DefaultResumeName   = "resume.pdf"
	recentSessionsLimit = 10
	interviewXPSource   = "Interview Completion"
	feedbackXPSource    = "Feedback Provided"
)

var userIDReplacer = strings.NewReplacer("@", "_", ".", "_", "+", "_")

// DeriveUserID maps an email to its user id by replacing '@', '.' and '+' with '_'.
func DeriveUserID(email string) string {
	return userIDReplacer.Replace(strings.TrimSpace(email))
}

// UserService provides account, profile and XP operations
type UserService struct {
	store  Store
	logger *zap.Logger
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(st Store, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{store: st, logger: logger}
}

func (s *UserService) log(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, s.logger)
}

// Register creates a user record. A positive TemporaryXP is credited as a welcome bonus.
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.User, error) {
	return s.register(ctx, req, nil)
}

// register creates the user record. prepare runs after the duplicate check and
// before the record is written; its error aborts the registration.
func (s *UserService) register(ctx context.Context, req *types.RegisterRequest, prepare func(ctx context.Context, uid string) error) (*types.User, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	uid := DeriveUserID(req.Email)
	var existing types.User
	found, _, err := s.store.Get(ctx, store.KindUsers, uid, &existing)
	if err != nil {
		return nil, s.internal(ctx, "check existing user", uid, err)
	}
	if found {
		return nil, &ErrAlreadyExists{ID: uid}
	}
	if prepare != nil {
		if err := prepare(ctx, uid); err != nil {
			return nil, err
		}
	}

	now := s.store.Now()
	user := types.NewUser(uid, strings.TrimSpace(req.Email), req.FirstName, req.LastName, now)
	leveling.GrantWelcomeBonus(user, req.TemporaryXP, now)

	res, err := s.store.Put(ctx, store.KindUsers, uid, user)
	if err != nil {
		return nil, s.internal(ctx, "create user", uid, err)
	}

	s.log(ctx).Info("user registered",
		zap.String("userId", uid),
		zap.Int("xpPoints", user.XPPoints),
		zap.String("backend", res.Backend),
	)
	return user, nil
}

// Login looks up the user for an email. Password verification belongs to the auth layer.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	return s.GetUser(ctx, DeriveUserID(req.Email))
}

// GetUser loads a user record. The level is re-derived from XP on read.
func (s *UserService) GetUser(ctx context.Context, uid string) (*types.User, error) {
	var user types.User
	found, _, err := s.store.Get(ctx, store.KindUsers, uid, &user)
	if errors.Is(err, store.ErrInvalidID) {
		return nil, &ErrNotFound{Kind: KindUser, ID: uid}
	}
	if err != nil {
		return nil, s.internal(ctx, "get user", uid, err)
	}
	if !found {
		return nil, &ErrNotFound{Kind: KindUser, ID: uid}
	}
	user.Level = leveling.Level(user.XPPoints)
	return &user, nil
}

// GetProfile returns the user with statistics over their most recent sessions.
// A failing session query is logged and yields empty statistics.
func (s *UserService) GetProfile(ctx context.Context, uid string) (*types.Profile, error) {
	var (
		user     *types.User
		sessions []types.InterviewSession
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.GetUser(gctx, uid)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	g.Go(func() error {
		raw, _, err := s.store.List(gctx, store.KindSessions, store.Filter{Field: "user_id", Value: uid}, recentSessionsLimit)
		if err == nil {
			sessions, err = store.DecodeAll[types.InterviewSession](raw)
		}
		if err != nil {
			s.log(ctx).Warn("failed to load sessions for profile", zap.String("userId", uid), zap.Error(err))
			sessions = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if sessions == nil {
		sessions = []types.InterviewSession{}
	}
	return &types.Profile{
		User:           user,
		Statistics:     profileStatistics(user, sessions),
		Progress:       leveling.ProgressFor(user.XPPoints),
		RecentSessions: sessions,
	}, nil
}

// profileStatistics summarizes the recent sessions. Career path counts come from the
// user record, which counts every completed session rather than the recent page.
func profileStatistics(user *types.User, sessions []types.InterviewSession) types.ProfileStatistics {
	stats := types.ProfileStatistics{
		TotalSessions: len(sessions),
		CareerPaths:   map[string]int{},
	}
	for path, n := range user.CareerPathsPracticed {
		stats.CareerPaths[path] = n
	}
	for _, sess := range sessions {
		if sess.Status == types.SessionCompleted {
			stats.CompletedSessions++
		}
		stats.TotalQuestionsAnswered += sess.QuestionsAnswered
	}
	if stats.TotalSessions > 0 {
		stats.CompletionRate = float64(stats.CompletedSessions*100) / float64(stats.TotalSessions)
	}
	return stats
}

// UpdateProfile writes the provided profile links and resume metadata.
// ResumeUploaded=false clears the stored file name and URL.
func (s *UserService) UpdateProfile(ctx context.Context, req *types.UpdateProfileRequest) (*types.ProfileChanges, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	changes := types.ProfileChanges{
		GithubProfile:   req.GithubProfile,
		LinkedinProfile: req.LinkedinProfile,
		ResumeURL:       req.ResumeURL,
	}
	for field, value := range map[string]*string{
		"github_profile":   req.GithubProfile,
		"linkedin_profile": req.LinkedinProfile,
		"resume_url":       req.ResumeURL,
	} {
		if value != nil && *value != "" {
			if err := types.ValidateURL(*value); err != nil {
				return nil, &ErrValidation{Field: field, Message: "must be a valid URL"}
			}
		}
	}

	if req.ResumeUploaded != nil {
		uploaded := *req.ResumeUploaded
		changes.ResumeUploaded = &uploaded
		if uploaded {
			name := DefaultResumeName
			if req.ResumeFileName != nil && *req.ResumeFileName != "" {
				name = *req.ResumeFileName
			}
			changes.ResumeFileName = &name
		} else {
			cleared, clearedURL := "", ""
			changes.ResumeFileName = &cleared
			changes.ResumeURL = &clearedURL
		}
	} else if req.ResumeFileName != nil {
		changes.ResumeFileName = req.ResumeFileName
	}

	_, err := s.store.Update(ctx, store.KindUsers, req.UserID, changes.Fields())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &ErrNotFound{Kind: KindUser, ID: req.UserID}
		}
		return nil, s.internal(ctx, "update profile", req.UserID, err)
	}

	changes.UpdatedAt = s.store.Now()
	return &changes, nil
}

// AddXP grants XP to a user. An empty source defaults to "Manual".
func (s *UserService) AddXP(ctx context.Context, req *types.AddXPRequest) (*types.XPAward, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	source := req.Source
	if source == "" {
		source = ManualXPSource
	}
	return s.awardXP(ctx, req.UserID, req.XPAmount, source)
}

func (s *UserService) awardXP(ctx context.Context, uid string, amount int, source string) (*types.XPAward, error) {
	user, err := s.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	award := leveling.AddXP(user, amount, source, s.store.Now())
	if _, err := s.store.Put(ctx, store.KindUsers, uid, user); err != nil {
		return nil, s.internal(ctx, "award xp", uid, err)
	}

	if award.LevelUp {
		s.log(ctx).Info("user leveled up",
			zap.String("userId", uid),
			zap.Int("level", award.CurrentLevel),
			zap.String("source", source),
		)
	}
	return &award, nil
}

// recordInterview credits a completed interview to its owner.
func (s *UserService) recordInterview(ctx context.Context, uid, careerPath string, xp int) (*types.XPAward, error) {
	user, err := s.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	award := leveling.AddXP(user, xp, interviewXPSource, s.store.Now())
	user.TotalInterviews++
	user.CompletedInterviews++
	if user.CareerPathsPracticed == nil {
		user.CareerPathsPracticed = map[string]int{}
	}
	user.CareerPathsPracticed[careerPath]++

	if _, err := s.store.Put(ctx, store.KindUsers, uid, user); err != nil {
		return nil, s.internal(ctx, "record interview", uid, err)
	}
	return &award, nil
}

// internal logs a storage failure and wraps it. Ids the store cannot address are
// the caller's fault and come back as validation errors.
func (s *UserService) internal(ctx context.Context, op, id string, err error) error {
	if errors.Is(err, store.ErrInvalidID) {
		return &ErrValidation{Field: "id", Message: "contains characters that are not allowed"}
	}
	s.log(ctx).Error("storage failure", zap.String("operation", op), zap.String("id", id), zap.Error(err))
	return &ErrInternal{Op: op, Err: fmt.Errorf("%s: %w", id, err)}
}
