package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/skillbuddy/internal/interview"
	"github.com/jonathan/skillbuddy/internal/logging"
	"github.com/jonathan/skillbuddy/internal/store"
	"github.com/jonathan/skillbuddy/internal/types"
)

// InterviewService runs interview sessions against the question catalog
type InterviewService struct {
	store   Store
	catalog *interview.Catalog
	users   *UserService
	logger  *zap.Logger
}

// NewInterviewService creates a new InterviewService
func NewInterviewService(st Store, catalog *interview.Catalog, users *UserService, logger *zap.Logger) *InterviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterviewService{store: st, catalog: catalog, users: users, logger: logger}
}

func (s *InterviewService) log(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, s.logger)
}

// Catalog returns the question catalog in use.
func (s *InterviewService) Catalog() *interview.Catalog {
	return s.catalog
}

// Questions lists the questions for a career path.
func (s *InterviewService) Questions(careerPath string) ([]types.Question, error) {
	qs, ok := s.catalog.Questions(careerPath)
	if !ok {
		return nil, ErrInvalidCareerPath(careerPath)
	}
	return qs, nil
}

// Start creates and persists an in-progress session. An empty user id starts a guest session.
func (s *InterviewService) Start(ctx context.Context, req *types.StartSessionRequest) (*types.SessionStart, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	qs, err := s.Questions(req.CareerPath)
	if err != nil {
		return nil, err
	}

	sess := interview.NewSession(uuid.NewString(), req.UserID, req.CareerPath, len(qs), s.store.Now())
	if _, err := s.store.Put(ctx, store.KindSessions, sess.SessionID, sess); err != nil {
		return nil, s.users.internal(ctx, "start session", sess.SessionID, err)
	}

	s.log(ctx).Info("interview session started",
		zap.String("sessionId", sess.SessionID),
		zap.String("userId", sess.UserID),
		zap.String("careerPath", sess.CareerPath),
	)
	return &types.SessionStart{Session: sess, Questions: qs}, nil
}

func (s *InterviewService) load(ctx context.Context, sessionID string) (*types.InterviewSession, error) {
	var sess types.InterviewSession
	found, _, err := s.store.Get(ctx, store.KindSessions, sessionID, &sess)
	if errors.Is(err, store.ErrInvalidID) {
		return nil, &ErrNotFound{Kind: KindSession, ID: sessionID}
	}
	if err != nil {
		return nil, s.users.internal(ctx, "get session", sessionID, err)
	}
	if !found {
		return nil, &ErrNotFound{Kind: KindSession, ID: sessionID}
	}
	return &sess, nil
}

// SubmitResponse appends an answer to a session and returns the updated progress.
func (s *InterviewService) SubmitResponse(ctx context.Context, req *types.SubmitResponseRequest) (*types.SessionProgress, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	sess, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	err = interview.AddResponse(sess, types.Response{
		QuestionID:   *req.QuestionID,
		QuestionText: req.QuestionText,
		Response:     req.Response,
		Category:     req.Category,
		Difficulty:   req.Difficulty,
		Timestamp:    s.store.Now(),
	})
	if errors.Is(err, interview.ErrSessionCompleted) {
		return nil, &ErrAlreadyCompleted{SessionID: sess.SessionID}
	}

	if _, err := s.store.Put(ctx, store.KindSessions, sess.SessionID, sess); err != nil {
		return nil, s.users.internal(ctx, "save response", sess.SessionID, err)
	}
	return &types.SessionProgress{
		SessionID:            sess.SessionID,
		QuestionsAnswered:    sess.QuestionsAnswered,
		CompletionPercentage: sess.CompletionPercentage,
	}, nil
}

// End completes a session and credits its XP to a registered owner.
// Failures updating the owner are logged; the session still completes.
func (s *InterviewService) End(ctx context.Context, req *types.EndSessionRequest) (*types.SessionCompletion, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	sess, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	xp, err := interview.Complete(sess, s.store.Now())
	if errors.Is(err, interview.ErrSessionCompleted) {
		return nil, &ErrAlreadyCompleted{SessionID: sess.SessionID}
	}
	if _, err := s.store.Put(ctx, store.KindSessions, sess.SessionID, sess); err != nil {
		return nil, s.users.internal(ctx, "complete session", sess.SessionID, err)
	}

	result := &types.SessionCompletion{Session: sess, XPEarned: xp}
	if !sess.IsGuest() {
		award, err := s.users.recordInterview(ctx, sess.UserID, sess.CareerPath, xp)
		switch {
		case IsNotFound(err, KindUser):
			s.log(ctx).Warn("session owner not found, skipping xp award",
				zap.String("sessionId", sess.SessionID),
				zap.String("userId", sess.UserID),
			)
		case err != nil:
			s.log(ctx).Error("failed to credit interview to user",
				zap.String("sessionId", sess.SessionID),
				zap.String("userId", sess.UserID),
				zap.Error(err),
			)
		default:
			result.Award = award
		}
	}

	s.log(ctx).Info("interview session completed",
		zap.String("sessionId", sess.SessionID),
		zap.Int("xpEarned", xp),
		zap.Float64("completionPercentage", sess.CompletionPercentage),
	)
	return result, nil
}
