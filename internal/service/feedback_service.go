package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/skillbuddy/internal/logging"
	"github.com/jonathan/skillbuddy/internal/store"
	"github.com/jonathan/skillbuddy/internal/types"
)

// FeedbackService records session ratings
type FeedbackService struct {
	store  Store
	users  *UserService
	logger *zap.Logger
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(st Store, users *UserService, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{store: st, users: users, logger: logger}
}

// Submit stores a rating and grants registered users the feedback bonus.
// The bonus is reported even if crediting it fails.
func (s *FeedbackService) Submit(ctx context.Context, req *types.FeedbackRequest) (*types.FeedbackReceipt, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	now := s.store.Now()
	fb := &types.Feedback{
		FeedbackID:  uuid.NewString(),
		UserID:      req.UserID,
		SessionID:   req.SessionID,
		Rating:      req.Rating,
		Comments:    req.Comments,
		SubmittedAt: now,
	}
	if _, err := s.store.Put(ctx, store.KindFeedback, fb.FeedbackID, fb); err != nil {
		return nil, s.users.internal(ctx, "submit feedback", fb.FeedbackID, err)
	}

	receipt := &types.FeedbackReceipt{FeedbackID: fb.FeedbackID}
	if req.UserID != types.GuestUserID {
		receipt.BonusXP = types.FeedbackBonusXP
		if _, err := s.users.awardXP(ctx, req.UserID, types.FeedbackBonusXP, feedbackXPSource); err != nil {
			logging.FromContext(ctx, s.logger).Warn("failed to award feedback bonus",
				zap.String("userId", req.UserID),
				zap.String("feedbackId", fb.FeedbackID),
				zap.Error(err),
			)
		}
	}
	return receipt, nil
}
