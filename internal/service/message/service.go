package message

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/oggyb/vibecheck/internal/app"
	"github.com/oggyb/vibecheck/internal/db"
	svcErr "github.com/oggyb/vibecheck/internal/errors"
	"github.com/oggyb/vibecheck/internal/metrics"
	"github.com/oggyb/vibecheck/internal/repository"
)

const (
	MaxContentLength = 2000
	PageSize         = 50
)

// Service handles conversations inside a match. Only the two participants
// may read or write.
type Service struct {
	appCtx *app.AppContext
	store  repository.ProfileStore
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx, store: appCtx.Store}
}

// participantMatch loads the match and checks userID takes part in it.
func (s *Service) participantMatch(ctx context.Context, matchID, userID uint64) (*db.Match, error) {
	if matchID == 0 || userID == 0 {
		return nil, svcErr.InvalidArgument("matchId and userId are required")
	}
	m, err := s.store.MatchByID(ctx, matchID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !m.HasUser(userID) {
		return nil, svcErr.PermissionDenied("not a participant of this match")
	}
	return m, nil
}

// Send appends a message to a match.
//
// Behavior:
//   - The match must exist and still be matched.
//   - The sender must be one of the two participants.
//   - Content is trimmed; it must be non-empty and at most 2000 characters.
func (s *Service) Send(ctx context.Context, matchID, senderID uint64, content string) (*db.Message, error) {
	s.appCtx.Logger.Debug("Send called", "match", matchID, "sender", senderID)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, svcErr.InvalidArgument("content must not be empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, svcErr.InvalidArgument("content must be at most 2000 characters")
	}

	m, err := s.participantMatch(ctx, matchID, senderID)
	if err != nil {
		return nil, err
	}
	if !m.Matched {
		return nil, svcErr.FailedPrecondition("match is no longer active")
	}

	msg := &db.Message{MatchID: m.ID, SenderID: senderID, Content: content}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		s.appCtx.Logger.Error("CreateMessage failed", "match", matchID, "err", err)
		return nil, svcErr.Map(err)
	}
	metrics.MessagesSent.Inc()
	return msg, nil
}

// List returns a page of the conversation, oldest first.
func (s *Service) List(ctx context.Context, matchID, requesterID uint64, token *string) ([]db.Message, *string, error) {
	s.appCtx.Logger.Debug("List called", "match", matchID, "requester", requesterID)

	if _, err := s.participantMatch(ctx, matchID, requesterID); err != nil {
		return nil, nil, err
	}

	msgs, next, err := s.store.ListMessages(ctx, matchID, token, PageSize)
	if err != nil {
		return nil, nil, svcErr.Map(err)
	}
	return msgs, next, nil
}
